package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// pointsPerInch converts data units to Graphviz inches.
const pointsPerInch = 72.0

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Directed draws edges as arrows.
	Directed bool
	// Labels writes node ids as labels where no label channel is bound.
	Labels bool
}

// ToDOT converts a scene to Graphviz DOT. Node positions are pinned
// ("pos=x,y!") so neato keeps the force layout; the y axis is flipped since
// Graphviz grows upward.
func ToDOT(sc Scene, opts DOTOptions) string {
	kind, arrow := "graph", "--"
	if opts.Directed {
		kind, arrow = "digraph", "->"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s G {\n", kind)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontsize=10, penwidth=0];\n")
	buf.WriteString("\n")

	for _, n := range sc.Nodes {
		label := n.Label
		if label == "" && opts.Labels {
			label = n.ID
		}
		d := 2 * n.Radius / pointsPerInch
		attrs := fmt.Sprintf("pos=\"%.2f,%.2f!\", width=%.3f, height=%.3f, label=%q, xlabel=%q",
			n.X, -n.Y, d, d, "", label)
		if n.Color != "" {
			attrs += fmt.Sprintf(", fillcolor=%q", n.Color)
		}
		if n.Selected {
			attrs += fmt.Sprintf(", penwidth=2, color=%q", selectedStroke)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, attrs)
	}

	buf.WriteString("\n")
	for _, e := range sc.Edges {
		attrs := fmt.Sprintf("penwidth=%.2f", e.Width)
		if e.Color != "" {
			attrs += fmt.Sprintf(", color=%q", e.Color)
		}
		if e.Label != "" {
			attrs += fmt.Sprintf(", label=%q", e.Label)
		}
		fmt.Fprintf(&buf, "  %q %s %q [%s];\n", e.Source, arrow, e.Target, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderDOT renders DOT source to SVG with the neato engine.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.SetLayout(graphviz.NEATO).Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel one so the picture scales like the SVG from [RenderSVG].
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
