package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/netview/pkg/viewport"
)

// DefaultPadding is the space around a fitted scene, in pixels.
const DefaultPadding = 20.0

const selectedStroke = "#212121"

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	viewport   bool
	padding    float64
	background string
}

// WithViewport draws the scene through its view transform into its view
// box, the way it appears on screen. Without it the scene is fitted.
func WithViewport() SVGOption { return func(r *svgRenderer) { r.viewport = true } }

// WithPadding sets the padding of a fitted scene.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// WithBackground fills the picture with a color.
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

// RenderSVG renders the scene as SVG. Edges are drawn below nodes and labels
// above both.
func RenderSVG(sc Scene, opts ...SVGOption) []byte {
	r := svgRenderer{padding: DefaultPadding}
	for _, opt := range opts {
		opt(&r)
	}

	w, h, t := r.frame(sc)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", attr(r.background))
	}
	fmt.Fprintf(&buf, `  <g transform="translate(%.2f,%.2f) scale(%.4f)">`+"\n", t.X, t.Y, t.K)

	buf.WriteString(`    <g class="edges">` + "\n")
	for _, e := range sc.Edges {
		fmt.Fprintf(&buf, `      <line id="edge-%d" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"/>`+"\n",
			e.Index, e.X1, e.Y1, e.X2, e.Y2, attr(e.Color), e.Width)
	}
	buf.WriteString("    </g>\n")

	buf.WriteString(`    <g class="nodes">` + "\n")
	for _, n := range sc.Nodes {
		renderNode(&buf, n)
	}
	buf.WriteString("    </g>\n")

	buf.WriteString(`    <g class="labels" font-family="sans-serif" font-size="10">` + "\n")
	for _, e := range sc.Edges {
		if e.Label == "" {
			continue
		}
		fmt.Fprintf(&buf, `      <text x="%.2f" y="%.2f" text-anchor="middle">%s</text>`+"\n",
			(e.X1+e.X2)/2, (e.Y1+e.Y2)/2, html.EscapeString(e.Label))
	}
	for _, n := range sc.Nodes {
		if n.Label == "" {
			continue
		}
		fmt.Fprintf(&buf, `      <text x="%.2f" y="%.2f" text-anchor="middle">%s</text>`+"\n",
			n.X, n.Y+n.Radius+10, html.EscapeString(n.Label))
	}
	buf.WriteString("    </g>\n")

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func renderNode(buf *bytes.Buffer, n Node) {
	fill := n.Color
	if fill == "" {
		fill = "none"
	}
	stroke := ""
	if n.Selected {
		stroke = fmt.Sprintf(` stroke="%s" stroke-width="2"`, selectedStroke)
	}
	fmt.Fprintf(buf, `      <circle id="node-%d" cx="%.2f" cy="%.2f" r="%.2f" fill="%s"%s><title>%s</title></circle>`+"\n",
		n.Index, n.X, n.Y, n.Radius, attr(fill), stroke, html.EscapeString(n.ID))
	if n.Image != "" {
		fmt.Fprintf(buf, `      <image x="%.2f" y="%.2f" width="%.2f" height="%.2f" href="%s" clip-path="circle()"/>`+"\n",
			n.X-n.Radius, n.Y-n.Radius, 2*n.Radius, 2*n.Radius, attr(n.Image))
	}
}

// frame returns the picture size and the transform from data space into it.
func (r svgRenderer) frame(sc Scene) (w, h float64, t viewport.Transform) {
	if r.viewport {
		w, h = sc.ViewBox.Width(), sc.ViewBox.Height()
		t = sc.Transform
		if !t.Valid() {
			t = viewport.Identity
		}
		return w, h, t
	}

	b := sc.Bounds
	w = b.Width() + 2*r.padding
	h = b.Height() + 2*r.padding
	return w, h, viewport.Transform{X: r.padding - b.Left, Y: r.padding - b.Top, K: 1}
}

func attr(s string) string { return html.EscapeString(s) }
