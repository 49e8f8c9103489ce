package render

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/netview/pkg/appearance"
	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/fields"
	"github.com/matzehuels/netview/pkg/network"
	"github.com/matzehuels/netview/pkg/viewport"
	"github.com/matzehuels/netview/pkg/viewstate"
)

// testFrame has three nodes a, b, c (c never placed) and edges a-b, b-c.
func testFrame(t *testing.T) viewstate.Frame {
	t.Helper()
	ds := network.NewDataset(
		[]network.Fields{
			{"id": "a", "w": 0, "c": "a"},
			{"id": "b", "w": 5, "c": "b"},
			{"id": "c", "w": 10, "c": "a"},
		},
		[]network.Fields{
			{"source": "a", "target": "b", "kind": "x"},
			{"source": "b", "target": "c", "kind": "y"},
		},
	)
	ds.Nodes[0].Place(0, 0)
	ds.Nodes[1].Place(100, 50)

	set := fields.Classifier{}.ClassifySet(ds)
	app := appearance.Default()
	app.EnsureDomains(set)
	return viewstate.Frame{
		Dataset:    ds,
		Fields:     set,
		Nodes:      ds.Nodes,
		Edges:      ds.Edges,
		ShowImages: true,
		Transform:  viewport.Identity,
		ViewBox:    viewport.Rect{Right: 300, Bottom: 200},
		Appearance: app,
	}
}

func TestBuildDefaults(t *testing.T) {
	sc := Build(testFrame(t))

	if len(sc.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2 (unplaced node skipped)", len(sc.Nodes))
	}
	if len(sc.Edges) != 1 {
		t.Fatalf("edges = %d, want 1 (edge to unplaced node skipped)", len(sc.Edges))
	}
	for _, n := range sc.Nodes {
		if n.Radius != 6 || n.Color != "#9e9e9e" || n.Label != "" {
			t.Errorf("node %s = %+v, want default radius, color and no label", n.ID, n)
		}
	}
	e := sc.Edges[0]
	if e.Source != "a" || e.Target != "b" || e.Width != 1 || e.Color != "#c8c8c8" {
		t.Errorf("edge = %+v", e)
	}
	want := viewport.Rect{Top: -6, Left: -6, Bottom: 56, Right: 106}
	if sc.Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", sc.Bounds, want)
	}
}

func TestBuildBoundChannels(t *testing.T) {
	f := testFrame(t)
	for ch, field := range map[appearance.Channel]string{
		appearance.NodeColor: "node.c",
		appearance.NodeSize:  "node.w",
		appearance.NodeLabel: "node.id",
		appearance.EdgeLabel: "edge.kind",
	} {
		if err := f.Appearance.Bind(ch, field, f.Fields); err != nil {
			t.Fatalf("Bind(%s, %s): %v", ch, field, err)
		}
	}
	visible := true
	for _, ch := range []appearance.Channel{appearance.NodeLabel, appearance.EdgeLabel} {
		enc := f.Appearance[ch]
		enc.Visible = &visible
		f.Appearance[ch] = enc
	}

	sc := Build(f)
	a, b := sc.Nodes[0], sc.Nodes[1]
	if a.Color != "#1f77b4" || b.Color != "#ff7f0e" {
		t.Errorf("colors = %s, %s", a.Color, b.Color)
	}
	if a.Radius != 4 || b.Radius != 8 {
		t.Errorf("radii = %v, %v, want 4, 8", a.Radius, b.Radius)
	}
	if a.Label != "a" || b.Label != "b" {
		t.Errorf("labels = %q, %q", a.Label, b.Label)
	}
	if sc.Edges[0].Label != "x" {
		t.Errorf("edge label = %q, want x", sc.Edges[0].Label)
	}
}

func TestBuildSelectedLast(t *testing.T) {
	f := testFrame(t)
	f.Dataset.Nodes[0].Selected = true

	sc := Build(f)
	if sc.Nodes[0].ID != "b" || sc.Nodes[1].ID != "a" {
		t.Errorf("order = %s, %s, want selected node last", sc.Nodes[0].ID, sc.Nodes[1].ID)
	}
}

func TestBuildHiddenEdges(t *testing.T) {
	f := testFrame(t)
	hidden := false
	enc := f.Appearance[appearance.EdgeColor]
	enc.Visible = &hidden
	f.Appearance[appearance.EdgeColor] = enc

	if sc := Build(f); len(sc.Edges) != 0 {
		t.Errorf("edges = %d, want 0 with hidden edge color", len(sc.Edges))
	}
}

func TestRenderSVG(t *testing.T) {
	sc := Build(testFrame(t))

	svg := string(RenderSVG(sc))
	for _, want := range []string{`viewBox="0 0 152.0 102.0"`, `id="node-0"`, `id="node-1"`, `id="edge-0"`, "<title>a</title>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, `id="node-2"`) {
		t.Error("SVG contains unplaced node")
	}

	svg = string(RenderSVG(sc, WithViewport(), WithBackground("white")))
	for _, want := range []string{`viewBox="0 0 300.0 200.0"`, `translate(0.00,0.00) scale(1.0000)`, `fill="white"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("viewport SVG missing %q", want)
		}
	}
}

func TestRenderSVGEscapes(t *testing.T) {
	sc := Scene{Nodes: []Node{{ID: "<a&b>", Radius: 1, Label: `"x"`}}}
	svg := string(RenderSVG(sc))
	if strings.Contains(svg, "<a&b>") {
		t.Error("node id not escaped")
	}
	if !strings.Contains(svg, "&lt;a&amp;b&gt;") {
		t.Error("escaped node id missing")
	}
}

func TestToDOT(t *testing.T) {
	sc := Build(testFrame(t))

	dot := ToDOT(sc, DOTOptions{})
	for _, want := range []string{"graph G {", `"a" -- "b"`, `pos="100.00,-50.00!"`, `fillcolor="#9e9e9e"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	dot = ToDOT(sc, DOTOptions{Directed: true, Labels: true})
	if !strings.Contains(dot, "digraph G {") || !strings.Contains(dot, `"a" -> "b"`) || !strings.Contains(dot, `xlabel="a"`) {
		t.Errorf("directed DOT:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox = %s", out)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}

func TestRender(t *testing.T) {
	sc := Build(testFrame(t))
	ctx := context.Background()

	data, err := Render(ctx, sc, FormatJSON, Options{})
	if err != nil {
		t.Fatalf("Render(json): %v", err)
	}
	var back Scene
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if len(back.Nodes) != 2 || len(back.Edges) != 1 {
		t.Errorf("decoded scene has %d nodes, %d edges", len(back.Nodes), len(back.Edges))
	}

	if _, err := Render(ctx, sc, "bmp", Options{}); err == nil {
		t.Error("Render(bmp) should fail")
	}
	if !ValidFormat(FormatNeato) || ValidFormat("bmp") {
		t.Error("ValidFormat mismatch")
	}
}

func TestConvertWithoutRsvg(t *testing.T) {
	defer func(bin string) { rsvgConvert = bin }(rsvgConvert)
	rsvgConvert = "netview-no-such-rsvg-convert"

	sc := Build(testFrame(t))
	for _, format := range []string{FormatPDF, FormatPNG} {
		_, err := Render(context.Background(), sc, format, Options{Scale: 2})
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("Render(%s) = %v, want INVALID_FORMAT", format, err)
		}
		if err != nil && !strings.Contains(err.Error(), "librsvg") {
			t.Errorf("Render(%s) error should name librsvg: %v", format, err)
		}
	}
}
