package render

import (
	"cmp"
	"slices"

	"github.com/matzehuels/netview/pkg/appearance"
	"github.com/matzehuels/netview/pkg/fields"
	"github.com/matzehuels/netview/pkg/network"
	"github.com/matzehuels/netview/pkg/viewport"
	"github.com/matzehuels/netview/pkg/viewstate"
)

// Node is a drawn node. X and Y are data coordinates; Radius is in data
// units.
type Node struct {
	Index    int     `json:"index"`
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"radius"`
	Color    string  `json:"color,omitempty"`
	Label    string  `json:"label,omitempty"`
	Image    string  `json:"image,omitempty"`
	Selected bool    `json:"selected,omitempty"`
}

// Edge is a drawn edge between two node centers.
type Edge struct {
	Index  int     `json:"index"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Width  float64 `json:"width"`
	Color  string  `json:"color,omitempty"`
	Label  string  `json:"label,omitempty"`
}

// Scene is the resolved drawing of a frame.
type Scene struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	// Bounds encloses every node including its radius.
	Bounds viewport.Rect `json:"bounds"`

	Transform viewport.Transform `json:"transform"`
	ViewBox   viewport.Rect      `json:"view_box"`

	// EdgesSuppressed is set when the frame hid its edges for density.
	EdgesSuppressed bool `json:"edges_suppressed,omitempty"`
}

// Build resolves the frame into a scene. Nodes that were never placed are
// skipped, and so are edges touching them. Nodes are ordered by index with
// selected nodes last so they draw on top.
func Build(f viewstate.Frame) Scene {
	sc := Scene{
		Nodes:           make([]Node, 0, len(f.Nodes)),
		Edges:           make([]Edge, 0, len(f.Edges)),
		Transform:       f.Transform,
		ViewBox:         f.ViewBox,
		EdgesSuppressed: f.Suppressed,
	}

	scale := func(ch appearance.Channel) appearance.Scale {
		return appearance.NewScale(ch, f.Appearance[ch])
	}
	color, size := scale(appearance.NodeColor), scale(appearance.NodeSize)
	label, image := scale(appearance.NodeLabel), scale(appearance.NodeImage)

	var points []viewport.Point
	for _, n := range f.Nodes {
		x, y, ok := n.Position()
		if !ok {
			continue
		}
		sn := Node{
			Index:    n.Index,
			ID:       nodeID(n),
			X:        x,
			Y:        y,
			Radius:   size.Size(nodeValue(n, size)),
			Selected: n.Selected,
		}
		if color.Visible() {
			sn.Color = color.Color(nodeValue(n, color))
		}
		if label.Visible() {
			sn.Label = label.Text(nodeValue(n, label))
		}
		if image.Visible() && f.ShowImages {
			sn.Image = image.Text(nodeValue(n, image))
		}
		sc.Nodes = append(sc.Nodes, sn)
		points = append(points,
			viewport.Point{X: x - sn.Radius, Y: y - sn.Radius},
			viewport.Point{X: x + sn.Radius, Y: y + sn.Radius})
	}
	slices.SortStableFunc(sc.Nodes, func(a, b Node) int {
		if a.Selected != b.Selected {
			if a.Selected {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.Index, b.Index)
	})
	sc.Bounds, _ = viewport.Bounds(points)

	ecolor, ewidth := scale(appearance.EdgeColor), scale(appearance.EdgeWidth)
	elabel := scale(appearance.EdgeLabel)
	if !ecolor.Visible() {
		return sc
	}
	for _, e := range f.Edges {
		src, dst := f.Dataset.Endpoints(e)
		if src == nil || dst == nil {
			continue
		}
		x1, y1, ok1 := src.Position()
		x2, y2, ok2 := dst.Position()
		if !ok1 || !ok2 {
			continue
		}
		se := Edge{
			Index:  e.Index,
			Source: nodeID(src),
			Target: nodeID(dst),
			X1:     x1, Y1: y1, X2: x2, Y2: y2,
			Width: ewidth.Size(edgeValue(e, ewidth)),
			Color: ecolor.Color(edgeValue(e, ecolor)),
		}
		if elabel.Visible() {
			se.Label = elabel.Text(edgeValue(e, elabel))
		}
		sc.Edges = append(sc.Edges, se)
	}
	return sc
}

func nodeValue(n *network.Node, s appearance.Scale) (any, bool) {
	_, name, ok := fields.ParseKey(s.Field())
	if !ok {
		return nil, false
	}
	return n.Value(name)
}

func edgeValue(e *network.Edge, s appearance.Scale) (any, bool) {
	_, name, ok := fields.ParseKey(s.Field())
	if !ok {
		return nil, false
	}
	return e.Value(name)
}

// nodeID returns the node's id field, or its index when it has none.
func nodeID(n *network.Node) string {
	if id, ok := n.ID(); ok {
		return network.ToString(id)
	}
	return network.ToString(n.Index)
}
