// Package visibility culls the filtered network against the viewport.
//
// [Cull] keeps the nodes strictly inside the focus area (the margin-expanded
// data-space rectangle from package viewport) and the edges with at least one
// visible endpoint, so edges crossing the viewport boundary still render. A
// [Policy] then throttles expensive rendering: above a node count images are
// suppressed, above an edge count edges are dropped altogether.
package visibility

import (
	"github.com/matzehuels/netview/pkg/network"
	"github.com/matzehuels/netview/pkg/viewport"
)

// Default thresholds.
const (
	DefaultImageThreshold = 100
	DefaultEdgeThreshold  = 1000
)

// Policy holds the render-suppression thresholds.
type Policy struct {
	ShowImageThreshold int
	ShowEdgeThreshold  int
	AlwaysShowImages   bool
	AlwaysShowEdges    bool
}

// DefaultPolicy returns the default thresholds.
func DefaultPolicy() Policy {
	return Policy{
		ShowImageThreshold: DefaultImageThreshold,
		ShowEdgeThreshold:  DefaultEdgeThreshold,
	}
}

// Result is the output of [Cull].
type Result struct {
	Nodes []*network.Node
	Edges []*network.Edge

	// ShowImages is false when per-node images must not be drawn.
	ShowImages bool
	// EdgesSuppressed is true when Edges was emptied by the edge threshold.
	EdgesSuppressed bool
}

// Cull intersects fnodes with area and derives the visible edges.
//
// Nodes that were never placed are not visible. Result.Nodes is a subset of
// fnodes and Result.Edges a subset of fedges, each in input order.
func Cull(fnodes []*network.Node, fedges []*network.Edge, area viewport.Rect, p Policy) Result {
	var res Result
	for _, n := range fnodes {
		x, y, ok := n.Position()
		if ok && area.Contains(viewport.Point{X: x, Y: y}) {
			res.Nodes = append(res.Nodes, n)
		}
	}

	res.Edges = network.Incident(network.NodeSet(res.Nodes), fedges)

	res.ShowImages = p.AlwaysShowImages || len(res.Nodes) < p.ShowImageThreshold
	if !p.AlwaysShowEdges && len(res.Edges) > p.ShowEdgeThreshold {
		res.Edges = nil
		res.EdgesSuppressed = true
	}
	return res
}
