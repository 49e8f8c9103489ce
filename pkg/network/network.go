package network

import (
	"math"
	"slices"
)

// Reserved record keys.
const (
	KeyID     = "id"
	KeySource = "source"
	KeyTarget = "target"
)

// reserved lists keys the engine owns; they are never classified as fields.
var reserved = map[string]bool{
	KeySource: true, KeyTarget: true,
	"index": true, "selected": true,
	"x": true, "y": true, "vx": true, "vy": true, "fx": true, "fy": true,
}

// IsReserved reports whether key is owned by the engine rather than the data.
func IsReserved(key string) bool { return reserved[key] }

// Fields is a flat record of scalar values keyed by field name.
type Fields map[string]any

// Clone returns a shallow copy of the record.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// =============================================================================
// Node
// =============================================================================

// Body is the physical state of a node: the only part of it the force
// simulation may read or write. X/Y are only meaningful once Placed is true;
// FX/FY pin the body when non-nil.
type Body struct {
	X, Y   float64
	VX, VY float64
	FX, FY *float64
	Placed bool
}

// Pinned reports whether both pin coordinates are set.
func (b *Body) Pinned() bool { return b.FX != nil && b.FY != nil }

// Pin fixes the body at (x, y).
func (b *Body) Pin(x, y float64) {
	b.FX, b.FY = &x, &y
}

// Unpin releases the pin coordinates.
func (b *Body) Unpin() { b.FX, b.FY = nil, nil }

// Place moves the body to (x, y) and marks it positioned.
func (b *Body) Place(x, y float64) {
	b.X, b.Y, b.Placed = x, y, true
}

// ClearPosition forgets coordinates, velocities and pins.
func (b *Body) ClearPosition() {
	*b = Body{}
}

// Position returns the coordinates, or (0, 0, false) if the body has never
// been placed.
func (b *Body) Position() (x, y float64, ok bool) {
	if !b.Placed {
		return 0, 0, false
	}
	return b.X, b.Y, true
}

// Node is a vertex of the network.
//
// Index is assigned by [NewDataset] and never changes.
type Node struct {
	Index    int
	Fields   Fields
	Selected bool

	Body
}

// Value returns the value of a data field.
func (n *Node) Value(field string) (any, bool) {
	v, ok := n.Fields[field]
	return v, ok && v != nil
}

// ID returns the node's identifier field, if any.
func (n *Node) ID() (any, bool) { return n.Value(KeyID) }

// =============================================================================
// Edge
// =============================================================================

// Edge is a link between two nodes. SourceIndex and TargetIndex are resolved
// once from the record's source/target references and are immutable.
type Edge struct {
	Index       int
	Fields      Fields
	SourceIndex int
	TargetIndex int
}

// Value returns the value of a data field.
func (e *Edge) Value(field string) (any, bool) {
	v, ok := e.Fields[field]
	return v, ok && v != nil
}

// =============================================================================
// Dataset
// =============================================================================

// Dataset is the arena of nodes and edges of one session.
// Nodes[i].Index == i always holds; edges are re-indexed after unresolvable
// ones are dropped.
type Dataset struct {
	Nodes []*Node
	Edges []*Edge

	// Dropped counts edge records whose endpoints could not be resolved.
	Dropped int
}

// NewDataset builds the arena from raw records. Edge endpoints are resolved
// by node "id" first and by array index second.
func NewDataset(nodes, edges []Fields) *Dataset {
	ds := &Dataset{Nodes: make([]*Node, len(nodes))}

	byID := make(map[string]int, len(nodes))
	for i, rec := range nodes {
		if rec == nil {
			rec = Fields{}
		}
		ds.Nodes[i] = &Node{Index: i, Fields: rec}
		if id, ok := rec[KeyID]; ok && id != nil {
			key := ToString(id)
			if _, dup := byID[key]; !dup {
				byID[key] = i
			}
		}
	}

	ds.Edges = make([]*Edge, 0, len(edges))
	for _, rec := range edges {
		if rec == nil {
			ds.Dropped++
			continue
		}
		src, okS := resolve(rec[KeySource], byID, len(nodes))
		dst, okT := resolve(rec[KeyTarget], byID, len(nodes))
		if !okS || !okT {
			ds.Dropped++
			continue
		}
		ds.Edges = append(ds.Edges, &Edge{
			Index:       len(ds.Edges),
			Fields:      rec,
			SourceIndex: src,
			TargetIndex: dst,
		})
	}
	return ds
}

// resolve maps a source/target reference to a node index.
func resolve(ref any, byID map[string]int, n int) (int, bool) {
	if ref == nil {
		return 0, false
	}
	if idx, ok := byID[ToString(ref)]; ok {
		return idx, true
	}
	f, ok := ToFloat(ref)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	idx := int(f)
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

// NodeCount returns the number of nodes.
func (d *Dataset) NodeCount() int { return len(d.Nodes) }

// EdgeCount returns the number of resolved edges.
func (d *Dataset) EdgeCount() int { return len(d.Edges) }

// Node returns the node at index i, or nil when out of range.
func (d *Dataset) Node(i int) *Node {
	if i < 0 || i >= len(d.Nodes) {
		return nil
	}
	return d.Nodes[i]
}

// Endpoints returns the two nodes an edge connects.
func (d *Dataset) Endpoints(e *Edge) (*Node, *Node) {
	return d.Node(e.SourceIndex), d.Node(e.TargetIndex)
}

// =============================================================================
// Index Sets
// =============================================================================

// IndexSet is a set of node or edge indices.
type IndexSet map[int]struct{}

// NodeSet returns the index set of nodes.
func NodeSet(nodes []*Node) IndexSet {
	s := make(IndexSet, len(nodes))
	for _, n := range nodes {
		s[n.Index] = struct{}{}
	}
	return s
}

// Has reports whether i is in the set.
func (s IndexSet) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Sorted returns the indices in ascending order.
func (s IndexSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// Induced returns the edges whose endpoints are both in nodes.
func Induced(nodes IndexSet, edges []*Edge) []*Edge {
	out := make([]*Edge, 0, len(edges))
	for _, e := range edges {
		if nodes.Has(e.SourceIndex) && nodes.Has(e.TargetIndex) {
			out = append(out, e)
		}
	}
	return out
}

// Incident returns the edges with at least one endpoint in nodes.
func Incident(nodes IndexSet, edges []*Edge) []*Edge {
	out := make([]*Edge, 0, len(edges))
	for _, e := range edges {
		if nodes.Has(e.SourceIndex) || nodes.Has(e.TargetIndex) {
			out = append(out, e)
		}
	}
	return out
}
