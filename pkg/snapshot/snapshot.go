// Package snapshot captures and restores the state of a view.
//
// A [Snapshot] is a named, immutable capture of node positions (index-aligned
// with the session's nodes), filters, transform, configuration and
// appearance. The [Manager] tracks the snapshots of one session, which of
// them is active, and the dirty flag that separates unsaved edits from the
// active snapshot. It persists changes through a [Persister] and leaves its
// own state untouched when persistence fails.
package snapshot

import (
	"time"

	"github.com/matzehuels/netview/pkg/appearance"
	"github.com/matzehuels/netview/pkg/config"
	"github.com/matzehuels/netview/pkg/filter"
	"github.com/matzehuels/netview/pkg/network"
	"github.com/matzehuels/netview/pkg/viewport"
)

// NameFormat is the time layout of generated snapshot names.
const NameFormat = "2006-01-02 15:04:05"

// None is the index of "no snapshot": the view uses built-in defaults.
const None = -1

// Position is the stored coordinate of one node.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Snapshot is a saved view state.
type Snapshot struct {
	Name       string                `json:"name" bson:"name"`
	Filters    []filter.Filter       `json:"filters" bson:"filters"`
	Positions  []Position            `json:"positions" bson:"positions"`
	Transform  viewport.Transform    `json:"transform" bson:"transform"`
	Config     config.View           `json:"config" bson:"config"`
	Appearance appearance.Appearance `json:"appearance,omitempty" bson:"appearance,omitempty"`
	CreatedAt  time.Time             `json:"created_at,omitzero" bson:"created_at,omitempty"`
}

// Clone returns a deep copy so the copy can be mutated without touching
// persisted data.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Filters = filter.CloneAll(s.Filters)
	if s.Positions != nil {
		out.Positions = append([]Position{}, s.Positions...)
	}
	out.Appearance = s.Appearance.Clone()
	return out
}

// State is the part of a view a snapshot captures.
type State struct {
	Nodes      []*network.Node
	Filters    []filter.Filter
	Transform  viewport.Transform
	Config     config.View
	Appearance appearance.Appearance
}

// Capture records st under name. Nodes that were never placed are stored at
// (0, 0). Everything is deep-copied.
func Capture(name string, st State) Snapshot {
	pos := make([]Position, len(st.Nodes))
	for i, n := range st.Nodes {
		if x, y, ok := n.Position(); ok {
			pos[i] = Position{X: x, Y: y}
		}
	}
	return Snapshot{
		Name:       name,
		Filters:    filter.CloneAll(st.Filters),
		Positions:  pos,
		Transform:  st.Transform,
		Config:     st.Config,
		Appearance: st.Appearance.Clone(),
	}
}

// Restore places every node at its stored position and pins it there.
// Nodes without a stored position are cleared so the layout seeds them.
func (s Snapshot) Restore(nodes []*network.Node) {
	for i, n := range nodes {
		n.VX, n.VY = 0, 0
		if i >= len(s.Positions) {
			n.ClearPosition()
			continue
		}
		p := s.Positions[i]
		n.Place(p.X, p.Y)
		n.Pin(p.X, p.Y)
	}
}

// Label returns the name of snapshot idx, or a placeholder for [None].
func Label(snaps []Snapshot, idx int) string {
	if idx < 0 || idx >= len(snaps) {
		return "(unsaved)"
	}
	return snaps[idx].Name
}
