// Package session defines the unit of persistence: a named network with its
// saved snapshots.
//
// The interchange format is plain JSON:
//
//	{
//	  "id": "…", "name": "…",
//	  "nodes": [{"id": "a", "group": "x"}, …],
//	  "edges": [{"source": "a", "target": "b"}, …],
//	  "snapshots": [ … ],
//	  "config": { … }, "appearance": { … }
//	}
//
// nodes and edges are flat field maps; edges reference their endpoints by
// node id or by array index. config and appearance are optional defaults for
// views that start without a snapshot.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/netview/pkg/appearance"
	"github.com/matzehuels/netview/pkg/config"
	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/network"
	"github.com/matzehuels/netview/pkg/snapshot"
)

// Session is a dataset plus its snapshots.
type Session struct {
	ID         string                `json:"id" bson:"_id"`
	Name       string                `json:"name" bson:"name"`
	Nodes      []network.Fields      `json:"nodes" bson:"nodes"`
	Edges      []network.Fields      `json:"edges" bson:"edges"`
	Snapshots  []snapshot.Snapshot   `json:"snapshots" bson:"snapshots"`
	Config     *config.View          `json:"config,omitempty" bson:"config,omitempty"`
	Appearance appearance.Appearance `json:"appearance,omitempty" bson:"appearance,omitempty"`
	CreatedAt  time.Time             `json:"created_at,omitzero" bson:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at,omitzero" bson:"updated_at"`
}

// Header is the listing entry of a session.
type Header struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Snapshots []string  `json:"snapshots" bson:"snapshots"`
	Nodes     int       `json:"nodes" bson:"nodes"`
	Edges     int       `json:"edges" bson:"edges"`
	UpdatedAt time.Time `json:"updated_at,omitzero" bson:"updated_at"`
}

// GenerateID returns a new random session id.
func GenerateID() string {
	return uuid.NewString()
}

// New creates a session with a generated id.
func New(name string, nodes, edges []network.Fields) *Session {
	now := time.Now()
	return &Session{
		ID:        GenerateID(),
		Name:      name,
		Nodes:     nodes,
		Edges:     edges,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the session shape. Edges with unresolvable endpoints are
// not an error; they are dropped when the dataset is built.
func (s *Session) Validate() error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidSession, "session is nil")
	}
	if s.Nodes == nil {
		return errors.New(errors.ErrCodeInvalidSession, "session %q has no nodes array", s.Name)
	}
	if s.Edges == nil {
		return errors.New(errors.ErrCodeInvalidSession, "session %q has no edges array", s.Name)
	}
	if s.ID != "" {
		if err := errors.ValidateSessionID(s.ID); err != nil {
			return err
		}
	}
	for i, snap := range s.Snapshots {
		if len(snap.Positions) > len(s.Nodes) {
			return errors.New(errors.ErrCodeInvalidSession, "snapshot %d has %d positions for %d nodes", i, len(snap.Positions), len(s.Nodes))
		}
	}
	return nil
}

// Dataset builds the node/edge arena. The field maps are shared with the
// session.
func (s *Session) Dataset() *network.Dataset {
	return network.NewDataset(s.Nodes, s.Edges)
}

// ViewConfig returns the session's default view configuration.
func (s *Session) ViewConfig() config.View {
	if s.Config != nil {
		return s.Config.Normalize()
	}
	return config.DefaultView()
}

// DefaultAppearance returns the built-in appearance with the session's
// defaults applied on top.
func (s *Session) DefaultAppearance() appearance.Appearance {
	return appearance.Default().Merge(s.Appearance)
}

// Header returns the listing entry of the session.
func (s *Session) Header() Header {
	names := make([]string, len(s.Snapshots))
	for i, snap := range s.Snapshots {
		names[i] = snap.Name
	}
	return Header{
		ID:        s.ID,
		Name:      s.Name,
		Snapshots: names,
		Nodes:     len(s.Nodes),
		Edges:     len(s.Edges),
		UpdatedAt: s.UpdatedAt,
	}
}
