package session

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/layout"
	"github.com/matzehuels/netview/pkg/network"
	"github.com/matzehuels/netview/pkg/snapshot"
)

func TestNew(t *testing.T) {
	s := New("demo", []network.Fields{{"id": "a"}}, []network.Fields{})
	if err := errors.ValidateSessionID(s.ID); err != nil {
		t.Errorf("generated id %q invalid: %v", s.ID, err)
	}
	if other := New("demo", nil, nil); other.ID == s.ID {
		t.Error("generated ids should differ")
	}
	if s.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       *Session
		wantErr bool
	}{
		{"Valid", &Session{Nodes: []network.Fields{}, Edges: []network.Fields{}}, false},
		{"Nil", nil, true},
		{"NoNodes", &Session{Edges: []network.Fields{}}, true},
		{"NoEdges", &Session{Nodes: []network.Fields{}}, true},
		{"BadID", &Session{ID: "../etc", Nodes: []network.Fields{}, Edges: []network.Fields{}}, true},
		{"TooManyPositions", &Session{
			Nodes:     []network.Fields{{}},
			Edges:     []network.Fields{},
			Snapshots: []snapshot.Snapshot{{Positions: []snapshot.Position{{}, {}}}},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeInterchange(t *testing.T) {
	data := `{
		"id": "s1", "name": "demo",
		"nodes": [{"id": "a", "w": 1}, {"id": "b", "w": "2"}],
		"edges": [{"source": "a", "target": "b"}, {"source": "a", "target": "zz"}],
		"snapshots": [{"name": "first", "positions": [{"x": 1, "y": 2}, {"x": 3, "y": 4}], "transform": {"x": 0, "y": 0, "k": 1}}],
		"config": {"layout_profile": "sparse", "show_edge_threshold": 10}
	}`
	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		t.Fatal(err)
	}
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}

	ds := s.Dataset()
	if ds.NodeCount() != 2 || ds.EdgeCount() != 1 || ds.Dropped != 1 {
		t.Errorf("dataset = %d nodes, %d edges, %d dropped", ds.NodeCount(), ds.EdgeCount(), ds.Dropped)
	}
	if cfg := s.ViewConfig(); cfg.LayoutProfile != layout.ProfileSparse || cfg.ShowEdgeThreshold != 10 {
		t.Errorf("ViewConfig = %+v", cfg)
	}

	h := s.Header()
	if h.ID != "s1" || h.Nodes != 2 || len(h.Snapshots) != 1 || h.Snapshots[0] != "first" {
		t.Errorf("Header = %+v", h)
	}
}

func TestViewConfigDefault(t *testing.T) {
	s := &Session{}
	if s.ViewConfig().LayoutProfile != layout.DefaultProfile {
		t.Error("session without config should use defaults")
	}
	if len(s.DefaultAppearance()) == 0 {
		t.Error("DefaultAppearance should include built-in channels")
	}
}
