package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/netview/pkg/network"
	"github.com/matzehuels/netview/pkg/session"

	"github.com/matzehuels/netview/pkg/render"
	"github.com/matzehuels/netview/pkg/snapshot"
	"github.com/matzehuels/netview/pkg/viewport"
	"github.com/matzehuels/netview/pkg/viewstate"
)

func TestDrawCanvas(t *testing.T) {
	sc := render.Scene{
		Transform: viewport.Identity,
		Nodes: []render.Node{
			{Index: 0, X: 5, Y: 10, Color: "#1f77b4"},
			{Index: 1, X: 95, Y: 10, Color: "#ff7f0e", Selected: true},
			{Index: 2, X: 5000, Y: 10, Color: "#000000"},
		},
		Edges: []render.Edge{{Source: "0", Target: "1", X1: 5, Y1: 10, X2: 95, Y2: 10}},
	}

	out := drawCanvas(sc, 12, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("drawCanvas() rows = %d, want 3", len(lines))
	}
	if !strings.Contains(lines[0], "●") || !strings.Contains(lines[0], "◉") {
		t.Errorf("first row should hold both nodes: %q", lines[0])
	}
	if strings.Count(lines[0], "·") != 8 {
		t.Errorf("edge should span the 8 cells between its nodes: %q", lines[0])
	}
	if strings.TrimSpace(lines[1]) != "" || strings.TrimSpace(lines[2]) != "" {
		t.Errorf("other rows should be empty: %q", lines[1:])
	}
}

func TestDrawCanvasLabels(t *testing.T) {
	sc := render.Scene{
		Transform: viewport.Transform{X: 0, Y: 0, K: 2},
		Nodes:     []render.Node{{X: 0, Y: 0, Label: "hub"}},
	}
	out := drawCanvas(sc, 10, 1)
	if !strings.Contains(out, "h") || !strings.Contains(out, "b") {
		t.Errorf("label missing: %q", out)
	}

	sc.Transform = viewport.Transform{}
	if got := drawCanvas(sc, 10, 1); !strings.Contains(got, "●") {
		t.Errorf("invalid transform should fall back to identity: %q", got)
	}
	if got := drawCanvas(sc, 0, 5); got != "" {
		t.Errorf("empty grid = %q, want empty", got)
	}
}

func TestStatusLine(t *testing.T) {
	h := viewstate.Header{
		SessionName:   "karate",
		Snapshot:      snapshot.None,
		SnapshotName:  "defaults",
		Nodes:         34,
		FilteredNodes: 20,
		VisibleNodes:  10,
		Edges:         78,
		FilteredEdges: 40,
		VisibleEdges:  12,
	}
	out := statusLine(h)
	for _, want := range []string{"karate", "defaults", iconSaved, "nodes 10/20/34", "edges 12/40/78", "active"} {
		if !strings.Contains(out, want) {
			t.Errorf("statusLine() missing %q: %q", want, out)
		}
	}

	h.Dirty = true
	h.Running = true
	out = statusLine(h)
	if !strings.Contains(out, iconDirty) || !strings.Contains(out, "running") {
		t.Errorf("statusLine() should show dirty and running: %q", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("←↑↓→ pan", 4); got != "←↑↓→" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Errorf("truncate() with no width = %q", got)
	}
}

func TestStepSnapshotRefusesDirtyView(t *testing.T) {
	ctx := context.Background()
	sess := session.New("pair",
		[]network.Fields{{"id": "a"}, {"id": "b"}},
		[]network.Fields{{"source": "a", "target": "b"}},
	)
	v, err := viewstate.New(sess, snapshot.None, viewstate.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	for _, name := range []string{"one", "two"} {
		if _, err := v.Save(ctx, name); err != nil {
			t.Fatal(err)
		}
	}
	if err := v.ApplySnapshot(0); err != nil {
		t.Fatal(err)
	}
	if err := v.PanBy(10, 0); err != nil {
		t.Fatal(err)
	}

	m := newExploreModel(ctx, v)
	defer m.unsubscribe()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	if got := next.(exploreModel).message; !strings.Contains(got, "save (s) or discard (d)") {
		t.Errorf("message = %q", got)
	}
	if v.ActiveSnapshot() != 0 || !v.Dirty() {
		t.Errorf("dirty view switched snapshots: active=%d dirty=%v", v.ActiveSnapshot(), v.Dirty())
	}

	if err := v.Discard(); err != nil {
		t.Fatal(err)
	}
	if err := m.stepSnapshot(true); err != nil {
		t.Fatal(err)
	}
	if v.ActiveSnapshot() != 1 {
		t.Errorf("clean view should step to snapshot 1, active = %d", v.ActiveSnapshot())
	}
}
