package visibility

import (
	"math/rand"
	"testing"

	"github.com/matzehuels/netview/pkg/network"
	"github.com/matzehuels/netview/pkg/viewport"
)

func placed(ds *network.Dataset, coords ...[2]float64) {
	for i, c := range coords {
		ds.Nodes[i].Place(c[0], c[1])
	}
}

func TestCullScenario(t *testing.T) {
	ds := network.NewDataset(
		[]network.Fields{{"id": "in"}, {"id": "out"}},
		[]network.Fields{{"source": "in", "target": "out"}},
	)
	placed(ds, [2]float64{50, 50}, [2]float64{500, 500})

	area := viewport.Rect{Top: 0, Left: 0, Bottom: 100, Right: 100}
	res := Cull(ds.Nodes, ds.Edges, area, DefaultPolicy())

	if len(res.Nodes) != 1 || res.Nodes[0].Index != 0 {
		t.Fatalf("vnodes = %v, want only node 0", res.Nodes)
	}
	if len(res.Edges) != 1 {
		t.Errorf("edge with one visible endpoint should be visible, got %d edges", len(res.Edges))
	}
	if !res.ShowImages || res.EdgesSuppressed {
		t.Errorf("small view should not throttle: %+v", res)
	}
}

func TestCullStrictBoundary(t *testing.T) {
	ds := network.NewDataset([]network.Fields{{}, {}, {}}, nil)
	placed(ds, [2]float64{0, 50}, [2]float64{100, 100}, [2]float64{99.9, 0.1})

	res := Cull(ds.Nodes, nil, viewport.Rect{Bottom: 100, Right: 100}, DefaultPolicy())
	if len(res.Nodes) != 1 || res.Nodes[0].Index != 2 {
		t.Errorf("vnodes = %v, want only node 2", res.Nodes)
	}
}

func TestCullSkipsUnplaced(t *testing.T) {
	ds := network.NewDataset([]network.Fields{{}, {}}, nil)
	ds.Nodes[1].Place(10, 10)

	res := Cull(ds.Nodes, nil, viewport.Rect{Top: -100, Left: -100, Bottom: 100, Right: 100}, DefaultPolicy())
	if len(res.Nodes) != 1 || res.Nodes[0].Index != 1 {
		t.Errorf("vnodes = %v, want only the placed node", res.Nodes)
	}
}

func TestCullThresholds(t *testing.T) {
	nodes := make([]network.Fields, 5)
	for i := range nodes {
		nodes[i] = network.Fields{}
	}
	var edges []network.Fields
	for i := 0; i < 4; i++ {
		edges = append(edges, network.Fields{"source": float64(i), "target": float64(i + 1)})
	}
	ds := network.NewDataset(nodes, edges)
	for i, n := range ds.Nodes {
		n.Place(float64(i*10+5), 5)
	}
	area := viewport.Rect{Bottom: 100, Right: 100}

	tests := []struct {
		name           string
		policy         Policy
		wantImages     bool
		wantSuppressed bool
	}{
		{"BelowBoth", Policy{ShowImageThreshold: 6, ShowEdgeThreshold: 4}, true, false},
		{"ImagesAtThreshold", Policy{ShowImageThreshold: 5, ShowEdgeThreshold: 4}, false, false},
		{"EdgesAboveThreshold", Policy{ShowImageThreshold: 6, ShowEdgeThreshold: 3}, true, true},
		{"AlwaysShow", Policy{ShowImageThreshold: 1, ShowEdgeThreshold: 1, AlwaysShowImages: true, AlwaysShowEdges: true}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Cull(ds.Nodes, ds.Edges, area, tt.policy)
			if len(res.Nodes) != 5 {
				t.Fatalf("vnodes = %d, want 5", len(res.Nodes))
			}
			if res.ShowImages != tt.wantImages {
				t.Errorf("ShowImages = %v, want %v", res.ShowImages, tt.wantImages)
			}
			if res.EdgesSuppressed != tt.wantSuppressed {
				t.Errorf("EdgesSuppressed = %v, want %v", res.EdgesSuppressed, tt.wantSuppressed)
			}
			if tt.wantSuppressed && len(res.Edges) != 0 {
				t.Errorf("suppressed edges still returned: %d", len(res.Edges))
			}
			if !tt.wantSuppressed && len(res.Edges) != 4 {
				t.Errorf("vedges = %d, want 4", len(res.Edges))
			}
		})
	}
}

func TestCullMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	const n = 80
	nodes := make([]network.Fields, n)
	for i := range nodes {
		nodes[i] = network.Fields{}
	}
	edges := make([]network.Fields, 200)
	for i := range edges {
		edges[i] = network.Fields{"source": float64(r.Intn(n)), "target": float64(r.Intn(n))}
	}
	ds := network.NewDataset(nodes, edges)
	for _, nd := range ds.Nodes {
		nd.Place(r.Float64()*400-200, r.Float64()*400-200)
	}

	// Filter to an arbitrary induced subgraph first.
	var fnodes []*network.Node
	for _, nd := range ds.Nodes {
		if nd.Index%3 != 0 {
			fnodes = append(fnodes, nd)
		}
	}
	fedges := network.Induced(network.NodeSet(fnodes), ds.Edges)
	fset := network.NodeSet(fnodes)
	eset := make(map[int]bool)
	for _, e := range fedges {
		eset[e.Index] = true
	}

	for trial := 0; trial < 20; trial++ {
		x, y := r.Float64()*300-150, r.Float64()*300-150
		area := viewport.Rect{Top: y, Left: x, Bottom: y + 120, Right: x + 120}
		res := Cull(fnodes, fedges, area, DefaultPolicy())

		vset := network.NodeSet(res.Nodes)
		for _, nd := range res.Nodes {
			if !fset.Has(nd.Index) {
				t.Fatalf("vnode %d not in fnodes", nd.Index)
			}
		}
		for _, e := range res.Edges {
			if !eset[e.Index] {
				t.Fatalf("vedge %d not in fedges", e.Index)
			}
			if !vset.Has(e.SourceIndex) && !vset.Has(e.TargetIndex) {
				t.Fatalf("vedge %d has no visible endpoint", e.Index)
			}
		}
	}
}
