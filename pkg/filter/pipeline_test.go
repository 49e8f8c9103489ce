package filter

import (
	"math/rand"
	"testing"

	"github.com/matzehuels/netview/pkg/fields"
	"github.com/matzehuels/netview/pkg/network"
)

func setup(nodes, edges []network.Fields) (*network.Dataset, *fields.Set) {
	ds := network.NewDataset(nodes, edges)
	return ds, fields.Classifier{}.ClassifySet(ds)
}

func indices(nodes []*network.Node) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = n.Index
	}
	return out
}

func TestApplyNumericFilter(t *testing.T) {
	ds, set := setup([]network.Fields{{"w": 1.0}, {"w": 5.0}, {"w": 9.0}}, nil)

	res := Apply(ds, set, []Filter{{Field: "node.w", Operator: OpGE, Value: 5.0}})
	got := indices(res.Nodes)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("fnodes = %v, want [1 2]", got)
	}
}

func TestApplyInducedSubgraph(t *testing.T) {
	ds, set := setup(
		[]network.Fields{{"id": 0.0}, {"id": 1.0}, {"id": 2.0}},
		[]network.Fields{{"source": 0.0, "target": 1.0}, {"source": 1.0, "target": 2.0}},
	)

	res := Apply(ds, set, []Filter{{Field: "node.id", Operator: OpEQ, Value: 1.0}})
	if len(res.Nodes) != 1 || res.Nodes[0].Index != 1 {
		t.Fatalf("fnodes = %v, want [1]", indices(res.Nodes))
	}
	if len(res.Edges) != 0 {
		t.Errorf("fedges = %d edges, want 0", len(res.Edges))
	}
}

func TestApplyOperators(t *testing.T) {
	ds, set := setup([]network.Fields{{"w": 1.0}, {"w": "5"}, {"w": 9.0}, {"other": 1.0}}, nil)

	tests := []struct {
		op    Operator
		value any
		want  []int
	}{
		{OpGT, 5.0, []int{2}},
		{OpGE, "5", []int{1, 2}},
		{OpLT, 5.0, []int{0}},
		{OpLE, 5.0, []int{0, 1}},
		{OpEQ, 5.0, []int{1}},
		{OpEQ, "5.0", []int{1}},
		{OpNE, 5.0, []int{0, 2, 3}},
		{OpGT, "abc", []int{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			res := Apply(ds, set, []Filter{{Field: "node.w", Operator: tt.op, Value: tt.value}})
			got := indices(res.Nodes)
			if len(got) != len(tt.want) {
				t.Fatalf("%s %v = %v, want %v", tt.op, tt.value, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("%s %v = %v, want %v", tt.op, tt.value, got, tt.want)
				}
			}
		})
	}
}

func TestApplyGroups(t *testing.T) {
	ds, set := setup(
		[]network.Fields{{"c": "red"}, {"c": "blue"}, {"c": "red"}, {}},
		[]network.Fields{{"source": 0.0, "target": 2.0}, {"source": 0.0, "target": 1.0}},
	)

	res := Apply(ds, set, []Filter{{Field: "node.c", Groups: []string{"red"}}})
	if got := indices(res.Nodes); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("fnodes = %v, want [0 2]", got)
	}
	if len(res.Edges) != 1 || res.Edges[0].Index != 0 {
		t.Errorf("fedges = %v, want edge 0", res.Edges)
	}

	res = Apply(ds, set, []Filter{{Field: "node.c", Groups: []string{}}})
	if len(res.Nodes) != 0 || len(res.Edges) != 0 {
		t.Errorf("empty allow-list should remove everything, got %d nodes", len(res.Nodes))
	}
}

func TestApplyEdgeFilterKeepsNodes(t *testing.T) {
	ds, set := setup(
		[]network.Fields{{"id": "a"}, {"id": "b"}, {"id": "c"}},
		[]network.Fields{
			{"source": "a", "target": "b", "kind": "x"},
			{"source": "b", "target": "c", "kind": "y"},
		},
	)

	res := Apply(ds, set, []Filter{{Field: "edge.kind", Groups: []string{"y"}}})
	if len(res.Nodes) != 3 {
		t.Errorf("edge filter changed nodes: %v", indices(res.Nodes))
	}
	if len(res.Edges) != 1 || res.Edges[0].Index != 1 {
		t.Errorf("fedges = %v", res.Edges)
	}
}

func TestApplyComposesNodeFilters(t *testing.T) {
	ds, set := setup(
		[]network.Fields{
			{"w": 1.0, "c": "a"}, {"w": 6.0, "c": "a"}, {"w": 7.0, "c": "b"}, {"w": 8.0, "c": "a"},
		},
		[]network.Fields{
			{"source": 0.0, "target": 1.0}, {"source": 1.0, "target": 2.0},
			{"source": 1.0, "target": 3.0}, {"source": 2.0, "target": 3.0},
		},
	)

	res := Apply(ds, set, []Filter{
		{Field: "node.w", Operator: OpGT, Value: 5.0},
		{Field: "node.c", Groups: []string{"a"}},
	})
	if got := indices(res.Nodes); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("fnodes = %v, want [1 3]", got)
	}
	if len(res.Edges) != 1 || res.Edges[0].Index != 2 {
		t.Errorf("fedges = %v, want edge 2", res.Edges)
	}
}

func TestApplySkipsStaleAndMalformed(t *testing.T) {
	ds, set := setup([]network.Fields{{"w": 1.0}, {"w": 2.0}, {"w": 3.0}}, nil)

	res := Apply(ds, set, []Filter{
		{Field: "node.gone", Operator: OpGT, Value: 1.0},
		{Field: "node.w"},
		{Field: "node.w", Operator: "=~", Value: 1.0},
		{Field: "bogus"},
	})
	if len(res.Nodes) != 3 {
		t.Errorf("inert filters removed nodes: %v", indices(res.Nodes))
	}
	if res.Skipped != 4 {
		t.Errorf("Skipped = %d, want 4", res.Skipped)
	}

	if res := Apply(nil, set, nil); res.Nodes != nil {
		t.Error("nil dataset should give empty result")
	}
}

func TestApplyTopologyConsistency(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	const n = 60

	nodes := make([]network.Fields, n)
	for i := range nodes {
		nodes[i] = network.Fields{"w": float64(r.Intn(10)), "c": []string{"a", "b", "c"}[r.Intn(3)]}
	}
	edges := make([]network.Fields, 150)
	for i := range edges {
		edges[i] = network.Fields{"source": float64(r.Intn(n)), "target": float64(r.Intn(n)), "s": float64(r.Intn(5))}
	}
	ds, set := setup(nodes, edges)

	candidates := []Filter{
		{Field: "node.w", Operator: OpGE, Value: 3.0},
		{Field: "node.w", Operator: OpLT, Value: 8.0},
		{Field: "node.c", Groups: []string{"a", "c"}},
		{Field: "edge.s", Operator: OpNE, Value: 2.0},
		{Field: "node.w", Operator: OpNE, Value: 5.0},
	}
	for trial := 0; trial < 50; trial++ {
		var fs []Filter
		for _, c := range candidates {
			if r.Intn(2) == 0 {
				fs = append(fs, c)
			}
		}
		r.Shuffle(len(fs), func(i, j int) { fs[i], fs[j] = fs[j], fs[i] })

		res := Apply(ds, set, fs)
		in := network.NodeSet(res.Nodes)
		for _, e := range res.Edges {
			if !in.Has(e.SourceIndex) || !in.Has(e.TargetIndex) {
				t.Fatalf("trial %d: edge %d has an endpoint outside fnodes", trial, e.Index)
			}
		}
	}
}

func TestApplyDoesNotAliasDataset(t *testing.T) {
	ds, set := setup([]network.Fields{{"w": 1.0}, {"w": 2.0}}, nil)
	res := Apply(ds, set, []Filter{{Field: "node.w", Operator: OpGT, Value: 1.0}})
	if len(ds.Nodes) != 2 || ds.Nodes[0].Index != 0 {
		t.Error("Apply must not mutate the dataset's node slice")
	}
	if len(res.Nodes) != 1 {
		t.Errorf("fnodes = %v", indices(res.Nodes))
	}
}
