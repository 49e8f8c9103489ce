package filter

import (
	"github.com/matzehuels/netview/pkg/fields"
	"github.com/matzehuels/netview/pkg/network"
)

// Result is the output of the pipeline.
type Result struct {
	Nodes []*network.Node
	Edges []*network.Edge

	// Skipped counts filters that were inert: unknown field or no shape.
	Skipped int
}

// Apply runs filters in order over the dataset. set decides which fields
// exist; filters on other fields are skipped.
//
// Invariant: every edge of Result.Edges has both endpoints in Result.Nodes.
func Apply(ds *network.Dataset, set *fields.Set, filters []Filter) Result {
	if ds == nil {
		return Result{}
	}
	res := Result{
		Nodes: append([]*network.Node(nil), ds.Nodes...),
		Edges: append([]*network.Edge(nil), ds.Edges...),
	}

	for _, f := range filters {
		if !set.Has(f.Field) {
			res.Skipped++
			continue
		}
		owner, name, _ := fields.ParseKey(f.Field)
		if _, ok := f.Match(nil, false); !ok {
			res.Skipped++
			continue
		}

		if owner == fields.OwnerNode {
			res.Nodes = filterNodes(res.Nodes, f, name)
			res.Edges = network.Induced(network.NodeSet(res.Nodes), res.Edges)
			continue
		}
		res.Edges = filterEdges(res.Edges, f, name)
	}
	return res
}

func filterNodes(nodes []*network.Node, f Filter, name string) []*network.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		v, present := n.Value(name)
		if ok, _ := f.Match(v, present); ok {
			out = append(out, n)
		}
	}
	return out
}

func filterEdges(edges []*network.Edge, f Filter, name string) []*network.Edge {
	out := edges[:0:0]
	for _, e := range edges {
		v, present := e.Value(name)
		if ok, _ := f.Match(v, present); ok {
			out = append(out, e)
		}
	}
	return out
}
