package fields

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/matzehuels/netview/pkg/network"
)

// DefaultMinSamples is the minimum number of values a field needs before it
// can be inferred numeric.
const DefaultMinSamples = 3

// Classifier assigns a [Kind] to each field of a dataset.
type Classifier struct {
	// Overrides maps qualified field names to KindNumeric or KindCategorical.
	Overrides map[string]string

	// MinSamples overrides DefaultMinSamples when positive.
	MinSamples int
}

// Classify inspects every non-reserved field of the dataset's nodes and
// edges. The result is sorted node fields first, then by name.
func (c Classifier) Classify(ds *network.Dataset) []Field {
	if ds == nil {
		return nil
	}

	nodeVals := map[string][]any{}
	for _, n := range ds.Nodes {
		collect(nodeVals, n.Fields)
	}
	edgeVals := map[string][]any{}
	for _, e := range ds.Edges {
		collect(edgeVals, e.Fields)
	}

	out := make([]Field, 0, len(nodeVals)+len(edgeVals))
	for name, vals := range nodeVals {
		out = append(out, c.field(OwnerNode, name, vals))
	}
	for name, vals := range edgeVals {
		out = append(out, c.field(OwnerEdge, name, vals))
	}
	sortFields(out)
	return out
}

// ClassifySet is Classify wrapped in a [Set].
func (c Classifier) ClassifySet(ds *network.Dataset) *Set {
	return NewSet(c.Classify(ds))
}

func (c Classifier) field(owner Owner, name string, vals []any) Field {
	f := Field{Name: name, Owner: owner}
	switch c.Overrides[Key(owner, name)] {
	case KindNumeric:
		f.Kind = Numeric{Domain: NumericDomain(vals)}
	case KindCategorical:
		f.Kind = Categorical{Groups: CategoricalGroups(vals)}
	default:
		f.Kind = c.Infer(vals)
	}
	return f
}

// collect appends the non-nil values of rec to vals, keyed by field name.
// Fields that only ever hold nil are still registered.
func collect(vals map[string][]any, rec network.Fields) {
	for k, v := range rec {
		if network.IsReserved(k) {
			continue
		}
		if _, ok := vals[k]; !ok {
			vals[k] = nil
		}
		if v != nil {
			vals[k] = append(vals[k], v)
		}
	}
}

// Infer classifies a list of values.
func (c Classifier) Infer(vals []any) Kind {
	minSamples := c.MinSamples
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}

	numeric := 0
	for _, v := range vals {
		if _, ok := network.ToFloat(v); ok {
			numeric++
		}
	}
	if len(vals) >= minSamples && numeric*2 > len(vals) {
		return Numeric{Domain: NumericDomain(vals)}
	}
	return Categorical{Groups: CategoricalGroups(vals)}
}

// NumericDomain computes the robust domain of the numeric values in vals:
// the observed range clamped to the Tukey fences. A degenerate domain is
// widened by one unit each side; no numeric values yield [0, 1].
func NumericDomain(vals []any) Domain {
	data := make(stats.Float64Data, 0, len(vals))
	for _, v := range vals {
		if f, ok := network.ToFloat(v); ok {
			data = append(data, f)
		}
	}
	if len(data) == 0 {
		return Domain{Min: 0, Max: 1}
	}

	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)
	if len(data) >= 4 {
		if q, err := stats.Quartile(data); err == nil {
			iqr := q.Q3 - q.Q1
			lo = math.Max(lo, q.Q1-1.5*iqr)
			hi = math.Min(hi, q.Q3+1.5*iqr)
		}
	}
	if hi <= lo {
		return Domain{Min: lo - 1, Max: lo + 1}
	}
	return Domain{Min: lo, Max: hi}
}

// CategoricalGroups returns the distinct string forms of vals, sorted.
func CategoricalGroups(vals []any) []string {
	seen := make(map[string]bool, len(vals))
	groups := make([]string, 0)
	for _, v := range vals {
		s := network.ToString(v)
		if seen[s] {
			continue
		}
		seen[s] = true
		groups = append(groups, s)
	}
	sort.Strings(groups)
	return groups
}
