package fields

import (
	"reflect"
	"testing"

	"github.com/matzehuels/netview/pkg/network"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name        string
		vals        []any
		wantNumeric bool
	}{
		{"AllNumbers", []any{1.0, 2.0, 3.0}, true},
		{"NumericStrings", []any{"1", "2.5", "3"}, true},
		{"Majority", []any{1.0, 2.0, 3.0, "n/a"}, true},
		{"Tie", []any{1.0, 2.0, "a", "b"}, false},
		{"TooFewSamples", []any{1.0, 2.0}, false},
		{"Labels", []any{"red", "green", "red"}, false},
		{"Empty", nil, false},
	}

	c := Classifier{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Infer(tt.vals)
			if _, isNum := got.(Numeric); isNum != tt.wantNumeric {
				t.Errorf("Infer(%v) = %T, want numeric=%v", tt.vals, got, tt.wantNumeric)
			}
		})
	}
}

func TestNumericDomainClampsOutliers(t *testing.T) {
	vals := []any{1.0, 2.0, 3.0, 4.0, 5.0, 6.0, 7.0, 8.0, 1000.0}
	d := NumericDomain(vals)
	if d.Min != 1 {
		t.Errorf("Min = %v, want 1", d.Min)
	}
	if d.Max >= 1000 || d.Max < 8 {
		t.Errorf("Max = %v, want outlier clamped to the upper fence", d.Max)
	}
}

func TestNumericDomainDegenerate(t *testing.T) {
	tests := []struct {
		name string
		vals []any
		want Domain
	}{
		{"Constant", []any{5.0, 5.0, 5.0}, Domain{Min: 4, Max: 6}},
		{"NoNumbers", []any{"a"}, Domain{Min: 0, Max: 1}},
		{"Small", []any{2.0, 4.0}, Domain{Min: 2, Max: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NumericDomain(tt.vals); got != tt.want {
				t.Errorf("NumericDomain() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCategoricalGroups(t *testing.T) {
	got := CategoricalGroups([]any{"b", "a", 3.0, "b", "3"})
	want := []string{"3", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CategoricalGroups() = %v, want %v", got, want)
	}
}

func TestClassify(t *testing.T) {
	ds := network.NewDataset(
		[]network.Fields{
			{"id": "a", "w": 1.0, "group": "x", "x": 10.0},
			{"id": "b", "w": 5.0, "group": "y"},
			{"id": "c", "w": 9.0, "group": "x", "note": nil},
		},
		[]network.Fields{
			{"source": "a", "target": "b", "weight": "0.5"},
			{"source": "b", "target": "c", "weight": "1.5"},
			{"source": "c", "target": "a", "weight": 2.0},
		},
	)

	fs := Classifier{}.Classify(ds)
	var keys []string
	for _, f := range fs {
		keys = append(keys, f.Key())
	}
	want := []string{"node.group", "node.id", "node.note", "node.w", "edge.weight"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}

	set := NewSet(fs)
	w, ok := set.Lookup("node.w")
	if !ok || !w.IsNumeric() {
		t.Fatalf("node.w = %+v, want numeric", w)
	}
	if d, _ := w.Domain(); d != (Domain{Min: 1, Max: 9}) {
		t.Errorf("node.w domain = %+v", d)
	}
	if g, _ := set.Lookup("node.group"); g.IsNumeric() || !reflect.DeepEqual(g.Groups(), []string{"x", "y"}) {
		t.Errorf("node.group = %+v", g)
	}
	if ew, _ := set.Lookup("edge.weight"); !ew.IsNumeric() {
		t.Errorf("edge.weight should be numeric, got %T", ew.Kind)
	}
	if set.Has("edge.source") || set.Has("node.x") {
		t.Error("reserved keys must not be classified")
	}
	if len(set.Owned(OwnerEdge)) != 1 {
		t.Errorf("Owned(edge) = %v", set.Owned(OwnerEdge))
	}
}

func TestClassifyOverrides(t *testing.T) {
	ds := network.NewDataset([]network.Fields{
		{"year": 1999.0}, {"year": 2004.0}, {"year": 2010.0}, {"code": "1"},
	}, nil)

	c := Classifier{Overrides: map[string]string{
		"node.year": KindCategorical,
		"node.code": KindNumeric,
	}}
	set := c.ClassifySet(ds)

	if y, _ := set.Lookup("node.year"); y.IsNumeric() {
		t.Error("override should force node.year categorical")
	}
	code, _ := set.Lookup("node.code")
	if !code.IsNumeric() {
		t.Error("override should force node.code numeric despite too few samples")
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		key       string
		wantOwner Owner
		wantName  string
		wantOK    bool
	}{
		{"node.w", OwnerNode, "w", true},
		{"edge.weight", OwnerEdge, "weight", true},
		{"node.a.b", OwnerNode, "a.b", true},
		{"w", OwnerNode, "", false},
		{"graph.w", OwnerNode, "", false},
		{"node.", OwnerNode, "", false},
	}
	for _, tt := range tests {
		owner, name, ok := ParseKey(tt.key)
		if owner != tt.wantOwner || name != tt.wantName || ok != tt.wantOK {
			t.Errorf("ParseKey(%q) = (%v, %q, %v)", tt.key, owner, name, ok)
		}
	}
}
