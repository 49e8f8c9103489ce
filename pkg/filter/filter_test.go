package filter

import (
	"testing"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/network"
)

func TestValidate(t *testing.T) {
	_, set := setup([]network.Fields{{"w": 1.0, "c": "a"}, {"w": 2.0, "c": "b"}, {"w": 3.0, "c": "a"}}, nil)

	tests := []struct {
		name    string
		f       Filter
		wantErr bool
	}{
		{"Numeric", Filter{Field: "node.w", Operator: OpGT, Value: 1.0}, false},
		{"NumericString", Filter{Field: "node.w", Operator: OpLE, Value: "2"}, false},
		{"EqualityOnCategorical", Filter{Field: "node.c", Operator: OpEQ, Value: "a"}, false},
		{"Groups", Filter{Field: "node.c", Groups: []string{"a"}}, false},

		{"UnknownField", Filter{Field: "node.z", Operator: OpGT, Value: 1.0}, true},
		{"BadOperator", Filter{Field: "node.w", Operator: "~", Value: 1.0}, true},
		{"OrderOnCategorical", Filter{Field: "node.c", Operator: OpGT, Value: "a"}, true},
		{"NonNumericValue", Filter{Field: "node.w", Operator: OpGT, Value: "x"}, true},
		{"EmptyGroups", Filter{Field: "node.c", Groups: []string{}}, true},
		{"NoShape", Filter{Field: "node.c"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.f, set)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFilter) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFilter)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		f    Filter
		want string
	}{
		{Filter{Field: "node.w", Operator: OpGE, Value: 5.0}, "node.w >= 5"},
		{Filter{Field: "node.c", Groups: []string{"a", "b"}}, "node.c in [a, b]"},
		{Filter{Field: "node.c"}, "node.c"},
	}
	for _, tt := range tests {
		if got := tt.f.Describe(); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}

func TestCloneAllIsDeep(t *testing.T) {
	orig := []Filter{{Field: "node.c", Groups: []string{"a"}}}
	cp := CloneAll(orig)
	cp[0].Groups[0] = "z"
	cp[0].Field = "node.d"
	if orig[0].Groups[0] != "a" || orig[0].Field != "node.c" {
		t.Errorf("CloneAll aliased the original: %+v", orig[0])
	}
	if CloneAll(nil) != nil {
		t.Error("CloneAll(nil) should be nil")
	}
}
