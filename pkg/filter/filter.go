// Package filter implements the ordered filter pipeline over a network.
//
// A [Filter] targets one qualified field ("node.weight", "edge.kind") and
// comes in two shapes: a comparison (Operator + Value) or a categorical
// allow-list (Groups). Filters are applied in list order by [Apply]. Every
// node filter shrinks the node set and immediately recomputes the edge set as
// the subgraph induced by the surviving nodes, so later filters always see a
// topologically consistent pair. Edge filters shrink the edge set only.
//
// Evaluation is defensive: a filter naming a field the dataset does not have,
// or lacking both an operator and groups, is skipped rather than reported.
// Callers that want to reject bad filters up front use [Validate].
package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/fields"
	"github.com/matzehuels/netview/pkg/network"
)

// Operator is a comparison operator.
type Operator string

// Supported operators.
const (
	OpGT Operator = ">"
	OpGE Operator = ">="
	OpLT Operator = "<"
	OpLE Operator = "<="
	OpEQ Operator = "=="
	OpNE Operator = "!="
)

// Operators lists every supported operator in display order.
var Operators = []Operator{OpGT, OpGE, OpLT, OpLE, OpEQ, OpNE}

// Valid reports whether op is supported.
func (op Operator) Valid() bool { return slices.Contains(Operators, op) }

// Filter is one step of the pipeline.
type Filter struct {
	Field    string   `json:"field" bson:"field"`
	Operator Operator `json:"operator,omitempty" bson:"operator,omitempty"`
	Value    any      `json:"value,omitempty" bson:"value,omitempty"`
	Groups   []string `json:"groups,omitempty" bson:"groups,omitempty"`
}

// IsComparison reports whether the filter has the operator/value shape.
func (f Filter) IsComparison() bool { return f.Operator != "" }

// IsGroups reports whether the filter has the allow-list shape.
func (f Filter) IsGroups() bool { return f.Operator == "" && f.Groups != nil }

// Describe renders the filter for headers and logs.
func (f Filter) Describe() string {
	switch {
	case f.IsComparison():
		return fmt.Sprintf("%s %s %s", f.Field, f.Operator, network.ToString(f.Value))
	case f.IsGroups():
		return fmt.Sprintf("%s in [%s]", f.Field, strings.Join(f.Groups, ", "))
	}
	return f.Field
}

// Clone returns a deep copy of the filter.
func (f Filter) Clone() Filter {
	out := f
	if f.Groups != nil {
		out.Groups = append([]string{}, f.Groups...)
	}
	return out
}

// CloneAll deep-copies a filter list. A nil list stays nil.
func CloneAll(fs []Filter) []Filter {
	if fs == nil {
		return nil
	}
	out := make([]Filter, len(fs))
	for i, f := range fs {
		out[i] = f.Clone()
	}
	return out
}

// Match evaluates the filter's predicate against a single value.
// ok is false when the filter has neither shape.
func (f Filter) Match(v any, present bool) (match, ok bool) {
	switch {
	case f.IsComparison():
		if !f.Operator.Valid() {
			return false, false
		}
		if !present {
			v = nil
		}
		return compare(f.Operator, v, f.Value), true
	case f.IsGroups():
		if !present {
			return false, true
		}
		return slices.Contains(f.Groups, network.ToString(v)), true
	}
	return false, false
}

func compare(op Operator, a, b any) bool {
	switch op {
	case OpEQ:
		return network.LooseEqual(a, b)
	case OpNE:
		return !network.LooseEqual(a, b)
	}
	x, okA := network.ToFloat(a)
	y, okB := network.ToFloat(b)
	if !okA || !okB {
		return false
	}
	switch op {
	case OpGT:
		return x > y
	case OpGE:
		return x >= y
	case OpLT:
		return x < y
	case OpLE:
		return x <= y
	}
	return false
}

// Validate checks a filter against the classified fields. UI layers call it
// before committing a filter; [Apply] never does.
func Validate(f Filter, set *fields.Set) error {
	fd, ok := set.Lookup(f.Field)
	if !ok {
		return errors.New(errors.ErrCodeInvalidFilter, "unknown field %q", f.Field)
	}
	switch {
	case f.IsComparison():
		if !f.Operator.Valid() {
			return errors.New(errors.ErrCodeInvalidFilter, "unknown operator %q", f.Operator)
		}
		if f.Operator != OpEQ && f.Operator != OpNE {
			if !fd.IsNumeric() {
				return errors.New(errors.ErrCodeInvalidFilter, "operator %s needs a numeric field, %s is categorical", f.Operator, f.Field)
			}
			if _, ok := network.ToFloat(f.Value); !ok {
				return errors.New(errors.ErrCodeInvalidFilter, "value %v is not a number", f.Value)
			}
		}
	case f.IsGroups():
		if len(f.Groups) == 0 {
			return errors.New(errors.ErrCodeInvalidFilter, "filter on %s selects no groups", f.Field)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFilter, "filter on %s has neither operator nor groups", f.Field)
	}
	return nil
}
