package fields

import (
	"sort"
	"strings"
)

// Owner tells whether a field belongs to nodes or edges.
type Owner int

const (
	OwnerNode Owner = iota
	OwnerEdge
)

// String returns "node" or "edge".
func (o Owner) String() string {
	if o == OwnerEdge {
		return "edge"
	}
	return "node"
}

// Kind names used for declared overrides.
const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
)

// Domain is a closed numeric interval.
type Domain struct {
	Min float64 `json:"min" bson:"min"`
	Max float64 `json:"max" bson:"max"`
}

// Span returns Max-Min.
func (d Domain) Span() float64 { return d.Max - d.Min }

// Kind is either [Numeric] or [Categorical].
type Kind interface {
	// Name returns KindNumeric or KindCategorical.
	Name() string
	sealed()
}

// Numeric marks a field whose values are mostly numbers.
type Numeric struct {
	Domain Domain
}

// Name implements Kind.
func (Numeric) Name() string { return KindNumeric }
func (Numeric) sealed()      {}

// Categorical marks a field whose values are treated as labels.
type Categorical struct {
	Groups []string
}

// Name implements Kind.
func (Categorical) Name() string { return KindCategorical }
func (Categorical) sealed()      {}

// Field describes one data field of the network.
type Field struct {
	Name  string
	Owner Owner
	Kind  Kind
}

// Key returns the qualified name, e.g. "node.weight".
func (f Field) Key() string { return Key(f.Owner, f.Name) }

// IsNumeric reports whether the field was classified numeric.
func (f Field) IsNumeric() bool {
	_, ok := f.Kind.(Numeric)
	return ok
}

// Domain returns the numeric domain, or false for categorical fields.
func (f Field) Domain() (Domain, bool) {
	n, ok := f.Kind.(Numeric)
	return n.Domain, ok
}

// Groups returns the categorical groups, or nil for numeric fields.
func (f Field) Groups() []string {
	if c, ok := f.Kind.(Categorical); ok {
		return c.Groups
	}
	return nil
}

// Key builds a qualified field name.
func Key(owner Owner, name string) string { return owner.String() + "." + name }

// ParseKey splits a qualified field name into owner and name.
func ParseKey(key string) (Owner, string, bool) {
	prefix, name, ok := strings.Cut(key, ".")
	if !ok || name == "" {
		return OwnerNode, "", false
	}
	switch prefix {
	case "node":
		return OwnerNode, name, true
	case "edge":
		return OwnerEdge, name, true
	}
	return OwnerNode, "", false
}

// =============================================================================
// Set
// =============================================================================

// Set is an ordered, keyed collection of fields.
type Set struct {
	fields []Field
	byKey  map[string]int
}

// NewSet indexes fields by qualified name. Later duplicates are ignored.
func NewSet(fields []Field) *Set {
	s := &Set{byKey: make(map[string]int, len(fields))}
	for _, f := range fields {
		if _, dup := s.byKey[f.Key()]; dup {
			continue
		}
		s.byKey[f.Key()] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s
}

// Lookup finds a field by qualified name.
func (s *Set) Lookup(key string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	i, ok := s.byKey[key]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Has reports whether the qualified name exists.
func (s *Set) Has(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// All returns the fields in classification order.
func (s *Set) All() []Field {
	if s == nil {
		return nil
	}
	return append([]Field(nil), s.fields...)
}

// Owned returns the fields belonging to owner.
func (s *Set) Owned(owner Owner) []Field {
	var out []Field
	for _, f := range s.All() {
		if f.Owner == owner {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of fields.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// sortFields orders node fields before edge fields, then by name.
func sortFields(fs []Field) {
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].Owner != fs[j].Owner {
			return fs[i].Owner < fs[j].Owner
		}
		return fs[i].Name < fs[j].Name
	})
}
