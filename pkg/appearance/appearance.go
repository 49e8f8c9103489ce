// Package appearance maps data fields to visual channels.
//
// An [Appearance] holds one [Encoding] per [Channel]. An encoding binds a
// qualified field ("node.group") to a range (a named preset or explicit
// values) through a domain. A nil domain is inferred from the field the first
// time the field is bound, so snapshots may store encodings without domains.
// [NewScale] turns an encoding into a value mapper for renderers.
package appearance

import (
	"maps"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/fields"
)

// Channel is a visual property of nodes or edges.
type Channel string

// Channels.
const (
	NodeColor Channel = "nodeColor"
	NodeSize  Channel = "nodeSize"
	NodeLabel Channel = "nodeLabel"
	NodeImage Channel = "nodeImage"
	EdgeColor Channel = "edgeColor"
	EdgeWidth Channel = "edgeWidth"
	EdgeLabel Channel = "edgeLabel"
)

// Channels lists every channel in display order.
var Channels = []Channel{NodeColor, NodeSize, NodeLabel, NodeImage, EdgeColor, EdgeWidth, EdgeLabel}

// Channel kinds.
const (
	KindColor = "color"
	KindSize  = "size"
	KindText  = "text"
)

// Owner returns whether the channel applies to nodes or edges.
func (c Channel) Owner() fields.Owner {
	switch c {
	case EdgeColor, EdgeWidth, EdgeLabel:
		return fields.OwnerEdge
	}
	return fields.OwnerNode
}

// Kind returns the kind of value the channel renders.
func (c Channel) Kind() string {
	switch c {
	case NodeColor, EdgeColor:
		return KindColor
	case NodeSize, EdgeWidth:
		return KindSize
	}
	return KindText
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	for _, ch := range Channels {
		if ch == c {
			return true
		}
	}
	return false
}

// Domain is the input domain of an encoding: a numeric interval or an ordered
// list of categories.
type Domain struct {
	Numeric *fields.Domain `json:"numeric,omitempty" bson:"numeric,omitempty"`
	Groups  []string       `json:"groups,omitempty" bson:"groups,omitempty"`
}

// Clone returns a deep copy.
func (d *Domain) Clone() *Domain {
	if d == nil {
		return nil
	}
	out := &Domain{}
	if d.Numeric != nil {
		n := *d.Numeric
		out.Numeric = &n
	}
	if d.Groups != nil {
		out.Groups = append([]string{}, d.Groups...)
	}
	return out
}

// DomainOf returns the inferred domain of a classified field.
func DomainOf(f fields.Field) *Domain {
	if d, ok := f.Domain(); ok {
		return &Domain{Numeric: &d}
	}
	return &Domain{Groups: append([]string{}, f.Groups()...)}
}

// Encoding is the configuration of one channel.
type Encoding struct {
	Field       string   `json:"field,omitempty" bson:"field,omitempty"`
	Domain      *Domain  `json:"domain,omitempty" bson:"domain,omitempty"`
	RangePreset string   `json:"range_preset,omitempty" bson:"range_preset,omitempty"`
	Range       []string `json:"range,omitempty" bson:"range,omitempty"`
	Unknown     string   `json:"unknown,omitempty" bson:"unknown,omitempty"`
	Visible     *bool    `json:"visible,omitempty" bson:"visible,omitempty"`
	Size        *float64 `json:"size,omitempty" bson:"size,omitempty"`
}

// Clone returns a deep copy.
func (e Encoding) Clone() Encoding {
	out := e
	out.Domain = e.Domain.Clone()
	if e.Range != nil {
		out.Range = append([]string{}, e.Range...)
	}
	if e.Visible != nil {
		v := *e.Visible
		out.Visible = &v
	}
	if e.Size != nil {
		s := *e.Size
		out.Size = &s
	}
	return out
}

// IsVisible reports whether the channel is drawn. Unset means visible.
func (e Encoding) IsVisible() bool { return e.Visible == nil || *e.Visible }

// Appearance maps channels to encodings.
type Appearance map[Channel]Encoding

// Default returns the built-in appearance.
func Default() Appearance {
	hidden := false
	return Appearance{
		NodeColor: {RangePreset: PresetCategory10, Unknown: "#9e9e9e"},
		NodeSize:  {RangePreset: PresetMedium, Unknown: "6"},
		NodeLabel: {Visible: &hidden},
		NodeImage: {Visible: &hidden},
		EdgeColor: {Unknown: "#c8c8c8"},
		EdgeWidth: {RangePreset: PresetSmall, Unknown: "1"},
		EdgeLabel: {Visible: &hidden},
	}
}

// Clone returns a deep copy. A nil appearance clones to nil.
func (a Appearance) Clone() Appearance {
	if a == nil {
		return nil
	}
	out := make(Appearance, len(a))
	for ch, e := range a {
		out[ch] = e.Clone()
	}
	return out
}

// Merge returns a copy of a with every channel of other applied on top.
func (a Appearance) Merge(other Appearance) Appearance {
	out := a.Clone()
	if out == nil {
		out = Appearance{}
	}
	maps.Copy(out, other.Clone())
	return out
}

// Bind sets the field of a channel. Binding a different field discards the
// old domain; a missing domain is then inferred from set. An empty field
// unbinds the channel.
func (a Appearance) Bind(ch Channel, field string, set *fields.Set) error {
	if !ch.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "unknown channel %q", ch)
	}
	e := a[ch]
	if field == "" {
		e.Field, e.Domain = "", nil
		a[ch] = e
		return nil
	}

	f, ok := set.Lookup(field)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown field %q", field)
	}
	if f.Owner != ch.Owner() {
		return errors.New(errors.ErrCodeInvalidInput, "channel %s cannot encode %s field %s", ch, f.Owner, field)
	}
	if e.Field != field {
		e.Domain = nil
	}
	e.Field = field
	if e.Domain == nil {
		e.Domain = DomainOf(f)
	}
	a[ch] = e
	return nil
}

// EnsureDomains infers the domain of every bound channel that lacks one.
// Channels bound to fields missing from set are left untouched.
func (a Appearance) EnsureDomains(set *fields.Set) {
	for ch, e := range a {
		if e.Field == "" || e.Domain != nil {
			continue
		}
		if f, ok := set.Lookup(e.Field); ok {
			e.Domain = DomainOf(f)
			a[ch] = e
		}
	}
}
