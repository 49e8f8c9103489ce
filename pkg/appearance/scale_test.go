package appearance

import (
	"testing"

	"github.com/matzehuels/netview/pkg/fields"
)

func numeric(min, max float64) *Domain {
	return &Domain{Numeric: &fields.Domain{Min: min, Max: max}}
}

func TestColorNumeric(t *testing.T) {
	s := NewScale(NodeColor, Encoding{
		Field:   "node.w",
		Domain:  numeric(0, 10),
		Range:   []string{"#000000", "#ffffff"},
		Unknown: "#ff0000",
	})

	tests := []struct {
		v       any
		present bool
		want    string
	}{
		{0.0, true, "#000000"},
		{10.0, true, "#ffffff"},
		{-5.0, true, "#000000"},
		{50.0, true, "#ffffff"},
		{"abc", true, "#ff0000"},
		{nil, false, "#ff0000"},
	}
	for _, tt := range tests {
		if got := s.Color(tt.v, tt.present); got != tt.want {
			t.Errorf("Color(%v) = %s, want %s", tt.v, got, tt.want)
		}
	}

	mid := s.Color(5.0, true)
	if mid == "#000000" || mid == "#ffffff" {
		t.Errorf("midpoint color = %s, want a blend", mid)
	}
}

func TestColorCategorical(t *testing.T) {
	s := NewScale(NodeColor, Encoding{
		Field:   "node.g",
		Domain:  &Domain{Groups: []string{"a", "b", "c"}},
		Range:   []string{"#111111", "#222222"},
		Unknown: "#999999",
	})
	tests := []struct {
		v    any
		want string
	}{
		{"a", "#111111"},
		{"b", "#222222"},
		{"c", "#111111"},
		{"z", "#999999"},
	}
	for _, tt := range tests {
		if got := s.Color(tt.v, true); got != tt.want {
			t.Errorf("Color(%v) = %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestColorUnbound(t *testing.T) {
	if got := NewScale(NodeColor, Encoding{Unknown: "#abcdef"}).Color("x", true); got != "#abcdef" {
		t.Errorf("unbound color = %s", got)
	}
	if got := NewScale(NodeColor, Encoding{RangePreset: PresetCategory10}).Color("x", true); got != "#1f77b4" {
		t.Errorf("unbound color without unknown = %s", got)
	}
}

func TestSize(t *testing.T) {
	s := NewScale(NodeSize, Encoding{Field: "node.w", Domain: numeric(0, 10), RangePreset: PresetMedium, Unknown: "2"})
	tests := []struct {
		v       any
		present bool
		want    float64
	}{
		{0.0, true, 4},
		{5.0, true, 8},
		{10.0, true, 12},
		{nil, false, 2},
	}
	for _, tt := range tests {
		if got := s.Size(tt.v, tt.present); got != tt.want {
			t.Errorf("Size(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}

	cat := NewScale(EdgeWidth, Encoding{Field: "edge.k", Domain: &Domain{Groups: []string{"a", "b", "c"}}, Range: []string{"0", "10"}})
	if got := cat.Size("b", true); got != 5 {
		t.Errorf("categorical size = %v, want 5", got)
	}

	fixed := 3.5
	if got := NewScale(NodeSize, Encoding{Size: &fixed}).Size(1.0, true); got != 3.5 {
		t.Errorf("unbound size = %v, want 3.5", got)
	}
}

func TestText(t *testing.T) {
	s := NewScale(NodeLabel, Encoding{Field: "node.name", Unknown: "?"})
	if got := s.Text(12.0, true); got != "12" {
		t.Errorf("Text = %q", got)
	}
	if got := s.Text(nil, false); got != "?" {
		t.Errorf("Text(missing) = %q", got)
	}
}

func TestPresets(t *testing.T) {
	for _, kind := range []string{KindColor, KindSize} {
		for _, name := range PresetNames(kind) {
			if r, ok := Preset(name); !ok || len(r) < 2 {
				t.Errorf("Preset(%q) = %v, %v", name, r, ok)
			}
		}
	}
	r, _ := Preset(PresetSmall)
	r[0] = "changed"
	if again, _ := Preset(PresetSmall); again[0] == "changed" {
		t.Error("Preset returned the shared slice")
	}
}
