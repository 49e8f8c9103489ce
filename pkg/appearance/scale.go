package appearance

import (
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/netview/pkg/network"
)

// Range presets.
const (
	PresetViridis    = "viridis"
	PresetGreys      = "greys"
	PresetCategory10 = "category10"
	PresetSmall      = "small"
	PresetMedium     = "medium"
	PresetLarge      = "large"
)

var presets = map[string][]string{
	PresetViridis:    {"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
	PresetGreys:      {"#f0f0f0", "#636363"},
	PresetCategory10: {"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf"},
	PresetSmall:      {"1", "4"},
	PresetMedium:     {"4", "12"},
	PresetLarge:      {"8", "24"},
}

// Preset returns the values of a named range preset.
func Preset(name string) ([]string, bool) {
	r, ok := presets[name]
	return slices.Clone(r), ok
}

// PresetNames returns the presets usable for a channel kind.
func PresetNames(kind string) []string {
	switch kind {
	case KindColor:
		return []string{PresetViridis, PresetGreys, PresetCategory10}
	case KindSize:
		return []string{PresetSmall, PresetMedium, PresetLarge}
	}
	return nil
}

// Scale maps field values to channel values.
type Scale struct {
	Channel Channel
	enc     Encoding
	rng     []string
}

// NewScale builds the scale for one channel. Explicit Range values win over
// RangePreset; without either a default preset for the channel kind is used.
func NewScale(ch Channel, e Encoding) Scale {
	return Scale{Channel: ch, enc: e, rng: resolveRange(ch, e)}
}

func resolveRange(ch Channel, e Encoding) []string {
	if len(e.Range) > 0 {
		return e.Range
	}
	if r, ok := presets[e.RangePreset]; ok {
		return r
	}
	switch ch.Kind() {
	case KindColor:
		if e.Domain != nil && e.Domain.Numeric != nil {
			return presets[PresetViridis]
		}
		return presets[PresetCategory10]
	case KindSize:
		return presets[PresetMedium]
	}
	return nil
}

// Field returns the qualified field the scale reads, or "" when unbound.
func (s Scale) Field() string { return s.enc.Field }

// Visible reports whether the channel is drawn.
func (s Scale) Visible() bool { return s.enc.IsVisible() }

// position locates v in the domain: t in [0, 1] for numeric domains (values
// outside the domain are clamped), the category index for categorical ones.
func (s Scale) position(v any) (t float64, idx int, ok bool) {
	d := s.enc.Domain
	if d == nil {
		return 0, 0, false
	}
	if d.Numeric != nil {
		x, ok := network.ToFloat(v)
		if !ok {
			return 0, 0, false
		}
		span := d.Numeric.Max - d.Numeric.Min
		if span <= 0 {
			return 0.5, 0, true
		}
		return math.Max(0, math.Min(1, (x-d.Numeric.Min)/span)), -1, true
	}
	i := slices.Index(d.Groups, network.ToString(v))
	if i < 0 {
		return 0, 0, false
	}
	return 0, i, true
}

// Color maps a value to a hex color. Missing values and values outside a
// categorical domain map to the unknown color.
func (s Scale) Color(v any, present bool) string {
	if s.enc.Field == "" {
		if s.enc.Unknown != "" || len(s.rng) == 0 {
			return s.enc.Unknown
		}
		return s.rng[0]
	}
	if !present || len(s.rng) == 0 {
		return s.enc.Unknown
	}
	t, idx, ok := s.position(v)
	if !ok {
		return s.enc.Unknown
	}
	if idx >= 0 {
		return s.rng[idx%len(s.rng)]
	}
	return interpolate(s.rng, t, s.enc.Unknown)
}

func interpolate(stops []string, t float64, fallback string) string {
	if len(stops) == 1 {
		return stops[0]
	}
	seg := t * float64(len(stops)-1)
	i := int(math.Floor(seg))
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	if seg == float64(i) {
		return stops[i]
	}
	a, errA := colorful.Hex(stops[i])
	b, errB := colorful.Hex(stops[i+1])
	if errA != nil || errB != nil {
		return fallback
	}
	return a.BlendLab(b, seg-float64(i)).Clamped().Hex()
}

// Size maps a value to a size. Missing values map to the unknown size; an
// unbound channel uses its fixed Size, falling back to the unknown size.
func (s Scale) Size(v any, present bool) float64 {
	unknown, ok := network.ToFloat(s.enc.Unknown)
	if !ok {
		unknown = 1
	}
	if s.enc.Field == "" {
		if s.enc.Size != nil {
			return *s.enc.Size
		}
		return unknown
	}
	lo, hi, ok := s.sizeRange()
	if !present || !ok {
		return unknown
	}
	t, idx, ok := s.position(v)
	if !ok {
		return unknown
	}
	if idx >= 0 {
		n := len(s.enc.Domain.Groups)
		if n == 1 {
			t = 0.5
		} else {
			t = float64(idx) / float64(n-1)
		}
	}
	return lo + t*(hi-lo)
}

func (s Scale) sizeRange() (lo, hi float64, ok bool) {
	if len(s.rng) == 0 {
		return 0, 0, false
	}
	lo, okLo := network.ToFloat(s.rng[0])
	hi, okHi := network.ToFloat(s.rng[len(s.rng)-1])
	return lo, hi, okLo && okHi
}

// Text maps a value to a label or image reference.
func (s Scale) Text(v any, present bool) string {
	if s.enc.Field == "" || !present {
		return s.enc.Unknown
	}
	return network.ToString(v)
}
