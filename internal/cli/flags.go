package cli

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/netview/pkg/appearance"
	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/filter"
)

// operatorsByLength lists operators so that two-character ones match first.
var operatorsByLength = []filter.Operator{
	filter.OpGE, filter.OpLE, filter.OpEQ, filter.OpNE, filter.OpGT, filter.OpLT,
}

// parseFilter parses a filter expression. Comparisons are written
// "field<op>value" ("node.w>=3"); group allow-lists "field:g1,g2"
// ("node.group:a,b"). Values that parse as numbers compare numerically.
func parseFilter(expr string) (filter.Filter, error) {
	expr = strings.TrimSpace(expr)
	for _, op := range operatorsByLength {
		field, value, ok := strings.Cut(expr, string(op))
		if !ok {
			continue
		}
		field, value = strings.TrimSpace(field), strings.TrimSpace(value)
		if field == "" || value == "" {
			break
		}
		return filter.Filter{Field: field, Operator: op, Value: parseValue(value)}, nil
	}

	if field, list, ok := strings.Cut(expr, ":"); ok && strings.TrimSpace(field) != "" {
		groups := []string{}
		for _, g := range strings.Split(list, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
		return filter.Filter{Field: strings.TrimSpace(field), Groups: groups}, nil
	}
	return filter.Filter{}, errors.New(errors.ErrCodeInvalidInput, "cannot parse filter %q (want field<op>value or field:g1,g2)", expr)
}

func parseValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return strings.Trim(s, `"'`)
}

// parseBinding parses "channel=field". An empty field unbinds the channel.
func parseBinding(expr string) (appearance.Channel, string, error) {
	name, field, ok := strings.Cut(expr, "=")
	ch := appearance.Channel(strings.TrimSpace(name))
	if !ok || !ch.Valid() {
		return "", "", errors.New(errors.ErrCodeInvalidInput, "cannot parse binding %q (want channel=field, channels: %v)", expr, appearance.Channels)
	}
	return ch, strings.TrimSpace(field), nil
}

// parseRange parses "channel=preset", e.g. "nodeColor=greys". Only color and
// size channels take presets.
func parseRange(expr string) (appearance.Channel, string, error) {
	name, preset, ok := strings.Cut(expr, "=")
	ch := appearance.Channel(strings.TrimSpace(name))
	preset = strings.TrimSpace(preset)
	if !ok || !ch.Valid() {
		return "", "", errors.New(errors.ErrCodeInvalidInput, "cannot parse range %q (want channel=preset)", expr)
	}
	names := appearance.PresetNames(ch.Kind())
	if !slices.Contains(names, preset) {
		if len(names) == 0 {
			return "", "", errors.New(errors.ErrCodeInvalidInput, "channel %s takes no range preset", ch)
		}
		return "", "", errors.New(errors.ErrCodeInvalidInput, "unknown preset %q for %s (one of %s)", preset, ch, strings.Join(names, ", "))
	}
	return ch, preset, nil
}
