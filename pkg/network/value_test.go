package network

import (
	"encoding/json"
	"math"
	"testing"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{1.5, 1.5, true},
		{int64(7), 7, true},
		{int32(-2), -2, true},
		{json.Number("12"), 12, true},
		{" 3.25 ", 3.25, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"abc", 0, false},
		{true, 0, false},
		{nil, 0, false},
		{math.NaN(), 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		got, ok := ToFloat(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ToFloat(%#v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{3.0, "3"},
		{2.5, "2.5"},
		{int64(4), "4"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := ToString(tt.in); got != tt.want {
			t.Errorf("ToString(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLooseEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{5.0, "5", true},
		{"5.0", 5.0, true},
		{int64(3), 3.0, true},
		{"red", "red", true},
		{"red", "blue", false},
		{1.0, 2.0, false},
		{nil, nil, true},
		{nil, 0.0, false},
		{true, "true", true},
	}
	for _, tt := range tests {
		if got := LooseEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("LooseEqual(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
