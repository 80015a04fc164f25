package settings

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseAge(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Age
	}{
		{"string_seconds", "3600", NewAge(3600)},
		{"string_zero", "0", NewAge(0)},
		{"string_outside_vocabulary", "42", NewAge(42)},
		{"default_keyword", "default", Default},
		{"empty_string", "", Default},
		{"negative_string", "-5", Default},
		{"padded_string", " 300", Default},
		{"decimal_string", "1.5", Default},
		{"word", "forever", Default},
		{"string_above_int32", "3000000000", Default},
		{"string_max_int32", "2147483647", NewAge(math.MaxInt32)},
		{"string_overflow", "99999999999999999999", Default},
		{"int", 900, NewAge(900)},
		{"int64_above_int32", int64(3000000000), Default},
		{"uint64_above_int32", uint64(3000000000), Default},
		{"negative_int", -1, Default},
		{"int64", int64(120), NewAge(120)},
		{"int64_overflow", int64(math.MaxInt64), Default},
		{"uint64", uint64(7200), NewAge(7200)},
		{"json_float", float64(1800), NewAge(1800)},
		{"fractional_float", 1.25, Default},
		{"nan", math.NaN(), Default},
		{"json_number", json.Number("43200"), NewAge(43200)},
		{"nil", nil, Default},
		{"true", true, Default},
		{"false", false, Default},
		{"list", []any{}, Default},
		{"map", map[string]any{"a": 1}, Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAge(tt.raw)
			if got != tt.want {
				t.Errorf("ParseAge(%#v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseGlobalAge(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Age
	}{
		{"string", "120", NewAge(120)},
		{"default", "default", Default},
		{"above_int32", "3000000000", Default},
		{"raw_int", 3600, Default},
		{"raw_float", float64(3600), Default},
		{"nil", nil, Default},
		{"list", []any{"3600"}, Default},
		{"bool", true, Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseGlobalAge(tt.raw)
			if got != tt.want {
				t.Errorf("ParseGlobalAge(%#v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAge(t *testing.T) {
	if !Default.IsDefault() {
		t.Error("Default should report IsDefault")
	}
	if (Age{}) != Default {
		t.Error("zero Age should equal Default")
	}
	if NewAge(-10) != Default {
		t.Error("negative age should be Default")
	}

	a := NewAge(300)
	if a.IsDefault() {
		t.Error("NewAge(300) should not be default")
	}
	if a.Seconds() != 300 {
		t.Errorf("Seconds() = %d, want 300", a.Seconds())
	}
	if a.String() != "300" {
		t.Errorf("String() = %q, want %q", a.String(), "300")
	}
	if Default.String() != "default" {
		t.Errorf("Default.String() = %q, want %q", Default.String(), "default")
	}
	if got := Default.Or(DefaultMaxAge); got != DefaultMaxAge {
		t.Errorf("Default.Or() = %d, want %d", got, DefaultMaxAge)
	}
	if got := NewAge(0).Or(DefaultMaxAge); got != 0 {
		t.Errorf("NewAge(0).Or() = %d, want 0", got)
	}
}

func TestIsChoice(t *testing.T) {
	if !NewAge(604800).IsChoice() {
		t.Error("one week should be a choice")
	}
	if !Default.IsChoice() {
		t.Error("default should be a choice")
	}
	if NewAge(42).IsChoice() {
		t.Error("42 should not be a choice")
	}
	if len(Choices) != 11 {
		t.Errorf("len(Choices) = %d, want 11", len(Choices))
	}
}
