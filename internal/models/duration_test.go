package models

import (
	"testing"
	"time"
)

// TestNormalizeDurationShorthand covers the rewrites generators most often
// need: clock strings, unit suffixes and bare minute counts.
func TestNormalizeDurationShorthand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3:00", "PT3M"},
		{"0:45", "PT45S"},
		{"1:30", "PT1M30S"},
		{"03:05", "PT3M5S"},
		{"20:00", "PT20M"},
		{"0:00", "PT0S"},
		{"20s", "PT20S"},
		{"1h", "PT1H"},
		{"5 m", "PT5M"},
		{" 10M ", "PT10M"},
		{"020s", "PT20S"},
		{"12", "PT12M"},
		{"007", "PT7M"},
	}
	for _, tt := range tests {
		got := NormalizeDuration(tt.in)
		if got != tt.want {
			t.Errorf("NormalizeDuration(%q) = %v, want %q", tt.in, got, tt.want)
		}
	}
}

// TestNormalizeDurationUnchanged verifies values the heuristics do not
// recognize are returned as-is for validation to reject.
func TestNormalizeDurationUnchanged(t *testing.T) {
	for _, in := range []string{"", "0", "000", "five minutes", "5:60", "100:00", "1h30m", "3 min", "20M30S"} {
		if got := NormalizeDuration(in); got != in {
			t.Errorf("NormalizeDuration(%q) = %v, want unchanged", in, got)
		}
	}
}

// TestNormalizeDurationPrefix verifies anything carrying the PT prefix, in
// any case, is returned untouched including its original spelling.
func TestNormalizeDurationPrefix(t *testing.T) {
	for _, in := range []string{"pt5m", " PT5M", "Pt", "PTbogus"} {
		if got := NormalizeDuration(in); got != in {
			t.Errorf("NormalizeDuration(%q) = %v, want unchanged", in, got)
		}
	}
}

// TestNormalizeDurationIdempotent verifies canonical durations are fixed
// points.
func TestNormalizeDurationIdempotent(t *testing.T) {
	for _, in := range []string{"PT20S", "PT5M", "PT1H30M", "PT1H2M3S", "PT0S", "PT"} {
		if !DurationPattern.MatchString(in) {
			t.Fatalf("%q does not match the canonical grammar", in)
		}
		if got := NormalizeDuration(in); got != in {
			t.Errorf("NormalizeDuration(%q) = %v, want %q", in, got, in)
		}
		if again := NormalizeDuration(NormalizeDuration(in)); again != in {
			t.Errorf("NormalizeDuration twice (%q) = %v", in, again)
		}
	}
}

// TestNormalizeDurationNonString verifies non-string values pass through.
func TestNormalizeDurationNonString(t *testing.T) {
	obj := map[string]any{"a": 1.0}
	arr := []any{"3:00"}
	inputs := []any{nil, 12.0, 3, true, obj, arr}
	for _, in := range inputs {
		got := NormalizeDuration(in)
		switch v := got.(type) {
		case map[string]any:
			if len(v) != 1 || v["a"] != 1.0 {
				t.Errorf("map changed: %v", v)
			}
		case []any:
			if len(v) != 1 || v[0] != "3:00" {
				t.Errorf("slice changed: %v", v)
			}
		default:
			if got != in {
				t.Errorf("NormalizeDuration(%#v) = %#v", in, got)
			}
		}
	}
}

// TestDurationStd verifies conversion to time.Duration.
func TestDurationStd(t *testing.T) {
	tests := []struct {
		in   Duration
		want time.Duration
	}{
		{"PT20S", 20 * time.Second},
		{"PT1H30M", 90 * time.Minute},
		{"PT1H2M3S", time.Hour + 2*time.Minute + 3*time.Second},
		{"PT", 0},
		{"5m", 0},
	}
	for _, tt := range tests {
		if got := tt.in.Std(); got != tt.want {
			t.Errorf("%q.Std() = %v, want %v", tt.in, got, tt.want)
		}
	}
}
