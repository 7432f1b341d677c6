package cli

import (
	"testing"
	"time"
)

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_000, "1.0K"},
		{1_234, "1.2K"},
		{44_000, "44.0K"},
		{1_234_567, "1.2M"},
		{2_500_000_000, "2.5B"},
		{-1_234, "-1.2K"},
	}

	for _, tt := range tests {
		if got := FormatTokens(tt.n); got != tt.want {
			t.Errorf("FormatTokens(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_000, "1,000"},
		{44_000, "44,000"},
		{1_234_567, "1,234,567"},
		{-1_234, "-1,234"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatCost(t *testing.T) {
	tests := []struct {
		cost float64
		want string
	}{
		{0, "$0.00"},
		{0.42, "$0.42"},
		{9.99, "$9.99"},
		{12.3, "$12.3"},
		{150, "$150"},
	}

	for _, tt := range tests {
		if got := FormatCost(tt.cost); got != tt.want {
			t.Errorf("FormatCost(%v) = %q, want %q", tt.cost, got, tt.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	if got := FormatRate(0); got != "—" {
		t.Errorf("FormatRate(0) = %q", got)
	}
	if got := FormatRate(250); got != "250/min" {
		t.Errorf("FormatRate(250) = %q", got)
	}
	if got := FormatRate(1500); got != "1.5K/min" {
		t.Errorf("FormatRate(1500) = %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.254); got != "25.4%" {
		t.Errorf("FormatPercent(0.254) = %q", got)
	}
	if got := FormatPercent(1.5); got != "150.0%" {
		t.Errorf("FormatPercent(1.5) = %q", got)
	}
}

func TestFormatDurationUntil(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		until time.Time
		want  string
	}{
		{now.Add(90 * time.Minute), "1h 30m"},
		{now.Add(45 * time.Minute), "45m"},
		{now.Add(5 * time.Hour), "5h 0m"},
		{now, "now"},
		{now.Add(-time.Hour), "now"},
	}

	for _, tt := range tests {
		if got := FormatDurationUntil(tt.until, now); got != tt.want {
			t.Errorf("FormatDurationUntil(+%v) = %q, want %q", tt.until.Sub(now), got, tt.want)
		}
	}
}

func TestProjectDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "unknown"},
		{"my-proj", "my-proj"},
		{"/home/u/projects/gauge", "gauge"},
	}

	for _, tt := range tests {
		if got := ProjectDisplayName(tt.in); got != tt.want {
			t.Errorf("ProjectDisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"much too long", 8, "much to…"},
		{"héllo wörld", 6, "héllo…"},
		{"ab", 1, "a"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
