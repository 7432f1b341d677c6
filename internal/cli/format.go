// Package cli provides formatting and rendering helpers for terminal output.
package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FormatTokens formats a token count with human-readable suffixes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M"
func FormatTokens(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatNumber adds comma separators to an integer.
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatCost formats a USD cost value with precision scaled to magnitude.
func FormatCost(cost float64) string {
	switch {
	case cost >= 100:
		return fmt.Sprintf("$%.0f", cost)
	case cost >= 10:
		return fmt.Sprintf("$%.1f", cost)
	default:
		return fmt.Sprintf("$%.2f", cost)
	}
}

// FormatRate formats a tokens-per-minute burn rate.
func FormatRate(tokensPerMinute float64) string {
	if tokensPerMinute <= 0 {
		return "—"
	}
	return FormatTokens(int64(tokensPerMinute)) + "/min"
}

// FormatPercent formats a 0-1 fraction as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDurationUntil formats the time from now until t as "1h 23m".
func FormatDurationUntil(t, now time.Time) string {
	d := t.Sub(now)
	if d <= 0 {
		return "now"
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// ProjectDisplayName shortens a project path for table display: the last
// path component, or the raw value when it has no separators.
func ProjectDisplayName(projectPath string) string {
	if projectPath == "" {
		return "unknown"
	}
	base := filepath.Base(projectPath)
	if base == "." || base == string(filepath.Separator) {
		return projectPath
	}
	return base
}

// Truncate shortens s to max runes, with an ellipsis when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
