package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors.
var (
	ColorText   = lipgloss.Color("#FFFCF0")
	ColorMuted  = lipgloss.Color("#6F6E69")
	ColorBorder = lipgloss.Color("#282726")
	ColorAccent = lipgloss.Color("#3AA99F")
	ColorGreen  = lipgloss.Color("#879A39")
	ColorOrange = lipgloss.Color("#DA702C")
	ColorRed    = lipgloss.Color("#D14D41")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorText)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	valueStyle  = lipgloss.NewStyle().Foreground(ColorText)
	borderStyle = lipgloss.NewStyle().Foreground(ColorBorder)
	okStyle     = lipgloss.NewStyle().Foreground(ColorGreen)
	warnStyle   = lipgloss.NewStyle().Foreground(ColorOrange)
	critStyle   = lipgloss.NewStyle().Foreground(ColorRed)
)

// RenderTitle renders a bordered title bar.
func RenderTitle(title string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 2)
	return box.Render(titleStyle.Render(title))
}

// RenderKV renders aligned label/value lines for status-style output.
func RenderKV(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}

	var b strings.Builder
	for _, p := range pairs {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", width+2, p[0])))
		b.WriteString(valueStyle.Render(p[1]))
		b.WriteString("\n")
	}
	return b.String()
}

// Table is a bordered text table for command output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTable renders the table. The first column is left-aligned, all
// others right-aligned.
func RenderTable(t Table) string {
	if len(t.Headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	rule := func(left, mid, right string) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return borderStyle.Render(left+strings.Join(parts, mid)+right) + "\n"
	}

	renderRow := func(cells []string, style lipgloss.Style) string {
		var b strings.Builder
		b.WriteString(borderStyle.Render("│"))
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := w - lipgloss.Width(cell)
			if i == 0 {
				b.WriteString(style.Render(" " + cell + strings.Repeat(" ", pad) + " "))
			} else {
				b.WriteString(style.Render(" " + strings.Repeat(" ", pad) + cell + " "))
			}
			b.WriteString(borderStyle.Render("│"))
		}
		b.WriteString("\n")
		return b.String()
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	b.WriteString(rule("╭", "┬", "╮"))
	b.WriteString(renderRow(t.Headers, headerStyle))
	b.WriteString(rule("├", "┼", "┤"))
	for _, row := range t.Rows {
		b.WriteString(renderRow(row, valueStyle))
	}
	b.WriteString(rule("╰", "┴", "╯"))
	return b.String()
}

// RenderGauge renders a usage bar colored by consumption level:
// green below 70%, orange below 90%, red beyond.
func RenderGauge(fraction float64, width int) string {
	if width < 4 {
		width = 4
	}
	clamped := fraction
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 1 {
		clamped = 1
	}

	filled := int(clamped * float64(width))
	style := okStyle
	switch {
	case fraction >= 0.9:
		style = critStyle
	case fraction >= 0.7:
		style = warnStyle
	}

	bar := style.Render(strings.Repeat("█", filled)) +
		labelStyle.Render(strings.Repeat("░", width-filled))
	return bar + " " + style.Render(FormatPercent(fraction))
}
