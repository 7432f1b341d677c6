// Package tui implements the live "watch" view.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolle/ccgauge/internal/cli"
	"github.com/mattsolle/ccgauge/internal/pipeline"
)

const sessionRows = 8

var (
	appTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(cli.ColorText)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(cli.ColorAccent)
	faintStyle    = lipgloss.NewStyle().Foreground(cli.ColorMuted)
	activeStyle   = lipgloss.NewStyle().Foreground(cli.ColorGreen)
)

type refreshMsg *pipeline.Result

type tickMsg time.Time

// App is the bubbletea model for the watch view.
type App struct {
	opts     pipeline.Options
	interval time.Duration

	result     *pipeline.Result
	refreshing bool
	width      int
	gauge      progress.Model

	lastRefresh time.Time
}

// NewApp builds the watch view with the given load options.
func NewApp(opts pipeline.Options, interval time.Duration) App {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	g := progress.New(
		progress.WithGradient(string(cli.ColorGreen), string(cli.ColorRed)),
		progress.WithoutPercentage(),
	)
	return App{opts: opts, interval: interval, gauge: g}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.refreshCmd(), a.tickCmd())
}

func (a App) refreshCmd() tea.Cmd {
	opts := a.opts
	return func() tea.Msg {
		opts.Now = time.Now()
		return refreshMsg(pipeline.Load(opts))
	}
}

func (a App) tickCmd() tea.Cmd {
	return tea.Tick(a.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.gauge.Width = min(msg.Width-24, 50)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return a, tea.Quit
		case "r":
			if !a.refreshing {
				a.refreshing = true
				return a, a.refreshCmd()
			}
		case "h":
			if a.opts.Policy == pipeline.PolicyRolling {
				a.opts.Policy = pipeline.PolicyHourAligned
			} else {
				a.opts.Policy = pipeline.PolicyRolling
			}
			a.refreshing = true
			return a, a.refreshCmd()
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{a.tickCmd()}
		if !a.refreshing {
			a.refreshing = true
			cmds = append(cmds, a.refreshCmd())
		}
		return a, tea.Batch(cmds...)

	case refreshMsg:
		a.result = msg
		a.refreshing = false
		a.lastRefresh = time.Now()
		return a, nil
	}

	return a, nil
}

// View implements tea.Model.
func (a App) View() string {
	var b strings.Builder

	b.WriteString("\n  " + appTitleStyle.Render("ccgauge watch") + "  ")
	if a.refreshing {
		b.WriteString(faintStyle.Render("refreshing…"))
	} else if !a.lastRefresh.IsZero() {
		b.WriteString(faintStyle.Render("updated " + a.lastRefresh.Format("15:04:05")))
	}
	b.WriteString("\n\n")

	if a.result == nil {
		b.WriteString(faintStyle.Render("  loading usage logs…") + "\n")
		return b.String()
	}

	now := time.Now()
	b.WriteString(a.viewActive(now))
	b.WriteString(a.viewSessions())
	b.WriteString("\n  " + faintStyle.Render("q quit · r refresh · h toggle hourly windows") + "\n")
	return b.String()
}

func (a App) viewActive(now time.Time) string {
	var b strings.Builder
	b.WriteString("  " + sectionStyle.Render("ACTIVE SESSION") + "\n")

	active := a.result.Active
	if active == nil {
		b.WriteString(faintStyle.Render("  no active session") + "\n\n")
		return b.String()
	}

	b.WriteString("  " + a.gauge.ViewAs(active.UsagePercent()) +
		"  " + cli.FormatTokens(active.TokenCount) + " / " + cli.FormatTokens(active.TokenLimit) + "\n")

	rate := "—"
	if active.BurnRate != nil {
		rate = cli.FormatRate(active.BurnRate.TokensPerMinute)
	}
	line := fmt.Sprintf("  burn %s · resets in %s", rate, cli.FormatDurationUntil(active.EndTime, now))
	if t, ok := active.PredictedExhaustion(now); ok && t.Before(active.EndTime) {
		line += " · limit at " + t.Local().Format("15:04")
	}
	b.WriteString(faintStyle.Render(line) + "\n\n")
	return b.String()
}

func (a App) viewSessions() string {
	var b strings.Builder
	b.WriteString("  " + sectionStyle.Render("RECENT SESSIONS") + "\n")

	sessions := a.result.Sessions
	if len(sessions) == 0 {
		b.WriteString(faintStyle.Render("  none") + "\n")
		return b.String()
	}
	if len(sessions) > sessionRows {
		sessions = sessions[:sessionRows]
	}

	for _, s := range sessions {
		marker := " "
		style := faintStyle
		if s.IsActive {
			marker = "▸"
			style = activeStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("  %s %s  %8s tokens  %7s",
			marker,
			s.StartTime.Local().Format("Jan 02 15:04"),
			cli.FormatTokens(s.TokenCount),
			cli.FormatCost(s.CostUSD),
		)) + "\n")
	}
	return b.String()
}
