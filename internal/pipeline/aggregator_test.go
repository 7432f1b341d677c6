package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/mattsolle/ccgauge/internal/model"
)

func TestAggregateProjects(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	entries := []model.UsageEntry{
		entryAt(day1, 300, "alpha"),
		entryAt(day1.Add(time.Hour), 200, "alpha"),
		entryAt(day2, 100, "alpha"),
		entryAt(day1, 300, "beta"),
		entryAt(day2, 100, ""),
	}

	projects := AggregateProjects(entries)
	if len(projects) != 3 {
		t.Fatalf("got %d projects, want 3", len(projects))
	}

	alpha := projects[0]
	if alpha.ProjectPath != "alpha" {
		t.Fatalf("first project = %q, want alpha (sorted desc tokens)", alpha.ProjectPath)
	}
	if alpha.TotalTokens != 600 {
		t.Errorf("alpha tokens = %d, want 600", alpha.TotalTokens)
	}
	if alpha.SessionCount != 2 {
		t.Errorf("alpha days = %d, want 2", alpha.SessionCount)
	}
	if alpha.AvgTokensPerSession != 300 {
		t.Errorf("alpha avg = %d, want 300", alpha.AvgTokensPerSession)
	}
	if math.Abs(alpha.Percent-60) > 1e-9 {
		t.Errorf("alpha percent = %v, want 60", alpha.Percent)
	}
	if !alpha.LastUsed.Equal(day2) {
		t.Errorf("alpha last used = %v, want %v", alpha.LastUsed, day2)
	}

	var sawUnknown bool
	for _, p := range projects {
		if p.ProjectPath == UnknownProject {
			sawUnknown = true
			if p.TotalTokens != 100 {
				t.Errorf("unknown tokens = %d, want 100", p.TotalTokens)
			}
		}
	}
	if !sawUnknown {
		t.Error("entries with no project should land in the unknown bucket")
	}
}

func TestAggregateProjects_Empty(t *testing.T) {
	if got := AggregateProjects(nil); len(got) != 0 {
		t.Errorf("got %d projects, want 0", len(got))
	}
}

func TestAggregateStatistics(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 6, d, 10, 0, 0, 0, time.Local)
	}
	now := day(3).Add(2 * time.Hour)

	sessions := []model.Session{
		{StartTime: day(3), TokenCount: 500, CostUSD: 5},
		{StartTime: day(2), TokenCount: 900, CostUSD: 9},
		{StartTime: day(1), TokenCount: 100, CostUSD: 1},
	}

	stats := AggregateStatistics(sessions, now)

	if stats.TotalSessions != 3 || stats.TotalTokens != 1500 {
		t.Errorf("totals = %d sessions / %d tokens", stats.TotalSessions, stats.TotalTokens)
	}
	if stats.TotalCostUSD != 15 {
		t.Errorf("TotalCostUSD = %v, want 15", stats.TotalCostUSD)
	}
	if stats.AvgTokensPerSession != 500 {
		t.Errorf("AvgTokensPerSession = %d, want 500", stats.AvgTokensPerSession)
	}
	if stats.AvgCostPerSession != 5 {
		t.Errorf("AvgCostPerSession = %v, want 5", stats.AvgCostPerSession)
	}
	if stats.PeakSession == nil || stats.PeakSession.TokenCount != 900 {
		t.Errorf("PeakSession = %+v, want the 900-token session", stats.PeakSession)
	}
	if stats.PeakDayTokens != 900 || stats.PeakDay.Format("2006-01-02") != "2025-06-02" {
		t.Errorf("peak day = %v (%d tokens), want 2025-06-02 (900)", stats.PeakDay, stats.PeakDayTokens)
	}
	if stats.CurrentStreakDays != 3 {
		t.Errorf("CurrentStreakDays = %d, want 3", stats.CurrentStreakDays)
	}
}

func TestAggregateStatistics_StreakBreaks(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 6, d, 10, 0, 0, 0, time.Local)
	}

	sessions := []model.Session{
		{StartTime: day(5), TokenCount: 10},
		{StartTime: day(4), TokenCount: 10},
		// gap on the 3rd
		{StartTime: day(2), TokenCount: 10},
	}

	stats := AggregateStatistics(sessions, day(5).Add(time.Hour))
	if stats.CurrentStreakDays != 2 {
		t.Errorf("CurrentStreakDays = %d, want 2", stats.CurrentStreakDays)
	}
}

func TestAggregateStatistics_NoSessionToday(t *testing.T) {
	sessions := []model.Session{
		{StartTime: time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local), TokenCount: 10},
	}

	stats := AggregateStatistics(sessions, time.Date(2025, 6, 3, 10, 0, 0, 0, time.Local))
	if stats.CurrentStreakDays != 0 {
		t.Errorf("CurrentStreakDays = %d, want 0", stats.CurrentStreakDays)
	}
}

func TestAggregateStatistics_Empty(t *testing.T) {
	stats := AggregateStatistics(nil, time.Now())
	if stats.TotalSessions != 0 || stats.PeakSession != nil {
		t.Errorf("stats = %+v, want zero value", stats)
	}
}

func TestAggregateStatistics_PeakDayTieGoesLater(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 6, d, 10, 0, 0, 0, time.Local)
	}

	sessions := []model.Session{
		{StartTime: day(1), TokenCount: 500},
		{StartTime: day(2), TokenCount: 500},
	}

	stats := AggregateStatistics(sessions, day(2).Add(time.Hour))
	if stats.PeakDay.Format("2006-01-02") != "2025-06-02" {
		t.Errorf("peak day = %v, want the later of the tied days", stats.PeakDay)
	}
}
