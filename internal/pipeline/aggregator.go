package pipeline

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/mattsolle/ccgauge/internal/model"
)

// UnknownProject is the bucket for entries whose project path could not
// be resolved.
const UnknownProject = "unknown"

const dayFormat = "2006-01-02"

// AggregateProjects groups entries by project path, sums tokens per
// group, and computes each project's share of the grand total. Session
// count is approximated as distinct calendar days with activity. Results
// are sorted descending by total tokens.
func AggregateProjects(entries []model.UsageEntry) []model.ProjectUsage {
	type acc struct {
		usage model.ProjectUsage
		days  map[string]struct{}
	}

	groups := make(map[string]*acc)
	var grandTotal int64

	for _, e := range entries {
		key := e.ProjectPath
		if key == "" {
			key = UnknownProject
		}

		a, ok := groups[key]
		if !ok {
			a = &acc{
				usage: model.ProjectUsage{ProjectPath: key},
				days:  make(map[string]struct{}),
			}
			groups[key] = a
		}

		a.usage.TotalTokens += e.TotalTokens()
		a.days[e.Timestamp.Local().Format(dayFormat)] = struct{}{}
		if e.Timestamp.After(a.usage.LastUsed) {
			a.usage.LastUsed = e.Timestamp
		}
		grandTotal += e.TotalTokens()
	}

	projects := make([]model.ProjectUsage, 0, len(groups))
	for _, a := range groups {
		p := a.usage
		p.SessionCount = len(a.days)
		if p.SessionCount > 0 {
			p.AvgTokensPerSession = p.TotalTokens / int64(p.SessionCount)
		}
		if grandTotal > 0 {
			p.Percent = float64(p.TotalTokens) / float64(grandTotal) * 100
		}
		projects = append(projects, p)
	}

	sort.Slice(projects, func(i, j int) bool {
		if projects[i].TotalTokens != projects[j].TotalTokens {
			return projects[i].TotalTokens > projects[j].TotalTokens
		}
		return projects[i].ProjectPath < projects[j].ProjectPath
	})
	return projects
}

// AggregateStatistics derives totals, averages, the peak session and
// peak day, and the current daily streak from the full session list.
// An empty session list degrades to all-zero statistics, not an error.
func AggregateStatistics(sessions []model.Session, now time.Time) model.UsageStatistics {
	var stats model.UsageStatistics
	if len(sessions) == 0 {
		return stats
	}

	stats.TotalSessions = len(sessions)
	stats.TotalTokens = lo.SumBy(sessions, func(s model.Session) int64 { return s.TokenCount })
	stats.TotalCostUSD = lo.SumBy(sessions, func(s model.Session) float64 { return s.CostUSD })
	stats.AvgTokensPerSession = stats.TotalTokens / int64(len(sessions))
	stats.AvgCostPerSession = stats.TotalCostUSD / float64(len(sessions))

	peak := lo.MaxBy(sessions, func(a, b model.Session) bool { return a.TokenCount > b.TokenCount })
	stats.PeakSession = &peak

	dayTokens := make(map[string]int64)
	for _, s := range sessions {
		dayTokens[s.StartTime.Local().Format(dayFormat)] += s.TokenCount
	}
	for _, day := range lo.Keys(dayTokens) {
		tokens := dayTokens[day]
		// Ties resolve to the later day.
		if tokens < stats.PeakDayTokens {
			continue
		}
		t, err := time.ParseInLocation(dayFormat, day, time.Local)
		if err != nil {
			continue
		}
		if tokens > stats.PeakDayTokens || t.After(stats.PeakDay) {
			stats.PeakDay = t
			stats.PeakDayTokens = tokens
		}
	}

	stats.CurrentStreakDays = currentStreak(sessions, now)
	return stats
}

// currentStreak counts consecutive calendar days ending today that
// contain at least one session start, walking backward up to 30 days and
// stopping at the first gap.
func currentStreak(sessions []model.Session, now time.Time) int {
	active := make(map[string]struct{})
	for _, s := range sessions {
		active[s.StartTime.Local().Format(dayFormat)] = struct{}{}
	}

	streak := 0
	day := now.Local()
	for i := 0; i < 30; i++ {
		if _, ok := active[day.Format(dayFormat)]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
