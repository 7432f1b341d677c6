package pipeline

import (
	"sort"
	"time"

	"github.com/mattsolle/ccgauge/internal/config"
	"github.com/mattsolle/ccgauge/internal/model"
)

// Policy selects how entries are grouped into session windows.
type Policy int

const (
	// PolicyRolling opens a window at the first entry of a run and keeps
	// every entry within 5h of that origin, clock be damned.
	PolicyRolling Policy = iota
	// PolicyHourAligned buckets entries by their timestamp truncated to
	// the top of the hour.
	PolicyHourAligned
)

// BuildSessions partitions sorted entries into 5-hour sessions under the
// given policy, resolves the token limit for the plan, and attaches burn
// rates. customLimit overrides the plan ceiling when > 0. Sessions come
// back most recent first; that order is the display contract.
func BuildSessions(entries []model.UsageEntry, plan config.Plan, customLimit int64, now time.Time, policy Policy) []model.Session {
	limit := resolveLimit(entries, plan, customLimit)

	var groups []entryGroup
	switch policy {
	case PolicyHourAligned:
		groups = groupHourAligned(entries)
	default:
		groups = groupRolling(entries)
	}

	sessions := make([]model.Session, 0, len(groups))
	for _, g := range groups {
		sessions = append(sessions, buildSession(g, limit, now))
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.After(sessions[j].StartTime)
	})

	// When the trailing-hour aggregated rate is available it replaces
	// the active session's own average.
	if agg := AggregatedBurnRate(sessions, now); agg != nil {
		for i := range sessions {
			if sessions[i].IsActive {
				sessions[i].BurnRate = agg
			}
		}
	}

	return sessions
}

// ActiveSession returns the currently active session, if any. Sessions
// are assumed most recent first.
func ActiveSession(sessions []model.Session) *model.Session {
	for i := range sessions {
		if sessions[i].IsActive {
			return &sessions[i]
		}
	}
	return nil
}

type entryGroup struct {
	start   time.Time
	entries []model.UsageEntry
}

// groupRolling scans entries in timestamp order, anchoring each window at
// the first entry of a run. An entry joins the current window iff its
// timestamp is within 5h of the window origin, not of the previous
// entry, so a gap-and-resume inside 5h extends the same window.
func groupRolling(entries []model.UsageEntry) []entryGroup {
	var groups []entryGroup
	var cur *entryGroup

	for _, e := range entries {
		if cur == nil || e.Timestamp.Sub(cur.start) > model.SessionDuration {
			groups = append(groups, entryGroup{start: e.Timestamp})
			cur = &groups[len(groups)-1]
		}
		cur.entries = append(cur.entries, e)
	}
	return groups
}

// groupHourAligned maps each entry to the window starting at its hour
// truncation. Direct bucketing, no pairwise comparison.
func groupHourAligned(entries []model.UsageEntry) []entryGroup {
	buckets := make(map[time.Time]*entryGroup)
	var order []time.Time

	for _, e := range entries {
		hour := e.Timestamp.Truncate(time.Hour)
		g, ok := buckets[hour]
		if !ok {
			g = &entryGroup{start: hour}
			buckets[hour] = g
			order = append(order, hour)
		}
		g.entries = append(g.entries, e)
	}

	groups := make([]entryGroup, 0, len(order))
	for _, hour := range order {
		groups = append(groups, *buckets[hour])
	}
	return groups
}

func buildSession(g entryGroup, limit int64, now time.Time) model.Session {
	end := g.start.Add(model.SessionDuration)

	s := model.Session{
		ID:         g.start.UTC().Format(time.RFC3339),
		StartTime:  g.start,
		EndTime:    end,
		TokenLimit: limit,
		IsActive:   !now.Before(g.start) && now.Before(end),
		ModelUsage: make(map[string]int64),
	}

	for _, e := range g.entries {
		s.TokenCount += e.TotalTokens()
		s.CostUSD += e.CostUSD
		s.ModelUsage[config.ModelTier(e.Model)] += e.TotalTokens()
	}

	elapsed := model.SessionDuration
	if s.IsActive {
		elapsed = now.Sub(g.start)
		if elapsed > model.SessionDuration {
			elapsed = model.SessionDuration
		}
	}
	if len(g.entries) > 0 {
		s.BurnRate = SessionBurnRate(s.TokenCount, elapsed)
	}

	return s
}

func resolveLimit(entries []model.UsageEntry, plan config.Plan, customLimit int64) int64 {
	if customLimit > 0 {
		return customLimit
	}
	if limit, ok := plan.TokenLimit(); ok {
		return limit
	}
	return DetectLimitFromEntries(entries)
}
