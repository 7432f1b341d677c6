package model

import "time"

// ProjectUsage aggregates token usage for one project path.
type ProjectUsage struct {
	ProjectPath string
	TotalTokens int64
	// SessionCount approximates sessions as distinct calendar days with
	// at least one entry.
	SessionCount        int
	LastUsed            time.Time
	AvgTokensPerSession int64
	Percent             float64 // share of all tokens across projects
}

// UsageStatistics is the derived aggregate over the full session list.
type UsageStatistics struct {
	TotalSessions       int
	TotalTokens         int64
	TotalCostUSD        float64
	AvgTokensPerSession int64
	AvgCostPerSession   float64

	PeakSession *Session // session with the highest token count

	PeakDay       time.Time
	PeakDayTokens int64

	// CurrentStreakDays counts consecutive calendar days ending today that
	// contain at least one session start, capped at 30.
	CurrentStreakDays int
}
