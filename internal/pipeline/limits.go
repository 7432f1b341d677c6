package pipeline

import (
	"github.com/mattsolle/ccgauge/internal/config"
	"github.com/mattsolle/ccgauge/internal/model"
)

// Detection thresholds: observed totals strictly above a threshold imply
// at least that tier's ceiling. This infers a subscription tier from
// consumption magnitude, not from any authoritative source.
const (
	max20Threshold int64 = 100_000
	max5Threshold  int64 = 25_000
)

func classifyTotal(total int64) int64 {
	switch {
	case total > max20Threshold:
		return config.LimitMax20
	case total > max5Threshold:
		return config.LimitMax5
	default:
		return config.LimitPro
	}
}

// DetectLimitFromEntries infers the plan ceiling from total tokens across
// the whole provided entry set.
func DetectLimitFromEntries(entries []model.UsageEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.TotalTokens()
	}
	return classifyTotal(total)
}

// DetectLimitFromSessions infers the plan ceiling from completed sessions
// only, so a still-growing active session can't skew the classification.
func DetectLimitFromSessions(sessions []model.Session) int64 {
	var total int64
	for _, s := range sessions {
		if s.IsActive {
			continue
		}
		total += s.TokenCount
	}
	return classifyTotal(total)
}
