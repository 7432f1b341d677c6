package pipeline

import (
	"time"

	"github.com/mattsolle/ccgauge/internal/model"
)

// SessionBurnRate returns the tokens-per-minute rate over the accounted
// elapsed duration, or nil when elapsed is zero.
func SessionBurnRate(totalTokens int64, elapsed time.Duration) *model.BurnRate {
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		return nil
	}
	return &model.BurnRate{TokensPerMinute: float64(totalTokens) / minutes}
}

// AggregatedBurnRate computes consumption velocity over the trailing one
// hour, apportioning each session's tokens linearly across its overlap
// with [now-1h, now]. Sessions with no overlap are ignored. Returns nil
// when nothing overlaps the window.
func AggregatedBurnRate(sessions []model.Session, now time.Time) *model.BurnRate {
	windowStart := now.Add(-time.Hour)

	var apportioned float64
	var overlapMinutes float64

	for _, s := range sessions {
		ovStart := s.StartTime
		if ovStart.Before(windowStart) {
			ovStart = windowStart
		}
		ovEnd := s.EndTime
		if ovEnd.After(now) {
			ovEnd = now
		}
		if !ovEnd.After(ovStart) {
			continue
		}

		overlap := ovEnd.Sub(ovStart).Minutes()
		total := s.EndTime.Sub(s.StartTime).Minutes()
		if total <= 0 {
			continue
		}

		apportioned += float64(s.TokenCount) * (overlap / total)
		overlapMinutes += overlap
	}

	if overlapMinutes <= 0 {
		return nil
	}
	return &model.BurnRate{TokensPerMinute: apportioned / overlapMinutes}
}
