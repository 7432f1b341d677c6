package model

import (
	"sort"
	"time"
)

// SessionDuration is the fixed accounting window length. Every session
// spans exactly this much wall-clock time regardless of where its member
// entries fall inside the window.
const SessionDuration = 5 * time.Hour

// BurnRate is a token consumption velocity in tokens per minute.
type BurnRate struct {
	TokensPerMinute float64
}

// Session is a 5-hour accounting window over usage entries, the unit
// against which a plan's token ceiling is enforced.
type Session struct {
	ID         string
	StartTime  time.Time
	EndTime    time.Time // always StartTime + SessionDuration
	TokenCount int64
	TokenLimit int64
	CostUSD    float64
	IsActive   bool
	BurnRate   *BurnRate // nil when the accounted duration is zero
	ModelUsage map[string]int64
}

// Remaining returns tokens left under the session limit, floored at zero.
func (s Session) Remaining() int64 {
	if s.TokenCount >= s.TokenLimit {
		return 0
	}
	return s.TokenLimit - s.TokenCount
}

// UsagePercent returns consumed tokens as a fraction of the limit, 0-1,
// uncapped so callers can detect over-limit sessions.
func (s Session) UsagePercent() float64 {
	if s.TokenLimit <= 0 {
		return 0
	}
	return float64(s.TokenCount) / float64(s.TokenLimit)
}

// PredictedExhaustion returns the instant the session hits its token limit
// at the current burn rate. The second return is false when the session has
// no burn rate, is already over limit, or the limit is unresolved.
func (s Session) PredictedExhaustion(now time.Time) (time.Time, bool) {
	if s.BurnRate == nil || s.BurnRate.TokensPerMinute <= 0 || s.TokenLimit <= 0 {
		return time.Time{}, false
	}
	remaining := s.TokenLimit - s.TokenCount
	if remaining <= 0 {
		return now, true
	}
	minutes := float64(remaining) / s.BurnRate.TokensPerMinute
	return now.Add(time.Duration(minutes * float64(time.Minute))), true
}

// ModelUsageBreakdown is a read-only view of one model's share of a session.
type ModelUsageBreakdown struct {
	Model      string
	TokenCount int64
	Percent    float64
}

// Breakdown returns per-model shares sorted by token count descending.
func (s Session) Breakdown() []ModelUsageBreakdown {
	if len(s.ModelUsage) == 0 {
		return nil
	}

	var total int64
	for _, n := range s.ModelUsage {
		total += n
	}

	out := make([]ModelUsageBreakdown, 0, len(s.ModelUsage))
	for name, n := range s.ModelUsage {
		b := ModelUsageBreakdown{Model: name, TokenCount: n}
		if total > 0 {
			b.Percent = float64(n) / float64(total) * 100
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TokenCount != out[j].TokenCount {
			return out[i].TokenCount > out[j].TokenCount
		}
		return out[i].Model < out[j].Model
	})
	return out
}
