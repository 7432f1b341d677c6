package model

import (
	"testing"
	"time"
)

func TestSessionRemaining(t *testing.T) {
	tests := []struct {
		name  string
		count int64
		limit int64
		want  int64
	}{
		{"under limit", 10_000, 44_000, 34_000},
		{"at limit", 44_000, 44_000, 0},
		{"over limit floors at zero", 50_000, 44_000, 0},
		{"no limit", 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{TokenCount: tt.count, TokenLimit: tt.limit}
			if got := s.Remaining(); got != tt.want {
				t.Errorf("Remaining() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSessionUsagePercent(t *testing.T) {
	s := Session{TokenCount: 11_000, TokenLimit: 44_000}
	if got := s.UsagePercent(); got != 0.25 {
		t.Errorf("UsagePercent() = %v, want 0.25", got)
	}

	over := Session{TokenCount: 88_000, TokenLimit: 44_000}
	if got := over.UsagePercent(); got != 2.0 {
		t.Errorf("over-limit UsagePercent() = %v, want uncapped 2.0", got)
	}

	unset := Session{TokenCount: 100}
	if got := unset.UsagePercent(); got != 0 {
		t.Errorf("no-limit UsagePercent() = %v, want 0", got)
	}
}

func TestPredictedExhaustion(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s := Session{
		TokenCount: 40_000,
		TokenLimit: 44_000,
		BurnRate:   &BurnRate{TokensPerMinute: 200},
	}
	at, ok := s.PredictedExhaustion(now)
	if !ok {
		t.Fatal("expected a prediction")
	}
	if want := now.Add(20 * time.Minute); !at.Equal(want) {
		t.Errorf("exhaustion at %v, want %v", at, want)
	}

	over := Session{TokenCount: 50_000, TokenLimit: 44_000, BurnRate: &BurnRate{TokensPerMinute: 1}}
	at, ok = over.PredictedExhaustion(now)
	if !ok || !at.Equal(now) {
		t.Errorf("over-limit prediction = %v, %v; want now, true", at, ok)
	}

	if _, ok := (Session{TokenLimit: 44_000}).PredictedExhaustion(now); ok {
		t.Error("no burn rate should produce no prediction")
	}
	if _, ok := (Session{BurnRate: &BurnRate{TokensPerMinute: 10}}).PredictedExhaustion(now); ok {
		t.Error("unresolved limit should produce no prediction")
	}
}

func TestSessionBreakdown(t *testing.T) {
	s := Session{ModelUsage: map[string]int64{
		"sonnet": 300,
		"opus":   600,
		"haiku":  100,
	}}

	b := s.Breakdown()
	if len(b) != 3 {
		t.Fatalf("got %d rows, want 3", len(b))
	}
	if b[0].Model != "opus" || b[1].Model != "sonnet" || b[2].Model != "haiku" {
		t.Errorf("order = %s/%s/%s, want opus/sonnet/haiku", b[0].Model, b[1].Model, b[2].Model)
	}
	if b[0].Percent != 60 || b[1].Percent != 30 || b[2].Percent != 10 {
		t.Errorf("percents = %v/%v/%v", b[0].Percent, b[1].Percent, b[2].Percent)
	}

	if got := (Session{}).Breakdown(); got != nil {
		t.Errorf("empty usage: got %v, want nil", got)
	}
}

func TestUsageEntryTotals(t *testing.T) {
	e := UsageEntry{
		InputTokens:         100,
		OutputTokens:        50,
		CacheCreationTokens: 30,
		CacheReadTokens:     20,
	}
	if e.TotalTokens() != 150 {
		t.Errorf("TotalTokens() = %d, want 150 (cache excluded)", e.TotalTokens())
	}
	if e.TotalCacheTokens() != 50 {
		t.Errorf("TotalCacheTokens() = %d, want 50", e.TotalCacheTokens())
	}
}
