// Package model defines domain types for ccgauge sessions and metrics.
package model

import "time"

// UsageEntry is one normalized usage event built from a single log line.
// Entries are immutable once parsed; everything downstream is derived
// from the entry set by recomputation, never by mutation.
type UsageEntry struct {
	Timestamp           time.Time
	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
	Model               string
	CostUSD             float64
	MessageID           string
	RequestID           string
	ProjectPath         string
}

// TotalTokens returns the session-accounted token total (input + output).
func (e UsageEntry) TotalTokens() int64 {
	return e.InputTokens + e.OutputTokens
}

// TotalCacheTokens returns cache creation + cache read tokens.
func (e UsageEntry) TotalCacheTokens() int64 {
	return e.CacheCreationTokens + e.CacheReadTokens
}

// DedupKey returns the messageID:requestID pairing used to recognize the
// same logical event appearing more than once in the logs. It returns ""
// when either half is missing; such entries are never deduplicated.
func (e UsageEntry) DedupKey() string {
	if e.MessageID == "" || e.RequestID == "" {
		return ""
	}
	return e.MessageID + ":" + e.RequestID
}
