package source

import (
	"time"

	"github.com/mattsolle/ccgauge/internal/model"
)

// ParseEntry builds a UsageEntry from one decoded JSON object.
//
// The timestamp is the only hard requirement: ok is false when it is
// missing or unparsable, and the record should be skipped. Every other
// field degrades to its zero default rather than rejecting the record.
func ParseEntry(obj map[string]any) (model.UsageEntry, bool) {
	raw := firstString(obj, timestampPaths)
	if raw == "" {
		return model.UsageEntry{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return model.UsageEntry{}, false
	}

	entry := model.UsageEntry{
		Timestamp:   ts,
		Model:       firstString(obj, modelPaths),
		CostUSD:     firstNumber(obj, costPaths),
		MessageID:   firstString(obj, messageIDPaths),
		RequestID:   firstString(obj, requestIDPaths),
		ProjectPath: firstString(obj, cwdPaths),
	}

	if entry.CostUSD < 0 {
		entry.CostUSD = 0
	}

	if usage := firstObject(obj, usagePaths); usage != nil {
		entry.InputTokens = tokenCount(usage, inputTokenKeys)
		entry.OutputTokens = tokenCount(usage, outputTokenKeys)
		entry.CacheCreationTokens = tokenCount(usage, cacheCreationTokenKeys)
		entry.CacheReadTokens = tokenCount(usage, cacheReadTokenKeys)
	}

	return entry, true
}
