package config

import (
	"strings"
	"sync"
)

// UnknownModel is the tier used for empty or unrecognized model strings.
const UnknownModel = "unknown"

// modelTiers caches raw identifier -> resolved tier. Tier rules are static,
// so the cache lives for the process lifetime, not per ingestion run.
var modelTiers sync.Map

// ModelTier maps a raw model identifier to its family tier ("opus",
// "sonnet", "haiku"). Raw identifiers repeat heavily within a run
// (every assistant line carries one), so lookups are memoized.
func ModelTier(raw string) string {
	if raw == "" {
		return UnknownModel
	}
	if tier, ok := modelTiers.Load(raw); ok {
		return tier.(string)
	}

	lower := strings.ToLower(raw)
	tier := UnknownModel
	switch {
	case strings.Contains(lower, "opus"):
		tier = "opus"
	case strings.Contains(lower, "sonnet"):
		tier = "sonnet"
	case strings.Contains(lower, "haiku"):
		tier = "haiku"
	}

	modelTiers.Store(raw, tier)
	return tier
}
