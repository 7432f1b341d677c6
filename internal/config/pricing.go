package config

// ModelPricing holds per-million-token prices for a model family.
type ModelPricing struct {
	InputPerMTok      float64
	OutputPerMTok     float64
	CacheWritePerMTok float64
	CacheReadPerMTok  float64
}

// DefaultPricing maps model family tiers to their pricing. Used only as a
// fallback when a log line carries no cost field of its own.
var DefaultPricing = map[string]ModelPricing{
	"opus": {
		InputPerMTok: 15.00, OutputPerMTok: 75.00,
		CacheWritePerMTok: 18.75, CacheReadPerMTok: 1.50,
	},
	"sonnet": {
		InputPerMTok: 3.00, OutputPerMTok: 15.00,
		CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.30,
	},
	"haiku": {
		InputPerMTok: 1.00, OutputPerMTok: 5.00,
		CacheWritePerMTok: 1.25, CacheReadPerMTok: 0.10,
	},
}

// EstimateCost computes a USD cost estimate for one entry's token counts.
// Unrecognized model families estimate to 0.
func EstimateCost(rawModel string, input, output, cacheCreation, cacheRead int64) float64 {
	p, ok := DefaultPricing[ModelTier(rawModel)]
	if !ok {
		return 0
	}
	const mtok = 1_000_000
	return float64(input)/mtok*p.InputPerMTok +
		float64(output)/mtok*p.OutputPerMTok +
		float64(cacheCreation)/mtok*p.CacheWritePerMTok +
		float64(cacheRead)/mtok*p.CacheReadPerMTok
}
