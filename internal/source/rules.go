// Package source parses Claude Code JSONL usage logs and discovers them
// on disk under the allowed data directories.
package source

// fieldPath addresses a value inside a decoded JSON object, e.g.
// {"message", "usage"} for obj["message"]["usage"].
type fieldPath []string

func (p fieldPath) lookup(obj map[string]any) (any, bool) {
	cur := any(obj)
	for _, key := range p {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Extraction rules per logical field, tried in order. Keeping the fallback
// priority in one table makes it visible and testable instead of buried in
// conditional chains.
var (
	timestampPaths = []fieldPath{{"timestamp"}}
	usagePaths     = []fieldPath{{"usage"}, {"message", "usage"}}
	modelPaths     = []fieldPath{{"model"}, {"message", "model"}}
	costPaths      = []fieldPath{{"cost"}, {"costUSD"}}
	messageIDPaths = []fieldPath{{"message_id"}, {"messageId"}, {"message", "id"}}
	requestIDPaths = []fieldPath{{"request_id"}, {"requestId"}}
	cwdPaths       = []fieldPath{{"cwd"}}
)

// Token count keys inside the usage object. Claude Code writes snake_case;
// some exporters re-emit the same fields camelCased.
var (
	inputTokenKeys         = []string{"input_tokens", "inputTokens"}
	outputTokenKeys        = []string{"output_tokens", "outputTokens"}
	cacheCreationTokenKeys = []string{"cache_creation_input_tokens", "cacheCreationInputTokens", "cacheCreationTokens"}
	cacheReadTokenKeys     = []string{"cache_read_input_tokens", "cacheReadInputTokens", "cacheReadTokens"}
)

func firstString(obj map[string]any, paths []fieldPath) string {
	for _, p := range paths {
		if v, ok := p.lookup(obj); ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func firstNumber(obj map[string]any, paths []fieldPath) float64 {
	for _, p := range paths {
		if v, ok := p.lookup(obj); ok {
			if f, ok := asFloat(v); ok {
				return f
			}
		}
	}
	return 0
}

func firstObject(obj map[string]any, paths []fieldPath) map[string]any {
	for _, p := range paths {
		if v, ok := p.lookup(obj); ok {
			if m, ok := v.(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

func tokenCount(usage map[string]any, keys []string) int64 {
	for _, k := range keys {
		if v, ok := usage[k]; ok {
			if f, ok := asFloat(v); ok && f > 0 {
				return int64(f)
			}
		}
	}
	return 0
}

// asFloat accepts the numeric shapes encoding/json can hand back.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
