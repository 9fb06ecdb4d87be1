package config

import "strings"

// ModelPricing holds per-million-token prices for a model.
type ModelPricing struct {
	InputPerMTok        float64
	OutputPerMTok       float64
	CacheWrite5mPerMTok float64
	CacheWrite1hPerMTok float64
	CacheReadPerMTok    float64
	// Long context overrides (>200K input tokens)
	LongInputPerMTok  float64
	LongOutputPerMTok float64
}

// DefaultPricing maps model base names to their pricing.
var DefaultPricing = map[string]ModelPricing{
	"claude-opus-4-6": {
		InputPerMTok: 5.00, OutputPerMTok: 25.00,
		CacheWrite5mPerMTok: 6.25, CacheWrite1hPerMTok: 10.00, CacheReadPerMTok: 0.50,
		LongInputPerMTok: 10.00, LongOutputPerMTok: 37.50,
	},
	"claude-opus-4-5": {
		InputPerMTok: 5.00, OutputPerMTok: 25.00,
		CacheWrite5mPerMTok: 6.25, CacheWrite1hPerMTok: 10.00, CacheReadPerMTok: 0.50,
		LongInputPerMTok: 10.00, LongOutputPerMTok: 37.50,
	},
	"claude-opus-4-1": {
		InputPerMTok: 15.00, OutputPerMTok: 75.00,
		CacheWrite5mPerMTok: 18.75, CacheWrite1hPerMTok: 30.00, CacheReadPerMTok: 1.50,
		LongInputPerMTok: 30.00, LongOutputPerMTok: 112.50,
	},
	"claude-opus-4": {
		InputPerMTok: 15.00, OutputPerMTok: 75.00,
		CacheWrite5mPerMTok: 18.75, CacheWrite1hPerMTok: 30.00, CacheReadPerMTok: 1.50,
		LongInputPerMTok: 30.00, LongOutputPerMTok: 112.50,
	},
	"claude-sonnet-4-6": {
		InputPerMTok: 3.00, OutputPerMTok: 15.00,
		CacheWrite5mPerMTok: 3.75, CacheWrite1hPerMTok: 6.00, CacheReadPerMTok: 0.30,
		LongInputPerMTok: 6.00, LongOutputPerMTok: 22.50,
	},
	"claude-sonnet-4-5": {
		InputPerMTok: 3.00, OutputPerMTok: 15.00,
		CacheWrite5mPerMTok: 3.75, CacheWrite1hPerMTok: 6.00, CacheReadPerMTok: 0.30,
		LongInputPerMTok: 6.00, LongOutputPerMTok: 22.50,
	},
	"claude-sonnet-4": {
		InputPerMTok: 3.00, OutputPerMTok: 15.00,
		CacheWrite5mPerMTok: 3.75, CacheWrite1hPerMTok: 6.00, CacheReadPerMTok: 0.30,
		LongInputPerMTok: 6.00, LongOutputPerMTok: 22.50,
	},
	"claude-haiku-4-5": {
		InputPerMTok: 1.00, OutputPerMTok: 5.00,
		CacheWrite5mPerMTok: 1.25, CacheWrite1hPerMTok: 2.00, CacheReadPerMTok: 0.10,
		LongInputPerMTok: 2.00, LongOutputPerMTok: 7.50,
	},
	"claude-haiku-3-5": {
		InputPerMTok: 0.80, OutputPerMTok: 4.00,
		CacheWrite5mPerMTok: 1.00, CacheWrite1hPerMTok: 1.60, CacheReadPerMTok: 0.08,
		LongInputPerMTok: 1.60, LongOutputPerMTok: 6.00,
	},
}

func hasPricingModel(model string) bool {
	_, ok := DefaultPricing[model]
	return ok
}

// NormalizeModelName strips date suffixes from model identifiers.
// e.g., "claude-opus-4-5-20251101" -> "claude-opus-4-5"
func NormalizeModelName(raw string) string {
	// Models can have date suffixes like -20251101 (8 digits)
	// Strategy: try progressively shorter prefixes against the pricing table
	if hasPricingModel(raw) {
		return raw
	}

	// Strip last segment if it looks like a date (all digits)
	parts := strings.Split(raw, "-")
	if len(parts) >= 2 {
		last := parts[len(parts)-1]
		if isAllDigits(last) && len(last) >= 8 {
			candidate := strings.Join(parts[:len(parts)-1], "-")
			if hasPricingModel(candidate) {
				return candidate
			}
		}
	}

	return raw
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// LookupPricing returns the pricing for a model, normalizing the name first.
// Returns zero pricing and false if the model is unknown.
func LookupPricing(model string) (ModelPricing, bool) {
	p, ok := DefaultPricing[NormalizeModelName(model)]
	return p, ok
}

// longContextThreshold is the prompt size above which long context rates apply.
const longContextThreshold = 200_000

// CalculateCost estimates the USD cost of one assistant message.
// Unknown models cost 0.
func CalculateCost(model string, inputTokens, outputTokens, cacheWrite, cacheRead uint64) float64 {
	pricing, ok := LookupPricing(model)
	if !ok {
		return 0
	}

	inRate, outRate := pricing.InputPerMTok, pricing.OutputPerMTok
	if inputTokens+cacheWrite+cacheRead > longContextThreshold && pricing.LongInputPerMTok > 0 {
		inRate, outRate = pricing.LongInputPerMTok, pricing.LongOutputPerMTok
	}

	// Cache writes are billed at the 5-minute TTL rate, the host default.
	cost := float64(inputTokens) * inRate / 1_000_000
	cost += float64(outputTokens) * outRate / 1_000_000
	cost += float64(cacheWrite) * pricing.CacheWrite5mPerMTok / 1_000_000
	cost += float64(cacheRead) * pricing.CacheReadPerMTok / 1_000_000

	return cost
}

// DefaultContextWindow is used for models without a configured window.
const DefaultContextWindow uint64 = 200_000

// ContextWindow returns the context window for modelID. Configured windows
// are matched by exact id, then normalized id, then the "default" key.
// Ids carrying the "[1m]" marker get a one million token window.
func ContextWindow(modelID string, configured map[string]uint64) uint64 {
	if modelID != "" {
		if w, ok := configured[modelID]; ok && w > 0 {
			return w
		}
		base := strings.TrimSuffix(modelID, "[1m]")
		if w, ok := configured[NormalizeModelName(base)]; ok && w > 0 {
			return w
		}
		if strings.HasSuffix(modelID, "[1m]") {
			return 1_000_000
		}
	}
	if w, ok := configured["default"]; ok && w > 0 {
		return w
	}
	return DefaultContextWindow
}

var modelFamilies = []string{"opus", "sonnet", "haiku"}

// ShortModelName turns a model id into a compact display name:
//
//	"claude-sonnet-4-5-20250929" -> "Sonnet 4.5"
//	"claude-3-5-haiku-20241022"  -> "Haiku 3.5"
//
// Ids that do not name a known family are returned unchanged.
func ShortModelName(modelID string) string {
	base := strings.TrimSuffix(NormalizeModelName(modelID), "[1m]")
	parts := strings.Split(base, "-")

	family := ""
	var version []string
	for _, p := range parts {
		switch {
		case p == "claude":
		case family == "" && isFamily(p):
			family = strings.ToUpper(p[:1]) + p[1:]
		case isAllDigits(p) && len(p) < 8:
			version = append(version, p)
		}
	}
	if family == "" {
		return modelID
	}
	if len(version) == 0 {
		return family
	}
	return family + " " + strings.Join(version, ".")
}

func isFamily(s string) bool {
	for _, f := range modelFamilies {
		if s == f {
			return true
		}
	}
	return false
}
