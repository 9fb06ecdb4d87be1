package model

// CostMetrics is one cost report from the host. Any field may reset to a
// lower value when the host starts a new conversation.
type CostMetrics struct {
	TotalCostUSD       float64 `json:"total_cost_usd"`
	TotalDurationMs    uint64  `json:"total_duration_ms"`
	TotalAPIDurationMs uint64  `json:"total_api_duration_ms"`
	TotalLinesAdded    uint64  `json:"total_lines_added"`
	TotalLinesRemoved  uint64  `json:"total_lines_removed"`
}

// Add returns the field-wise sum of m and o.
func (m CostMetrics) Add(o CostMetrics) CostMetrics {
	return CostMetrics{
		TotalCostUSD:       m.TotalCostUSD + o.TotalCostUSD,
		TotalDurationMs:    m.TotalDurationMs + o.TotalDurationMs,
		TotalAPIDurationMs: m.TotalAPIDurationMs + o.TotalAPIDurationMs,
		TotalLinesAdded:    m.TotalLinesAdded + o.TotalLinesAdded,
		TotalLinesRemoved:  m.TotalLinesRemoved + o.TotalLinesRemoved,
	}
}

// CostHistory folds host-side counter resets into a running total.
// Total always equals Current + Accumulated field-wise.
type CostHistory struct {
	Current     CostMetrics `json:"current"`
	Accumulated CostMetrics `json:"accumulated"`
	Total       CostMetrics `json:"total"`
}

// Apply folds incoming into h. A field that drops below a positive current
// value is treated as a reset and the old current value is banked into
// Accumulated before Current is replaced.
func (h CostHistory) Apply(incoming CostMetrics) CostHistory {
	cur, acc := h.Current, h.Accumulated

	if cur.TotalCostUSD > 0 && incoming.TotalCostUSD < cur.TotalCostUSD {
		acc.TotalCostUSD += cur.TotalCostUSD
	}
	acc.TotalDurationMs += bankOnReset(cur.TotalDurationMs, incoming.TotalDurationMs)
	acc.TotalAPIDurationMs += bankOnReset(cur.TotalAPIDurationMs, incoming.TotalAPIDurationMs)
	acc.TotalLinesAdded += bankOnReset(cur.TotalLinesAdded, incoming.TotalLinesAdded)
	acc.TotalLinesRemoved += bankOnReset(cur.TotalLinesRemoved, incoming.TotalLinesRemoved)

	return CostHistory{
		Current:     incoming,
		Accumulated: acc,
		Total:       incoming.Add(acc),
	}
}

func bankOnReset(current, incoming uint64) uint64 {
	if current > 0 && incoming < current {
		return current
	}
	return 0
}
