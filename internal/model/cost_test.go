package model_test

import (
	"math"
	"testing"

	"github.com/theirongolddev/statusline-pro/internal/model"
	"pgregory.net/rapid"
)

func TestCostHistory_ApplyFromEmpty(t *testing.T) {
	var h model.CostHistory
	h = h.Apply(model.CostMetrics{TotalCostUSD: 1.0, TotalLinesAdded: 10})

	if h.Current.TotalCostUSD != 1.0 {
		t.Errorf("Current.TotalCostUSD = %v, want 1.0", h.Current.TotalCostUSD)
	}
	if h.Accumulated.TotalCostUSD != 0 {
		t.Errorf("Accumulated.TotalCostUSD = %v, want 0", h.Accumulated.TotalCostUSD)
	}
	if h.Total.TotalLinesAdded != 10 {
		t.Errorf("Total.TotalLinesAdded = %d, want 10", h.Total.TotalLinesAdded)
	}
}

func TestCostHistory_ResetBanksPreviousValue(t *testing.T) {
	var h model.CostHistory
	h = h.Apply(model.CostMetrics{TotalCostUSD: 1.0})
	h = h.Apply(model.CostMetrics{TotalCostUSD: 0.2})

	if h.Accumulated.TotalCostUSD != 1.0 {
		t.Errorf("Accumulated.TotalCostUSD = %v, want 1.0", h.Accumulated.TotalCostUSD)
	}
	if h.Current.TotalCostUSD != 0.2 {
		t.Errorf("Current.TotalCostUSD = %v, want 0.2", h.Current.TotalCostUSD)
	}
	if math.Abs(h.Total.TotalCostUSD-1.2) > 1e-9 {
		t.Errorf("Total.TotalCostUSD = %v, want 1.2", h.Total.TotalCostUSD)
	}
}

func TestCostHistory_FieldsFoldIndependently(t *testing.T) {
	h := model.CostHistory{}.Apply(model.CostMetrics{
		TotalCostUSD:      2.0,
		TotalDurationMs:   5000,
		TotalLinesAdded:   40,
		TotalLinesRemoved: 3,
	})
	h = h.Apply(model.CostMetrics{
		TotalCostUSD:      2.5,
		TotalDurationMs:   100,
		TotalLinesAdded:   41,
		TotalLinesRemoved: 0,
	})

	if h.Accumulated.TotalCostUSD != 0 {
		t.Errorf("cost grew, Accumulated.TotalCostUSD = %v, want 0", h.Accumulated.TotalCostUSD)
	}
	if h.Accumulated.TotalDurationMs != 5000 {
		t.Errorf("Accumulated.TotalDurationMs = %d, want 5000", h.Accumulated.TotalDurationMs)
	}
	if h.Accumulated.TotalLinesAdded != 0 {
		t.Errorf("Accumulated.TotalLinesAdded = %d, want 0", h.Accumulated.TotalLinesAdded)
	}
	if h.Accumulated.TotalLinesRemoved != 3 {
		t.Errorf("Accumulated.TotalLinesRemoved = %d, want 3", h.Accumulated.TotalLinesRemoved)
	}
	if h.Total.TotalDurationMs != 5100 {
		t.Errorf("Total.TotalDurationMs = %d, want 5100", h.Total.TotalDurationMs)
	}
}

func TestCostHistory_ZeroCurrentNeverBanks(t *testing.T) {
	h := model.CostHistory{}.Apply(model.CostMetrics{})
	h = h.Apply(model.CostMetrics{})
	if h.Accumulated != (model.CostMetrics{}) {
		t.Errorf("Accumulated = %+v, want zero", h.Accumulated)
	}
}

func TestCostHistory_TotalInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		var h model.CostHistory
		for i := 0; i < steps; i++ {
			in := model.CostMetrics{
				TotalCostUSD:       float64(rapid.IntRange(0, 10_000).Draw(t, "cents")) / 100,
				TotalDurationMs:    rapid.Uint64Range(0, 1_000_000).Draw(t, "dur"),
				TotalAPIDurationMs: rapid.Uint64Range(0, 1_000_000).Draw(t, "api"),
				TotalLinesAdded:    rapid.Uint64Range(0, 5_000).Draw(t, "added"),
				TotalLinesRemoved:  rapid.Uint64Range(0, 5_000).Draw(t, "removed"),
			}
			prevTotal := h.Total
			h = h.Apply(in)

			want := h.Current.Add(h.Accumulated)
			if h.Total.TotalDurationMs != want.TotalDurationMs ||
				h.Total.TotalAPIDurationMs != want.TotalAPIDurationMs ||
				h.Total.TotalLinesAdded != want.TotalLinesAdded ||
				h.Total.TotalLinesRemoved != want.TotalLinesRemoved ||
				math.Abs(h.Total.TotalCostUSD-want.TotalCostUSD) > 1e-6 {
				t.Fatalf("Total = %+v, want %+v", h.Total, want)
			}
			if h.Total.TotalLinesAdded < prevTotal.TotalLinesAdded {
				t.Fatalf("TotalLinesAdded decreased: %d -> %d", prevTotal.TotalLinesAdded, h.Total.TotalLinesAdded)
			}
			if h.Total.TotalCostUSD+1e-6 < prevTotal.TotalCostUSD {
				t.Fatalf("TotalCostUSD decreased: %v -> %v", prevTotal.TotalCostUSD, h.Total.TotalCostUSD)
			}
		}
	})
}
