// Package mock provides canned payloads for previewing the status line
// without a running host.
package mock

import (
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/theirongolddev/statusline-pro/internal/input"
	"github.com/theirongolddev/statusline-pro/internal/model"
	"github.com/theirongolddev/statusline-pro/internal/source"
)

// Scenario is one preview: a payload plus the state that would otherwise
// come from storage and the transcript.
type Scenario struct {
	Name        string
	Payload     *input.Payload
	ContextUsed uint64
	Status      source.Status
}

// Snapshot returns an in-memory snapshot reflecting the scenario. It is
// never written to disk.
func (s Scenario) Snapshot() *model.SessionSnapshot {
	snap := model.NewSnapshot(s.Payload.SessionID)
	if s.Payload.Cost != nil {
		snap.History.Cost = snap.History.Cost.Apply(s.Payload.Cost.Metrics())
	}
	snap.History.Tokens = &model.TokenHistory{ContextUsed: s.ContextUsed}
	if s.Payload.Model != nil {
		snap.RecordModel(s.Payload.Model.ID, s.Payload.Model.DisplayName, "")
	}
	return snap
}

type scenarioDef struct {
	modelID, modelName string
	dir                string
	cost               input.Cost
	contextUsed        uint64
	status             source.Status
}

func scenarios() map[string]scenarioDef {
	cwd, _ := os.Getwd()
	return map[string]scenarioDef{
		"dev": {
			modelID: "claude-sonnet-4", modelName: "Claude Sonnet 4", dir: cwd,
			cost: input.Cost{
				TotalCostUSD: 0.023, TotalDurationMs: 12_000, TotalAPIDurationMs: 4_500,
				TotalLinesAdded: 12, TotalLinesRemoved: 4,
				InputTokens: 1_200, OutputTokens: 640, TotalTokens: 1_840,
			},
			contextUsed: 1_840,
			status:      source.Status{Kind: source.StatusReady, Message: "Ready"},
		},
		"critical": {
			modelID: "claude-opus-4-1", modelName: "Claude Opus 4.1", dir: "/Users/dev/enterprise-app",
			cost: input.Cost{
				TotalCostUSD: 1.284, TotalDurationMs: 185_000, TotalAPIDurationMs: 52_000,
				TotalLinesAdded: 150, TotalLinesRemoved: 80,
				InputTokens: 90_000, OutputTokens: 35_000, TotalTokens: 125_000,
				CacheReadTokens: 12_000, CacheWriteTokens: 2_000,
			},
			contextUsed: 192_000,
			status:      source.Status{Kind: source.StatusWarning, Message: "Max Tokens", Detail: "Token limit reached"},
		},
		"thinking": {
			modelID: "claude-sonnet-4", modelName: "Claude Sonnet 4", dir: cwd,
			cost: input.Cost{
				TotalCostUSD: 0.157, TotalDurationMs: 45_000, TotalAPIDurationMs: 12_000,
				TotalLinesAdded: 6, TotalLinesRemoved: 2,
				InputTokens: 9_500, OutputTokens: 3_200, TotalTokens: 12_700, CacheReadTokens: 1_200,
			},
			contextUsed: 12_700,
			status:      source.Status{Kind: source.StatusThinking, Message: "Thinking"},
		},
		"complete": {
			modelID: "claude-sonnet-4", modelName: "Claude Sonnet 4", dir: cwd,
			cost: input.Cost{
				TotalCostUSD: 0.452, TotalDurationMs: 98_000, TotalAPIDurationMs: 26_000,
				TotalLinesAdded: 42, TotalLinesRemoved: 18,
				InputTokens: 24_000, OutputTokens: 12_000, TotalTokens: 36_000,
				CacheReadTokens: 3_000, CacheWriteTokens: 800,
			},
			contextUsed: 36_000,
			status:      source.Status{Kind: source.StatusReady, Message: "Ready"},
		},
		"error": {
			modelID: "claude-haiku-4", modelName: "Claude Haiku 4", dir: cwd,
			cost: input.Cost{
				TotalCostUSD: 0.089, TotalDurationMs: 18_000, TotalAPIDurationMs: 6_000,
				InputTokens: 6_000, OutputTokens: 1_000, TotalTokens: 7_000,
			},
			contextUsed: 7_000,
			status:      source.Status{Kind: source.StatusError, Message: "Error", Detail: "API Error: overloaded"},
		},
	}
}

// Names returns the scenario names in sorted order.
func Names() []string {
	all := scenarios()
	names := make([]string, 0, len(all))
	for n := range all {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Generate builds the named scenario with a fresh session id.
func Generate(name string) (Scenario, error) {
	sp, ok := scenarios()[name]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown mock scenario %q (available: %v)", name, Names())
	}

	cost := sp.cost
	p := &input.Payload{
		SessionID: fmt.Sprintf("mock-%s-%s", name, uuid.NewString()),
		Cwd:       sp.dir,
		Model:     &input.Model{ID: sp.modelID, DisplayName: sp.modelName},
		Workspace: &input.Workspace{CurrentDir: sp.dir, ProjectDir: sp.dir},
		Cost:      &cost,
		Raw:       map[string]any{},
		Mock:      true,
	}
	return Scenario{Name: name, Payload: p, ContextUsed: sp.contextUsed, Status: sp.status}, nil
}

// Valid reports whether name is a known scenario.
func Valid(name string) bool {
	return slices.Contains(Names(), name)
}
