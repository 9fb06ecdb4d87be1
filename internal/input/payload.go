// Package input decodes the JSON payload the host writes to stdin on every
// status line refresh.
package input

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/theirongolddev/statusline-pro/internal/model"
)

// Payload is one status line request. Both snake_case and camelCase keys
// are accepted for the fields older hosts send in camelCase.
type Payload struct {
	SessionID      string     `json:"session_id"`
	TranscriptPath string     `json:"transcript_path"`
	Cwd            string     `json:"cwd"`
	Timestamp      string     `json:"timestamp"`
	Version        string     `json:"version"`
	GitBranch      string     `json:"git_branch"`
	Model          *Model     `json:"model"`
	Workspace      *Workspace `json:"workspace"`
	Git            *Git       `json:"git"`
	Cost           *Cost      `json:"cost"`
	OutputStyle    *struct {
		Name string `json:"name"`
	} `json:"output_style"`
	Exceeds200kTokens bool `json:"exceeds_200k_tokens"`

	// Status and StopReason are legacy hints used when no transcript exists.
	Status     string `json:"status"`
	StopReason string `json:"stop_reason"`

	// Raw is the decoded object kept for sanitizing into the snapshot.
	Raw map[string]any `json:"-"`
	// Mock marks payloads built by the preview scenarios. They are never
	// persisted.
	Mock bool `json:"-"`
}

// Model identifies the active model.
type Model struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Workspace holds the directories the host reports.
type Workspace struct {
	CurrentDir string `json:"current_dir"`
	ProjectDir string `json:"project_dir"`
}

// Git is the optional git summary some hosts include.
type Git struct {
	Branch    string `json:"branch"`
	Status    string `json:"status"`
	Ahead     int    `json:"ahead"`
	Behind    int    `json:"behind"`
	Staged    int    `json:"staged"`
	Unstaged  int    `json:"unstaged"`
	Untracked int    `json:"untracked"`
}

// Cost is the host's cost block. Numbers may arrive as floats.
type Cost struct {
	TotalCostUSD       float64 `json:"total_cost_usd"`
	TotalDurationMs    float64 `json:"total_duration_ms"`
	TotalAPIDurationMs float64 `json:"total_api_duration_ms"`
	TotalLinesAdded    float64 `json:"total_lines_added"`
	TotalLinesRemoved  float64 `json:"total_lines_removed"`
	InputTokens        float64 `json:"input_tokens"`
	OutputTokens       float64 `json:"output_tokens"`
	TotalTokens        float64 `json:"total_tokens"`
	CacheReadTokens    float64 `json:"cache_read_tokens"`
	CacheWriteTokens   float64 `json:"cache_write_tokens"`
}

// camelAliases mirrors the camelCase spellings of the same fields.
type camelAliases struct {
	SessionID      string `json:"sessionId"`
	TranscriptPath string `json:"transcriptPath"`
	CurrentDir     string `json:"currentDir"`
	ModelInfo      *struct {
		ID          string `json:"id"`
		ModelID     string `json:"model_id"`
		DisplayName string `json:"display_name"`
		CamelName   string `json:"displayName"`
	} `json:"modelInfo"`
	Model *struct {
		ModelID   string `json:"model_id"`
		CamelName string `json:"displayName"`
	} `json:"model"`
	Workspace *struct {
		ProjectDir string `json:"projectDir"`
		CurrentDir string `json:"currentDir"`
	} `json:"workspace"`
	ProjectDir  string `json:"projectDir"`
	SessionCost *Cost  `json:"sessionCost"`
}

// Parse reads all of r and decodes it. Empty input yields an empty payload.
func Parse(r io.Reader) (*Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes decodes a payload from data.
func ParseBytes(data []byte) (*Payload, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &Payload{Raw: map[string]any{}}, nil
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	if err := json.Unmarshal(data, &p.Raw); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	var alt camelAliases
	if err := json.Unmarshal(data, &alt); err != nil {
		return nil, fmt.Errorf("decoding payload aliases: %w", err)
	}
	p.applyAliases(alt)
	return &p, nil
}

func (p *Payload) applyAliases(alt camelAliases) {
	p.SessionID = firstNonEmpty(p.SessionID, alt.SessionID)
	p.TranscriptPath = firstNonEmpty(p.TranscriptPath, alt.TranscriptPath)
	if p.Cwd == "" {
		p.Cwd = alt.CurrentDir
	}
	if p.Cost == nil && alt.SessionCost != nil {
		p.Cost = alt.SessionCost
	}

	if p.Model == nil && alt.ModelInfo != nil {
		p.Model = &Model{
			ID:          firstNonEmpty(alt.ModelInfo.ID, alt.ModelInfo.ModelID),
			DisplayName: firstNonEmpty(alt.ModelInfo.DisplayName, alt.ModelInfo.CamelName),
		}
	}
	if p.Model != nil && alt.Model != nil {
		p.Model.ID = firstNonEmpty(p.Model.ID, alt.Model.ModelID)
		p.Model.DisplayName = firstNonEmpty(p.Model.DisplayName, alt.Model.CamelName)
	}

	if alt.Workspace != nil || alt.ProjectDir != "" {
		if p.Workspace == nil {
			p.Workspace = &Workspace{}
		}
		if alt.Workspace != nil {
			p.Workspace.ProjectDir = firstNonEmpty(p.Workspace.ProjectDir, alt.Workspace.ProjectDir)
			p.Workspace.CurrentDir = firstNonEmpty(p.Workspace.CurrentDir, alt.Workspace.CurrentDir)
		}
		p.Workspace.ProjectDir = firstNonEmpty(p.Workspace.ProjectDir, alt.ProjectDir)
	}
}

// ProjectDir returns the best known project directory, or "".
func (p *Payload) ProjectDir() string {
	if p.Workspace != nil && p.Workspace.ProjectDir != "" {
		return p.Workspace.ProjectDir
	}
	if p.Cwd != "" {
		return p.Cwd
	}
	if p.Workspace != nil {
		return p.Workspace.CurrentDir
	}
	return ""
}

// Branch returns the branch name reported by the host, if any.
func (p *Payload) Branch() string {
	if p.Git != nil && p.Git.Branch != "" {
		return p.Git.Branch
	}
	return p.GitBranch
}

// ModelID returns the model id, or "".
func (p *Payload) ModelID() string {
	if p.Model == nil {
		return ""
	}
	return p.Model.ID
}

// Metrics converts the cost block to persisted metrics. Negative values
// become zero and fractional counters are truncated.
func (c *Cost) Metrics() model.CostMetrics {
	if c == nil {
		return model.CostMetrics{}
	}
	return model.CostMetrics{
		TotalCostUSD:       max(c.TotalCostUSD, 0),
		TotalDurationMs:    toUint(c.TotalDurationMs),
		TotalAPIDurationMs: toUint(c.TotalAPIDurationMs),
		TotalLinesAdded:    toUint(c.TotalLinesAdded),
		TotalLinesRemoved:  toUint(c.TotalLinesRemoved),
	}
}

func toUint(f float64) uint64 {
	if f <= 0 {
		return 0
	}
	return uint64(f)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
