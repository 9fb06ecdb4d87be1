// Package model defines the persisted per-session usage snapshot.
package model

import "time"

// SessionSnapshot is the on-disk record for one session, stored as
// <session_id>.json. Unknown fields in older files are ignored on load.
type SessionSnapshot struct {
	Meta            SessionMeta     `json:"meta"`
	Latest          map[string]any  `json:"latest,omitempty"`
	History         SessionHistory  `json:"history"`
	TranscriptState TranscriptState `json:"transcript_state"`
}

// SessionMeta identifies a snapshot. SessionID is the only identity key.
type SessionMeta struct {
	SessionID      string    `json:"session_id"`
	ProjectPath    string    `json:"project_path,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
	LastUpdateTime time.Time `json:"last_update_time,omitzero"`
}

// SessionHistory carries the values that survive across invocations.
type SessionHistory struct {
	Cost       CostHistory       `json:"cost"`
	Tokens     *TokenHistory     `json:"tokens,omitempty"`
	ModelUsage []ModelUsageEntry `json:"model_usage"`
}

// TokenHistory is the token usage of the most recent assistant message.
// ContextUsed is the sum of the four counters, never a running total.
type TokenHistory struct {
	Input              uint64 `json:"input"`
	Output             uint64 `json:"output"`
	CacheCreationInput uint64 `json:"cache_creation_input"`
	CacheReadInput     uint64 `json:"cache_read_input"`
	ContextUsed        uint64 `json:"context_used"`
	LastMessageUUID    string `json:"last_message_uuid,omitempty"`
	LastTimestamp      string `json:"last_timestamp,omitempty"`
}

// ModelUsageEntry records that a model was seen in the session.
type ModelUsageEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	LastUsedAt  string `json:"last_used_at,omitempty"`
}

// TranscriptState is the incremental read cursor over a transcript file.
type TranscriptState struct {
	TranscriptPath    string `json:"transcript_path,omitempty"`
	ProcessedOffset   int64  `json:"processed_offset"`
	ProcessedMessages int64  `json:"processed_messages"`
	LastMessageUUID   string `json:"last_message_uuid,omitempty"`
	LastTimestamp     string `json:"last_timestamp,omitempty"`
}

// NewSnapshot returns an empty snapshot for sessionID.
func NewSnapshot(sessionID string) *SessionSnapshot {
	return &SessionSnapshot{
		Meta:    SessionMeta{SessionID: sessionID},
		History: SessionHistory{ModelUsage: []ModelUsageEntry{}},
	}
}

// Touch stamps the snapshot with now. CreatedAt is only set once.
func (s *SessionSnapshot) Touch(now time.Time) {
	if s.Meta.CreatedAt.IsZero() {
		s.Meta.CreatedAt = now
	}
	s.Meta.LastUpdateTime = now
}

// RecordModel inserts or touches the entry for id. Empty displayName or
// usedAt never erase values already known.
func (s *SessionSnapshot) RecordModel(id, displayName, usedAt string) {
	if id == "" {
		return
	}
	for i := range s.History.ModelUsage {
		e := &s.History.ModelUsage[i]
		if e.ID != id {
			continue
		}
		if displayName != "" {
			e.DisplayName = displayName
		}
		if usedAt != "" {
			e.LastUsedAt = usedAt
		}
		return
	}
	s.History.ModelUsage = append(s.History.ModelUsage, ModelUsageEntry{
		ID:          id,
		DisplayName: displayName,
		LastUsedAt:  usedAt,
	})
}

// ContextUsed returns the last known context usage, or 0.
func (s *SessionSnapshot) ContextUsed() uint64 {
	if s == nil || s.History.Tokens == nil {
		return 0
	}
	return s.History.Tokens.ContextUsed
}
