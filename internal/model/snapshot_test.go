package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRecordModel_InsertThenTouch(t *testing.T) {
	s := NewSnapshot("s1")
	s.RecordModel("claude-sonnet-4-5", "Sonnet 4.5", "2025-06-01T10:00:00Z")
	s.RecordModel("claude-sonnet-4-5", "", "2025-06-01T11:00:00Z")

	if len(s.History.ModelUsage) != 1 {
		t.Fatalf("len(ModelUsage) = %d, want 1", len(s.History.ModelUsage))
	}
	e := s.History.ModelUsage[0]
	if e.DisplayName != "Sonnet 4.5" {
		t.Errorf("DisplayName = %q, want kept value", e.DisplayName)
	}
	if e.LastUsedAt != "2025-06-01T11:00:00Z" {
		t.Errorf("LastUsedAt = %q, want updated", e.LastUsedAt)
	}
}

func TestRecordModel_IgnoresEmptyID(t *testing.T) {
	s := NewSnapshot("s1")
	s.RecordModel("", "x", "y")
	if len(s.History.ModelUsage) != 0 {
		t.Errorf("len(ModelUsage) = %d, want 0", len(s.History.ModelUsage))
	}
}

func TestTouch_CreatedAtSetOnce(t *testing.T) {
	s := NewSnapshot("s1")
	first := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.Touch(first)
	s.Touch(first.Add(time.Hour))

	if !s.Meta.CreatedAt.Equal(first) {
		t.Errorf("CreatedAt = %v, want %v", s.Meta.CreatedAt, first)
	}
	if !s.Meta.LastUpdateTime.Equal(first.Add(time.Hour)) {
		t.Errorf("LastUpdateTime = %v, want %v", s.Meta.LastUpdateTime, first.Add(time.Hour))
	}
}

func TestSnapshot_JSONFieldNames(t *testing.T) {
	s := NewSnapshot("abc")
	s.History.Tokens = &TokenHistory{Input: 1, ContextUsed: 1}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{
		`"meta"`, `"session_id":"abc"`, `"history"`, `"cost"`, `"accumulated"`,
		`"total_cost_usd"`, `"context_used":1`, `"model_usage":[]`,
		`"transcript_state"`, `"processed_offset":0`,
	} {
		if !strings.Contains(string(data), key) {
			t.Errorf("marshalled snapshot missing %s: %s", key, data)
		}
	}
	if strings.Contains(string(data), `"created_at"`) {
		t.Errorf("zero created_at should be omitted: %s", data)
	}
}

func TestSnapshot_IgnoresUnknownFields(t *testing.T) {
	raw := `{"meta":{"session_id":"old","legacy":true},"history":{"cost":{},"model_usage":[],"extra":1},"transcript_state":{"processed_offset":12}}`
	var s SessionSnapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Meta.SessionID != "old" || s.TranscriptState.ProcessedOffset != 12 {
		t.Errorf("decoded = %+v", s)
	}
}
