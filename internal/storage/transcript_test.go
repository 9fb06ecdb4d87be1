package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/statusline-pro/internal/model"
)

const (
	usageLine = `{"type":"assistant","uuid":"u1","timestamp":"2025-06-01T10:00:00Z","message":{"usage":{"input_tokens":100,"output_tokens":20,"cache_creation_input_tokens":30,"cache_read_input_tokens":50}}}`
	userLine  = `{"type":"user","message":{"role":"user","content":"hello"}}`
)

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func appendLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		t.Fatal(err)
	}
}

func TestAdvance_UsageSum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	writeLines(t, path, userLine, usageLine)

	state, tokens, err := Advance(path, model.TranscriptState{}, nil)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if tokens == nil {
		t.Fatal("tokens = nil, want usage")
	}
	if tokens.ContextUsed != 200 {
		t.Errorf("ContextUsed = %d, want 200", tokens.ContextUsed)
	}
	if tokens.LastMessageUUID != "u1" || state.LastMessageUUID != "u1" {
		t.Errorf("uuid = %q / %q, want u1", tokens.LastMessageUUID, state.LastMessageUUID)
	}
	if state.ProcessedMessages != 2 {
		t.Errorf("ProcessedMessages = %d, want 2", state.ProcessedMessages)
	}
	info, _ := os.Stat(path)
	if state.ProcessedOffset != info.Size() {
		t.Errorf("ProcessedOffset = %d, want %d", state.ProcessedOffset, info.Size())
	}
}

func TestAdvance_LastUsageWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	writeLines(t, path,
		usageLine,
		`{"type":"assistant","uuid":"u2","message":{"usage":{"input_tokens":5,"output_tokens":5}}}`,
	)
	_, tokens, err := Advance(path, model.TranscriptState{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if tokens.ContextUsed != 10 || tokens.LastMessageUUID != "u2" {
		t.Errorf("tokens = %+v, want context 10 from u2", tokens)
	}
}

func TestAdvance_Incremental(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	writeLines(t, path, userLine, usageLine)

	first, tokens, err := Advance(path, model.TranscriptState{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	appendLines(t, path, userLine, "", `{"type":"assistant","uuid":"u3","message":{"usage":{"input_tokens":1000}}}`)
	second, tokens, err := Advance(path, first, tokens)
	if err != nil {
		t.Fatal(err)
	}
	if second.ProcessedMessages != first.ProcessedMessages+3 {
		t.Errorf("ProcessedMessages = %d, want %d", second.ProcessedMessages, first.ProcessedMessages+3)
	}
	if second.ProcessedOffset <= first.ProcessedOffset {
		t.Errorf("offset did not advance: %d -> %d", first.ProcessedOffset, second.ProcessedOffset)
	}
	if tokens.ContextUsed != 1000 {
		t.Errorf("ContextUsed = %d, want 1000", tokens.ContextUsed)
	}

	third, _, err := Advance(path, second, tokens)
	if err != nil {
		t.Fatal(err)
	}
	if third != second {
		t.Errorf("re-advancing unchanged file moved cursor: %+v -> %+v", second, third)
	}
}

func TestAdvance_CompactionResetsTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	writeLines(t, path,
		usageLine,
		`{"type":"user","isCompactSummary":true,"timestamp":"2025-06-01T11:00:00Z","message":{"role":"user","content":"summary"}}`,
	)
	state, tokens, err := Advance(path, model.TranscriptState{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if tokens == nil || tokens.ContextUsed != 0 || tokens.Input != 0 {
		t.Errorf("tokens = %+v, want zeroed", tokens)
	}
	if tokens.LastTimestamp != "2025-06-01T11:00:00Z" {
		t.Errorf("LastTimestamp = %q", tokens.LastTimestamp)
	}
	if state.ProcessedMessages != 2 {
		t.Errorf("ProcessedMessages = %d, want 2", state.ProcessedMessages)
	}
}

func TestAdvance_TruncationResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	writeLines(t, path, userLine, userLine, usageLine)
	first, _, err := Advance(path, model.TranscriptState{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	writeLines(t, path, userLine)
	second, _, err := Advance(path, first, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.ProcessedMessages != 1 {
		t.Errorf("ProcessedMessages = %d, want 1 after truncation", second.ProcessedMessages)
	}
	if second.ProcessedOffset != int64(len(userLine)+1) {
		t.Errorf("ProcessedOffset = %d, want %d", second.ProcessedOffset, len(userLine)+1)
	}
}

func TestAdvance_PathChangeResets(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jsonl")
	b := filepath.Join(dir, "b.jsonl")
	writeLines(t, a, userLine, userLine, userLine)
	writeLines(t, b, usageLine)

	stateA, _, err := Advance(a, model.TranscriptState{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	stateB, tokens, err := Advance(b, stateA, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stateB.TranscriptPath != b || stateB.ProcessedMessages != 1 {
		t.Errorf("state = %+v, want fresh cursor on b", stateB)
	}
	if tokens == nil || tokens.ContextUsed != 200 {
		t.Errorf("tokens = %+v", tokens)
	}
}

func TestAdvance_MissingFile(t *testing.T) {
	prior := &model.TokenHistory{ContextUsed: 42}
	path := filepath.Join(t.TempDir(), "missing.jsonl")
	state, tokens, err := Advance(path, model.TranscriptState{}, prior)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if state.TranscriptPath != path {
		t.Errorf("TranscriptPath = %q, want %q", state.TranscriptPath, path)
	}
	if tokens != prior {
		t.Error("tokens changed for missing transcript")
	}
}

func TestAdvance_MalformedLinesCounted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	writeLines(t, path, `{"type":"assistant","message":`, "not json", usageLine)
	state, tokens, err := Advance(path, model.TranscriptState{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if state.ProcessedMessages != 3 {
		t.Errorf("ProcessedMessages = %d, want 3", state.ProcessedMessages)
	}
	if tokens == nil || tokens.ContextUsed != 200 {
		t.Errorf("tokens = %+v", tokens)
	}
}
