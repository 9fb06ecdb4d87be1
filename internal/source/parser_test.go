package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTranscript creates a temp JSONL file and returns its path.
func writeTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNeedsDecode(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"assistant", `{"type":"assistant","message":{}}`, true},
		{"compact summary", `{"type":"user","isCompactSummary":true}`, true},
		{"user", `{"type":"user","message":{"role":"user"}}`, false},
		{"nested assistant", `{"data":{"type":"assistant"},"type":"system"}`, false},
		{"garbage", `not json`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsDecode([]byte(tt.line)); got != tt.want {
				t.Errorf("NeedsDecode(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestDecodeEntry_Usage(t *testing.T) {
	e, err := DecodeEntry([]byte(`{"type":"assistant","uuid":"u1","timestamp":"2025-06-01T10:00:00Z","message":{"id":"m","usage":{"input_tokens":100,"output_tokens":50,"cache_creation_input_tokens":10,"cache_read_input_tokens":500}}}`))
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}
	if e.UUID != "u1" {
		t.Errorf("UUID = %q, want u1", e.UUID)
	}
	u := e.Message.Usage
	if u.InputTokens != 100 || u.OutputTokens != 50 || u.CacheCreationInputTokens != 10 || u.CacheReadInputTokens != 500 {
		t.Errorf("Usage = %+v", u)
	}
}

func TestExtractTopLevelType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"user", `{"type":"user","foo":"bar"}`, "user"},
		{"assistant", `{"type":"assistant","message":{}}`, "assistant"},
		{"system", `{"type": "system","subtype":"turn_duration"}`, "system"},
		{"nested type ignored", `{"data":{"type":"progress"},"type":"user"}`, "user"},
		{"unknown type", `{"type":"progress","data":{}}`, ""},
		{"no type field", `{"message":"hello"}`, ""},
		{"empty", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractTopLevelType([]byte(tt.input))
			if got != tt.want {
				t.Errorf("extractTopLevelType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// FuzzExtractTopLevelType checks the byte-level scanner never panics on
// arbitrary transcript content.
func FuzzExtractTopLevelType(f *testing.F) {
	f.Add([]byte(`{"type":"user","timestamp":"2025-06-01T10:00:00Z"}`))
	f.Add([]byte(`{"type":"assistant","message":{"id":"x","usage":{}}}`))
	f.Add([]byte(`{"type":"system","subtype":"turn_duration","durationMs":5000}`))
	f.Add([]byte(`{"data":{"type":"nested"},"type":"user"}`))
	f.Add([]byte(`not json`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"type":null}`))
	f.Add([]byte(`{"type":123}`))
	f.Add([]byte(``))
	f.Add([]byte(`{"type":"user`))

	f.Fuzz(func(t *testing.T, data []byte) {
		result := extractTopLevelType(data)
		switch result {
		case "", "user", "assistant", "system":
		default:
			t.Errorf("unexpected type %q from input %q", result, data)
		}
	})
}
