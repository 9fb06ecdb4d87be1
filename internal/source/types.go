package source

import "encoding/json"

// Entry is a single line of a Claude Code JSONL transcript, reduced to the
// fields the status line reads.
type Entry struct {
	Type             string          `json:"type"`
	UUID             string          `json:"uuid,omitempty"`
	Timestamp        string          `json:"timestamp,omitempty"`
	SessionID        string          `json:"sessionId,omitempty"`
	IsCompactSummary bool            `json:"isCompactSummary,omitempty"`
	IsAPIError       bool            `json:"isApiErrorMessage,omitempty"`
	Message          *Message        `json:"message,omitempty"`
	ToolUseResult    json.RawMessage `json:"toolUseResult,omitempty"`
}

// Message is the assistant or user message envelope.
type Message struct {
	ID         string          `json:"id"`
	Role       string          `json:"role"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason,omitempty"`
	Usage      *Usage          `json:"usage,omitempty"`
	Content    json.RawMessage `json:"content,omitempty"`
}

// Usage holds token counts from the API response.
type Usage struct {
	InputTokens              uint64 `json:"input_tokens"`
	OutputTokens             uint64 `json:"output_tokens"`
	CacheCreationInputTokens uint64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     uint64 `json:"cache_read_input_tokens"`
}

// ContentBlock is one element of a message content array.
type ContentBlock struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`
}

// Blocks decodes the content array. String content yields nil.
func (m *Message) Blocks() []ContentBlock {
	if m == nil || len(m.Content) == 0 || m.Content[0] != '[' {
		return nil
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(m.Content, &blocks); err != nil {
		return nil
	}
	return blocks
}

// DiscoveredFile is a transcript found under the Claude projects directory.
type DiscoveredFile struct {
	Path       string
	Project    string // decoded display name (e.g., "gitlore")
	ProjectDir string // raw directory name
	SessionID  string // extracted from filename
}
