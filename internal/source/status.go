package source

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// StatusKind is the coarse state of the assistant inferred from a transcript.
type StatusKind string

const (
	StatusReady    StatusKind = "ready"
	StatusThinking StatusKind = "thinking"
	StatusTool     StatusKind = "tool"
	StatusError    StatusKind = "error"
	StatusWarning  StatusKind = "warning"
)

// Status is what the status component renders.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
	Detail  string     `json:"detail,omitempty"`
}

// tailWindow bounds how much of a transcript is read to infer status.
const tailWindow = 256 * 1024

// recentToolWindow is how many trailing lines are searched for a tool name.
const recentToolWindow = 5

// ReadStatus infers the assistant status from the tail of a transcript.
func ReadStatus(path string) (Status, error) {
	f, err := os.Open(path)
	if err != nil {
		return Status{}, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return Status{}, err
	}
	start := info.Size() - tailWindow
	if start < 0 {
		start = 0
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return Status{}, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return Status{}, err
	}
	if start > 0 {
		// Drop the partial first line.
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			data = data[i+1:]
		}
	}
	return StatusFromLines(bytes.Split(data, []byte("\n"))), nil
}

// StatusFromLines classifies transcript lines, oldest first.
func StatusFromLines(lines [][]byte) Status {
	var (
		lastType    string
		stopReason  string
		errored     bool
		errorDetail string
	)

	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 {
			continue
		}
		e, err := DecodeEntry(line)
		if err != nil {
			continue
		}
		if lastType == "" {
			lastType = e.Type
		}
		if e.Type != "assistant" || e.Message == nil || e.Message.Usage == nil {
			continue
		}
		stopReason = e.Message.StopReason
		errored, errorDetail = entryError(e)
		break
	}

	switch {
	case errored:
		return Status{Kind: StatusError, Message: "Error", Detail: errorDetail}
	case stopReason != "":
		return fromStopReason(stopReason, recentToolName(lines))
	case lastType == "user":
		return Status{Kind: StatusThinking, Message: "Thinking"}
	}
	return Status{Kind: StatusReady, Message: "Ready"}
}

// StatusFromHint maps a legacy status or stop_reason string from the payload.
func StatusFromHint(status, stopReason string) Status {
	switch strings.ToLower(status) {
	case "thinking", "processing":
		return Status{Kind: StatusThinking, Message: "Thinking"}
	case "tool", "tool_use":
		return Status{Kind: StatusTool, Message: "Tool"}
	case "error":
		return Status{Kind: StatusError, Message: "Error"}
	case "warning":
		return Status{Kind: StatusWarning, Message: "Warning"}
	}
	if stopReason != "" {
		return fromStopReason(stopReason, "")
	}
	return Status{Kind: StatusReady, Message: "Ready"}
}

func fromStopReason(reason, tool string) Status {
	switch reason {
	case "tool_use":
		return Status{Kind: StatusTool, Message: "Tool", Detail: tool}
	case "max_tokens":
		return Status{Kind: StatusWarning, Message: "Max Tokens", Detail: "Token limit reached"}
	case "stop_sequence":
		return Status{Kind: StatusError, Message: "Error", Detail: "Stop sequence encountered"}
	}
	return Status{Kind: StatusReady, Message: "Ready"}
}

func entryError(e *Entry) (bool, string) {
	if e.IsAPIError {
		return true, firstText(e.Message)
	}
	if len(e.ToolUseResult) > 0 && e.ToolUseResult[0] == '{' {
		var r struct {
			Error string `json:"error"`
			Type  string `json:"type"`
		}
		if json.Unmarshal(e.ToolUseResult, &r) == nil {
			if r.Error != "" && !isBlockedMessage(r.Error) {
				return true, r.Error
			}
			if strings.EqualFold(r.Type, "error") {
				return true, ""
			}
		}
	}
	if e.Message.StopReason == "stop_sequence" {
		text := firstText(e.Message)
		if strings.HasPrefix(text, "API Error") {
			return true, text
		}
	}
	return false, ""
}

func isBlockedMessage(msg string) bool {
	return strings.Contains(msg, "blocked") || strings.Contains(msg, "rejected by user")
}

func firstText(m *Message) string {
	for _, b := range m.Blocks() {
		if b.Type == "text" && b.Text != "" {
			return b.Text
		}
	}
	return ""
}

func recentToolName(lines [][]byte) string {
	seen := 0
	for i := len(lines) - 1; i >= 0 && seen < recentToolWindow; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 {
			continue
		}
		seen++
		e, err := DecodeEntry(line)
		if err != nil || e.Message == nil {
			continue
		}
		for _, b := range e.Message.Blocks() {
			if b.Type == "tool_use" && b.Name != "" {
				return b.Name
			}
		}
	}
	return ""
}
