package storage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/statusline-pro/internal/model"
	"github.com/theirongolddev/statusline-pro/internal/source"
)

// Advance reads the lines appended to the transcript at path since prior
// and returns the moved cursor together with the latest token snapshot.
//
// Every line consumed advances the offset by its byte length and the message
// count by one, blank and malformed lines included. A missing file is not an
// error: the path is recorded and tokens are returned unchanged.
func Advance(path string, prior model.TranscriptState, tokens *model.TokenHistory) (model.TranscriptState, *model.TokenHistory, error) {
	state := prior
	if state.TranscriptPath != path {
		state = model.TranscriptState{TranscriptPath: path}
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, tokens, nil
		}
		return prior, tokens, fmt.Errorf("stat transcript: %w", err)
	}
	if state.ProcessedOffset > info.Size() {
		state.ProcessedOffset = 0
		state.ProcessedMessages = 0
	}
	if state.ProcessedOffset == info.Size() {
		return state, tokens, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return prior, tokens, fmt.Errorf("opening transcript: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(state.ProcessedOffset, io.SeekStart); err != nil {
		return prior, tokens, fmt.Errorf("seeking transcript: %w", err)
	}

	r := bufio.NewReaderSize(f, 256*1024)
	for {
		line, readErr := r.ReadBytes('\n')
		if len(line) > 0 {
			state.ProcessedOffset += int64(len(line))
			state.ProcessedMessages++
			if t := applyLine(bytes.TrimSpace(line)); t != nil {
				tokens = t
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return prior, tokens, fmt.Errorf("reading transcript: %w", readErr)
		}
	}

	if tokens != nil {
		state.LastMessageUUID = tokens.LastMessageUUID
		state.LastTimestamp = tokens.LastTimestamp
	}
	return state, tokens, nil
}

// applyLine returns a replacement token snapshot, or nil when the line does
// not touch token accounting.
func applyLine(line []byte) *model.TokenHistory {
	if len(line) == 0 || !source.NeedsDecode(line) {
		return nil
	}
	e, err := source.DecodeEntry(line)
	if err != nil {
		return nil
	}

	if e.IsCompactSummary {
		return &model.TokenHistory{LastTimestamp: e.Timestamp}
	}
	if e.Type != "assistant" || e.Message == nil || e.Message.Usage == nil {
		return nil
	}

	u := e.Message.Usage
	return &model.TokenHistory{
		Input:              u.InputTokens,
		Output:             u.OutputTokens,
		CacheCreationInput: u.CacheCreationInputTokens,
		CacheReadInput:     u.CacheReadInputTokens,
		ContextUsed:        u.InputTokens + u.OutputTokens + u.CacheCreationInputTokens + u.CacheReadInputTokens,
		LastMessageUUID:    e.UUID,
		LastTimestamp:      e.Timestamp,
	}
}
