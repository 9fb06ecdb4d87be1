package source

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
)

// ReadAssistantEntries decodes the complete lines of path after offset and
// returns the assistant entries carrying usage, plus the offset just past
// the last complete line. A trailing line without a newline is left for the
// next call.
func ReadAssistantEntries(path string, offset int64) ([]*Entry, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, offset, err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, err
	}

	var out []*Entry
	r := bufio.NewReaderSize(f, 64*1024)
	for {
		line, err := r.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			return out, offset, nil
		}
		if err != nil {
			return out, offset, err
		}
		offset += int64(len(line))

		line = bytes.TrimSpace(line)
		if len(line) == 0 || EntryType(line) != "assistant" {
			continue
		}
		e, err := DecodeEntry(line)
		if err != nil || e.Message == nil || e.Message.Usage == nil {
			continue
		}
		out = append(out, e)
	}
}
