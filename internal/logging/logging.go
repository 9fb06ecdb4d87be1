// Package logging builds the slog logger. Output goes to a rotating file so
// stdout stays reserved for the status line.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Path of the log file. Empty disables file logging.
	Path  string
	Debug bool
}

// DefaultPath returns <userDir>/logs/statusline.log.
func DefaultPath(userDir string) string {
	return filepath.Join(userDir, "logs", "statusline.log")
}

// New returns a text logger writing to a lumberjack-rotated file, and a
// closer for the file. Warnings and errors are always written; debug output
// only with opts.Debug.
func New(opts Options) (*slog.Logger, io.Closer) {
	if opts.Path == "" {
		return slog.New(slog.DiscardHandler), nopCloser{}
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o750); err != nil {
		return slog.New(slog.DiscardHandler), nopCloser{}
	}

	w := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     14, // days
	}
	return NewWithWriter(w, opts.Debug), w
}

// NewWithWriter returns a text logger writing to w.
func NewWithWriter(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("pid", os.Getpid())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
