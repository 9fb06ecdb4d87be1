// Package watcher follows a growing transcript file with fsnotify and a
// polling safety net.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change reports that the file grew past the recorded offset, or shrank
// below it, in which case Offset is 0.
type Change struct {
	Path   string
	Offset int64 // read from this offset
	Size   int64
}

// Watcher follows one file.
type Watcher struct {
	path         string
	pollInterval time.Duration
	logger       *slog.Logger

	mu     sync.Mutex
	offset int64
}

// New returns a watcher for path.
func New(path string, pollInterval time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Watcher{path: path, pollInterval: pollInterval, logger: logger}
}

// SetOffset records that the file has been read up to offset.
func (w *Watcher) SetOffset(offset int64) {
	w.mu.Lock()
	w.offset = offset
	w.mu.Unlock()
}

// Offset returns the recorded read offset.
func (w *Watcher) Offset() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.offset
}

// Run calls onChange from a single goroutine whenever the file changes,
// until ctx is done. The parent directory is watched so that a file
// created after Run starts is still picked up.
func (w *Watcher) Run(ctx context.Context, onChange func(Change)) error {
	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		defer func() { _ = fsw.Close() }()
		if err := fsw.Add(filepath.Dir(w.path)); err != nil {
			w.logger.Debug("fsnotify add failed, polling only", "path", w.path, "error", err)
		} else {
			events, errs = fsw.Events, fsw.Errors
		}
	} else {
		w.logger.Debug("fsnotify unavailable, polling only", "error", err)
	}

	w.loop(ctx, events, errs, onChange)
	return nil
}

// loop checks the file on every matching event and on each poll tick.
// Watcher errors are logged; the poll keeps running regardless.
func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, onChange func(Change)) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.check(onChange)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) == filepath.Clean(w.path) &&
				ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.check(onChange)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Debug("fsnotify error", "path", w.path, "error", err)
		case <-ticker.C:
			w.check(onChange)
		}
	}
}

func (w *Watcher) check(onChange func(Change)) {
	info, err := os.Stat(w.path)
	if err != nil {
		return
	}

	w.mu.Lock()
	offset := w.offset
	if info.Size() < offset {
		// Truncated or replaced; start over.
		offset = 0
		w.offset = 0
	}
	w.mu.Unlock()

	if info.Size() > offset {
		onChange(Change{Path: w.path, Offset: offset, Size: info.Size()})
	}
}
