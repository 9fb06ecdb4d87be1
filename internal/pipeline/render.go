// Package pipeline produces one status line from one payload, and loads
// stored snapshots in bulk for the reporting commands.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/theirongolddev/statusline-pro/internal/component"
	"github.com/theirongolddev/statusline-pro/internal/config"
	"github.com/theirongolddev/statusline-pro/internal/gitinfo"
	"github.com/theirongolddev/statusline-pro/internal/input"
	"github.com/theirongolddev/statusline-pro/internal/mock"
	"github.com/theirongolddev/statusline-pro/internal/model"
	"github.com/theirongolddev/statusline-pro/internal/source"
	"github.com/theirongolddev/statusline-pro/internal/storage"
	"github.com/theirongolddev/statusline-pro/internal/store"
	"github.com/theirongolddev/statusline-pro/internal/terminal"
	"github.com/theirongolddev/statusline-pro/internal/theme"
)

// Deps are the collaborators of a render. Store, Cache and Git may be nil,
// which skips persistence, caching and git collection respectively.
type Deps struct {
	Config config.Config
	Caps   terminal.Capabilities
	Store  *storage.Store
	Cache  *store.Cache
	Git    *gitinfo.Collector
	Logger *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

// Render updates the session snapshot and collects git state concurrently,
// then builds and themes the configured components.
func Render(ctx context.Context, d Deps, p *input.Payload) (string, error) {
	if p == nil {
		return "", errors.New("nil payload")
	}
	log := d.logger()
	start := time.Now()

	var (
		wg   sync.WaitGroup
		snap *model.SessionSnapshot
		git  *gitinfo.Info
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		snap = updateSnapshot(d, p, log)
	}()
	go func() {
		defer wg.Done()
		git = collectGit(ctx, d, p, log)
	}()
	status := transcriptStatus(d, p.TranscriptPath, log)
	wg.Wait()

	out := draw(&component.Context{
		Payload:  p,
		Config:   d.Config,
		Caps:     d.Caps,
		Snapshot: snap,
		Git:      git,
		Status:   status,
	})
	log.Debug("rendered", "session", p.SessionID, "elapsed", time.Since(start))
	return out, nil
}

// RenderScenario renders a mock scenario. Nothing is persisted; git state
// is still collected for the scenario's directory.
func RenderScenario(ctx context.Context, d Deps, s mock.Scenario) (string, error) {
	status := s.Status
	git := collectGit(ctx, d, s.Payload, d.logger())
	return draw(&component.Context{
		Payload:  s.Payload,
		Config:   d.Config,
		Caps:     d.Caps,
		Snapshot: s.Snapshot(),
		Git:      git,
		Status:   &status,
	}), nil
}

func draw(cctx *component.Context) string {
	segs := component.Build(cctx)
	r := theme.New(cctx.Config.Theme, cctx.Config.Style.Separator, cctx.Caps)
	return r.Render(segs)
}

func updateSnapshot(d Deps, p *input.Payload, log *slog.Logger) *model.SessionSnapshot {
	if d.Store == nil || p.Mock {
		return nil
	}
	snap, err := d.Store.Update(p)
	switch {
	case errors.Is(err, storage.ErrNoSessionID):
		log.Debug("payload without session id, not persisted")
		return nil
	case err != nil:
		log.Warn("snapshot update failed", "session", p.SessionID, "error", err)
		return nil
	case snap.Meta.SessionID == storage.DisabledSessionID:
		return nil
	}
	return snap
}

func collectGit(ctx context.Context, d Deps, p *input.Payload, log *slog.Logger) *gitinfo.Info {
	if d.Git == nil || !d.Config.Git.Enabled {
		return nil
	}
	dir := p.ProjectDir()
	if dir == "" {
		return nil
	}
	info, err := d.Git.Collect(ctx, dir)
	if err != nil {
		log.Warn("git collection failed", "dir", dir, "error", err)
		return nil
	}
	return &info
}

// transcriptStatus reads the assistant status from the transcript tail,
// cached against the transcript's fingerprint.
func transcriptStatus(d Deps, path string, log *slog.Logger) *source.Status {
	if path == "" {
		return nil
	}
	fp, err := store.FingerprintOf(path)
	if err != nil || fp == (store.Fingerprint{}) {
		return nil
	}

	if d.Cache != nil {
		data, hit, err := d.Cache.Lookup(store.KindStatus, path, fp, 0)
		if err != nil {
			log.Warn("status cache read failed", "path", path, "error", err)
		}
		var st source.Status
		if hit && json.Unmarshal(data, &st) == nil {
			return &st
		}
	}

	st, err := source.ReadStatus(path)
	if err != nil {
		log.Debug("transcript status unavailable", "path", path, "error", err)
		return nil
	}
	if d.Cache != nil {
		if data, err := json.Marshal(st); err == nil {
			if err := d.Cache.Put(store.KindStatus, path, fp, data); err != nil {
				log.Warn("status cache write failed", "path", path, "error", err)
			}
		}
	}
	return &st
}
