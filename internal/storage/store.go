// Package storage persists one usage snapshot per session so that cost and
// token totals survive across status line invocations.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/statusline-pro/internal/input"
	"github.com/theirongolddev/statusline-pro/internal/model"
)

// ErrNoSessionID is returned by Update when the payload carries no session id.
var ErrNoSessionID = errors.New("payload has no session id")

// DisabledSessionID is the id of the placeholder snapshot returned while
// cost persistence is turned off.
const DisabledSessionID = "disabled"

// Store reads and writes the snapshots of one project.
type Store struct {
	settings    Settings
	projectID   string
	sessionsDir string
	logger      *slog.Logger

	now   func() time.Time
	getwd func() (string, error)
}

// Open prepares the directory layout for the runtime's project and returns
// a store bound to it.
func Open(rt *Runtime, logger *slog.Logger) (*Store, error) {
	settings := rt.Settings()
	projectID := rt.ProjectID()
	if projectID == "" {
		projectID = rt.ResolveProject("", "")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Store{
		settings:    settings,
		projectID:   projectID,
		sessionsDir: settings.SessionsDir(projectID),
		logger:      logger,
		now:         time.Now,
		getwd:       os.Getwd,
	}

	for _, dir := range []string{settings.UserDir(), s.sessionsDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating storage dir: %w", err)
		}
	}
	return s, nil
}

// ProjectID returns the project the store is bound to.
func (s *Store) ProjectID() string { return s.projectID }

// SessionsDir returns the directory holding the snapshot files.
func (s *Store) SessionsDir() string { return s.sessionsDir }

func (s *Store) sessionPath(sessionID string) string {
	return filepath.Join(s.sessionsDir, sessionID+".json")
}

// Update folds one payload into its session snapshot and persists it.
// Cost, transcript and model steps run in order; a failing transcript step
// is logged and does not stop the others.
func (s *Store) Update(p *input.Payload) (*model.SessionSnapshot, error) {
	if !s.settings.EnableCostPersistence {
		return model.NewSnapshot(DisabledSessionID), nil
	}
	if p == nil || p.SessionID == "" {
		return nil, ErrNoSessionID
	}
	if err := validateSessionID(p.SessionID); err != nil {
		return nil, err
	}

	snap, err := s.Get(p.SessionID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = model.NewSnapshot(p.SessionID)
	}

	now := s.now().UTC()
	snap.Touch(now)
	snap.Meta.ProjectPath = s.projectPath(p, snap.Meta.ProjectPath)
	snap.Latest = sanitizeLatest(p.Raw)

	if p.Cost != nil {
		snap.History.Cost = snap.History.Cost.Apply(p.Cost.Metrics())
	}

	if p.TranscriptPath != "" {
		state, tokens, err := Advance(p.TranscriptPath, snap.TranscriptState, snap.History.Tokens)
		if err != nil {
			s.logger.Warn("transcript scan failed",
				"session", p.SessionID, "path", p.TranscriptPath, "err", err)
		} else {
			snap.TranscriptState = state
			snap.History.Tokens = tokens
		}
	}

	if p.Model != nil && p.Model.ID != "" {
		usedAt := p.Timestamp
		if usedAt == "" && snap.History.Tokens != nil {
			usedAt = snap.History.Tokens.LastTimestamp
		}
		if usedAt == "" {
			usedAt = now.Format(time.RFC3339)
		}
		snap.RecordModel(p.Model.ID, p.Model.DisplayName, usedAt)
	}

	if err := s.save(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) projectPath(p *input.Payload, existing string) string {
	if dir := p.ProjectDir(); dir != "" {
		return dir
	}
	if existing != "" {
		return existing
	}
	if wd, err := s.getwd(); err == nil {
		return wd
	}
	return ""
}

// Get loads a snapshot. A missing snapshot returns nil, nil; a corrupt one
// is logged and treated as missing.
func (s *Store) Get(sessionID string) (*model.SessionSnapshot, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.sessionPath(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session %s: %w", sessionID, err)
	}
	var snap model.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("ignoring corrupt session snapshot", "session", sessionID, "err", err)
		return nil, nil
	}
	return &snap, nil
}

// List returns every readable snapshot of the project, most recently
// updated first.
func (s *Store) List() ([]model.SessionSnapshot, error) {
	entries, err := os.ReadDir(s.sessionsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	var out []model.SessionSnapshot
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		snap, err := LoadFile(filepath.Join(s.sessionsDir, e.Name()))
		if err != nil {
			s.logger.Debug("skipping unreadable snapshot", "file", e.Name(), "err", err)
			continue
		}
		out = append(out, *snap)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Meta.LastUpdateTime.After(out[j].Meta.LastUpdateTime)
	})
	return out, nil
}

// Cleanup removes snapshots, and temp files left by an interrupted save,
// whose file was last modified more than retentionDays ago. Zero or
// negative retention disables the sweep. Files that cannot be removed are
// skipped.
func (s *Store) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(s.sessionsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("listing sessions: %w", err)
	}

	cutoff := s.now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !isSweepable(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.sessionsDir, e.Name())); err != nil {
			s.logger.Debug("cleanup: could not remove snapshot", "file", e.Name(), "err", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func isSweepable(name string) bool {
	return filepath.Ext(name) == ".json" || strings.HasSuffix(name, ".json.tmp")
}

// save writes snap next to its final path and renames it into place.
func (s *Store) save(snap *model.SessionSnapshot) (err error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.sessionsDir, snap.Meta.SessionID+"-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist session snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to persist session snapshot: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist session snapshot: %w", err)
	}
	if err = os.Rename(tmpPath, s.sessionPath(snap.Meta.SessionID)); err != nil {
		return fmt.Errorf("failed to persist session snapshot: %w", err)
	}
	return nil
}

// LoadFile decodes the snapshot stored at path.
func LoadFile(path string) (*model.SessionSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap model.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func validateSessionID(id string) error {
	if id == "" {
		return ErrNoSessionID
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return fmt.Errorf("invalid session id %q", id)
	}
	return nil
}
