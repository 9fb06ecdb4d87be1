package storage

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/theirongolddev/statusline-pro/internal/config"
)

// EnvStoragePath overrides the storage root.
const EnvStoragePath = "STATUSLINE_STORAGE_PATH"

// Settings controls persistence.
type Settings struct {
	Root                       string
	EnableConversationTracking bool
	EnableCostPersistence      bool
	SessionExpiryDays          int
	EnableStartupCleanup       bool
}

// DefaultSettings returns the settings used when no configuration is found.
func DefaultSettings() Settings {
	return Settings{
		Root:                       DefaultRoot(""),
		EnableConversationTracking: true,
		EnableCostPersistence:      true,
		SessionExpiryDays:          30,
		EnableStartupCleanup:       true,
	}
}

// SettingsFromConfig maps the [storage] table onto Settings.
func SettingsFromConfig(c config.StorageConfig) Settings {
	return Settings{
		Root:                       DefaultRoot(c.StoragePath),
		EnableConversationTracking: c.EnableConversationTracking,
		EnableCostPersistence:      c.EnableCostPersistence,
		SessionExpiryDays:          c.SessionExpiryDays,
		EnableStartupCleanup:       c.EnableStartupCleanup,
	}
}

// DefaultRoot returns the storage root: $STATUSLINE_STORAGE_PATH, then
// configured, then ~/.claude.
func DefaultRoot(configured string) string {
	if env := os.Getenv(EnvStoragePath); env != "" {
		return env
	}
	if configured != "" {
		return configured
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude"
	}
	return filepath.Join(home, ".claude")
}

// Runtime is the process-wide storage context. It is built once at startup
// and passed to every Store. Settings are fixed at construction; only the
// project id is recorded later.
type Runtime struct {
	mu        sync.RWMutex
	settings  Settings
	projectID string
}

// NewRuntime returns a runtime holding s.
func NewRuntime(s Settings) *Runtime {
	return &Runtime{settings: s}
}

// Settings returns a copy of the active settings.
func (r *Runtime) Settings() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// ProjectID returns the resolved project id, or "" before resolution.
func (r *Runtime) ProjectID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.projectID
}

// SetProjectID records the project id.
func (r *Runtime) SetProjectID(id string) {
	r.mu.Lock()
	r.projectID = id
	r.mu.Unlock()
}

// ResolveProject computes and records the project id for a render.
func (r *Runtime) ResolveProject(transcriptPath, projectDir string) string {
	id := ResolveProjectID(transcriptPath, projectDir)
	r.SetProjectID(id)
	return id
}

// ProjectDir returns <root>/projects/<id>/statusline-pro.
func (s Settings) ProjectDir(projectID string) string {
	return filepath.Join(s.Root, "projects", projectID, "statusline-pro")
}

// SessionsDir returns the directory holding a project's snapshots.
func (s Settings) SessionsDir(projectID string) string {
	return filepath.Join(s.ProjectDir(projectID), "sessions")
}

// UserDir returns <root>/statusline-pro, home of the cache and logs.
func (s Settings) UserDir() string {
	return filepath.Join(s.Root, "statusline-pro")
}
