// Package config loads the layered TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all statusline-pro configuration.
type Config struct {
	Preset     string           `toml:"preset,omitempty"`
	Theme      string           `toml:"theme"`
	Style      StyleConfig      `toml:"style"`
	Terminal   TerminalConfig   `toml:"terminal"`
	Components ComponentsConfig `toml:"components"`
	Storage    StorageConfig    `toml:"storage"`
	Git        GitConfig        `toml:"git"`
	Debug      DebugConfig      `toml:"debug"`
}

// StyleConfig holds global rendering preferences.
type StyleConfig struct {
	Separator      string     `toml:"separator"`
	EnableColors   AutoDetect `toml:"enable_colors"`
	EnableEmoji    AutoDetect `toml:"enable_emoji"`
	EnableNerdFont AutoDetect `toml:"enable_nerd_font"`
}

// TerminalConfig overrides capability detection.
type TerminalConfig struct {
	ForceNerdFont bool `toml:"force_nerd_font"`
	ForceEmoji    bool `toml:"force_emoji"`
	ForceText     bool `toml:"force_text"`
}

// StorageConfig controls session snapshot persistence.
type StorageConfig struct {
	EnableConversationTracking bool   `toml:"enable_conversation_tracking"`
	EnableCostPersistence      bool   `toml:"enable_cost_persistence"`
	SessionExpiryDays          int    `toml:"session_expiry_days"`
	EnableStartupCleanup       bool   `toml:"enable_startup_cleanup"`
	StoragePath                string `toml:"storage_path,omitempty"`
}

// GitConfig controls git metadata collection.
type GitConfig struct {
	Enabled         bool `toml:"enabled"`
	CacheTTLSeconds int  `toml:"cache_ttl_seconds"`
	TimeoutMs       int  `toml:"timeout_ms"`
}

// DebugConfig controls the log file.
type DebugConfig struct {
	Enabled bool   `toml:"enabled"`
	LogFile string `toml:"log_file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Preset: "PMBTUS",
		Theme:  "classic",
		Style: StyleConfig{
			Separator:      " | ",
			EnableColors:   Auto(),
			EnableEmoji:    Auto(),
			EnableNerdFont: Auto(),
		},
		Components: defaultComponents(),
		Storage: StorageConfig{
			EnableConversationTracking: true,
			EnableCostPersistence:      true,
			SessionExpiryDays:          30,
			EnableStartupCleanup:       true,
		},
		Git: GitConfig{
			Enabled:         true,
			CacheTTLSeconds: 5,
			TimeoutMs:       1000,
		},
	}
}

// ClaudeDir returns ~/.claude.
func ClaudeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude"
	}
	return filepath.Join(home, ".claude")
}

// UserConfigPath returns <claudeDir>/statusline-pro/config.toml.
func UserConfigPath(claudeDir string) string {
	return filepath.Join(claudeDir, "statusline-pro", "config.toml")
}

// ProjectConfigPath returns <claudeDir>/projects/<id>/statusline-pro/config.toml.
func ProjectConfigPath(claudeDir, projectID string) string {
	return filepath.Join(claudeDir, "projects", projectID, "statusline-pro", "config.toml")
}

// LoadOptions selects the layers Load reads.
type LoadOptions struct {
	ClaudeDir  string
	ProjectID  string // project layer is skipped when empty
	CustomPath string // must exist when set
}

// Layer records which keys one configuration file set.
type Layer struct {
	Name      string
	Path      string
	Keys      []string
	Undecoded []string
}

// MergeReport lists the layers applied on top of the defaults, in order.
type MergeReport struct {
	Layers []Layer
}

// Load applies user, project and custom files onto DefaultConfig. Each file
// only overrides the keys it sets. Missing user or project files are skipped.
func Load(opts LoadOptions) (Config, MergeReport, error) {
	cfg := DefaultConfig()
	var report MergeReport

	if opts.ClaudeDir == "" {
		opts.ClaudeDir = ClaudeDir()
	}

	type source struct {
		name     string
		path     string
		required bool
	}
	sources := []source{{name: "user", path: UserConfigPath(opts.ClaudeDir)}}
	if opts.ProjectID != "" {
		sources = append(sources, source{name: "project", path: ProjectConfigPath(opts.ClaudeDir, opts.ProjectID)})
	}
	if opts.CustomPath != "" {
		sources = append(sources, source{name: "custom", path: opts.CustomPath, required: true})
	}

	for _, src := range sources {
		if _, err := os.Stat(src.path); err != nil {
			if errors.Is(err, os.ErrNotExist) && !src.required {
				continue
			}
			if errors.Is(err, os.ErrNotExist) {
				return cfg, report, fmt.Errorf("custom config not found at %s", src.path)
			}
			return cfg, report, fmt.Errorf("reading %s config: %w", src.name, err)
		}

		md, err := toml.DecodeFile(src.path, &cfg)
		if err != nil {
			return cfg, report, fmt.Errorf("parsing %s config %s: %w", src.name, src.path, err)
		}
		report.Layers = append(report.Layers, Layer{
			Name:      src.name,
			Path:      src.path,
			Keys:      keyStrings(md.Keys()),
			Undecoded: keyStrings(md.Undecoded()),
		})
	}

	cfg.normalize()
	return cfg, report, nil
}

func keyStrings(keys []toml.Key) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	return out
}

// normalize clamps values a hand-edited file may get wrong.
func (c *Config) normalize() {
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	switch c.Theme {
	case "classic", "powerline", "capsule":
	default:
		c.Theme = "classic"
	}
	if c.Storage.SessionExpiryDays < 0 {
		c.Storage.SessionExpiryDays = 0
	}
	if c.Git.TimeoutMs <= 0 {
		c.Git.TimeoutMs = 1000
	}
	if c.Git.CacheTTLSeconds < 0 {
		c.Git.CacheTTLSeconds = 0
	}
	t := &c.Components.Tokens
	if t.ProgressWidth < 1 {
		t.ProgressWidth = 1
	}
	if c.Components.Usage.Precision < 0 {
		c.Components.Usage.Precision = 0
	}
	if c.Components.Usage.Precision > 6 {
		c.Components.Usage.Precision = 6
	}
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists reports whether a file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ComponentOrder returns the component names to render, in order. The
// preset letters win over components.order when set.
func (c Config) ComponentOrder() []string {
	if c.Preset == "" {
		return c.Components.Order
	}
	var order []string
	for _, r := range strings.ToUpper(c.Preset) {
		if name, ok := presetLetters[r]; ok {
			order = append(order, name)
		}
	}
	return order
}

var presetLetters = map[rune]string{
	'P': "project",
	'M': "model",
	'B': "branch",
	'T': "tokens",
	'U': "usage",
	'S': "status",
}
