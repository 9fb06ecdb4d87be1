package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_DefaultsWhenNoFiles(t *testing.T) {
	cfg, report, err := Load(LoadOptions{ClaudeDir: t.TempDir(), ProjectID: "-tmp-x"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(report.Layers) != 0 {
		t.Errorf("layers = %d, want 0", len(report.Layers))
	}
	if cfg.Theme != "classic" || cfg.Preset != "PMBTUS" {
		t.Errorf("unexpected defaults: theme=%q preset=%q", cfg.Theme, cfg.Preset)
	}
	if !cfg.Style.EnableColors.Auto {
		t.Error("enable_colors should default to auto")
	}
}

func TestLoad_LayerOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, UserConfigPath(dir), `
theme = "powerline"
[storage]
session_expiry_days = 10
[git]
timeout_ms = 500
`)
	writeFile(t, ProjectConfigPath(dir, "-home-u-proj"), `
theme = "capsule"
[components.usage]
precision = 4
`)
	custom := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, custom, `
[git]
timeout_ms = 250
`)

	cfg, report, err := Load(LoadOptions{ClaudeDir: dir, ProjectID: "-home-u-proj", CustomPath: custom})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Theme != "capsule" {
		t.Errorf("theme = %q, want capsule (project overrides user)", cfg.Theme)
	}
	if cfg.Storage.SessionExpiryDays != 10 {
		t.Errorf("session_expiry_days = %d, want 10 (user value kept)", cfg.Storage.SessionExpiryDays)
	}
	if cfg.Git.TimeoutMs != 250 {
		t.Errorf("timeout_ms = %d, want 250 (custom overrides user)", cfg.Git.TimeoutMs)
	}
	if cfg.Components.Usage.Precision != 4 {
		t.Errorf("precision = %d, want 4", cfg.Components.Usage.Precision)
	}
	// Keys not set anywhere keep defaults.
	if cfg.Components.Usage.DisplayMode != "conversation" {
		t.Errorf("display_mode = %q, want default", cfg.Components.Usage.DisplayMode)
	}
	if !cfg.Git.Enabled {
		t.Error("git.enabled should keep its default")
	}

	var names []string
	for _, l := range report.Layers {
		names = append(names, l.Name)
	}
	if !slices.Equal(names, []string{"user", "project", "custom"}) {
		t.Errorf("layers = %v", names)
	}
	if !slices.Contains(report.Layers[2].Keys, "git.timeout_ms") {
		t.Errorf("custom layer keys = %v", report.Layers[2].Keys)
	}
}

func TestLoad_MissingCustomPath(t *testing.T) {
	_, _, err := Load(LoadOptions{ClaudeDir: t.TempDir(), CustomPath: filepath.Join(t.TempDir(), "nope.toml")})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, UserConfigPath(dir), "theme = ")
	if _, _, err := Load(LoadOptions{ClaudeDir: dir}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_NormalizesValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, UserConfigPath(dir), `
theme = "Neon"
[git]
timeout_ms = -3
[components.usage]
precision = 12
`)
	cfg, _, err := Load(LoadOptions{ClaudeDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "classic" {
		t.Errorf("theme = %q, want classic", cfg.Theme)
	}
	if cfg.Git.TimeoutMs != 1000 {
		t.Errorf("timeout_ms = %d, want 1000", cfg.Git.TimeoutMs)
	}
	if cfg.Components.Usage.Precision != 6 {
		t.Errorf("precision = %d, want 6", cfg.Components.Usage.Precision)
	}
}

func TestAutoDetect_Decode(t *testing.T) {
	tests := []struct {
		doc  string
		want AutoDetect
	}{
		{`v = "auto"`, Auto()},
		{`v = true`, Fixed(true)},
		{`v = false`, Fixed(false)},
		{`v = "off"`, Fixed(false)},
	}
	for _, tt := range tests {
		var doc struct {
			V AutoDetect `toml:"v"`
		}
		if _, err := toml.Decode(tt.doc, &doc); err != nil {
			t.Fatalf("decode %q: %v", tt.doc, err)
		}
		if doc.V != tt.want {
			t.Errorf("decode %q = %+v, want %+v", tt.doc, doc.V, tt.want)
		}
	}

	var bad struct {
		V AutoDetect `toml:"v"`
	}
	if _, err := toml.Decode(`v = "sometimes"`, &bad); err == nil {
		t.Error("expected error for invalid value")
	}
}

func TestAutoDetect_Enabled(t *testing.T) {
	if !Auto().Enabled(true) || Auto().Enabled(false) {
		t.Error("auto should follow detection")
	}
	if Fixed(false).Enabled(true) || !Fixed(true).Enabled(false) {
		t.Error("fixed should ignore detection")
	}
}

func TestComponentOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Preset = "mbx"
	if got := cfg.ComponentOrder(); !slices.Equal(got, []string{"model", "branch"}) {
		t.Errorf("preset order = %v", got)
	}

	cfg.Preset = ""
	cfg.Components.Order = []string{"status", "project"}
	if got := cfg.ComponentOrder(); !slices.Equal(got, []string{"status", "project"}) {
		t.Errorf("explicit order = %v", got)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Theme = "powerline"
	cfg.Style.EnableEmoji = Fixed(false)

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists(path) {
		t.Fatal("config file not written")
	}

	got, _, err := Load(LoadOptions{ClaudeDir: t.TempDir(), CustomPath: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Theme != "powerline" {
		t.Errorf("theme = %q", got.Theme)
	}
	if got.Style.EnableEmoji != Fixed(false) || !got.Style.EnableColors.Auto {
		t.Errorf("style = %+v", got.Style)
	}
	if got.Components.Tokens.ContextWindows["default"] != 200_000 {
		t.Errorf("context windows = %v", got.Components.Tokens.ContextWindows)
	}
}
