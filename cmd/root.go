// Package cmd implements the statusline-pro CLI commands.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/statusline-pro/internal/config"
	"github.com/theirongolddev/statusline-pro/internal/gitinfo"
	"github.com/theirongolddev/statusline-pro/internal/input"
	"github.com/theirongolddev/statusline-pro/internal/logging"
	"github.com/theirongolddev/statusline-pro/internal/mock"
	"github.com/theirongolddev/statusline-pro/internal/pipeline"
	"github.com/theirongolddev/statusline-pro/internal/storage"
	"github.com/theirongolddev/statusline-pro/internal/store"
	"github.com/theirongolddev/statusline-pro/internal/terminal"

	"github.com/spf13/cobra"
)

var (
	flagConfig        string
	flagDebug         bool
	flagTheme         string
	flagPreset        string
	flagNoColors      bool
	flagNoEmoji       bool
	flagForceNerdFont bool
	flagForceText     bool
	flagMock          string
)

var rootCmd = &cobra.Command{
	Use:   "statusline-pro",
	Short: "Status line for Claude Code",
	Long: "Reads the Claude Code status payload from stdin and prints one themed line.\n" +
		"Session cost and context usage are persisted between invocations.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStatusline,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "statusline-pro: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Custom config file, applied after user and project files")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Write debug output to the log file")

	rootCmd.Flags().StringVarP(&flagTheme, "theme", "t", "", "Theme override (classic, powerline, capsule)")
	rootCmd.Flags().StringVarP(&flagPreset, "preset", "p", "", "Component order override, e.g. PMBTUS")
	rootCmd.Flags().BoolVar(&flagNoColors, "no-colors", false, "Disable colors")
	rootCmd.Flags().BoolVar(&flagNoEmoji, "no-emoji", false, "Disable emoji icons")
	rootCmd.Flags().BoolVar(&flagForceNerdFont, "force-nerd-font", false, "Use Nerd Font icons regardless of detection")
	rootCmd.Flags().BoolVar(&flagForceText, "force-text", false, "Plain text only: no colors, emoji or Nerd Font icons")
	rootCmd.Flags().StringVar(&flagMock, "mock", "", "Render a preview scenario ("+strings.Join(mock.Names(), ", ")+")")
}

// env is the state shared by every command: merged configuration, storage
// settings and the logger.
type env struct {
	cfg       config.Config
	report    config.MergeReport
	settings  storage.Settings
	projectID string
	logger    *slog.Logger
	closeLog  io.Closer
}

// loadEnv resolves the project, loads layered configuration and opens the
// log file. Configuration files live under the storage root so that
// STATUSLINE_STORAGE_PATH relocates them too.
//
// When lenient is set a configuration error falls back to the defaults and
// is logged instead of returned, so the status line is still printed.
func loadEnv(transcriptPath, projectDir string, lenient bool) (*env, error) {
	root := storage.DefaultRoot("")
	projectID := storage.ResolveProjectID(transcriptPath, projectDir)

	cfg, report, cfgErr := config.Load(config.LoadOptions{
		ClaudeDir:  root,
		ProjectID:  projectID,
		CustomPath: flagConfig,
	})
	if cfgErr != nil {
		if !lenient {
			return nil, cfgErr
		}
		cfg, report = config.DefaultConfig(), config.MergeReport{}
	}
	if flagDebug {
		cfg.Debug.Enabled = true
	}

	settings := storage.SettingsFromConfig(cfg.Storage)
	logPath := cfg.Debug.LogFile
	if logPath == "" {
		logPath = logging.DefaultPath(settings.UserDir())
	}
	logger, closer := logging.New(logging.Options{Path: logPath, Debug: cfg.Debug.Enabled})
	if cfgErr != nil {
		logger.Error("configuration ignored, using defaults", "error", cfgErr)
	}

	return &env{
		cfg:       cfg,
		report:    report,
		settings:  settings,
		projectID: projectID,
		logger:    logger,
		closeLog:  closer,
	}, nil
}

func (e *env) Close() {
	_ = e.closeLog.Close()
}

// openStore binds a snapshot store to the env's project.
func (e *env) openStore() (*storage.Store, error) {
	rt := storage.NewRuntime(e.settings)
	rt.SetProjectID(e.projectID)
	return storage.Open(rt, e.logger)
}

// openCache opens the render cache database.
func (e *env) openCache() (*store.Cache, error) {
	return store.Open(filepath.Join(e.settings.UserDir(), "cache.db"))
}

func runStatusline(cmd *cobra.Command, _ []string) error {
	if flagMock != "" {
		return runMock(cmd, flagMock)
	}
	if terminal.Interactive(os.Stdin) {
		return cmd.Help()
	}

	payload, err := input.Parse(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading status payload: %w", err)
	}

	e, err := loadEnv(payload.TranscriptPath, payload.ProjectDir(), true)
	if err != nil {
		return err
	}
	defer e.Close()
	applyRenderFlags(&e.cfg)

	deps := e.renderDeps()
	defer closeDeps(deps)

	line, err := pipeline.Render(cmd.Context(), deps, payload)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}

func runMock(cmd *cobra.Command, name string) error {
	scenario, err := mock.Generate(name)
	if err != nil {
		return err
	}
	e, err := loadEnv("", scenario.Payload.ProjectDir(), false)
	if err != nil {
		return err
	}
	defer e.Close()
	applyRenderFlags(&e.cfg)

	caps := terminal.Detect(e.cfg.Style, e.cfg.Terminal, os.LookupEnv)
	deps := pipeline.Deps{Config: e.cfg, Caps: caps, Logger: e.logger}
	if e.cfg.Git.Enabled {
		deps.Git = e.gitCollector(nil)
	}

	line, err := pipeline.RenderScenario(cmd.Context(), deps, scenario)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}

// renderDeps opens storage and the cache. Failures are logged and the
// render continues without the failed collaborator.
func (e *env) renderDeps() pipeline.Deps {
	deps := pipeline.Deps{
		Config: e.cfg,
		Caps:   terminal.Detect(e.cfg.Style, e.cfg.Terminal, os.LookupEnv),
		Logger: e.logger,
	}

	st, err := e.openStore()
	if err != nil {
		e.logger.Warn("storage unavailable", "error", err)
	} else {
		deps.Store = st
	}

	cache, err := e.openCache()
	if err != nil {
		e.logger.Warn("cache unavailable", "error", err)
	} else {
		deps.Cache = cache
	}

	if e.settings.EnableStartupCleanup {
		e.sweep(deps.Store, deps.Cache, e.settings.SessionExpiryDays)
	}
	if e.cfg.Git.Enabled {
		deps.Git = e.gitCollector(deps.Cache)
	}
	return deps
}

func closeDeps(d pipeline.Deps) {
	if d.Cache != nil {
		_ = d.Cache.Close()
	}
}

func (e *env) gitCollector(cache *store.Cache) *gitinfo.Collector {
	return &gitinfo.Collector{
		Cache:   cache,
		TTL:     time.Duration(e.cfg.Git.CacheTTLSeconds) * time.Second,
		Timeout: time.Duration(e.cfg.Git.TimeoutMs) * time.Millisecond,
		Logger:  e.logger,
	}
}

// sweep removes snapshots and cache entries older than days.
func (e *env) sweep(st *storage.Store, cache *store.Cache, days int) (snapshots int, entries int64) {
	if days <= 0 {
		return 0, 0
	}
	if st != nil {
		n, err := st.Cleanup(days)
		if err != nil {
			e.logger.Warn("snapshot cleanup failed", "error", err)
		}
		snapshots = n
	}
	if cache != nil {
		n, err := cache.Prune(time.Duration(days) * 24 * time.Hour)
		if err != nil {
			e.logger.Warn("cache prune failed", "error", err)
		}
		entries = n
	}
	if snapshots > 0 || entries > 0 {
		e.logger.Debug("cleanup", "snapshots", snapshots, "cache_entries", entries, "days", days)
	}
	return snapshots, entries
}

// applyRenderFlags layers command-line overrides over the merged config.
func applyRenderFlags(cfg *config.Config) {
	if flagTheme != "" {
		cfg.Theme = strings.ToLower(flagTheme)
	}
	if flagPreset != "" {
		cfg.Preset = flagPreset
	}
	if flagNoColors {
		cfg.Style.EnableColors = config.Fixed(false)
	}
	if flagNoEmoji {
		cfg.Style.EnableEmoji = config.Fixed(false)
		cfg.Terminal.ForceEmoji = false
	}
	if flagForceNerdFont {
		cfg.Terminal.ForceNerdFont = true
	}
	if flagForceText {
		cfg.Terminal.ForceText = true
	}
}
