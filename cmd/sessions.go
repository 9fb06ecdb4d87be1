package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/statusline-pro/internal/cli"
	"github.com/theirongolddev/statusline-pro/internal/config"
	"github.com/theirongolddev/statusline-pro/internal/model"
	"github.com/theirongolddev/statusline-pro/internal/pipeline"
	"github.com/theirongolddev/statusline-pro/internal/storage"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored session snapshots",
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

var (
	sessionsLimit int
	sessionsAll   bool
)

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "l", 20, "Number of sessions to show (0 for all)")
	sessionsCmd.Flags().BoolVarP(&sessionsAll, "all", "a", false, "Include every project, not just the current directory's")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(_ *cobra.Command, _ []string) error {
	e, err := loadEnv("", "", false)
	if err != nil {
		return err
	}
	defer e.Close()

	var loaded []pipeline.LoadedSnapshot
	if sessionsAll {
		loaded, err = loadAllSnapshots(e.settings.Root)
	} else {
		loaded, err = loadProjectSnapshots(e)
	}
	if err != nil {
		return err
	}
	if len(loaded) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}

	if sessionsLimit > 0 && len(loaded) > sessionsLimit {
		loaded = loaded[:sessionsLimit]
	}

	scope := "current project"
	if sessionsAll {
		scope = "all projects"
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SESSIONS  %s (showing %d)", scope, len(loaded))))
	fmt.Println()

	headers := []string{"Updated", "Session", "Models", "Duration", "Context", "Lines", "Cost"}
	if sessionsAll {
		headers = append([]string{"Project"}, headers...)
	}

	rows := make([][]string, 0, len(loaded))
	for _, l := range loaded {
		row := sessionRow(l.Snapshot)
		if sessionsAll {
			row = append([]string{truncate(l.File.Project, 18)}, row...)
		}
		rows = append(rows, row)
	}

	leftCols := 3
	if sessionsAll {
		leftCols = 4
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  headers,
		Rows:     rows,
		LeftCols: leftCols,
	}))
	return nil
}

func sessionRow(s *model.SessionSnapshot) []string {
	updated := ""
	if !s.Meta.LastUpdateTime.IsZero() {
		updated = s.Meta.LastUpdateTime.Local().Format("Jan 02 15:04")
	}

	models := make([]string, 0, len(s.History.ModelUsage))
	for _, m := range s.History.ModelUsage {
		models = append(models, config.ShortModelName(m.ID))
	}

	total := s.History.Cost.Total
	return []string{
		updated,
		truncate(s.Meta.SessionID, 12),
		truncate(strings.Join(models, ","), 20),
		cli.FormatDuration(total.TotalDurationMs),
		cli.FormatTokens(s.ContextUsed()),
		fmt.Sprintf("+%d -%d", total.TotalLinesAdded, total.TotalLinesRemoved),
		cli.FormatCost(total.TotalCostUSD),
	}
}

// loadProjectSnapshots lists the current project's snapshots through the
// store, most recently updated first.
func loadProjectSnapshots(e *env) ([]pipeline.LoadedSnapshot, error) {
	st, err := e.openStore()
	if err != nil {
		return nil, err
	}
	snaps, err := st.List()
	if err != nil {
		return nil, err
	}
	out := make([]pipeline.LoadedSnapshot, len(snaps))
	for i := range snaps {
		out[i] = pipeline.LoadedSnapshot{
			File:     storage.SnapshotFile{ProjectID: st.ProjectID(), SessionID: snaps[i].Meta.SessionID},
			Snapshot: &snaps[i],
		}
	}
	return out, nil
}

// loadAllSnapshots reads every project's snapshots in parallel, reporting
// progress on stderr.
func loadAllSnapshots(root string) ([]pipeline.LoadedSnapshot, error) {
	files, err := storage.ScanProjects(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	fmt.Fprintf(os.Stderr, "  Scanning %d snapshots...\n", len(files))
	result := pipeline.LoadSnapshots(files, func(current, total int) {
		if current%100 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Loading [%d/%d]", current, total)
		}
	})
	fmt.Fprintln(os.Stderr)
	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  Skipped %d unreadable snapshots\n", result.FileErrors)
	}
	return result.Snapshots, nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
