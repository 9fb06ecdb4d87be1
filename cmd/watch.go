package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/statusline-pro/internal/cli"
	"github.com/theirongolddev/statusline-pro/internal/config"
	"github.com/theirongolddev/statusline-pro/internal/source"
	"github.com/theirongolddev/statusline-pro/internal/watcher"

	"github.com/spf13/cobra"
)

var (
	watchTranscript string
	watchFromStart  bool
	watchPoll       time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a transcript and print token usage per assistant message",
	Long: "Follows a Claude Code transcript and prints the usage of every new assistant\n" +
		"message. Without --transcript the most recent transcript of the current\n" +
		"project is used.",
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchTranscript, "transcript", "", "Transcript file to follow")
	watchCmd.Flags().BoolVar(&watchFromStart, "from-start", false, "Print existing messages before following")
	watchCmd.Flags().DurationVar(&watchPoll, "poll", time.Second, "Polling interval used alongside file notifications")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(watchTranscript, "", false)
	if err != nil {
		return err
	}
	defer e.Close()

	path := watchTranscript
	if path == "" {
		path, err = source.LatestTranscript(e.settings.Root, e.projectID)
		if err != nil {
			return err
		}
		if path == "" {
			return fmt.Errorf("no transcript found for project %s; pass --transcript", e.projectID)
		}
	}

	w := watcher.New(path, watchPoll, e.logger)
	if !watchFromStart {
		if info, err := os.Stat(path); err == nil {
			w.SetOffset(info.Size())
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "  Watching %s (Ctrl-C to stop)\n", path)
	var total float64
	return w.Run(ctx, func(c watcher.Change) {
		entries, next, err := source.ReadAssistantEntries(c.Path, c.Offset)
		if err != nil {
			e.logger.Warn("reading transcript", "path", c.Path, "error", err)
			return
		}
		w.SetOffset(next)
		for _, entry := range entries {
			cost := messageCost(entry.Message)
			total += cost
			fmt.Println(usageLine(entry, e.cfg.Components.Tokens.ContextWindows, cost, total))
		}
	})
}

func messageCost(m *source.Message) float64 {
	u := m.Usage
	return config.CalculateCost(m.Model, u.InputTokens, u.OutputTokens,
		u.CacheCreationInputTokens, u.CacheReadInputTokens)
}

// usageLine formats one assistant message: time, model, token counts,
// context fill and cost.
func usageLine(entry *source.Entry, windows map[string]uint64, cost, total float64) string {
	m := entry.Message
	u := m.Usage
	ctxUsed := u.InputTokens + u.OutputTokens + u.CacheCreationInputTokens + u.CacheReadInputTokens

	stamp := entry.Timestamp
	if t, err := time.Parse(time.RFC3339Nano, entry.Timestamp); err == nil {
		stamp = t.Local().Format("15:04:05")
	}

	fill := ""
	if window := config.ContextWindow(m.Model, windows); window > 0 {
		fill = fmt.Sprintf(" %.1f%%", float64(ctxUsed)/float64(window)*100)
	}

	return fmt.Sprintf("  %s  %-10s in %s  out %s  cache w/r %s/%s  ctx %s%s  %s  %s",
		cli.Muted(stamp),
		config.ShortModelName(m.Model),
		cli.Tokens(cli.FormatTokens(u.InputTokens)),
		cli.Tokens(cli.FormatTokens(u.OutputTokens)),
		cli.FormatTokens(u.CacheCreationInputTokens),
		cli.FormatTokens(u.CacheReadInputTokens),
		cli.FormatTokens(ctxUsed),
		fill,
		cli.Cost(cli.FormatCost(cost)),
		cli.Muted("total "+cli.FormatCost(total)),
	)
}
