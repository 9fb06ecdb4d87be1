package cmd

import (
	"fmt"

	"github.com/theirongolddev/statusline-pro/internal/cli"

	"github.com/spf13/cobra"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old session snapshots and cache entries",
	Long: "Removes the current project's snapshots not updated within the retention window,\n" +
		"and cache entries older than it. Defaults to storage.session_expiry_days.",
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVarP(&cleanupDays, "days", "n", 0, "Retention in days (default from config)")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(_ *cobra.Command, _ []string) error {
	e, err := loadEnv("", "", false)
	if err != nil {
		return err
	}
	defer e.Close()

	days := e.settings.SessionExpiryDays
	if cleanupDays > 0 {
		days = cleanupDays
	}
	if days <= 0 {
		fmt.Println("  Retention is disabled (session_expiry_days = 0); nothing to do.")
		return nil
	}

	st, err := e.openStore()
	if err != nil {
		return err
	}
	cache, err := e.openCache()
	if err != nil {
		fmt.Println(cli.Warn("  Cache unavailable: " + err.Error()))
	} else {
		defer cache.Close()
	}

	snapshots, entries := e.sweep(st, cache, days)
	fmt.Printf("  Removed %s snapshots and %s cache entries older than %d days\n",
		cli.FormatNumber(uint64(snapshots)), cli.FormatNumber(uint64(entries)), days)
	fmt.Println(cli.Muted("  " + st.SessionsDir()))
	return nil
}
