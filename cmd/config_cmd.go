package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/statusline-pro/internal/cli"
	"github.com/theirongolddev/statusline-pro/internal/config"
	"github.com/theirongolddev/statusline-pro/internal/storage"
	"github.com/theirongolddev/statusline-pro/internal/terminal"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagInitProject bool
	flagInitForce   bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the merged configuration and where each value came from",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file",
	Long: "Writes the user configuration file, or the project file with --project.\n" +
		"Runs an interactive form on a terminal and writes the defaults otherwise.",
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&flagInitProject, "project", false, "Write the project file for the current directory")
	configInitCmd.Flags().BoolVarP(&flagInitForce, "force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	e, err := loadEnv("", "", false)
	if err != nil {
		return err
	}
	defer e.Close()

	root := storage.DefaultRoot("")
	fmt.Println(cli.RenderTitle("statusline-pro configuration"))
	fmt.Println()
	fmt.Printf("  Storage root:  %s\n", e.settings.Root)
	fmt.Printf("  Project id:    %s\n", e.projectID)
	fmt.Println()

	rows := [][]string{
		{"defaults", "(built in)", "-"},
		layerRow("user", config.UserConfigPath(root), e.report),
		layerRow("project", config.ProjectConfigPath(root, e.projectID), e.report),
	}
	if flagConfig != "" {
		rows = append(rows, layerRow("custom", flagConfig, e.report))
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Layer", "Path", "Keys"},
		Rows:    rows,
	}))

	for _, l := range e.report.Layers {
		if len(l.Undecoded) > 0 {
			fmt.Printf("  warning: %s config has unknown keys: %s\n", l.Name, strings.Join(l.Undecoded, ", "))
		}
	}
	fmt.Println()

	enc := toml.NewEncoder(os.Stdout)
	enc.Indent = "  "
	return enc.Encode(e.cfg)
}

func layerRow(name, path string, report config.MergeReport) []string {
	for _, l := range report.Layers {
		if l.Name == name {
			return []string{name, path, cli.FormatNumber(uint64(len(l.Keys)))}
		}
	}
	return []string{name, path, "not found"}
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	root := storage.DefaultRoot("")
	path := config.UserConfigPath(root)
	if flagInitProject {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		path = config.ProjectConfigPath(root, storage.ResolveProjectID("", wd))
	}

	if config.Exists(path) && !flagInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	if terminal.Interactive(os.Stdin) && terminal.Interactive(os.Stdout) {
		vals := &formValues{
			nerdFont: cfg.Style.EnableNerdFont.String(),
			emoji:    cfg.Style.EnableEmoji.String(),
		}
		if err := configForm(&cfg, vals).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		if err := vals.apply(&cfg); err != nil {
			return err
		}
	}

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("  Wrote %s\n", path)
	return nil
}

// formValues holds the form's string-typed answers until they are folded
// back into the config.
type formValues struct {
	nerdFont string
	emoji    string
}

func (v *formValues) apply(cfg *config.Config) error {
	var err error
	if cfg.Style.EnableNerdFont, err = parseAutoDetect(v.nerdFont); err != nil {
		return err
	}
	if cfg.Style.EnableEmoji, err = parseAutoDetect(v.emoji); err != nil {
		return err
	}
	cfg.Preset = strings.ToUpper(strings.TrimSpace(cfg.Preset))
	return nil
}

func parseAutoDetect(s string) (config.AutoDetect, error) {
	var a config.AutoDetect
	err := a.UnmarshalTOML(s)
	return a, err
}

// configForm builds the init wizard over cfg and vals.
func configForm(cfg *config.Config, vals *formValues) *huh.Form {
	autoOpts := huh.NewOptions("auto", "true", "false")

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Classic", "classic"),
					huh.NewOption("Powerline (needs a Nerd Font)", "powerline"),
					huh.NewOption("Capsule (needs a Nerd Font)", "capsule"),
				).
				Value(&cfg.Theme),
			huh.NewInput().
				Title("Components").
				Description("Letters in display order: P project, M model, B branch, T tokens, U usage, S status. Empty uses components.order.").
				Placeholder("PMBTUS").
				Value(&cfg.Preset).
				Validate(validatePreset),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Nerd Font icons").
				Options(autoOpts...).
				Value(&vals.nerdFont),
			huh.NewSelect[string]().
				Title("Emoji icons").
				Options(autoOpts...).
				Value(&vals.emoji),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Track cost across the whole conversation?").
				Value(&cfg.Storage.EnableConversationTracking),
			huh.NewConfirm().
				Title("Persist session snapshots?").
				Value(&cfg.Storage.EnableCostPersistence),
		),
	).WithAccessible(os.Getenv("ACCESSIBLE") != "")
}

func validatePreset(s string) error {
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if !strings.ContainsRune("PMBTUS", r) {
			return fmt.Errorf("unknown component letter %q", r)
		}
	}
	return nil
}
