package config

// BaseComponent holds the fields every component shares.
type BaseComponent struct {
	Enabled   bool   `toml:"enabled"`
	IconColor string `toml:"icon_color"`
	TextColor string `toml:"text_color"`
	EmojiIcon string `toml:"emoji_icon"`
	NerdIcon  string `toml:"nerd_icon"`
	TextIcon  string `toml:"text_icon"`
}

// ComponentsConfig groups per-component settings.
type ComponentsConfig struct {
	Order   []string      `toml:"order"`
	Project ProjectConfig `toml:"project"`
	Model   ModelConfig   `toml:"model"`
	Branch  BranchConfig  `toml:"branch"`
	Tokens  TokensConfig  `toml:"tokens"`
	Usage   UsageConfig   `toml:"usage"`
	Status  StatusConfig  `toml:"status"`
}

// ProjectConfig configures the project name segment.
type ProjectConfig struct {
	BaseComponent
	ShowWhenEmpty bool `toml:"show_when_empty"`
}

// ModelConfig configures the model segment.
type ModelConfig struct {
	BaseComponent
	ShowFullName bool              `toml:"show_full_name"`
	Mapping      map[string]string `toml:"mapping,omitempty"`
}

// BranchConfig configures the git branch segment.
type BranchConfig struct {
	BaseComponent
	ShowWhenNoGit   bool `toml:"show_when_no_git"`
	ShowDirty       bool `toml:"show_dirty"`
	ShowAheadBehind bool `toml:"show_ahead_behind"`
	ShowStash       bool `toml:"show_stash"`
	ShowOperation   bool `toml:"show_operation"`
	MaxLength       int  `toml:"max_length"`
}

// TokensConfig configures the context usage segment.
type TokensConfig struct {
	BaseComponent
	ShowProgressBar  bool              `toml:"show_progress_bar"`
	ShowPercentage   bool              `toml:"show_percentage"`
	ShowRawNumbers   bool              `toml:"show_raw_numbers"`
	ShowGradient     bool              `toml:"show_gradient"`
	ShowZero         bool              `toml:"show_zero"`
	ProgressWidth    int               `toml:"progress_width"`
	Thresholds       TokenThresholds   `toml:"thresholds"`
	Colors           TokenColors       `toml:"colors"`
	ProgressBarChars ProgressBarChars  `toml:"progress_bar_chars"`
	StatusIcons      TokenStatusIcons  `toml:"status_icons"`
	ContextWindows   map[string]uint64 `toml:"context_windows,omitempty"`
}

// TokenThresholds are percentages of the context window.
type TokenThresholds struct {
	Warning  float64 `toml:"warning"`
	Danger   float64 `toml:"danger"`
	Backup   float64 `toml:"backup"`
	Critical float64 `toml:"critical"`
}

// TokenColors name the color per threshold band.
type TokenColors struct {
	Safe    string `toml:"safe"`
	Warning string `toml:"warning"`
	Danger  string `toml:"danger"`
}

// ProgressBarChars are the glyphs of the progress bar.
type ProgressBarChars struct {
	Filled string `toml:"filled"`
	Empty  string `toml:"empty"`
	Backup string `toml:"backup"`
}

// TokenIconSet holds the backup and critical markers for one icon style.
type TokenIconSet struct {
	Backup   string `toml:"backup"`
	Critical string `toml:"critical"`
}

// TokenStatusIcons holds TokenIconSet per icon style.
type TokenStatusIcons struct {
	Emoji TokenIconSet `toml:"emoji"`
	Nerd  TokenIconSet `toml:"nerd"`
	Text  TokenIconSet `toml:"text"`
}

// UsageConfig configures the cost segment.
type UsageConfig struct {
	BaseComponent
	// DisplayMode is "conversation" (persisted total across resets) or
	// "session" (the host's current figure).
	DisplayMode      string `toml:"display_mode"`
	Precision        int    `toml:"precision"`
	ShowLinesAdded   bool   `toml:"show_lines_added"`
	ShowLinesRemoved bool   `toml:"show_lines_removed"`
}

// StatusIconSet holds one icon per status kind.
type StatusIconSet struct {
	Ready    string `toml:"ready"`
	Thinking string `toml:"thinking"`
	Tool     string `toml:"tool"`
	Error    string `toml:"error"`
	Warning  string `toml:"warning"`
}

// StatusIcons holds StatusIconSet per icon style.
type StatusIcons struct {
	Emoji StatusIconSet `toml:"emoji"`
	Nerd  StatusIconSet `toml:"nerd"`
	Text  StatusIconSet `toml:"text"`
}

// StatusConfig configures the assistant status segment.
type StatusConfig struct {
	BaseComponent
	ShowDetail bool          `toml:"show_detail"`
	Icons      StatusIcons   `toml:"icons"`
	Colors     StatusIconSet `toml:"colors"`
}

func defaultComponents() ComponentsConfig {
	return ComponentsConfig{
		Order: []string{"project", "model", "branch", "tokens", "usage", "status"},
		Project: ProjectConfig{
			BaseComponent: BaseComponent{
				Enabled: true, IconColor: "white", TextColor: "white",
				EmojiIcon: "📁", NerdIcon: "", TextIcon: "[P]",
			},
		},
		Model: ModelConfig{
			BaseComponent: BaseComponent{
				Enabled: true, IconColor: "cyan", TextColor: "cyan",
				EmojiIcon: "🤖", NerdIcon: "\U000f06a9", TextIcon: "[M]",
			},
		},
		Branch: BranchConfig{
			BaseComponent: BaseComponent{
				Enabled: true, IconColor: "green", TextColor: "green",
				EmojiIcon: "🌿", NerdIcon: "", TextIcon: "[B]",
			},
			ShowDirty:       true,
			ShowAheadBehind: true,
			ShowOperation:   true,
			MaxLength:       20,
		},
		Tokens: TokensConfig{
			BaseComponent: BaseComponent{
				Enabled: true, IconColor: "yellow", TextColor: "white",
				EmojiIcon: "📊", NerdIcon: "", TextIcon: "[T]",
			},
			ShowProgressBar: true,
			ShowPercentage:  true,
			ShowGradient:    false,
			ProgressWidth:   10,
			Thresholds:      TokenThresholds{Warning: 60, Danger: 85, Backup: 85, Critical: 95},
			Colors:          TokenColors{Safe: "green", Warning: "yellow", Danger: "red"},
			ProgressBarChars: ProgressBarChars{
				Filled: "█", Empty: "░", Backup: "▓",
			},
			StatusIcons: TokenStatusIcons{
				Emoji: TokenIconSet{Backup: "⚡", Critical: "🔥"},
				Nerd:  TokenIconSet{Backup: "", Critical: ""},
				Text:  TokenIconSet{Backup: "[!]", Critical: "[X]"},
			},
			ContextWindows: map[string]uint64{"default": 200_000},
		},
		Usage: UsageConfig{
			BaseComponent: BaseComponent{
				Enabled: true, IconColor: "cyan", TextColor: "white",
				EmojiIcon: "💰", NerdIcon: "", TextIcon: "[$]",
			},
			DisplayMode:      "conversation",
			Precision:        2,
			ShowLinesAdded:   true,
			ShowLinesRemoved: true,
		},
		Status: StatusConfig{
			BaseComponent: BaseComponent{
				Enabled: true, IconColor: "white", TextColor: "white",
				EmojiIcon: "✨", NerdIcon: "", TextIcon: "[S]",
			},
			ShowDetail: true,
			Icons: StatusIcons{
				Emoji: StatusIconSet{Ready: "✅", Thinking: "💭", Tool: "🔧", Error: "❌", Warning: "⚠️"},
				Nerd:  StatusIconSet{Ready: "", Thinking: "", Tool: "", Error: "", Warning: ""},
				Text:  StatusIconSet{Ready: "[OK]", Thinking: "[...]", Tool: "[TOOL]", Error: "[ERR]", Warning: "[WARN]"},
			},
			Colors: StatusIconSet{Ready: "green", Thinking: "yellow", Tool: "blue", Error: "red", Warning: "yellow"},
		},
	}
}
