// Package terminal decides which glyph sets and colors the status line may
// use in the host terminal.
package terminal

import (
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"

	"github.com/theirongolddev/statusline-pro/internal/config"
)

// Capabilities are the resolved rendering features.
type Capabilities struct {
	Colors   bool
	Emoji    bool
	NerdFont bool
}

// IconStyle names the glyph set a component should use.
type IconStyle int

const (
	IconText IconStyle = iota
	IconEmoji
	IconNerd
)

// Lookup reads an environment variable. os.LookupEnv satisfies it.
type Lookup func(key string) (string, bool)

// Detect resolves capabilities from the style settings, the force flags and
// the environment. force_text wins over everything; forcing nerd fonts or
// emoji implies colors, and a forced nerd font suppresses emoji.
func Detect(style config.StyleConfig, force config.TerminalConfig, env Lookup) Capabilities {
	if env == nil {
		env = os.LookupEnv
	}
	if force.ForceText {
		return Capabilities{}
	}

	var caps Capabilities
	if force.ForceNerdFont || force.ForceEmoji {
		caps.Colors = true
	} else {
		caps.Colors = style.EnableColors.Enabled(colorSupport(env))
	}

	switch {
	case force.ForceEmoji:
		caps.Emoji = true
	case force.ForceNerdFont:
		caps.Emoji = false
	default:
		caps.Emoji = style.EnableEmoji.Enabled(emojiSupport(env))
	}

	if force.ForceNerdFont {
		caps.NerdFont = true
	} else {
		caps.NerdFont = style.EnableNerdFont.Enabled(nerdFontSupport(env))
	}
	return caps
}

// IconStyle picks nerd font glyphs first, then emoji, then plain text.
func (c Capabilities) IconStyle() IconStyle {
	switch {
	case c.NerdFont:
		return IconNerd
	case c.Emoji:
		return IconEmoji
	}
	return IconText
}

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func has(env Lookup, key string) bool {
	_, ok := env(key)
	return ok
}

func get(env Lookup, key string) string {
	v, _ := env(key)
	return v
}

func colorSupport(env Lookup) bool {
	switch get(env, "COLORTERM") {
	case "truecolor", "24bit":
		return true
	}

	t := get(env, "TERM")
	if strings.Contains(t, "color") {
		return true
	}
	switch t {
	case "xterm", "screen", "tmux", "rxvt":
		return true
	}

	if has(env, "NO_COLOR") {
		return false
	}
	for _, ci := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE", "CIRCLECI"} {
		if has(env, ci) {
			return true
		}
	}

	if runtime.GOOS == "windows" {
		return has(env, "WT_SESSION") || has(env, "ConEmuPID")
	}
	return true
}

func emojiSupport(env Lookup) bool {
	switch get(env, "TERM_PROGRAM") {
	case "iTerm.app", "Terminal.app", "Hyper", "vscode", "tmux":
		return true
	}
	if has(env, "WT_SESSION") {
		return true
	}

	t := get(env, "TERM")
	for _, name := range []string{"kitty", "alacritty", "wezterm", "foot"} {
		if strings.Contains(t, name) {
			return true
		}
	}

	if has(env, "GNOME_TERMINAL_SERVICE") || has(env, "KONSOLE_VERSION") {
		return true
	}

	lang := strings.ToUpper(get(env, "LANG"))
	return strings.Contains(lang, "UTF-8") || strings.Contains(lang, "UTF8")
}

func nerdFontSupport(env Lookup) bool {
	if has(env, "NERD_FONT") || has(env, "NERD_FONTS") {
		return true
	}

	font := get(env, "TERMINAL_FONT")
	if strings.Contains(strings.ToLower(font), "nerd") ||
		strings.Contains(font, "NF") ||
		strings.Contains(font, "Powerline") {
		return true
	}

	switch get(env, "TERM_PROGRAM") {
	case "iTerm.app":
		return true
	case "vscode":
		return has(env, "VSCODE_NERD_FONT") ||
			strings.Contains(strings.ToLower(get(env, "LC_TERMINAL")), "nerd")
	}

	t := get(env, "TERM")
	return strings.Contains(t, "kitty") || strings.Contains(t, "wezterm")
}
