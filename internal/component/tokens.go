package component

import (
	"fmt"
	"unicode/utf8"

	"github.com/theirongolddev/statusline-pro/internal/config"
	"github.com/theirongolddev/statusline-pro/internal/theme"
)

// maxPercentage caps the displayed context usage.
const maxPercentage = 999.9

func tokens(ctx *Context) (theme.Segment, bool) {
	cfg := ctx.Config.Components.Tokens
	if !cfg.Enabled {
		return theme.Segment{}, false
	}

	used := ctx.Snapshot.ContextUsed()
	if used == 0 && !cfg.ShowZero {
		return theme.Segment{}, false
	}
	window := max(config.ContextWindow(ctx.Payload.ModelID(), cfg.ContextWindows), 1)
	pct := min(max(float64(used)/float64(window)*100, 0), maxPercentage)
	color := thresholdColor(cfg, pct)

	var spans []theme.Span
	add := func(text, color string) {
		if len(spans) > 0 {
			spans = append(spans, theme.Span{Text: " "})
		}
		spans = append(spans, theme.Span{Text: text, Color: color})
	}

	if cfg.ShowProgressBar {
		spans = append(spans, theme.Span{Text: "["})
		spans = append(spans, progressBar(ctx, cfg, pct)...)
		spans = append(spans, theme.Span{Text: "]"})
	}
	if cfg.ShowPercentage {
		add(fmt.Sprintf("%.1f%%", pct), "")
	}
	add(formatUsage(cfg, used, window), "")
	if icon := tokenStatusIcon(ctx, cfg, pct); icon != "" {
		add(icon, "")
	}

	return theme.Segment{
		Icon:      baseIcon(ctx, cfg.BaseComponent),
		IconColor: color,
		TextColor: color,
		Spans:     spans,
	}, true
}

func thresholdColor(cfg config.TokensConfig, pct float64) string {
	switch {
	case pct >= cfg.Thresholds.Danger:
		return cfg.Colors.Danger
	case pct >= cfg.Thresholds.Warning:
		return cfg.Colors.Warning
	}
	return cfg.Colors.Safe
}

func formatUsage(cfg config.TokensConfig, used, window uint64) string {
	if cfg.ShowRawNumbers {
		return fmt.Sprintf("(%d/%d)", used, window)
	}
	return fmt.Sprintf("(%.1fk/%.0fk)", float64(used)/1000, float64(window)/1000)
}

// progressBar returns one span per cell. In gradient mode every filled cell
// gets its own color; otherwise the bar inherits the segment color.
func progressBar(ctx *Context, cfg config.TokensConfig, pct float64) []theme.Span {
	width := max(cfg.ProgressWidth, 1)
	filled := min(int(pct/100*float64(width)+0.5), width)
	gradient := ctx.Caps.Colors &&
		(cfg.ShowGradient || ctx.Config.Theme == theme.Powerline || ctx.Config.Theme == theme.Capsule)

	filledChar := firstRune(cfg.ProgressBarChars.Filled, "█")
	emptyChar := firstRune(cfg.ProgressBarChars.Empty, "░")
	backupChar := firstRune(cfg.ProgressBarChars.Backup, "▓")

	spans := make([]theme.Span, 0, width)
	for i := range width {
		if i >= filled {
			sp := theme.Span{Text: emptyChar}
			if gradient {
				sp.Color = theme.EmptyBar.Hex()
			}
			spans = append(spans, sp)
			continue
		}
		cellPct := min(max((float64(i)+0.5)/float64(filled)*pct, 0), 100)
		sp := theme.Span{Text: filledChar}
		if cellPct >= cfg.Thresholds.Backup {
			sp.Text = backupChar
		}
		if gradient {
			sp.Color = theme.Gradient(cellPct).Hex()
		}
		spans = append(spans, sp)
	}
	return spans
}

func tokenStatusIcon(ctx *Context, cfg config.TokensConfig, pct float64) string {
	pick := func(set config.TokenIconSet) string {
		switch {
		case pct >= cfg.Thresholds.Critical:
			return set.Critical
		case pct >= cfg.Thresholds.Backup:
			return set.Backup
		}
		return ""
	}
	icons := cfg.StatusIcons
	icon := pickIcon(ctx, pick(icons.Emoji), pick(icons.Nerd), pick(icons.Text))
	if icon == "" {
		icon = pick(icons.Text)
	}
	return icon
}

func firstRune(s, fallback string) string {
	if s == "" {
		return fallback
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}
