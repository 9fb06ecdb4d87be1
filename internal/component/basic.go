package component

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/statusline-pro/internal/config"
	"github.com/theirongolddev/statusline-pro/internal/source"
	"github.com/theirongolddev/statusline-pro/internal/theme"
)

func project(ctx *Context) (theme.Segment, bool) {
	cfg := ctx.Config.Components.Project
	if !cfg.Enabled {
		return theme.Segment{}, false
	}
	name := ""
	if dir := ctx.Payload.ProjectDir(); dir != "" {
		name = filepath.Base(filepath.Clean(dir))
		if name == "." || name == string(filepath.Separator) {
			name = ""
		}
	}
	if name == "" {
		if !cfg.ShowWhenEmpty {
			return theme.Segment{}, false
		}
		name = "-"
	}
	return segment(ctx, cfg.BaseComponent, name), true
}

func modelName(ctx *Context) (theme.Segment, bool) {
	cfg := ctx.Config.Components.Model
	if !cfg.Enabled {
		return theme.Segment{}, false
	}
	id := ctx.Payload.ModelID()
	display := ""
	if ctx.Payload.Model != nil {
		display = ctx.Payload.Model.DisplayName
	}

	var name string
	switch {
	case cfg.Mapping[id] != "":
		name = cfg.Mapping[id]
	case cfg.ShowFullName && display != "":
		name = display
	case cfg.ShowFullName:
		name = id
	case id != "":
		name = config.ShortModelName(id)
	default:
		name = display
	}
	if name == "" {
		return theme.Segment{}, false
	}
	return segment(ctx, cfg.BaseComponent, name), true
}

// costColor grades a dollar amount.
func costColor(cost float64) string {
	switch {
	case cost > 1.0:
		return "red"
	case cost > 0.1:
		return "yellow"
	case cost > 0:
		return "green"
	}
	return "gray"
}

func usage(ctx *Context) (theme.Segment, bool) {
	cfg := ctx.Config.Components.Usage
	if !cfg.Enabled {
		return theme.Segment{}, false
	}

	var cost float64
	var added, removed uint64
	conversation := cfg.DisplayMode == "conversation" &&
		ctx.Config.Storage.EnableConversationTracking &&
		ctx.Snapshot != nil
	switch {
	case conversation:
		total := ctx.Snapshot.History.Cost.Total
		cost, added, removed = total.TotalCostUSD, total.TotalLinesAdded, total.TotalLinesRemoved
	case ctx.Payload.Cost != nil:
		m := ctx.Payload.Cost.Metrics()
		cost, added, removed = m.TotalCostUSD, m.TotalLinesAdded, m.TotalLinesRemoved
	}

	text := fmt.Sprintf("$%.*f", cfg.Precision, cost)
	if conversation {
		var lines []string
		if cfg.ShowLinesAdded && added > 0 {
			lines = append(lines, fmt.Sprintf("+%d", added))
		}
		if cfg.ShowLinesRemoved && removed > 0 {
			lines = append(lines, fmt.Sprintf("-%d", removed))
		}
		if len(lines) > 0 {
			text += " " + strings.Join(lines, " ")
		}
	}

	seg := segment(ctx, cfg.BaseComponent, text)
	color := costColor(cost)
	seg.IconColor, seg.TextColor = color, color
	return seg, true
}

func status(ctx *Context) (theme.Segment, bool) {
	cfg := ctx.Config.Components.Status
	if !cfg.Enabled {
		return theme.Segment{}, false
	}

	var st source.Status
	if ctx.Status != nil {
		st = *ctx.Status
	} else {
		st = source.StatusFromHint(ctx.Payload.Status, ctx.Payload.StopReason)
	}

	icons := cfg.Icons
	icon := pickIcon(ctx, statusIcon(icons.Emoji, st.Kind), statusIcon(icons.Nerd, st.Kind), statusIcon(icons.Text, st.Kind))

	text := st.Message
	if cfg.ShowDetail && st.Detail != "" {
		text += " " + truncate(st.Detail, 40)
	}

	color := statusIcon(cfg.Colors, st.Kind)
	if color == "" {
		color = cfg.TextColor
	}
	return theme.Segment{
		Icon:      icon,
		IconColor: color,
		TextColor: color,
		Spans:     []theme.Span{{Text: text}},
	}, true
}

func statusIcon(set config.StatusIconSet, kind source.StatusKind) string {
	switch kind {
	case source.StatusThinking:
		return set.Thinking
	case source.StatusTool:
		return set.Tool
	case source.StatusError:
		return set.Error
	case source.StatusWarning:
		return set.Warning
	}
	return set.Ready
}

// truncate shortens s to limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	if limit < 3 {
		limit = 3
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
