// Package component turns a payload, its session snapshot and the collected
// git and transcript state into theme segments.
package component

import (
	"github.com/theirongolddev/statusline-pro/internal/config"
	"github.com/theirongolddev/statusline-pro/internal/gitinfo"
	"github.com/theirongolddev/statusline-pro/internal/input"
	"github.com/theirongolddev/statusline-pro/internal/model"
	"github.com/theirongolddev/statusline-pro/internal/source"
	"github.com/theirongolddev/statusline-pro/internal/terminal"
	"github.com/theirongolddev/statusline-pro/internal/theme"
)

// Context is everything a component may read. Snapshot, Git and Status are
// nil when the corresponding collection was skipped or failed.
type Context struct {
	Payload  *input.Payload
	Config   config.Config
	Caps     terminal.Capabilities
	Snapshot *model.SessionSnapshot
	Git      *gitinfo.Info
	Status   *source.Status
}

// builder renders one component; ok=false hides it.
type builder func(ctx *Context) (seg theme.Segment, ok bool)

var builders = map[string]builder{
	"project": project,
	"model":   modelName,
	"branch":  branch,
	"tokens":  tokens,
	"usage":   usage,
	"status":  status,
}

// Names lists the known component names.
func Names() []string {
	return []string{"project", "model", "branch", "tokens", "usage", "status"}
}

// Build renders the configured components in order. Unknown names are
// skipped.
func Build(ctx *Context) []theme.Segment {
	var segs []theme.Segment
	for _, name := range ctx.Config.ComponentOrder() {
		b, ok := builders[name]
		if !ok {
			continue
		}
		seg, ok := b(ctx)
		if !ok {
			continue
		}
		seg.Name = name
		segs = append(segs, seg)
	}
	return segs
}

// iconStyle resolves the glyph set. Force flags win over detected
// capabilities.
func iconStyle(ctx *Context) terminal.IconStyle {
	force := ctx.Config.Terminal
	switch {
	case force.ForceText:
		return terminal.IconText
	case force.ForceNerdFont:
		return terminal.IconNerd
	case force.ForceEmoji:
		return terminal.IconEmoji
	}
	return ctx.Caps.IconStyle()
}

func pickIcon(ctx *Context, emoji, nerd, text string) string {
	switch iconStyle(ctx) {
	case terminal.IconNerd:
		return nerd
	case terminal.IconEmoji:
		return emoji
	}
	return text
}

func baseIcon(ctx *Context, b config.BaseComponent) string {
	return pickIcon(ctx, b.EmojiIcon, b.NerdIcon, b.TextIcon)
}

// segment starts a segment from a component's base settings.
func segment(ctx *Context, b config.BaseComponent, text string) theme.Segment {
	return theme.Segment{
		Icon:      baseIcon(ctx, b),
		IconColor: b.IconColor,
		TextColor: b.TextColor,
		Spans:     []theme.Span{{Text: text}},
	}
}
