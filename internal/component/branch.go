package component

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/statusline-pro/internal/terminal"
	"github.com/theirongolddev/statusline-pro/internal/theme"
)

// branchMarks are the glyphs appended to the branch name.
type branchMarks struct {
	dirty, ahead, behind, stash, conflict string
}

var (
	textMarks  = branchMarks{dirty: "*", ahead: "^", behind: "v", stash: "$", conflict: "!"}
	emojiMarks = branchMarks{dirty: "●", ahead: "↑", behind: "↓", stash: "≡", conflict: "⚠"}
	nerdMarks  = branchMarks{dirty: "\uf111", ahead: "\uf062", behind: "\uf063", stash: "\uf01c", conflict: "\uf071"}
)

type branchState struct {
	name              string
	dirty             bool
	ahead, behind     int
	stash, conflicted int
	operation         string
}

func branch(ctx *Context) (theme.Segment, bool) {
	cfg := ctx.Config.Components.Branch
	if !cfg.Enabled {
		return theme.Segment{}, false
	}

	st, ok := branchFromGit(ctx)
	if !ok {
		st, ok = branchFromPayload(ctx)
	}
	if !ok {
		if !cfg.ShowWhenNoGit {
			return theme.Segment{}, false
		}
		seg := segment(ctx, cfg.BaseComponent, "no git")
		seg.TextColor = "gray"
		return seg, true
	}

	marks := textMarks
	switch iconStyle(ctx) {
	case terminal.IconEmoji:
		marks = emojiMarks
	case terminal.IconNerd:
		marks = nerdMarks
	}

	var b strings.Builder
	b.WriteString(truncate(st.name, cfg.MaxLength))
	if cfg.ShowDirty && st.dirty {
		b.WriteString(marks.dirty)
	}
	if cfg.ShowDirty && st.conflicted > 0 {
		fmt.Fprintf(&b, "%s%d", marks.conflict, st.conflicted)
	}
	if cfg.ShowAheadBehind && st.ahead > 0 {
		fmt.Fprintf(&b, "%s%d", marks.ahead, st.ahead)
	}
	if cfg.ShowAheadBehind && st.behind > 0 {
		fmt.Fprintf(&b, "%s%d", marks.behind, st.behind)
	}
	if cfg.ShowStash && st.stash > 0 {
		fmt.Fprintf(&b, "%s%d", marks.stash, st.stash)
	}
	if cfg.ShowOperation && st.operation != "" {
		b.WriteString(" " + st.operation)
	}

	seg := segment(ctx, cfg.BaseComponent, b.String())
	switch {
	case cfg.ShowDirty && st.conflicted > 0:
		seg.TextColor = "red"
	case cfg.ShowDirty && st.dirty:
		seg.TextColor = "yellow"
	}
	return seg, true
}

func branchFromGit(ctx *Context) (branchState, bool) {
	g := ctx.Git
	if g == nil || !g.IsRepo || g.Branch == "" {
		return branchState{}, false
	}
	return branchState{
		name:       g.Branch,
		dirty:      !g.Clean(),
		ahead:      g.Ahead,
		behind:     g.Behind,
		stash:      g.Stash,
		conflicted: g.Conflicted,
		operation:  g.Operation.Label(),
	}, true
}

func branchFromPayload(ctx *Context) (branchState, bool) {
	name := ctx.Payload.Branch()
	if name == "" {
		return branchState{}, false
	}
	st := branchState{name: name}
	if g := ctx.Payload.Git; g != nil {
		st.dirty = g.Status == "dirty" || g.Staged > 0 || g.Unstaged > 0 || g.Untracked > 0
		st.ahead, st.behind = g.Ahead, g.Behind
	}
	return st, true
}
