package component

import (
	"slices"
	"strings"
	"testing"

	"github.com/theirongolddev/statusline-pro/internal/config"
	"github.com/theirongolddev/statusline-pro/internal/gitinfo"
	"github.com/theirongolddev/statusline-pro/internal/input"
	"github.com/theirongolddev/statusline-pro/internal/model"
	"github.com/theirongolddev/statusline-pro/internal/source"
	"github.com/theirongolddev/statusline-pro/internal/theme"
)

const basePayload = `{
	"session_id": "s1",
	"workspace": {"current_dir": "/home/u/api/src", "project_dir": "/home/u/api"},
	"model": {"id": "claude-sonnet-4-5-20250929", "display_name": "Claude Sonnet 4.5"},
	"cost": {"total_cost_usd": 0.25, "total_lines_added": 4, "total_lines_removed": 1}
}`

func newContext(t *testing.T, payload string) *Context {
	t.Helper()
	p, err := input.ParseBytes([]byte(payload))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	return &Context{Payload: p, Config: config.DefaultConfig()}
}

func withContext(snap *model.SessionSnapshot, used uint64) *model.SessionSnapshot {
	snap.History.Tokens = &model.TokenHistory{ContextUsed: used}
	return snap
}

func find(t *testing.T, segs []theme.Segment, name string) theme.Segment {
	t.Helper()
	for _, s := range segs {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("segment %q not rendered", name)
	return theme.Segment{}
}

func names(segs []theme.Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Name
	}
	return out
}

func TestBuild_DefaultOrder(t *testing.T) {
	ctx := newContext(t, basePayload)
	segs := Build(ctx)

	// No git, no branch and zero context usage hide branch and tokens.
	want := []string{"project", "model", "usage", "status"}
	if got := names(segs); !slices.Equal(got, want) {
		t.Fatalf("segments = %v, want %v", got, want)
	}

	p := find(t, segs, "project")
	if p.Icon != "[P]" || p.Text() != "api" {
		t.Errorf("project = %q %q", p.Icon, p.Text())
	}
	if m := find(t, segs, "model"); m.Text() != "Sonnet 4.5" {
		t.Errorf("model = %q", m.Text())
	}
	if s := find(t, segs, "status"); s.Text() != "Ready" || s.Icon != "[OK]" {
		t.Errorf("status = %q %q", s.Icon, s.Text())
	}
}

func TestBuild_PresetAndDisabled(t *testing.T) {
	ctx := newContext(t, basePayload)
	ctx.Config.Preset = "SM"
	ctx.Config.Components.Model.Enabled = false
	if got := names(Build(ctx)); !slices.Equal(got, []string{"status"}) {
		t.Errorf("segments = %v", got)
	}
}

func TestModel_Variants(t *testing.T) {
	ctx := newContext(t, basePayload)
	ctx.Config.Components.Model.ShowFullName = true
	if seg, _ := modelName(ctx); seg.Text() != "Claude Sonnet 4.5" {
		t.Errorf("full name = %q", seg.Text())
	}

	ctx.Config.Components.Model.Mapping = map[string]string{"claude-sonnet-4-5-20250929": "S45"}
	if seg, _ := modelName(ctx); seg.Text() != "S45" {
		t.Errorf("mapped name = %q", seg.Text())
	}

	empty := newContext(t, `{}`)
	if _, ok := modelName(empty); ok {
		t.Error("model without id should be hidden")
	}
}

func TestProject_ShowWhenEmpty(t *testing.T) {
	ctx := newContext(t, `{}`)
	if _, ok := project(ctx); ok {
		t.Error("empty project should be hidden")
	}
	ctx.Config.Components.Project.ShowWhenEmpty = true
	if seg, ok := project(ctx); !ok || seg.Text() != "-" {
		t.Errorf("project = %q %v", seg.Text(), ok)
	}
}

func TestTokens_Half(t *testing.T) {
	ctx := newContext(t, basePayload)
	ctx.Snapshot = withContext(model.NewSnapshot("s1"), 100_000)

	seg, ok := tokens(ctx)
	if !ok {
		t.Fatal("tokens hidden")
	}
	want := "[█████░░░░░] 50.0% (100.0k/200k)"
	if seg.Text() != want {
		t.Errorf("tokens = %q, want %q", seg.Text(), want)
	}
	if seg.TextColor != "green" {
		t.Errorf("color = %q, want green", seg.TextColor)
	}
}

func TestTokens_Critical(t *testing.T) {
	ctx := newContext(t, basePayload)
	ctx.Snapshot = withContext(model.NewSnapshot("s1"), 192_000)

	seg, _ := tokens(ctx)
	want := "[█████████▓] 96.0% (192.0k/200k) [X]"
	if seg.Text() != want {
		t.Errorf("tokens = %q, want %q", seg.Text(), want)
	}
	if seg.TextColor != "red" {
		t.Errorf("color = %q, want red", seg.TextColor)
	}
}

func TestTokens_RawNumbersAndZero(t *testing.T) {
	ctx := newContext(t, basePayload)
	ctx.Config.Components.Tokens.ShowProgressBar = false
	ctx.Config.Components.Tokens.ShowPercentage = false
	ctx.Config.Components.Tokens.ShowRawNumbers = true
	ctx.Config.Components.Tokens.ShowZero = true

	seg, ok := tokens(ctx)
	if !ok || seg.Text() != "(0/200000)" {
		t.Errorf("tokens = %q %v", seg.Text(), ok)
	}
}

func TestTokens_Gradient(t *testing.T) {
	ctx := newContext(t, basePayload)
	ctx.Caps.Colors = true
	ctx.Config.Components.Tokens.ShowGradient = true
	ctx.Snapshot = withContext(model.NewSnapshot("s1"), 50_000)

	seg, _ := tokens(ctx)
	colored := 0
	for _, sp := range seg.Spans {
		if strings.HasPrefix(sp.Color, "#") {
			colored++
		}
	}
	if colored != 10 {
		t.Errorf("colored cells = %d, want 10", colored)
	}
}

func TestUsage_Modes(t *testing.T) {
	ctx := newContext(t, basePayload)
	snap := model.NewSnapshot("s1")
	snap.History.Cost.Total = model.CostMetrics{TotalCostUSD: 1.5, TotalLinesAdded: 10, TotalLinesRemoved: 3}
	ctx.Snapshot = snap

	seg, _ := usage(ctx)
	if seg.Text() != "$1.50 +10 -3" || seg.TextColor != "red" {
		t.Errorf("conversation usage = %q %q", seg.Text(), seg.TextColor)
	}

	ctx.Config.Components.Usage.DisplayMode = "session"
	seg, _ = usage(ctx)
	if seg.Text() != "$0.25" || seg.TextColor != "yellow" {
		t.Errorf("session usage = %q %q", seg.Text(), seg.TextColor)
	}

	ctx.Config.Components.Usage.DisplayMode = "conversation"
	ctx.Config.Storage.EnableConversationTracking = false
	if seg, _ = usage(ctx); seg.Text() != "$0.25" {
		t.Errorf("tracking disabled usage = %q", seg.Text())
	}
}

func TestUsage_NoCost(t *testing.T) {
	ctx := newContext(t, `{}`)
	seg, ok := usage(ctx)
	if !ok || seg.Text() != "$0.00" || seg.TextColor != "gray" {
		t.Errorf("usage = %q %q %v", seg.Text(), seg.TextColor, ok)
	}
}

func TestBranch_FromGit(t *testing.T) {
	ctx := newContext(t, basePayload)
	ctx.Git = &gitinfo.Info{
		IsRepo:    true,
		Branch:    "main",
		Unstaged:  1,
		Ahead:     2,
		Operation: gitinfo.Operation{Merging: true},
	}
	seg, ok := branch(ctx)
	if !ok || seg.Text() != "main*^2 MERGE" {
		t.Errorf("branch = %q %v", seg.Text(), ok)
	}
	if seg.TextColor != "yellow" {
		t.Errorf("color = %q, want yellow", seg.TextColor)
	}
}

func TestBranch_PayloadFallbackAndTruncation(t *testing.T) {
	ctx := newContext(t, `{"git_branch": "feature/very-long-branch-name"}`)
	seg, ok := branch(ctx)
	if !ok || seg.Text() != "feature/very-long..." {
		t.Errorf("branch = %q %v", seg.Text(), ok)
	}

	none := newContext(t, `{}`)
	if _, ok := branch(none); ok {
		t.Error("branch without git should be hidden")
	}
	none.Config.Components.Branch.ShowWhenNoGit = true
	if seg, ok := branch(none); !ok || seg.Text() != "no git" {
		t.Errorf("no git = %q %v", seg.Text(), ok)
	}
}

func TestStatus_FromTranscriptAndHint(t *testing.T) {
	ctx := newContext(t, basePayload)
	ctx.Status = &source.Status{Kind: source.StatusTool, Message: "Tool", Detail: "Bash"}
	seg, _ := status(ctx)
	if seg.Text() != "Tool Bash" || seg.Icon != "[TOOL]" || seg.TextColor != "blue" {
		t.Errorf("status = %q %q %q", seg.Icon, seg.Text(), seg.TextColor)
	}

	hint := newContext(t, `{"status": "thinking"}`)
	if seg, _ := status(hint); seg.Text() != "Thinking" {
		t.Errorf("hint status = %q", seg.Text())
	}
}

func TestIcons_ForceFlags(t *testing.T) {
	ctx := newContext(t, basePayload)
	ctx.Config.Terminal.ForceEmoji = true
	if seg, _ := project(ctx); seg.Icon != "📁" {
		t.Errorf("emoji icon = %q", seg.Icon)
	}
	ctx.Config.Terminal.ForceText = true
	if seg, _ := project(ctx); seg.Icon != "[P]" {
		t.Errorf("text icon = %q", seg.Icon)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 5); got != "ab..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("héllo", 10); got != "héllo" {
		t.Errorf("truncate = %q", got)
	}
}
