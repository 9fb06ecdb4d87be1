// Package theme renders component segments into one status line.
package theme

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/statusline-pro/internal/terminal"
)

// Theme names.
const (
	Classic   = "classic"
	Powerline = "powerline"
	Capsule   = "capsule"
)

// Glyphs used by the nerd font themes.
const (
	powerlineArrow = "\ue0b0"
	capsuleLeft    = "\ue0b6"
	capsuleRight   = "\ue0b4"
)

// Span is a run of text in one foreground color. An empty Color uses the
// segment's text color.
type Span struct {
	Text  string
	Color string
}

// Segment is the rendered output of one component.
type Segment struct {
	Name      string
	Icon      string
	IconColor string
	TextColor string
	Spans     []Span
}

// Text returns the concatenated span text.
func (s Segment) Text() string {
	var b strings.Builder
	for _, sp := range s.Spans {
		b.WriteString(sp.Text)
	}
	return b.String()
}

// Plain returns icon and text without styling.
func (s Segment) Plain() string {
	if s.Icon == "" {
		return s.Text()
	}
	return s.Icon + " " + s.Text()
}

// Renderer joins segments using one of the themes.
type Renderer struct {
	name      string
	separator string
	caps      terminal.Capabilities
	lg        *lipgloss.Renderer
}

// New returns a renderer for the named theme. Powerline and capsule need
// colors and a nerd font; without them they render as classic.
func New(name, separator string, caps terminal.Capabilities) *Renderer {
	lg := lipgloss.NewRenderer(io.Discard)
	if caps.Colors {
		lg.SetColorProfile(termenv.TrueColor)
	} else {
		lg.SetColorProfile(termenv.Ascii)
	}

	switch name {
	case Powerline, Capsule:
		if !caps.Colors || !caps.NerdFont {
			name = Classic
		}
	default:
		name = Classic
	}
	return &Renderer{name: name, separator: separator, caps: caps, lg: lg}
}

// Name returns the theme actually used.
func (r *Renderer) Name() string { return r.name }

// Render joins segs into one line. Segments with no text are skipped.
func (r *Renderer) Render(segs []Segment) string {
	visible := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if s.Text() != "" || s.Icon != "" {
			visible = append(visible, s)
		}
	}
	if len(visible) == 0 {
		return ""
	}

	switch r.name {
	case Powerline:
		return r.powerline(visible)
	case Capsule:
		return r.capsule(visible)
	}
	return r.classic(visible)
}

// body styles the icon and spans of s, optionally on a background.
func (r *Renderer) body(s Segment, bg string) string {
	var b strings.Builder
	style := func(text, color string) string {
		st := r.lg.NewStyle()
		if c, ok := Resolve(color); ok && r.caps.Colors {
			st = st.Foreground(c.Color())
		}
		if c, ok := Resolve(bg); ok && r.caps.Colors {
			st = st.Background(c.Color())
		}
		return st.Render(text)
	}

	if s.Icon != "" {
		b.WriteString(style(s.Icon, s.IconColor))
		b.WriteString(style(" ", ""))
	}
	for _, sp := range s.Spans {
		color := sp.Color
		if color == "" {
			color = s.TextColor
		}
		b.WriteString(style(sp.Text, color))
	}
	return b.String()
}

func (r *Renderer) classic(segs []Segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = r.body(s, "")
	}
	return strings.Join(parts, r.separator)
}

// segmentBackground is the fill color of a powerline or capsule segment.
func segmentBackground(s Segment) string {
	if _, ok := Resolve(s.IconColor); ok {
		return s.IconColor
	}
	return "bright_black"
}

// onFill re-colors s for dark text on a filled background.
func onFill(s Segment) Segment {
	s.IconColor = "black"
	s.TextColor = "black"
	spans := make([]Span, len(s.Spans))
	for i, sp := range s.Spans {
		spans[i] = Span{Text: sp.Text}
		if sp.Color != "" && strings.HasPrefix(sp.Color, "#") {
			spans[i].Color = sp.Color
		}
	}
	s.Spans = spans
	return s
}

func (r *Renderer) powerline(segs []Segment) string {
	var b strings.Builder
	for i, s := range segs {
		bg := segmentBackground(s)
		pad := r.lg.NewStyle().Background(mustColor(bg)).Render(" ")
		b.WriteString(pad)
		b.WriteString(r.body(onFill(s), bg))
		b.WriteString(pad)

		arrow := r.lg.NewStyle().Foreground(mustColor(bg))
		if i+1 < len(segs) {
			arrow = arrow.Background(mustColor(segmentBackground(segs[i+1])))
		}
		b.WriteString(arrow.Render(powerlineArrow))
	}
	return b.String()
}

func (r *Renderer) capsule(segs []Segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		bg := segmentBackground(s)
		edge := r.lg.NewStyle().Foreground(mustColor(bg))
		pad := r.lg.NewStyle().Background(mustColor(bg)).Render(" ")
		parts[i] = edge.Render(capsuleLeft) + pad + r.body(onFill(s), bg) + pad + edge.Render(capsuleRight)
	}
	return strings.Join(parts, " ")
}

func mustColor(name string) lipgloss.Color {
	c, _ := Resolve(name)
	return c.Color()
}
