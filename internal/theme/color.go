package theme

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RGB is a 24-bit color.
type RGB struct{ R, G, B uint8 }

// Hex returns the color as #rrggbb.
func (c RGB) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// Color converts c for lipgloss.
func (c RGB) Color() lipgloss.Color { return lipgloss.Color(c.Hex()) }

// nord maps the named colors of the configuration onto the Nord palette.
var nord = map[string]RGB{
	"black":        {46, 52, 64},
	"gray":         {120, 128, 146},
	"grey":         {120, 128, 146},
	"white":        {236, 239, 244},
	"red":          {191, 97, 106},
	"green":        {163, 190, 140},
	"yellow":       {235, 203, 139},
	"blue":         {129, 161, 193},
	"magenta":      {180, 142, 173},
	"purple":       {180, 142, 173},
	"cyan":         {136, 192, 208},
	"orange":       {208, 135, 112},
	"pink":         {211, 157, 197},
	"bright_black": {76, 86, 106},
	"bright_white": {255, 255, 255},
}

// brightAmount is how far each bright_ variant is lightened toward white.
var brightAmount = map[string]float64{
	"red": 0.18, "green": 0.18, "yellow": 0.12, "blue": 0.18,
	"magenta": 0.2, "purple": 0.2, "cyan": 0.18, "orange": 0.2, "pink": 0.2,
}

// Resolve turns a color name or hex string into RGB. Empty, "default" and
// "transparent" resolve to false.
func Resolve(name string) (RGB, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "default", "transparent", "bg_default":
		return RGB{}, false
	}

	hex := strings.TrimPrefix(n, "#")
	if len(hex) == 6 {
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
		}
	}

	if c, ok := nord[n]; ok {
		return c, true
	}
	if base, ok := strings.CutPrefix(n, "bright_"); ok {
		if amount, ok := brightAmount[base]; ok {
			return lighten(nord[base], amount), true
		}
	}
	return RGB{}, false
}

func lighten(c RGB, amount float64) RGB {
	lerp := func(v uint8) uint8 {
		f := float64(v) + (255-float64(v))*amount
		return uint8(math.Round(math.Min(255, math.Max(0, f))))
	}
	return RGB{lerp(c.R), lerp(c.G), lerp(c.B)}
}

// Gradient returns the progress bar color at pct percent, blending green
// through yellow and orange into red.
func Gradient(pct float64) RGB {
	p := math.Max(0, math.Min(100, pct))
	stops := [...][3]float64{
		{80, 200, 80},
		{150, 200, 60},
		{200, 200, 80},
		{220, 160, 60},
		{200, 100, 80},
	}
	i := int(p / 25)
	if i >= len(stops)-1 {
		i = len(stops) - 2
	}
	t := (p - float64(i)*25) / 25
	from, to := stops[i], stops[i+1]
	mix := func(a, b float64) uint8 { return uint8(math.Round(a + (b-a)*t)) }
	return RGB{mix(from[0], to[0]), mix(from[1], to[1]), mix(from[2], to[2])}
}

// EmptyBar is the color of unfilled progress bar cells in gradient mode.
var EmptyBar = RGB{120, 120, 120}
