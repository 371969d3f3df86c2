// Package theme derives chart and dashboard colours from a single brand colour.
//
// Trainers pick one primary colour for their dashboard; everything else
// (accent, text colour, grid lines) is derived from it. All functions accept
// CSS hex strings ("#4cc27d" or "#4c7") and degrade to [DefaultColor] when
// given something they cannot parse, so a bad setting never breaks a chart.
package theme

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultColor is the fallback series colour.
const DefaultColor = "#4cc27d"

// Text colours chosen by [ContrastText].
const (
	LightText = "#ffffff"
	DarkText  = "#111827"
)

// darkThreshold is the perceived brightness below which a colour counts as dark.
const darkThreshold = 128.0

// Theme is a full palette derived from one primary colour.
type Theme struct {
	Primary      string `json:"primary" toml:"primary"`
	PrimaryLight string `json:"primary_light" toml:"primary_light"`
	PrimaryDark  string `json:"primary_dark" toml:"primary_dark"`
	Accent       string `json:"accent" toml:"accent"`
	Text         string `json:"text" toml:"text"`
	Background   string `json:"background" toml:"background"`
	Grid         string `json:"grid" toml:"grid"`
	Dark         bool   `json:"dark" toml:"dark"`
}

// Parse parses a "#rgb" or "#rrggbb" hex colour. The leading '#' is optional.
func Parse(hex string) (colorful.Color, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return colorful.Color{}, fmt.Errorf("invalid hex colour %q", hex)
	}
	return colorful.Hex("#" + strings.ToLower(s))
}

// Normalize returns hex in canonical "#rrggbb" form, or DefaultColor if it
// cannot be parsed.
func Normalize(hex string) string {
	return mustParse(hex).Hex()
}

// Valid reports whether hex parses as a colour.
func Valid(hex string) bool {
	_, err := Parse(hex)
	return err == nil
}

// Brightness returns the perceived brightness of hex in [0, 255] using the
// W3C weighting (299 R + 587 G + 114 B) / 1000.
func Brightness(hex string) float64 {
	c := mustParse(hex)
	r, g, b := c.RGB255()
	return (299*float64(r) + 587*float64(g) + 114*float64(b)) / 1000
}

// IsDark reports whether hex is dark enough to need light text on top.
func IsDark(hex string) bool {
	return Brightness(hex) < darkThreshold
}

// ContrastText returns a text colour readable on a background of hex.
func ContrastText(hex string) string {
	if IsDark(hex) {
		return LightText
	}
	return DarkText
}

// Complementary returns the colour on the opposite side of the hue wheel.
func Complementary(hex string) string {
	h, s, l := mustParse(hex).Hsl()
	return colorful.Hsl(math.Mod(h+180, 360), s, l).Clamped().Hex()
}

// Lighten raises the HCL lightness of hex by amount (0..1).
func Lighten(hex string, amount float64) string {
	return shiftLightness(hex, amount)
}

// Darken lowers the HCL lightness of hex by amount (0..1).
func Darken(hex string, amount float64) string {
	return shiftLightness(hex, -amount)
}

// WithAlpha returns hex as an rgba() string with the given opacity.
func WithAlpha(hex string, alpha float64) string {
	r, g, b := mustParse(hex).RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, trimFloat(min(max(alpha, 0), 1)))
}

// Derive builds a complete theme from a primary colour.
func Derive(primary string) Theme {
	p := Normalize(primary)
	dark := IsDark(p)
	t := Theme{
		Primary:      p,
		PrimaryLight: Lighten(p, 0.2),
		PrimaryDark:  Darken(p, 0.2),
		Accent:       Complementary(p),
		Text:         ContrastText(p),
		Dark:         dark,
	}
	if dark {
		t.Background = "#0f172a"
		t.Grid = "#334155"
	} else {
		t.Background = "#ffffff"
		t.Grid = "#e5e7eb"
	}
	return t
}

func shiftLightness(hex string, amount float64) string {
	h, c, l := mustParse(hex).Hcl()
	return colorful.Hcl(h, c, min(max(l+amount, 0), 1)).Clamped().Hex()
}

func mustParse(hex string) colorful.Color {
	c, err := Parse(hex)
	if err != nil {
		c, _ = colorful.Hex(DefaultColor)
	}
	return c
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
