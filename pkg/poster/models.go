// Package poster defines the poster style model: the StyleState snapshot that
// drives rendering, partial edits, style categories and AI suggestions.
package poster

import "math"

// ── Enumerations ──

// LayoutStyle selects the layout renderer.
type LayoutStyle string

const (
	LayoutModern LayoutStyle = "modern"
	LayoutOrnate LayoutStyle = "ornate"
)

// OverlayPosition is the vertical anchor of the text block in the modern layout.
type OverlayPosition string

const (
	OverlayTop    OverlayPosition = "top"
	OverlayBottom OverlayPosition = "bottom"
	OverlayCenter OverlayPosition = "center"
)

// BackgroundMode selects the background painter.
type BackgroundMode string

const (
	BackgroundImage    BackgroundMode = "image"
	BackgroundSolid    BackgroundMode = "solid"
	BackgroundGradient BackgroundMode = "gradient"
	BackgroundPattern  BackgroundMode = "pattern"
)

// FontFamily is a logical typeface; the renderer maps it to concrete font data.
type FontFamily string

const (
	FontSerif     FontFamily = "serif"
	FontSans      FontFamily = "sans"
	FontScript    FontFamily = "script"
	FontDisplay   FontFamily = "display"
	FontMonospace FontFamily = "monospace"
)

// Valid reports whether l is a known layout.
func (l LayoutStyle) Valid() bool {
	return l == LayoutModern || l == LayoutOrnate
}

// Valid reports whether p is a known overlay position.
func (p OverlayPosition) Valid() bool {
	switch p {
	case OverlayTop, OverlayBottom, OverlayCenter:
		return true
	}
	return false
}

// Valid reports whether m is a known background mode.
func (m BackgroundMode) Valid() bool {
	switch m {
	case BackgroundImage, BackgroundSolid, BackgroundGradient, BackgroundPattern:
		return true
	}
	return false
}

// Valid reports whether f is a known font family.
func (f FontFamily) Valid() bool {
	switch f {
	case FontSerif, FontSans, FontScript, FontDisplay, FontMonospace:
		return true
	}
	return false
}

// FontFamilies lists every font family in display order.
var FontFamilies = []FontFamily{FontSerif, FontSans, FontScript, FontDisplay, FontMonospace}

// ── Gradients ──

// Gradient is a named two-stop colour ramp.
type Gradient struct {
	Name   string    `json:"name"`
	Colors [2]string `json:"colors"`
}

// Gradients are the selectable background gradients.
var Gradients = []Gradient{
	{Name: "Sunset", Colors: [2]string{"#FF9A9E", "#FECFEF"}},
	{Name: "Ocean", Colors: [2]string{"#a18cd1", "#fbc2eb"}},
	{Name: "Peach", Colors: [2]string{"#fad0c4", "#ffd1ff"}},
	{Name: "Mint", Colors: [2]string{"#84fab0", "#8fd3f4"}},
	{Name: "Night", Colors: [2]string{"#30cfd0", "#330867"}},
	{Name: "Warmth", Colors: [2]string{"#f6d365", "#fda085"}},
	{Name: "Royal", Colors: [2]string{"#1e3a8a", "#172554"}},
}

// GradientByName returns the named gradient, matching case-sensitively.
func GradientByName(name string) (Gradient, bool) {
	for _, g := range Gradients {
		if g.Name == name {
			return g, true
		}
	}
	return Gradient{}, false
}

// DefaultGradient is used for freshly derived states.
func DefaultGradient() Gradient {
	return Gradients[len(Gradients)-1]
}

// ── Style state ──

// StyleState is one immutable snapshot of every poster parameter. Rendering
// is a pure function of a StyleState and the source image. All fields are
// values, so copying a StyleState copies it completely.
type StyleState struct {
	// Content
	Headline  string `json:"headline"`
	Tagline   string `json:"tagline"`
	BrandName string `json:"brandName"`

	// Layout
	LayoutStyle     LayoutStyle     `json:"layoutStyle"`
	PrimaryColor    string          `json:"primaryColor"`
	AccentColor     string          `json:"accentColor"`
	OverlayPosition OverlayPosition `json:"overlayPosition"`

	// Background
	BgMode     BackgroundMode `json:"bgMode"`
	BgColor    string         `json:"bgColor"`
	BgGradient Gradient       `json:"bgGradient"`

	// Typography & effects
	HeadlineScale  float64    `json:"headlineScale"`
	TaglineScale   float64    `json:"taglineScale"`
	HeadlineFont   FontFamily `json:"headlineFont"`
	TaglineFont    FontFamily `json:"taglineFont"`
	OverlayOpacity float64    `json:"overlayOpacity"`
}

// Default colours for states whose inputs are missing or malformed.
const (
	DefaultPrimaryColor = "#ffffff"
	DefaultAccentColor  = "#fbbf24"
	DefaultBgColor      = "#1e3a8a"
	DefaultOpacity      = 0.8
)

// Text scale bounds. Normalize clamps HeadlineScale and TaglineScale into
// [MinScale, MaxScale].
const (
	MinScale = 0.1
	MaxScale = 5
)

// DefaultState returns a complete modern-layout state with empty text.
func DefaultState() StyleState {
	return StyleState{
		LayoutStyle:     LayoutModern,
		PrimaryColor:    DefaultPrimaryColor,
		AccentColor:     DefaultAccentColor,
		OverlayPosition: OverlayBottom,
		BgMode:          BackgroundGradient,
		BgColor:         DefaultBgColor,
		BgGradient:      DefaultGradient(),
		HeadlineScale:   1,
		TaglineScale:    1,
		HeadlineFont:    FontSans,
		TaglineFont:     FontSans,
		OverlayOpacity:  DefaultOpacity,
	}
}

// Normalize returns a copy of s with out-of-range values replaced. Opacity is
// clamped to [0,1] and scales to [MinScale, MaxScale]; NaN, infinite and
// non-positive numbers take their defaults. Unknown enums and unparseable
// colours fall back to defaults too.
func (s StyleState) Normalize() StyleState {
	d := DefaultState()

	if !s.LayoutStyle.Valid() {
		s.LayoutStyle = d.LayoutStyle
	}
	if !s.OverlayPosition.Valid() {
		s.OverlayPosition = d.OverlayPosition
	}
	if !s.BgMode.Valid() {
		s.BgMode = d.BgMode
	}
	if !s.HeadlineFont.Valid() {
		s.HeadlineFont = d.HeadlineFont
	}
	if !s.TaglineFont.Valid() {
		s.TaglineFont = d.TaglineFont
	}
	s.HeadlineScale = clampScale(s.HeadlineScale)
	s.TaglineScale = clampScale(s.TaglineScale)
	if !finite(s.OverlayOpacity) {
		s.OverlayOpacity = DefaultOpacity
	}
	s.OverlayOpacity = min(max(s.OverlayOpacity, 0), 1)

	s.PrimaryColor = validHexOr(s.PrimaryColor, d.PrimaryColor)
	s.AccentColor = validHexOr(s.AccentColor, d.AccentColor)
	s.BgColor = validHexOr(s.BgColor, d.BgColor)
	for i := range s.BgGradient.Colors {
		s.BgGradient.Colors[i] = validHexOr(s.BgGradient.Colors[i], d.BgGradient.Colors[i])
	}
	return s
}

func clampScale(v float64) float64 {
	if !finite(v) || v <= 0 {
		return 1
	}
	return min(max(v, MinScale), MaxScale)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validHexOr(hex, fallback string) string {
	if _, err := ParseHex(hex); err != nil {
		return fallback
	}
	return hex
}
