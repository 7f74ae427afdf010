// color.go - Hex colour parsing for style fields.
package poster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa" (leading '#' optional).
func ParseHex(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: expected #rgb, #rrggbb or #rrggbbaa", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// HexColor converts a hex string to a colour, returning white on any parse
// error (safe default for rendering).
func HexColor(s string) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		return color.NRGBA{255, 255, 255, 255}
	}
	return c
}

// WithAlpha returns c with its alpha replaced by a in [0,1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	a = min(max(a, 0), 1)
	c.A = uint8(a*255 + 0.5)
	return c
}
