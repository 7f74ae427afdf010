// background.go - Background painters: dotted pattern, diagonal gradient and
// the blurred ambient copy of the product photo.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/xob0t/posterkit/pkg/poster"
)

// Pattern motif constants.
const (
	patternSpacing   = 60.0
	patternDotLarge  = 20.0
	patternDotSmall  = 10.0
	patternDotOffset = 30.0
)

var (
	patternFrom = poster.HexColor("#1e3a8a")
	patternTo   = poster.HexColor("#172554")
	patternDot  = color.NRGBA{255, 255, 255, 13}
)

// Ambient background: the photo blurred with sigma 40 px, dimmed to 85% and
// saturated by 20%, drawn 1.2× larger than the canvas from -10% so the blur
// never shows an edge. The blur runs on a downscaled copy.
const (
	ambientOverscan   = 0.1
	ambientBlurSigma  = 40.0
	ambientDownscale  = 8.0
	ambientBrightness = 0.85
	ambientSaturation = 20.0
)

// PaintGradient fills the whole surface with a top-left to bottom-right ramp.
func PaintGradient(s Surface, from, to color.NRGBA) {
	w, h := s.Size()
	fw, fh := float64(w), float64(h)
	s.FillLinearGradient(Rect{W: fw, H: fh}, 0, 0, fw, fh, from, to)
}

// PaintSolid fills the whole surface with c.
func PaintSolid(s Surface, c color.NRGBA) {
	w, h := s.Size()
	s.SetFillColor(c)
	s.FillRect(Rect{W: float64(w), H: float64(h)})
}

// PaintPattern draws the navy gradient with a faint two-size dot motif
// repeated every 60 px.
func PaintPattern(s Surface) {
	PaintGradient(s, patternFrom, patternTo)

	w, h := s.Size()
	s.SetFillColor(patternDot)
	for x := 0.0; x < float64(w); x += patternSpacing {
		for y := 0.0; y < float64(h); y += patternSpacing {
			s.FillCircle(x, y, patternDotLarge)
			s.FillCircle(x+patternDotOffset, y+patternDotOffset, patternDotSmall)
		}
	}
}

// PaintAmbient draws a soft, darkened, saturated copy of img that overfills
// the surface.
func PaintAmbient(s Surface, img image.Image) {
	w, h := s.Size()
	fw, fh := float64(w), float64(h)
	dst := Rect{
		X: -fw * ambientOverscan,
		Y: -fh * ambientOverscan,
		W: fw * (1 + 2*ambientOverscan),
		H: fh * (1 + 2*ambientOverscan),
	}
	s.DrawImage(AmbientImage(img, dst.W, dst.H), dst, Radii{})
}

// AmbientImage prepares the filtered background for a target of tw×th pixels.
// The result is smaller than the target; callers scale it up when drawing.
func AmbientImage(img image.Image, tw, th float64) *image.NRGBA {
	sw := max(1, int(math.Ceil(tw/ambientDownscale)))
	sh := max(1, int(math.Ceil(th/ambientDownscale)))

	small := imaging.Resize(img, sw, sh, imaging.Linear)
	small = imaging.Blur(small, ambientBlurSigma/ambientDownscale)
	small = imaging.AdjustFunc(small, func(c color.NRGBA) color.NRGBA {
		scale := func(v uint8) uint8 {
			return uint8(math.Round(float64(v) * ambientBrightness))
		}
		return color.NRGBA{scale(c.R), scale(c.G), scale(c.B), c.A}
	})
	return imaging.AdjustSaturation(small, ambientSaturation)
}
