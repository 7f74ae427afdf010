// styled_image.go - Aspect-preserving product image placement with optional
// rounded clip, border and drop shadow. Shared by both layouts.
package render

import (
	"image"
	"image/color"
)

// imageShadow is the drop shadow cast by styled images.
var imageShadow = Shadow{Color: color.NRGBA{0, 0, 0, 102}, Blur: 30, OffsetY: 15}

// ImageStyle decorates a placed image. A zero style draws the bare image.
type ImageStyle struct {
	// Border is drawn only when its alpha and BorderWidth are both non-zero.
	Border      color.NRGBA
	BorderWidth float64
	Shadow      bool
	// Rounded is the corner radius applied to the clip and the border.
	Rounded float64
}

// DrawStyledImage fits img inside target without distortion, centres it and
// draws it with style. It returns the rectangle the image occupies.
func DrawStyledImage(s Surface, img image.Image, target Rect, style ImageStyle) Rect {
	b := img.Bounds()
	dst := ContainRect(b.Dx(), b.Dy(), target)
	if dst.Empty() {
		return dst
	}
	radii := Uniform(style.Rounded)

	if style.Shadow {
		s.SetShadow(imageShadow)
	}
	s.DrawImage(img, dst, radii)
	s.ClearShadow()

	if style.Border.A > 0 && style.BorderWidth > 0 {
		s.SetStrokeColor(style.Border)
		s.SetLineWidth(style.BorderWidth)
		s.StrokeRoundedRect(dst, radii)
	}
	return dst
}
