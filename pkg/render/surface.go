// surface.go - Drawing surface abstraction used by the layout renderers.
// Renderers only talk to Surface, so the backend (software rasteriser,
// offscreen buffer, test recorder) can be swapped.
package render

import (
	"image"
	"image/color"
)

// TextAlign positions text horizontally relative to the x passed to FillText.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// Shadow is a drop shadow applied to subsequent fills, strokes, images and text.
// Blur follows the canvas convention: the Gaussian sigma is Blur/2.
type Shadow struct {
	Color   color.NRGBA
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// Surface is the set of primitives a layout renderer may use.
// Text y coordinates are alphabetic baselines.
type Surface interface {
	// Size returns the surface dimensions in pixels.
	Size() (w, h int)

	SetFillColor(c color.NRGBA)
	SetStrokeColor(c color.NRGBA)
	SetLineWidth(w float64)
	SetShadow(s Shadow)
	ClearShadow()

	FillRect(r Rect)
	// FillLinearGradient fills r with a ramp running from (x0,y0) to (x1,y1).
	FillLinearGradient(r Rect, x0, y0, x1, y1 float64, from, to color.NRGBA)
	StrokeRect(r Rect)
	FillRoundedRect(r Rect, radii Radii)
	StrokeRoundedRect(r Rect, radii Radii)
	FillCircle(cx, cy, radius float64)

	// DrawImage scales img into dst. Non-zero clip radii round the corners.
	DrawImage(img image.Image, dst Rect, clip Radii)

	SetFont(spec FontSpec) error
	SetTextAlign(a TextAlign)
	MeasureText(text string) float64
	FillText(text string, x, y float64)
}
