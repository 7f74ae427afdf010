// geometry.go - Rectangles, corner radii and aspect-preserving fits.
package render

import (
	"image"
	"math"
)

// Rect is a floating-point rectangle in canvas pixels.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Inset shrinks r by d on every side (negative d grows it).
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

// Pixels rounds r to the enclosing integer rectangle.
func (r Rect) Pixels() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.W)),
		int(math.Round(r.Y+r.H)),
	)
}

// Radii are corner radii in clockwise order from the top-left corner.
type Radii struct {
	TopLeft, TopRight, BottomRight, BottomLeft float64
}

// Uniform returns equal radii on all four corners.
func Uniform(r float64) Radii {
	return Radii{r, r, r, r}
}

// IsZero reports whether every corner is square.
func (r Radii) IsZero() bool { return r == Radii{} }

// grow adds d to every non-zero corner and floors at zero.
func (r Radii) grow(d float64) Radii {
	g := func(v float64) float64 {
		if v == 0 {
			return 0
		}
		return max(v+d, 0)
	}
	return Radii{g(r.TopLeft), g(r.TopRight), g(r.BottomRight), g(r.BottomLeft)}
}

// fit scales radii down uniformly so adjacent corners never overlap,
// matching how browsers resolve oversized roundRect radii.
func (r Radii) fit(w, h float64) Radii {
	f := 1.0
	scale := func(side, a, b float64) {
		if sum := a + b; sum > side && sum > 0 {
			f = min(f, side/sum)
		}
	}
	scale(w, r.TopLeft, r.TopRight)
	scale(w, r.BottomLeft, r.BottomRight)
	scale(h, r.TopLeft, r.BottomLeft)
	scale(h, r.TopRight, r.BottomRight)
	return Radii{r.TopLeft * f, r.TopRight * f, r.BottomRight * f, r.BottomLeft * f}
}

// ContainRect fits a srcW×srcH image inside target preserving its aspect
// ratio and centres it. The result is never larger than target on either axis.
func ContainRect(srcW, srcH int, target Rect) Rect {
	if srcW <= 0 || srcH <= 0 || target.Empty() {
		return Rect{X: target.X, Y: target.Y}
	}

	ratio := float64(srcW) / float64(srcH)
	w := target.W
	h := w / ratio
	if h > target.H {
		h = target.H
		w = h * ratio
	}

	return Rect{
		X: target.X + (target.W-w)/2,
		Y: target.Y + (target.H-h)/2,
		W: w,
		H: h,
	}
}

// CanvasSize scales a source image so its longer side is at most maxDim,
// preserving aspect ratio. Images are never upscaled.
func CanvasSize(srcW, srcH, maxDim int) (w, h int) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	scale := 1.0
	if longest := max(srcW, srcH); maxDim > 0 && longest > maxDim {
		scale = float64(maxDim) / float64(longest)
	}
	w = max(1, int(math.Round(float64(srcW)*scale)))
	h = max(1, int(math.Round(float64(srcH)*scale)))
	return w, h
}
