// path.go - Closed contours rasterised to anti-aliased alpha masks with
// golang.org/x/image/vector. Holes are made by reversing a contour: the
// rasteriser accumulates signed coverage, so opposite windings cancel.
package render

import (
	"image"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

type point struct{ x, y float64 }

// segment ends at to; cubic segments carry two control points.
type segment struct {
	cubic  bool
	c1, c2 point
	to     point
}

type contour struct {
	start point
	segs  []segment
}

func (c *contour) lineTo(x, y float64) {
	c.segs = append(c.segs, segment{to: point{x, y}})
}

func (c *contour) cubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	c.segs = append(c.segs, segment{cubic: true, c1: point{c1x, c1y}, c2: point{c2x, c2y}, to: point{x, y}})
}

// reversed returns the same closed contour traversed the other way.
func (c contour) reversed() contour {
	if len(c.segs) == 0 {
		return c
	}
	// Vertices: start, segs[0].to, ..., segs[n-1].to.
	n := len(c.segs)
	out := contour{start: c.segs[n-1].to}
	for i := n - 1; i >= 0; i-- {
		from := c.start
		if i > 0 {
			from = c.segs[i-1].to
		}
		s := c.segs[i]
		if s.cubic {
			out.segs = append(out.segs, segment{cubic: true, c1: s.c2, c2: s.c1, to: from})
		} else {
			out.segs = append(out.segs, segment{to: from})
		}
	}
	return out
}

// roundedRectContour traces r clockwise (screen coordinates) with corner radii.
func roundedRectContour(r Rect, radii Radii) contour {
	rd := radii.fit(r.W, r.H)
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.W, r.Y+r.H
	tl, tr, br, bl := rd.TopLeft, rd.TopRight, rd.BottomRight, rd.BottomLeft

	c := contour{start: point{x0 + tl, y0}}
	c.lineTo(x1-tr, y0)
	if tr > 0 {
		c.cubicTo(x1-tr+kappa*tr, y0, x1, y0+tr-kappa*tr, x1, y0+tr)
	}
	c.lineTo(x1, y1-br)
	if br > 0 {
		c.cubicTo(x1, y1-br+kappa*br, x1-br+kappa*br, y1, x1-br, y1)
	}
	c.lineTo(x0+bl, y1)
	if bl > 0 {
		c.cubicTo(x0+bl-kappa*bl, y1, x0, y1-bl+kappa*bl, x0, y1-bl)
	}
	c.lineTo(x0, y0+tl)
	if tl > 0 {
		c.cubicTo(x0, y0+tl-kappa*tl, x0+tl-kappa*tl, y0, x0+tl, y0)
	}
	return c
}

func circleContour(cx, cy, r float64) contour {
	k := kappa * r
	c := contour{start: point{cx + r, cy}}
	c.cubicTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	c.cubicTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	c.cubicTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	c.cubicTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	return c
}

// ringContours returns the outline of a stroke of width lw centred on the
// rounded rectangle r.
func ringContours(r Rect, radii Radii, lw float64) []contour {
	half := lw / 2
	outer := roundedRectContour(r.Inset(-half), radii.grow(half))
	inner := r.Inset(half)
	if inner.Empty() {
		return []contour{outer}
	}
	return []contour{outer, roundedRectContour(inner, radii.grow(-half)).reversed()}
}

// bounds returns the integer rectangle enclosing every point and control
// point, padded by one pixel for anti-aliasing.
func bounds(cs []contour) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	add := func(p point) {
		minX, minY = min(minX, p.x), min(minY, p.y)
		maxX, maxY = max(maxX, p.x), max(maxY, p.y)
	}
	for _, c := range cs {
		add(c.start)
		for _, s := range c.segs {
			if s.cubic {
				add(s.c1)
				add(s.c2)
			}
			add(s.to)
		}
	}
	if minX > maxX || minY > maxY {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(minX))-1,
		int(math.Floor(minY))-1,
		int(math.Ceil(maxX))+1,
		int(math.Ceil(maxY))+1,
	)
}

// rasterize renders contours to an alpha mask positioned in canvas
// coordinates. It returns nil for empty geometry.
func rasterize(cs ...contour) *image.Alpha {
	b := bounds(cs)
	if b.Empty() {
		return nil
	}

	z := vector.NewRasterizer(b.Dx(), b.Dy())
	ox, oy := float64(b.Min.X), float64(b.Min.Y)
	pt := func(p point) (float32, float32) {
		return float32(p.x - ox), float32(p.y - oy)
	}

	for _, c := range cs {
		z.MoveTo(pt(c.start))
		for _, s := range c.segs {
			tx, ty := pt(s.to)
			if s.cubic {
				ax, ay := pt(s.c1)
				bx, by := pt(s.c2)
				z.CubeTo(ax, ay, bx, by, tx, ty)
			} else {
				z.LineTo(tx, ty)
			}
		}
		z.ClosePath()
	}

	mask := image.NewAlpha(b)
	z.Draw(mask, b, image.Opaque, image.Point{})
	return mask
}
