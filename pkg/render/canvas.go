// canvas.go - Software Surface backed by an *image.RGBA. Shapes are
// rasterised to alpha masks and composited with draw.Over; drop shadows are
// blurred copies of the same mask.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// maxCachedFaces bounds the face cache. Slider edits produce a new size
// per step, so the cache is dropped whenever it fills up.
const maxCachedFaces = 16

// Canvas is the software rasteriser. It is not safe for concurrent use.
type Canvas struct {
	img   *image.RGBA
	fonts *FontCatalog
	faces map[FontSpec]font.Face

	fill      color.NRGBA
	stroke    color.NRGBA
	lineWidth float64
	shadow    Shadow
	face      font.Face
	align     TextAlign
}

// NewCanvas creates a transparent w×h canvas.
func NewCanvas(w, h int, fonts *FontCatalog) *Canvas {
	if fonts == nil {
		fonts = NewFontCatalog("")
	}
	c := &Canvas{fonts: fonts, faces: make(map[FontSpec]font.Face)}
	c.Reset(w, h)
	return c
}

// Reset clears the canvas and drawing state, reusing the pixel buffer when
// the size is unchanged.
func (c *Canvas) Reset(w, h int) {
	if c.img == nil || c.img.Bounds().Dx() != w || c.img.Bounds().Dy() != h {
		c.img = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		clear(c.img.Pix)
	}
	c.fill = color.NRGBA{0, 0, 0, 255}
	c.stroke = color.NRGBA{0, 0, 0, 255}
	c.lineWidth = 1
	c.shadow = Shadow{}
	c.face = nil
	c.align = AlignLeft
}

// Image returns the backing image. It is overwritten by the next Reset.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Size implements Surface.
func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) SetFillColor(col color.NRGBA)   { c.fill = col }
func (c *Canvas) SetStrokeColor(col color.NRGBA) { c.stroke = col }
func (c *Canvas) SetLineWidth(w float64)         { c.lineWidth = max(w, 0) }
func (c *Canvas) SetShadow(s Shadow)             { c.shadow = s }
func (c *Canvas) ClearShadow()                   { c.shadow = Shadow{} }
func (c *Canvas) SetTextAlign(a TextAlign)       { c.align = a }

// ── Shapes ──

func (c *Canvas) FillRect(r Rect) {
	c.FillRoundedRect(r, Radii{})
}

func (c *Canvas) StrokeRect(r Rect) {
	c.StrokeRoundedRect(r, Radii{})
}

func (c *Canvas) FillRoundedRect(r Rect, radii Radii) {
	if r.Empty() {
		return
	}
	c.paint(rasterize(roundedRectContour(r, radii)), c.fill)
}

func (c *Canvas) StrokeRoundedRect(r Rect, radii Radii) {
	if r.Empty() || c.lineWidth == 0 {
		return
	}
	c.paint(rasterize(ringContours(r, radii, c.lineWidth)...), c.stroke)
}

func (c *Canvas) FillCircle(cx, cy, radius float64) {
	if radius <= 0 {
		return
	}
	c.paint(rasterize(circleContour(cx, cy, radius)), c.fill)
}

// FillLinearGradient interpolates in non-premultiplied RGBA along the
// projection of each pixel centre onto the gradient line.
func (c *Canvas) FillLinearGradient(r Rect, x0, y0, x1, y1 float64, from, to color.NRGBA) {
	area := r.Pixels().Intersect(c.img.Bounds())
	if area.Empty() {
		return
	}

	dx, dy := x1-x0, y1-y0
	den := dx*dx + dy*dy
	layer := image.NewNRGBA(area)

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			t := 0.0
			if den > 0 {
				t = ((float64(x)+0.5-x0)*dx + (float64(y)+0.5-y0)*dy) / den
				t = min(max(t, 0), 1)
			}
			layer.SetNRGBA(x, y, lerpColor(from, to, t))
		}
	}
	draw.Draw(c.img, area, layer, area.Min, draw.Over)
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(p, q uint8) uint8 {
		return uint8(math.Round(float64(p) + (float64(q)-float64(p))*t))
	}
	return color.NRGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}

// ── Images ──

// DrawImage scales img into dst with Catmull-Rom resampling.
func (c *Canvas) DrawImage(img image.Image, dst Rect, clip Radii) {
	area := dst.Pixels()
	if img == nil || area.Empty() {
		return
	}

	scaled := image.NewRGBA(area)
	xdraw.CatmullRom.Scale(scaled, area, img, img.Bounds(), xdraw.Src, nil)

	var mask *image.Alpha
	if !clip.IsZero() || c.hasShadow() {
		mask = rasterize(roundedRectContour(rectOf(area), clip))
	}
	if c.hasShadow() {
		c.castShadow(mask)
	}

	if clip.IsZero() {
		draw.Draw(c.img, area, scaled, area.Min, draw.Over)
		return
	}
	draw.DrawMask(c.img, area, scaled, area.Min, mask, area.Min, draw.Over)
}

func rectOf(r image.Rectangle) Rect {
	return Rect{X: float64(r.Min.X), Y: float64(r.Min.Y), W: float64(r.Dx()), H: float64(r.Dy())}
}

// ── Text ──

// SetFont selects the face used by MeasureText and FillText.
func (c *Canvas) SetFont(spec FontSpec) error {
	if f, ok := c.faces[spec]; ok {
		c.face = f
		return nil
	}
	f, err := c.fonts.NewFace(spec)
	if err != nil {
		return err
	}
	if len(c.faces) >= maxCachedFaces {
		c.dropFaces()
	}
	c.faces[spec] = f
	c.face = f
	return nil
}

func (c *Canvas) dropFaces() {
	for spec, f := range c.faces {
		f.Close()
		delete(c.faces, spec)
	}
}

// MeasureText returns the advance width of text in pixels.
func (c *Canvas) MeasureText(text string) float64 {
	if c.face == nil {
		return 0
	}
	return fixedToFloat(font.MeasureString(c.face, text))
}

// FillText draws text with its baseline at y, aligned around x.
func (c *Canvas) FillText(text string, x, y float64) {
	if c.face == nil || text == "" {
		return
	}

	switch c.align {
	case AlignCenter:
		x -= c.MeasureText(text) / 2
	case AlignRight:
		x -= c.MeasureText(text)
	}

	dot := fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y)}
	b, _ := font.BoundString(c.face, text)
	area := image.Rect(
		(dot.X + b.Min.X).Floor(),
		(dot.Y + b.Min.Y).Floor(),
		(dot.X + b.Max.X).Ceil(),
		(dot.Y + b.Max.Y).Ceil(),
	)
	if area.Empty() {
		return
	}

	mask := image.NewAlpha(area)
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: c.face,
		Dot:  dot,
	}
	d.DrawString(text)
	c.paint(mask, c.fill)
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

// ── Compositing ──

// paint composites col through mask, casting the current shadow first.
func (c *Canvas) paint(mask *image.Alpha, col color.NRGBA) {
	if mask == nil {
		return
	}
	if c.hasShadow() {
		c.castShadow(mask)
	}
	draw.DrawMask(c.img, mask.Bounds(), image.NewUniform(col), image.Point{}, mask, mask.Bounds().Min, draw.Over)
}

func (c *Canvas) hasShadow() bool {
	return c.shadow.Color.A > 0
}

// castShadow draws a blurred, offset silhouette of mask in the shadow colour.
func (c *Canvas) castShadow(mask *image.Alpha) {
	if mask == nil {
		return
	}
	s := c.shadow
	margin := int(math.Ceil(s.Blur*1.5)) + 1
	area := mask.Bounds().Inset(-margin)

	layer := image.NewNRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	mb := mask.Bounds()
	for y := mb.Min.Y; y < mb.Max.Y; y++ {
		for x := mb.Min.X; x < mb.Max.X; x++ {
			a := mask.AlphaAt(x, y).A
			if a == 0 {
				continue
			}
			layer.SetNRGBA(x-area.Min.X, y-area.Min.Y, color.NRGBA{
				R: s.Color.R,
				G: s.Color.G,
				B: s.Color.B,
				A: uint8(uint32(a) * uint32(s.Color.A) / 255),
			})
		}
	}

	var shadow image.Image = layer
	if s.Blur > 0 {
		shadow = imaging.Blur(layer, s.Blur/2)
	}

	offset := image.Pt(int(math.Round(s.OffsetX)), int(math.Round(s.OffsetY)))
	dst := area.Add(offset)
	draw.Draw(c.img, dst, shadow, image.Point{}, draw.Over)
}
