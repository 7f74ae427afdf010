// Package render composites posters from a StyleState and a product photo.
//
// Rendering is deterministic: the same state and image always produce the
// same pixels. Layouts draw through the Surface interface; Canvas is the
// software implementation backed by golang.org/x/image.
package render

import (
	"errors"
	"image"
	"log/slog"
	"sync"

	"github.com/xob0t/posterkit/pkg/poster"
)

// DefaultMaxDimension caps the longer side of the poster in pixels.
const DefaultMaxDimension = 1200

// ErrNilImage is returned when Render is called without a source image.
var ErrNilImage = errors.New("render: nil source image")

// Renderer paints a complete poster onto s.
type Renderer interface {
	Render(s Surface, st poster.StyleState, img image.Image) error
}

// ForLayout returns the renderer for a layout style. Unknown styles get the
// modern layout.
func ForLayout(l poster.LayoutStyle) Renderer {
	if l == poster.LayoutOrnate {
		return Ornate{}
	}
	return Modern{}
}

// Options configure an Engine.
type Options struct {
	MaxDimension int          // Longer side cap (default: 1200)
	Fonts        *FontCatalog // Font catalogue (default: embedded Go fonts)
}

// Engine owns the font catalogue and a canvas reused between renders.
// It is safe for concurrent use; renders are serialised.
type Engine struct {
	mu     sync.Mutex
	maxDim int
	fonts  *FontCatalog
	canvas *Canvas
}

func NewEngine(opts Options) *Engine {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}
	if opts.Fonts == nil {
		opts.Fonts = NewFontCatalog("")
	}
	return &Engine{maxDim: opts.MaxDimension, fonts: opts.Fonts}
}

// Size returns the poster dimensions for a source image.
func (e *Engine) Size(img image.Image) (w, h int) {
	b := img.Bounds()
	return CanvasSize(b.Dx(), b.Dy(), e.maxDim)
}

// Render draws st over img and returns a copy of the result.
func (e *Engine) Render(st poster.StyleState, img image.Image) (*image.RGBA, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	w, h := e.Size(img)
	if w == 0 || h == 0 {
		return nil, ErrNilImage
	}
	st = st.Normalize()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.canvas == nil {
		e.canvas = NewCanvas(w, h, e.fonts)
	} else {
		e.canvas.Reset(w, h)
	}

	if err := ForLayout(st.LayoutStyle).Render(e.canvas, st, img); err != nil {
		slog.Error("poster render failed", "layout", st.LayoutStyle, "error", err)
		return nil, err
	}

	src := e.canvas.Image()
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out, nil
}
