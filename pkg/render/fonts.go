// fonts.go - Font catalogue mapping logical poster font families to OpenType
// data. Uses golang.org/x/image/font for rendering. Every family falls back to
// an embedded Go font; custom TTFs can override a family from a directory.
package render

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
	"golang.org/x/image/font/opentype"

	"github.com/xob0t/posterkit/pkg/poster"
)

// Weight is a coarse font weight.
type Weight int

const (
	WeightRegular Weight = iota
	WeightMedium
	WeightBold
)

// FontSpec selects a concrete face: family, weight, slant and pixel size.
type FontSpec struct {
	Family poster.FontFamily
	Weight Weight
	Italic bool
	Size   float64
}

type variant struct {
	family poster.FontFamily
	weight Weight
	italic bool
}

// builtin holds the embedded TTF for every family variant.
var builtin = map[variant][]byte{
	{poster.FontSans, WeightRegular, false}: goregular.TTF,
	{poster.FontSans, WeightRegular, true}:  goitalic.TTF,
	{poster.FontSans, WeightMedium, false}:  gomedium.TTF,
	{poster.FontSans, WeightMedium, true}:   gomediumitalic.TTF,
	{poster.FontSans, WeightBold, false}:    gobold.TTF,
	{poster.FontSans, WeightBold, true}:     gobolditalic.TTF,

	// Small caps stands in for the serif family.
	{poster.FontSerif, WeightRegular, false}: gosmallcaps.TTF,
	{poster.FontSerif, WeightRegular, true}:  gosmallcapsitalic.TTF,

	// Script is always slanted.
	{poster.FontScript, WeightRegular, false}: goitalic.TTF,
	{poster.FontScript, WeightMedium, false}:  gomediumitalic.TTF,
	{poster.FontScript, WeightBold, false}:    gobolditalic.TTF,

	// Display is always heavy.
	{poster.FontDisplay, WeightBold, false}: gobold.TTF,
	{poster.FontDisplay, WeightBold, true}:  gobolditalic.TTF,

	{poster.FontMonospace, WeightRegular, false}: gomono.TTF,
	{poster.FontMonospace, WeightRegular, true}:  gomonoitalic.TTF,
	{poster.FontMonospace, WeightBold, false}:    gomonobold.TTF,
	{poster.FontMonospace, WeightBold, true}:     gomonobolditalic.TTF,
}

// FontCatalog resolves FontSpecs to parsed fonts. Parsed fonts are shared;
// faces are not, so each Canvas keeps its own face cache.
type FontCatalog struct {
	mu     sync.Mutex
	data   map[variant][]byte
	parsed map[variant]*opentype.Font
}

// NewFontCatalog creates a catalogue backed by the embedded Go fonts. If dir
// is non-empty, files named "<family>.ttf", "<family>-bold.ttf",
// "<family>-italic.ttf" and "<family>-bolditalic.ttf" override the built-in
// variants. Unreadable overrides are logged and skipped.
func NewFontCatalog(dir string) *FontCatalog {
	fc := &FontCatalog{
		data:   make(map[variant][]byte, len(builtin)),
		parsed: make(map[variant]*opentype.Font),
	}
	for k, v := range builtin {
		fc.data[k] = v
	}
	if dir != "" {
		fc.loadDir(dir)
	}
	return fc
}

func (fc *FontCatalog) loadDir(dir string) {
	suffixes := []struct {
		suffix string
		weight Weight
		italic bool
	}{
		{"", WeightRegular, false},
		{"-italic", WeightRegular, true},
		{"-bold", WeightBold, false},
		{"-bolditalic", WeightBold, true},
	}

	for _, fam := range poster.FontFamilies {
		for _, s := range suffixes {
			path := filepath.Join(dir, string(fam)+s.suffix+".ttf")
			data, err := os.ReadFile(path)
			if err != nil {
				if !os.IsNotExist(err) {
					slog.Warn("could not load custom font, using default", "path", path, "error", err)
				}
				continue
			}
			if _, err := opentype.Parse(data); err != nil {
				slog.Warn("could not parse custom font, using default", "path", path, "error", err)
				continue
			}
			fc.data[variant{fam, s.weight, s.italic}] = data
			slog.Debug("custom font loaded", "family", fam, "path", path)
		}
	}
}

// resolve finds the closest available variant for spec: exact match first,
// then lighter weights, then the opposite slant, then the sans family.
func (fc *FontCatalog) resolve(spec FontSpec) variant {
	fam := spec.Family
	if !fam.Valid() {
		fam = poster.FontSans
	}

	weights := []Weight{spec.Weight, WeightMedium, WeightBold, WeightRegular}
	for _, fm := range []poster.FontFamily{fam, poster.FontSans} {
		for _, italic := range []bool{spec.Italic, !spec.Italic} {
			for _, w := range weights {
				v := variant{fm, w, italic}
				if _, ok := fc.data[v]; ok {
					return v
				}
			}
		}
	}
	return variant{poster.FontSans, WeightRegular, false}
}

func (fc *FontCatalog) font(v variant) (*opentype.Font, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if f, ok := fc.parsed[v]; ok {
		return f, nil
	}
	f, err := opentype.Parse(fc.data[v])
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	fc.parsed[v] = f
	return f, nil
}

// NewFace returns a new font.Face for spec at 72 DPI, so Size is in pixels.
// The caller owns the face; faces are not safe for concurrent use.
func (fc *FontCatalog) NewFace(spec FontSpec) (font.Face, error) {
	f, err := fc.font(fc.resolve(spec))
	if err != nil {
		return nil, err
	}

	size := spec.Size
	if size <= 0 {
		size = 24
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}
