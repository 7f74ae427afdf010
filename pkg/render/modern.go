// modern.go - Contemporary layout: selectable background, the product photo
// in a band or full bleed, and shadowed headline and tagline.
package render

import (
	"image"
	"image/color"

	"github.com/xob0t/posterkit/pkg/poster"
)

var (
	modernFrame      = color.NRGBA{255, 255, 255, 255}
	modernTextShadow = Shadow{Color: color.NRGBA{0, 0, 0, 204}, Blur: 12, OffsetY: 2}
)

// Modern proportions, as fractions of the canvas.
const (
	modernPadding     = 0.08
	modernBandHeight  = 0.6
	modernBandTop     = 0.35
	modernFrameWidth  = 0.02
	modernHeadline    = 0.08
	modernTagline     = 0.04
	modernTextWidth   = 0.9
	modernLineSpacing = 1.2
	modernWashFactor  = 0.7
)

type Modern struct{}

func (Modern) Render(s Surface, st poster.StyleState, img image.Image) error {
	w, h := s.Size()
	W, H := float64(w), float64(h)
	pad := W * modernPadding

	switch st.BgMode {
	case poster.BackgroundImage:
		PaintAmbient(s, img)
	case poster.BackgroundSolid:
		PaintSolid(s, poster.HexColor(st.BgColor))
	case poster.BackgroundPattern:
		PaintPattern(s)
	default:
		PaintGradient(s, poster.HexColor(st.BgGradient.Colors[0]), poster.HexColor(st.BgGradient.Colors[1]))
	}

	full := Rect{W: W, H: H}
	switch st.OverlayPosition {
	case poster.OverlayCenter:
		if st.BgMode == poster.BackgroundImage {
			s.DrawImage(img, full, Radii{})
			s.SetFillColor(poster.WithAlpha(color.NRGBA{}, st.OverlayOpacity))
		} else {
			DrawStyledImage(s, img, Rect{X: pad / 2, Y: pad / 2, W: W - pad, H: H - pad}, ImageStyle{
				Shadow:  true,
				Rounded: 16,
			})
			s.SetFillColor(poster.WithAlpha(color.NRGBA{}, st.OverlayOpacity*modernWashFactor))
		}
		s.FillRect(full)
	default:
		band := Rect{X: pad, Y: pad, W: W - pad*2, H: H * modernBandHeight}
		if st.OverlayPosition == poster.OverlayTop {
			band.Y = H * modernBandTop
		}
		DrawStyledImage(s, img, band, ImageStyle{
			Border:      modernFrame,
			BorderWidth: W * modernFrameWidth,
			Shadow:      true,
			Rounded:     16,
		})
	}

	hs := fontSize(W*modernHeadline*st.HeadlineScale, h)
	ts := fontSize(W*modernTagline*st.TaglineScale, h)

	var textY float64
	switch st.OverlayPosition {
	case poster.OverlayTop:
		textY = pad + hs
	case poster.OverlayCenter:
		textY = H/2 - hs
	default:
		textY = H - hs*3
	}

	s.SetTextAlign(AlignCenter)
	s.SetShadow(modernTextShadow)
	defer s.ClearShadow()

	if err := s.SetFont(FontSpec{Family: st.HeadlineFont, Weight: WeightBold, Size: hs}); err != nil {
		return err
	}
	s.SetFillColor(poster.HexColor(st.PrimaryColor))
	next := WrapAndDraw(s, st.Headline, W/2, textY, W*modernTextWidth, hs*modernLineSpacing)

	if err := s.SetFont(FontSpec{Family: st.TaglineFont, Italic: true, Size: ts}); err != nil {
		return err
	}
	s.SetFillColor(poster.HexColor(st.AccentColor))
	WrapAndDraw(s, st.Tagline, W/2, next+20, W*modernTextWidth, ts*modernLineSpacing)
	return nil
}
