// ornate.go - Heritage layout: patterned background, double gold frame, a
// cream text badge at the top and the framed product photo below it.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/xob0t/posterkit/pkg/poster"
)

var (
	ornateGold  = poster.HexColor("#D4AF37")
	ornateLight = poster.HexColor("#FDE68A")
	ornateCream = poster.HexColor("#FFF8E7")
	ornateInk   = poster.HexColor("#1e3a8a")

	badgeShadow = Shadow{Color: color.NRGBA{0, 0, 0, 77}, Blur: 15}
	badgeRadii  = Radii{TopLeft: 20, TopRight: 20, BottomRight: 50, BottomLeft: 50}
)

// Ornate proportions, as fractions of the canvas.
const (
	ornateBorder      = 0.03
	ornateBadgeWidth  = 0.7
	ornateBadgeHeight = 0.35
	ornateHeadline    = 0.08
	ornateTagline     = 0.12
)

// Ornate ignores bgMode, overlayPosition and the text colours: the ink is
// fixed for legibility on the cream badge.
type Ornate struct{}

func (Ornate) Render(s Surface, st poster.StyleState, img image.Image) error {
	w, h := s.Size()
	W, H := float64(w), float64(h)
	bw := W * ornateBorder

	PaintPattern(s)

	// Double frame
	s.SetStrokeColor(ornateGold)
	s.SetLineWidth(bw)
	s.StrokeRect(Rect{X: bw / 2, Y: bw / 2, W: W - bw, H: H - bw})
	s.SetStrokeColor(ornateLight)
	s.SetLineWidth(2)
	s.StrokeRect(Rect{X: bw * 1.5, Y: bw * 1.5, W: W - bw*3, H: H - bw*3})

	// Badge
	badge := Rect{W: W * ornateBadgeWidth, H: H * ornateBadgeHeight, Y: bw * 2}
	badge.X = (W - badge.W) / 2

	s.SetShadow(badgeShadow)
	s.SetFillColor(ornateCream)
	s.FillRoundedRect(badge, badgeRadii)
	s.SetStrokeColor(ornateGold)
	s.SetLineWidth(4)
	s.StrokeRoundedRect(badge, badgeRadii)
	s.ClearShadow()

	// Text
	s.SetTextAlign(AlignCenter)
	s.SetFillColor(ornateInk)
	maxW := badge.W * 0.9

	hs := fontSize(W*ornateHeadline*st.HeadlineScale, h)
	if err := s.SetFont(FontSpec{Family: st.HeadlineFont, Weight: WeightBold, Italic: true, Size: hs}); err != nil {
		return err
	}
	hlY := badge.Y + badge.H*0.15 + hs/2
	next := WrapAndDraw(s, st.Headline, W/2, hlY, maxW, hs*1.1)

	ts := fontSize(W*ornateTagline*st.TaglineScale, h)
	if err := s.SetFont(FontSpec{Family: st.TaglineFont, Weight: WeightBold, Size: ts}); err != nil {
		return err
	}
	WrapAndDraw(s, st.Tagline, W/2, next+20, maxW, ts*1.1)

	// Product photo
	imgY := badge.Y + badge.H + 20
	DrawStyledImage(s, img, Rect{X: bw * 2, Y: imgY, W: W - bw*4, H: H - imgY - bw*2}, ImageStyle{
		Border:      ornateGold,
		BorderWidth: 8,
		Shadow:      true,
		Rounded:     12,
	})
	return nil
}

// fontSize floors a computed size to whole pixels, never below one and never
// taller than the canvas. NaN yields one.
func fontSize(v float64, h int) float64 {
	if !(v >= 1) {
		return 1
	}
	return min(math.Floor(v), float64(max(h, 1)))
}
