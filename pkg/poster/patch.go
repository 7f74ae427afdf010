// patch.go - Partial edits merged onto a StyleState.
package poster

// StylePatch is a partial StyleState. Nil fields leave the current value
// untouched; applying a patch always yields a new snapshot.
type StylePatch struct {
	Headline  *string `json:"headline,omitempty"`
	Tagline   *string `json:"tagline,omitempty"`
	BrandName *string `json:"brandName,omitempty"`

	LayoutStyle     *LayoutStyle     `json:"layoutStyle,omitempty"`
	PrimaryColor    *string          `json:"primaryColor,omitempty"`
	AccentColor     *string          `json:"accentColor,omitempty"`
	OverlayPosition *OverlayPosition `json:"overlayPosition,omitempty"`

	BgMode     *BackgroundMode `json:"bgMode,omitempty"`
	BgColor    *string         `json:"bgColor,omitempty"`
	BgGradient *Gradient       `json:"bgGradient,omitempty"`

	HeadlineScale  *float64    `json:"headlineScale,omitempty"`
	TaglineScale   *float64    `json:"taglineScale,omitempty"`
	HeadlineFont   *FontFamily `json:"headlineFont,omitempty"`
	TaglineFont    *FontFamily `json:"taglineFont,omitempty"`
	OverlayOpacity *float64    `json:"overlayOpacity,omitempty"`
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T { return &v }

// IsEmpty reports whether the patch sets no field.
func (p StylePatch) IsEmpty() bool {
	return p == StylePatch{}
}

// Apply returns s with every non-nil field of p overlaid.
func (s StyleState) Apply(p StylePatch) StyleState {
	if p.Headline != nil {
		s.Headline = *p.Headline
	}
	if p.Tagline != nil {
		s.Tagline = *p.Tagline
	}
	if p.BrandName != nil {
		s.BrandName = *p.BrandName
	}
	if p.LayoutStyle != nil {
		s.LayoutStyle = *p.LayoutStyle
	}
	if p.PrimaryColor != nil {
		s.PrimaryColor = *p.PrimaryColor
	}
	if p.AccentColor != nil {
		s.AccentColor = *p.AccentColor
	}
	if p.OverlayPosition != nil {
		s.OverlayPosition = *p.OverlayPosition
	}
	if p.BgMode != nil {
		s.BgMode = *p.BgMode
	}
	if p.BgColor != nil {
		s.BgColor = *p.BgColor
	}
	if p.BgGradient != nil {
		s.BgGradient = *p.BgGradient
	}
	if p.HeadlineScale != nil {
		s.HeadlineScale = *p.HeadlineScale
	}
	if p.TaglineScale != nil {
		s.TaglineScale = *p.TaglineScale
	}
	if p.HeadlineFont != nil {
		s.HeadlineFont = *p.HeadlineFont
	}
	if p.TaglineFont != nil {
		s.TaglineFont = *p.TaglineFont
	}
	if p.OverlayOpacity != nil {
		s.OverlayOpacity = *p.OverlayOpacity
	}
	return s
}
