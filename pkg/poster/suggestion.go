// suggestion.go - AI style suggestions and initial state derivation.
package poster

import (
	"fmt"
	"strings"
)

// StyleSuggestion is the content and colour advice returned by the
// generation service.
type StyleSuggestion struct {
	Headline        string          `json:"headline"`
	Tagline         string          `json:"tagline"`
	PrimaryColor    string          `json:"primaryColor"`
	AccentColor     string          `json:"accentColor"`
	OverlayPosition OverlayPosition `json:"overlayPosition"`
}

// Validate checks that every required field is present. Colours and the
// overlay position are advisory; DeriveInitialState repairs bad values.
func (s StyleSuggestion) Validate() error {
	var missing []string
	if strings.TrimSpace(s.Headline) == "" {
		missing = append(missing, "headline")
	}
	if strings.TrimSpace(s.Tagline) == "" {
		missing = append(missing, "tagline")
	}
	if s.PrimaryColor == "" {
		missing = append(missing, "primaryColor")
	}
	if s.AccentColor == "" {
		missing = append(missing, "accentColor")
	}
	if s.OverlayPosition == "" {
		missing = append(missing, "overlayPosition")
	}
	if len(missing) > 0 {
		return fmt.Errorf("suggestion missing fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// SuggestionRequest is everything the generation service needs.
type SuggestionRequest struct {
	ImageBytes      []byte
	MIMEType        string
	Description     string
	StyleCategory   string
	Language        string
	ManualBrandName string
	ManualTagline   string
}

// Overrides are user-supplied texts that take precedence over suggestions.
type Overrides struct {
	BrandName string
	Tagline   string
}

// DeriveInitialState builds the first StyleState of a lineage from a
// suggestion, the chosen category and manual overrides. Manual brand name and
// tagline win over the suggestion when present.
func DeriveInitialState(sug StyleSuggestion, category string, o Overrides) StyleState {
	brand := strings.TrimSpace(o.BrandName)
	tagline := strings.TrimSpace(o.Tagline)
	defaults := DefaultsFor(category)

	st := DefaultState()
	st.Headline = firstNonEmpty(brand, sug.Headline)
	st.Tagline = firstNonEmpty(tagline, sug.Tagline)
	st.BrandName = firstNonEmpty(brand, sug.Headline)
	st.PrimaryColor = validHexOr(sug.PrimaryColor, DefaultPrimaryColor)
	st.AccentColor = validHexOr(sug.AccentColor, DefaultAccentColor)
	if sug.OverlayPosition.Valid() {
		st.OverlayPosition = sug.OverlayPosition
	}

	st.LayoutStyle = defaults.LayoutStyle
	st.BgMode = defaults.BgMode
	st.HeadlineFont = defaults.HeadlineFont
	st.TaglineFont = FontSans
	return st
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
