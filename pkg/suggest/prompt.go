// prompt.go - Prompt text and response schema for poster copy suggestions.
package suggest

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/xob0t/posterkit/pkg/poster"
)

// DefaultLanguage is used when a request names no language.
const DefaultLanguage = "English"

// BuildPrompt writes the instruction sent alongside the product photo.
func BuildPrompt(req poster.SuggestionRequest) string {
	language := req.Language
	if language == "" {
		language = DefaultLanguage
	}
	category := req.StyleCategory
	if c, ok := poster.LookupCategory(category); ok {
		category = c.Label
	}

	var b strings.Builder
	b.WriteString("You are an expert graphic designer helping an artisan sell their product.\n")
	fmt.Fprintf(&b, "Based on the image and this description: %q, create catchy content for a marketing poster.\n", req.Description)
	fmt.Fprintf(&b, "The visual style should be: %s.\n\n", category)
	fmt.Fprintf(&b, "IMPORTANT: Generate content in %s.", language)

	if req.ManualBrandName != "" {
		fmt.Fprintf(&b, " The brand name is %q. Use this.", req.ManualBrandName)
	}
	if req.ManualTagline != "" {
		fmt.Fprintf(&b, " The primary tagline/offer is %q. Use this.", req.ManualTagline)
	} else {
		b.WriteString(" Generate a catchy tagline/offer.")
	}

	headline := "A short brand-like headline (3-5 words)"
	if req.ManualBrandName != "" {
		headline = "The Brand Name provided"
	}
	tagline := "A persuasive sub-headline or offer (e.g. 25% Off)"
	if req.ManualTagline != "" {
		tagline = "The Tagline provided"
	}

	b.WriteString("\n\nReturn a JSON object with:\n")
	fmt.Fprintf(&b, "- headline: %s.\n", headline)
	fmt.Fprintf(&b, "- tagline: %s.\n", tagline)
	b.WriteString("- primaryColor: A hex code for the main text.\n")
	b.WriteString("- accentColor: A hex code for graphical elements.\n")
	b.WriteString(`- overlayPosition: Best position ("top", "bottom", or "center").` + "\n")
	return b.String()
}

// suggestionSchema constrains the model output to a StyleSuggestion.
func suggestionSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"headline":     str(),
			"tagline":      str(),
			"primaryColor": str(),
			"accentColor":  str(),
			"overlayPosition": {
				Type: genai.TypeString,
				Enum: []string{
					string(poster.OverlayTop),
					string(poster.OverlayBottom),
					string(poster.OverlayCenter),
				},
			},
		},
		Required:         []string{"headline", "tagline", "primaryColor", "accentColor", "overlayPosition"},
		PropertyOrdering: []string{"headline", "tagline", "primaryColor", "accentColor", "overlayPosition"},
	}
}
