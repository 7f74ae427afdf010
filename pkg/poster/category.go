// category.go - Style categories and the layout defaults each one implies.
package poster

import "sort"

// Category is the user's visual style choice for a poster.
type Category struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Swatch      [2]string `json:"swatch"`
	Group       Group     `json:"group"`
}

// Group buckets categories into a layout family.
type Group string

const (
	GroupHeritage     Group = "heritage"
	GroupContemporary Group = "contemporary"
)

// LayoutDefaults are the StyleState fields derived from a category.
type LayoutDefaults struct {
	LayoutStyle  LayoutStyle
	BgMode       BackgroundMode
	HeadlineFont FontFamily
}

// groupDefaults maps each group to its layout defaults. Adding a group is a
// one-line edit here.
var groupDefaults = map[Group]LayoutDefaults{
	GroupHeritage:     {LayoutStyle: LayoutOrnate, BgMode: BackgroundPattern, HeadlineFont: FontSerif},
	GroupContemporary: {LayoutStyle: LayoutModern, BgMode: BackgroundImage, HeadlineFont: FontSans},
}

// fallbackDefaults apply to categories outside every group.
var fallbackDefaults = LayoutDefaults{
	LayoutStyle:  LayoutModern,
	BgMode:       BackgroundGradient,
	HeadlineFont: FontSans,
}

// Categories lists the selectable styles in display order.
var Categories = []Category{
	{ID: "festival", Label: "Festival", Description: "Vibrant, colorful & energetic", Swatch: [2]string{"#ff9966", "#ff5e62"}, Group: GroupHeritage},
	{ID: "traditional", Label: "Traditional", Description: "Classic patterns & heritage look", Swatch: [2]string{"#1e3a8a", "#D4AF37"}, Group: GroupHeritage},
	{ID: "modern", Label: "Modern", Description: "Clean, sleek & contemporary", Swatch: [2]string{"#ffffff", "#000000"}, Group: GroupContemporary},
	{ID: "western", Label: "Western", Description: "Minimalist & sophisticated", Swatch: [2]string{"#2C3E50", "#FD746C"}, Group: GroupContemporary},
	{ID: "indian", Label: "Indian", Description: "Rich, ornate & cultural", Swatch: [2]string{"#e65c00", "#F9D423"}, Group: GroupHeritage},
	{ID: "vintage", Label: "Vintage", Description: "Retro, nostalgic & timeless", Swatch: [2]string{"#8B4513", "#F4A460"}, Group: GroupHeritage},
	{ID: "luxury", Label: "Luxury", Description: "Premium, gold & black", Swatch: [2]string{"#000000", "#D4AF37"}, Group: GroupHeritage},
	{ID: "minimalist", Label: "Minimalist", Description: "Simple, clean & spacious", Swatch: [2]string{"#E0E0E0", "#757575"}, Group: GroupContemporary},
	{ID: "bold", Label: "Bold", Description: "High contrast & loud", Swatch: [2]string{"#FFD700", "#FF0000"}, Group: GroupContemporary},
	{ID: "organic", Label: "Organic", Description: "Natural & earthy", Swatch: [2]string{"#4CAF50", "#8BC34A"}, Group: GroupContemporary},
}

// DefaultCategory is preselected when no category is given.
const DefaultCategory = "festival"

// LookupCategory finds a category by ID.
func LookupCategory(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// DefaultsFor returns the layout defaults for a category ID or a group name.
// Unknown IDs get the modern/gradient fallback.
func DefaultsFor(id string) LayoutDefaults {
	c, ok := LookupCategory(id)
	if !ok {
		if d, ok := groupDefaults[Group(id)]; ok {
			return d
		}
		return fallbackDefaults
	}
	if d, ok := groupDefaults[c.Group]; ok {
		return d
	}
	return fallbackDefaults
}

// CategoryIDs returns all category IDs sorted alphabetically.
func CategoryIDs() []string {
	ids := make([]string, 0, len(Categories))
	for _, c := range Categories {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	return ids
}
