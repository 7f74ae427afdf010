// state_file.go - Reading StyleState JSON files and the sample for `posterkit init`.
package poster

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadStateFile reads a StyleState JSON file. Fields absent from the file
// keep their DefaultState values.
func LoadStateFile(path string) (StyleState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StyleState{}, fmt.Errorf("read state: %w", err)
	}
	return ParseState(data)
}

// ParseState decodes StyleState JSON on top of DefaultState.
func ParseState(data []byte) (StyleState, error) {
	st := DefaultState()
	if err := json.Unmarshal(data, &st); err != nil {
		return StyleState{}, fmt.Errorf("parse state JSON: %w", err)
	}
	return st, nil
}

// ExampleStateJSON returns a sample state file for an ornate heritage poster.
func ExampleStateJSON() string {
	return `{
  "headline": "Ritu's Pottery",
  "tagline": "Handmade with love",
  "brandName": "Ritu's Pottery",
  "layoutStyle": "ornate",
  "primaryColor": "#ffffff",
  "accentColor": "#fbbf24",
  "overlayPosition": "bottom",
  "bgMode": "pattern",
  "bgColor": "#1e3a8a",
  "bgGradient": { "name": "Royal", "colors": ["#1e3a8a", "#172554"] },
  "headlineScale": 1,
  "taglineScale": 1,
  "headlineFont": "serif",
  "taglineFont": "sans",
  "overlayOpacity": 0.8
}
`
}
