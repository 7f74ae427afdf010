// text.go - Greedy word wrapping against the surface's active font.
package render

import "strings"

// WrapLines breaks text into lines whose measured width stays within
// maxWidth. Words are never split: a word wider than maxWidth gets a line of
// its own. Whitespace-only text yields no lines.
func WrapLines(measure func(string) float64, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	currentLine := words[0]
	for _, word := range words[1:] {
		testLine := currentLine + " " + word
		if measure(testLine) > maxWidth {
			lines = append(lines, currentLine)
			currentLine = word
		} else {
			currentLine = testLine
		}
	}
	return append(lines, currentLine)
}

// WrapAndDraw draws text as wrapped lines starting at baseline startY, one
// lineHeight apart, and returns the y just past the last line plus one
// lineHeight. Empty text draws nothing and returns startY.
//
// Font and alignment must already be set on s.
func WrapAndDraw(s Surface, text string, anchorX, startY, maxWidth, lineHeight float64) float64 {
	y := startY
	for _, line := range WrapLines(s.MeasureText, text, maxWidth) {
		s.FillText(line, anchorX, y)
		y += lineHeight
	}
	return y
}
