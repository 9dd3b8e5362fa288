package syntax

import "github.com/lucasb-eyer/go-colorful"

// categories is the recognized set of semantic highlight categories — the
// first dot-separated component of a tree-sitter capture name. Anything not
// in this list falls through to the default foreground rather than being
// treated as an error.
var categories = []string{
	"keyword", "function", "method", "type", "class", "variable",
	"parameter", "field", "constant", "boolean", "number", "string",
	"comment", "operator", "punctuation", "property", "attribute",
	"constructor", "label", "escape", "embedded", "namespace",
}

// Theme maps a semantic category to a display color. DefaultTheme builds one
// programmatically; callers may also supply a theme loaded from config.
type Theme struct {
	colors map[string]string // category -> hex color
	fgHex  string            // fallback for unrecognized categories
}

// DefaultTheme assigns each entry of categories its own hue, evenly spaced
// around the color wheel, so no two recognized categories share a color.
// Capture names outside that list get the default foreground.
func DefaultTheme() *Theme {
	colors := make(map[string]string, len(categories))
	n := float64(len(categories))
	for i, cat := range categories {
		hue := 360.0 * float64(i) / n
		c := colorful.Hsv(hue, 0.55, 0.92)
		colors[cat] = c.Hex()
	}
	return &Theme{colors: colors, fgHex: "#d4d4d4"}
}

// Color returns the hex color for a semantic category, falling back to the
// theme's default foreground for unrecognized or empty categories.
func (t *Theme) Color(category string) string {
	if category == "" {
		return t.fgHex
	}
	if c, ok := t.colors[category]; ok {
		return c
	}
	return t.fgHex
}

// SetColor overrides the color for a single category, used when loading a
// theme from config that only customizes a subset of categories.
func (t *Theme) SetColor(category, hex string) {
	t.colors[category] = hex
}

// SetDefaultForeground overrides the fallback color used for unrecognized
// categories and plain text.
func (t *Theme) SetDefaultForeground(hex string) {
	t.fgHex = hex
}
