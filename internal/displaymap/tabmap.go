package displaymap

import "github.com/rivo/uniseg"

// TabMap expands tabs to spaces for display. It's stateless given a tab
// size: every query walks the line text it's given rather than caching
// anything, since tab expansion depends on the full preceding line content.
type TabMap struct {
	tabSize uint32
}

// NewTabMap creates a tab map with the given tab size (minimum 1).
func NewTabMap(tabSize uint32) *TabMap {
	if tabSize < 1 {
		tabSize = 1
	}
	return &TabMap{tabSize: tabSize}
}

// SetTabSize changes the tab size (minimum 1).
func (m *TabMap) SetTabSize(size uint32) {
	if size < 1 {
		size = 1
	}
	m.tabSize = size
}

// TabSize returns the current tab size.
func (m *TabMap) TabSize() uint32 { return m.tabSize }

// ToDisplayPoint passes a wrap point through unchanged. Tab expansion is
// context-dependent on the full line, so the row/column composition here is
// an identity map; ExpandColumn/ContractColumn are the real conversions,
// used on demand once a renderer has the line text in hand.
func (m *TabMap) ToDisplayPoint(p WrapPoint) DisplayPoint {
	return DisplayPoint{Row: p.Row, Col: p.Col}
}

// ToWrapPoint is the inverse of ToDisplayPoint.
func (m *TabMap) ToWrapPoint(p DisplayPoint) WrapPoint {
	return WrapPoint{Row: p.Row, Col: p.Col}
}

// ExpandColumn converts a grapheme-cluster column in line to its visual
// column, accounting for tab stops and wide characters.
func (m *TabMap) ExpandColumn(line string, charCol uint32) uint32 {
	var visual, charIdx uint32
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		if charIdx >= charCol {
			break
		}
		visual += m.clusterWidth(g.Str(), visual)
		charIdx++
	}
	return visual
}

// ContractColumn converts a visual column back to a grapheme-cluster
// column, stopping as soon as the next cluster would overshoot.
func (m *TabMap) ContractColumn(line string, visualCol uint32) uint32 {
	var visual, charIdx uint32
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		if visual >= visualCol {
			break
		}
		w := m.clusterWidth(g.Str(), visual)
		if visual+w > visualCol {
			break
		}
		visual += w
		charIdx++
	}
	return charIdx
}

// LineVisualWidth returns the full visual width of line with tabs expanded.
func (m *TabMap) LineVisualWidth(line string) uint32 {
	var visual uint32
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		visual += m.clusterWidth(g.Str(), visual)
	}
	return visual
}

// clusterWidth returns how many display columns a grapheme cluster occupies
// starting at visual column atCol; a tab advances to the next tab stop.
func (m *TabMap) clusterWidth(cluster string, atCol uint32) uint32 {
	switch cluster {
	case "\t":
		return ((atCol / m.tabSize) + 1) * m.tabSize - atCol
	case "\n":
		return 0
	}
	w := uniseg.StringWidth(cluster)
	if w < 0 {
		w = 0
	}
	return uint32(w)
}

func (m *TabMap) clone() *TabMap {
	return &TabMap{tabSize: m.tabSize}
}
