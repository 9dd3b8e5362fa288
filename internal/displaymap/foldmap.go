package displaymap

import "sort"

// foldSummary caches a folded region's position plus the cumulative hidden
// line count up to and including it, enabling O(log n) row lookups.
type foldSummary struct {
	region        FoldRegion
	hiddenBefore  uint32 // hidden lines strictly before this fold
	hiddenThrough uint32 // hidden lines including this fold
}

// FoldMap hides folded buffer line ranges, collapsing each one to its
// header line. All queries are O(log n) in the number of fold regions.
type FoldMap struct {
	summaries        []foldSummary
	bufferLineCount  uint32
	visibleLineCount uint32
}

// NewFoldMap creates an empty fold map.
func NewFoldMap() *FoldMap {
	return &FoldMap{}
}

// Update rebuilds the fold map from the buffer's line count and the given
// fold regions. Only regions with IsFolded set are applied.
func (m *FoldMap) Update(bufferLineCount uint32, regions []FoldRegion) {
	m.bufferLineCount = bufferLineCount

	folded := make([]FoldRegion, 0, len(regions))
	for _, r := range regions {
		if r.IsFolded {
			folded = append(folded, r)
		}
	}
	sort.Slice(folded, func(i, j int) bool { return folded[i].StartLine < folded[j].StartLine })

	m.summaries = m.summaries[:0]
	var cumulative uint32
	for _, r := range folded {
		hidden := r.HiddenLineCount()
		m.summaries = append(m.summaries, foldSummary{
			region:        r,
			hiddenBefore:  cumulative,
			hiddenThrough: cumulative + hidden,
		})
		cumulative += hidden
	}

	m.visibleLineCount = saturatingSub(m.bufferLineCount, cumulative)
}

// searchFrom returns the first summary index whose region starts at or
// after bufLine.
func (m *FoldMap) searchFrom(bufLine uint32) int {
	return sort.Search(len(m.summaries), func(i int) bool {
		return m.summaries[i].region.StartLine >= bufLine
	})
}

// IsLineHidden reports whether bufLine falls strictly inside a folded
// region; a fold's own header line is always visible.
func (m *FoldMap) IsLineHidden(bufLine uint32) bool {
	idx := m.searchFrom(bufLine)
	if idx > 0 {
		s := m.summaries[idx-1]
		if bufLine > s.region.StartLine && bufLine <= s.region.EndLine {
			return true
		}
	}
	if idx < len(m.summaries) {
		s := m.summaries[idx]
		if bufLine > s.region.StartLine && bufLine <= s.region.EndLine {
			return true
		}
	}
	return false
}

// FoldAtLine returns the fold region whose header is exactly bufLine.
func (m *FoldMap) FoldAtLine(bufLine uint32) (FoldRegion, bool) {
	idx := m.searchFrom(bufLine)
	if idx < len(m.summaries) && m.summaries[idx].region.StartLine == bufLine {
		return m.summaries[idx].region, true
	}
	return FoldRegion{}, false
}

// BufferToFoldRow converts a buffer line to its fold-space row. A line
// inside a fold maps to the fold header's own fold row, which is how the
// snapshot pipeline stays defined for hidden rows without special-casing.
func (m *FoldMap) BufferToFoldRow(bufRow uint32) uint32 {
	if len(m.summaries) == 0 {
		return bufRow
	}
	idx := m.searchFrom(bufRow)
	if idx > 0 {
		prev := m.summaries[idx-1]
		if bufRow > prev.region.StartLine && bufRow <= prev.region.EndLine {
			return saturatingSub(prev.region.StartLine, prev.hiddenBefore)
		}
		return saturatingSub(bufRow, prev.hiddenThrough)
	}
	return bufRow
}

// FoldToBufferRow converts a fold-space row back to a buffer line.
func (m *FoldMap) FoldToBufferRow(foldRow uint32) uint32 {
	if len(m.summaries) == 0 {
		return foldRow
	}

	idx := sort.Search(len(m.summaries), func(i int) bool {
		foldStart := saturatingSub(m.summaries[i].region.StartLine, m.summaries[i].hiddenBefore)
		return foldStart > foldRow
	})
	if idx == 0 {
		return foldRow
	}

	s := m.summaries[idx-1]
	foldStart := saturatingSub(s.region.StartLine, s.hiddenBefore)
	if foldRow == foldStart {
		return s.region.StartLine
	}
	return foldRow + s.hiddenThrough
}

// ToFoldPoint converts a buffer point to fold space; folding never changes
// column.
func (m *FoldMap) ToFoldPoint(p BufferPoint) FoldPoint {
	return FoldPoint{Row: m.BufferToFoldRow(p.Row), Col: p.Col}
}

// ToBufferPoint converts a fold point back to buffer space.
func (m *FoldMap) ToBufferPoint(p FoldPoint) BufferPoint {
	return BufferPoint{Row: m.FoldToBufferRow(p.Row), Col: p.Col}
}

// VisibleLineCount returns the number of lines visible after folding.
func (m *FoldMap) VisibleLineCount() uint32 { return m.visibleLineCount }

// FoldCount returns the number of active folded regions.
func (m *FoldMap) FoldCount() int { return len(m.summaries) }

// FoldedRegions returns all currently folded regions, in line order.
func (m *FoldMap) FoldedRegions() []FoldRegion {
	out := make([]FoldRegion, len(m.summaries))
	for i, s := range m.summaries {
		out[i] = s.region
	}
	return out
}

// VisibleLines returns every buffer line index that is not hidden.
func (m *FoldMap) VisibleLines() []uint32 {
	out := make([]uint32, 0, m.visibleLineCount)
	for line := uint32(0); line < m.bufferLineCount; line++ {
		if !m.IsLineHidden(line) {
			out = append(out, line)
		}
	}
	return out
}

// clone returns a deep copy, used when capturing a point-in-time snapshot.
func (m *FoldMap) clone() *FoldMap {
	c := &FoldMap{
		bufferLineCount:  m.bufferLineCount,
		visibleLineCount: m.visibleLineCount,
	}
	c.summaries = append(c.summaries, m.summaries...)
	return c
}
