package displaymap

import (
	"sort"

	"github.com/rivo/uniseg"
)

// WrappedRow is one visual row produced by soft-wrapping a single fold-space
// line.
type WrappedRow struct {
	FoldLine       uint32 // the fold-space line this row belongs to
	StartCol       uint32 // grapheme-cluster offset into the line where this row starts
	EndCol         uint32 // exclusive end offset
	IsContinuation bool   // false for a line's first row, true for wrapped continuations
}

// LineTextFunc resolves a fold-space line's text for wrapping.
type LineTextFunc func(foldLine uint32) string

// WrapMap splits each visible line into one or more visual rows of at most
// WrapWidth grapheme clusters, preferring a whitespace break at or past the
// row's midpoint. Rows are kept flat and ordered by FoldLine.
type WrapMap struct {
	rows      []WrappedRow
	wrapWidth uint32 // 0 disables wrapping
}

// NewWrapMap creates a wrap map with the given wrap width (0 = no wrap).
func NewWrapMap(wrapWidth uint32) *WrapMap {
	return &WrapMap{wrapWidth: wrapWidth}
}

// SetWrapWidth changes the wrap width; callers must Update afterward.
func (m *WrapMap) SetWrapWidth(w uint32) { m.wrapWidth = w }

// WrapWidth returns the current wrap width (0 = no wrap).
func (m *WrapMap) WrapWidth() uint32 { return m.wrapWidth }

// Update rebuilds the wrap map for foldLineCount visible (fold-space) lines,
// fetching each line's text through getLine.
func (m *WrapMap) Update(foldLineCount uint32, getLine LineTextFunc) {
	m.rows = m.rows[:0]
	for line := uint32(0); line < foldLineCount; line++ {
		m.appendLine(line, getLine(line))
	}
}

func (m *WrapMap) appendLine(foldLine uint32, text string) {
	clusters := graphemeClusters(text)
	if len(clusters) == 0 {
		m.rows = append(m.rows, WrappedRow{FoldLine: foldLine})
		return
	}
	if m.wrapWidth == 0 {
		m.rows = append(m.rows, WrappedRow{FoldLine: foldLine, EndCol: uint32(len(clusters))})
		return
	}

	start := 0
	continuation := false
	for start < len(clusters) {
		end := start + int(m.wrapWidth)
		if end >= len(clusters) {
			m.rows = append(m.rows, WrappedRow{
				FoldLine: foldLine, StartCol: uint32(start), EndCol: uint32(len(clusters)),
				IsContinuation: continuation,
			})
			break
		}
		breakAt := findWrapBreak(clusters, start, end)
		m.rows = append(m.rows, WrappedRow{
			FoldLine: foldLine, StartCol: uint32(start), EndCol: uint32(breakAt),
			IsContinuation: continuation,
		})
		start = breakAt
		continuation = true
	}
}

// findWrapBreak looks backward from end for a whitespace cluster at or past
// the midpoint of [start, end), returning the index just after it. Falls
// back to a hard break at end when no such boundary exists.
func findWrapBreak(clusters []string, start, end int) int {
	minBreak := start + (end-start)/2
	for i := end - 1; i >= minBreak && i > start; i-- {
		if isWhitespaceCluster(clusters[i]) {
			return i + 1
		}
	}
	return end
}

func isWhitespaceCluster(c string) bool {
	if c == "" {
		return false
	}
	for _, r := range c {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}

func graphemeClusters(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// rowRange returns [start, end) indexes into m.rows for the given fold
// line; rows are grouped and ordered by FoldLine since Update appends them
// in ascending line order.
func (m *WrapMap) rowRange(foldLine uint32) (int, int) {
	start := sort.Search(len(m.rows), func(i int) bool { return m.rows[i].FoldLine >= foldLine })
	end := sort.Search(len(m.rows), func(i int) bool { return m.rows[i].FoldLine > foldLine })
	return start, end
}

// ToWrapPoint converts a fold-space point to wrap-space (row, column within
// that visual row).
func (m *WrapMap) ToWrapPoint(p FoldPoint) WrapPoint {
	start, end := m.rowRange(p.Row)
	if start >= end {
		return WrapPoint{}
	}
	for i := start; i < end; i++ {
		r := m.rows[i]
		if p.Col >= r.StartCol && p.Col < r.EndCol {
			return WrapPoint{Row: uint32(i), Col: p.Col - r.StartCol}
		}
	}
	// Beyond the line's last row: clamp to its end.
	last := m.rows[end-1]
	return WrapPoint{Row: uint32(end - 1), Col: saturatingSub(p.Col, last.StartCol)}
}

// ToFoldPoint converts a wrap-space point back to fold space.
func (m *WrapMap) ToFoldPoint(p WrapPoint) FoldPoint {
	if len(m.rows) == 0 {
		return FoldPoint{}
	}
	if int(p.Row) >= len(m.rows) {
		last := m.rows[len(m.rows)-1]
		return FoldPoint{Row: last.FoldLine, Col: last.EndCol}
	}
	r := m.rows[p.Row]
	col := r.StartCol + p.Col
	if col > r.EndCol {
		col = r.EndCol
	}
	return FoldPoint{Row: r.FoldLine, Col: col}
}

// RowCount returns the total number of display rows.
func (m *WrapMap) RowCount() uint32 { return uint32(len(m.rows)) }

// RowAt returns the wrapped row at display index i, or the zero value if i
// is out of range.
func (m *WrapMap) RowAt(i uint32) WrappedRow {
	if int(i) >= len(m.rows) {
		return WrappedRow{}
	}
	return m.rows[i]
}

// WrapInfoForFoldLine reports the first display row and row count for a
// fold-space line.
func (m *WrapMap) WrapInfoForFoldLine(foldLine uint32) (start uint32, count uint32, ok bool) {
	s, e := m.rowRange(foldLine)
	if s >= e {
		return 0, 0, false
	}
	return uint32(s), uint32(e - s), true
}

func (m *WrapMap) clone() *WrapMap {
	c := &WrapMap{wrapWidth: m.wrapWidth}
	c.rows = append(c.rows, m.rows...)
	return c
}
