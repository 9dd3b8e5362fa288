package rope

import "strings"

// Rope is an immutable text sequence. Every operation returns a new
// value; existing ropes are never modified, so handing one to another
// goroutine is always safe.
type Rope struct {
	root *node
}

// New creates an empty rope.
func New() Rope {
	return Rope{root: emptyLeaf()}
}

// FromString creates a rope over the given text.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	return fromSpans(segment(s))
}

// fromSpans packs spans into leaves bottom-up.
func fromSpans(spans []span) Rope {
	if len(spans) == 0 {
		return New()
	}
	leaves := make([]*node, 0, (len(spans)+leafSpanMax-1)/leafSpanMax)
	for lo := 0; lo < len(spans); lo += leafSpanMax {
		hi := lo + leafSpanMax
		if hi > len(spans) {
			hi = len(spans)
		}
		leaves = append(leaves, leafOf(append([]span(nil), spans[lo:hi]...)))
	}
	return Rope{root: packNodes(leaves)}
}

// Len returns the total byte length.
func (r Rope) Len() ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.bytes()
}

// IsEmpty reports whether the rope holds no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// LineCount returns the number of lines (newlines + 1).
func (r Rope) LineCount() uint32 {
	if r.root == nil {
		return 1
	}
	return r.root.agg.breaks + 1
}

// String materializes the full text. Costly on large ropes; prefer
// Slice or the iterators.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(r.Len()))
	r.root.writeTo(&sb)
	return sb.String()
}

// Slice returns the text within the byte range [start, end).
func (r Rope) Slice(start, end ByteOffset) string {
	if r.root == nil || start >= end {
		return ""
	}
	return r.root.extract(start, end)
}

// ByteAt returns the byte at off, with ok=false past the end.
func (r Rope) ByteAt(off ByteOffset) (byte, bool) {
	if r.root == nil || off >= r.Len() {
		return 0, false
	}
	n := r.root
	for !n.leaf() {
		i, rel := n.kidAtByte(off)
		n = n.kids[i]
		off = rel
	}
	for _, sp := range n.spans {
		if off < ByteOffset(sp.size()) {
			return sp.text[off], true
		}
		off -= ByteOffset(sp.size())
	}
	return 0, false
}

// Insert returns a rope with text inserted at the byte offset.
func (r Rope) Insert(off ByteOffset, text string) Rope {
	if len(text) == 0 {
		return r
	}
	if r.root == nil || r.Len() == 0 {
		return FromString(text)
	}
	if off == 0 {
		return FromString(text).Concat(r)
	}
	if off >= r.Len() {
		return r.Concat(FromString(text))
	}
	left, right := r.Split(off)
	return left.Concat(FromString(text)).Concat(right)
}

// Delete returns a rope with the byte range [start, end) removed.
func (r Rope) Delete(start, end ByteOffset) Rope {
	if r.root == nil || start >= end {
		return r
	}
	total := r.Len()
	if start >= total {
		return r
	}
	if end > total {
		end = total
	}

	switch {
	case start == 0 && end >= total:
		return New()
	case start == 0:
		_, right := r.Split(end)
		return right
	case end >= total:
		left, _ := r.Split(start)
		return left
	}

	left, rest := r.Split(start)
	_, right := rest.Split(end - start)
	return left.Concat(right)
}

// Replace returns a rope with [start, end) replaced by text.
func (r Rope) Replace(start, end ByteOffset, text string) Rope {
	if start >= end {
		if len(text) == 0 {
			return r
		}
		return r.Insert(start, text)
	}
	if len(text) == 0 {
		return r.Delete(start, end)
	}
	return r.Delete(start, end).Insert(start, text)
}

// Split divides the rope at a byte offset into [0, off) and [off, end).
func (r Rope) Split(off ByteOffset) (Rope, Rope) {
	if r.root == nil || off == 0 {
		return New(), r
	}
	if off >= r.Len() {
		return r, New()
	}
	left, right := r.root.divide(off)
	return Rope{root: left}, Rope{root: right}
}

// Concat returns the concatenation of two ropes.
func (r Rope) Concat(other Rope) Rope {
	if r.root == nil || r.Len() == 0 {
		return other
	}
	if other.root == nil || other.Len() == 0 {
		return r
	}
	return Rope{root: joinNodes(r.root, other.root)}
}

// LineStartOffset returns the byte offset where a 0-indexed line begins.
// Lines past the end clamp to Len.
func (r Rope) LineStartOffset(line uint32) ByteOffset {
	if r.root == nil || line == 0 {
		return 0
	}
	if line >= r.LineCount() {
		return r.Len()
	}
	var s seeker
	if s.toLine(r, line) {
		return s.offset
	}
	return r.Len()
}

// LineEndOffset returns the byte offset just before a line's newline
// (or Len for the final line).
func (r Rope) LineEndOffset(line uint32) ByteOffset {
	if r.root == nil {
		return 0
	}
	count := r.LineCount()
	if line >= count {
		return r.Len()
	}
	if line == count-1 {
		return r.Len()
	}
	next := r.LineStartOffset(line + 1)
	if next == 0 {
		return 0
	}
	return next - 1
}

// LineText returns a line's text without its newline.
func (r Rope) LineText(line uint32) string {
	return r.Slice(r.LineStartOffset(line), r.LineEndOffset(line))
}

// OffsetToPoint converts a byte offset to a line/column position.
func (r Rope) OffsetToPoint(off ByteOffset) Point {
	if r.root == nil || off == 0 {
		return Point{}
	}
	if off >= r.Len() {
		last := r.LineCount() - 1
		return Point{Line: last, Column: uint32(r.Len() - r.LineStartOffset(last))}
	}
	var s seeker
	s.toByte(r, off)
	return s.point(r)
}

// PointToOffset converts a line/column position to a byte offset,
// clamping the column to the line's end.
func (r Rope) PointToOffset(p Point) ByteOffset {
	if r.root == nil {
		return 0
	}
	start := r.LineStartOffset(p.Line)
	end := r.LineEndOffset(p.Line)
	if ByteOffset(p.Column) >= end-start {
		return end
	}
	return start + ByteOffset(p.Column)
}

// Equals reports whether two ropes hold the same text, regardless of
// tree shape.
func (r Rope) Equals(other Rope) bool {
	if r.Len() != other.Len() {
		return false
	}
	// Walk both span streams, comparing overlapping windows; the spans
	// need not line up.
	a, b := r.Chunks(), other.Chunks()
	var aText, bText string
	for {
		if aText == "" {
			if !a.Next() {
				return bText == "" && !b.Next()
			}
			aText = a.Text()
		}
		if bText == "" {
			if !b.Next() {
				return false
			}
			bText = b.Text()
		}
		n := len(aText)
		if len(bText) < n {
			n = len(bText)
		}
		if aText[:n] != bText[:n] {
			return false
		}
		aText = aText[n:]
		bText = bText[n:]
	}
}
