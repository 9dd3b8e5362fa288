package buffer

import (
	"fmt"
	"sync/atomic"
)

// ByteOffset is a byte position in the buffer, the fundamental
// coordinate everything else converts to.
type ByteOffset = int64

// Point is a 0-indexed line/column position with the column measured in
// bytes from the line start.
type Point struct {
	Line   uint32
	Column uint32
}

func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare orders two points, -1 when p precedes other.
func (p Point) Compare(other Point) int {
	switch {
	case p.Line != other.Line:
		if p.Line < other.Line {
			return -1
		}
		return 1
	case p.Column != other.Column:
		if p.Column < other.Column {
			return -1
		}
		return 1
	}
	return 0
}

// PointUTF16 is a 0-indexed line/column position with the column in
// UTF-16 code units, the protocol encoding the LSP layer speaks.
type PointUTF16 struct {
	Line   uint32
	Column uint32
}

func (p PointUTF16) String() string {
	return fmt.Sprintf("(%d:%d utf16)", p.Line, p.Column)
}

// Compare orders two UTF-16 points, -1 when p precedes other.
func (p PointUTF16) Compare(other PointUTF16) int {
	switch {
	case p.Line != other.Line:
		if p.Line < other.Line {
			return -1
		}
		return 1
	case p.Column != other.Column:
		if p.Column < other.Column {
			return -1
		}
		return 1
	}
	return 0
}

// Range is a half-open byte span [Start, End).
type Range struct {
	Start ByteOffset
	End   ByteOffset
}

// NewRange builds a range from two offsets.
func NewRange(start, end ByteOffset) Range {
	return Range{Start: start, End: end}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns the span's byte length.
func (r Range) Len() ByteOffset {
	return r.End - r.Start
}

// IsEmpty reports a zero-length span.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid reports whether Start does not exceed End.
func (r Range) IsValid() bool {
	return r.Start <= r.End
}

// Contains reports whether the offset lies inside the span.
func (r Range) Contains(off ByteOffset) bool {
	return off >= r.Start && off < r.End
}

// Overlaps reports whether two spans share any byte.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Union returns the smallest span covering both.
func (r Range) Union(other Range) Range {
	out := r
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

// Intersect returns the shared span, empty when they do not overlap.
func (r Range) Intersect(other Range) Range {
	start := r.Start
	if other.Start > start {
		start = other.Start
	}
	end := r.End
	if other.End < end {
		end = other.End
	}
	if start >= end {
		return Range{Start: start, End: start}
	}
	return Range{Start: start, End: end}
}

// Shift translates the span by delta.
func (r Range) Shift(delta ByteOffset) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// RevisionID identifies one buffer revision; every mutation mints a new
// one from a process-wide counter so revisions order totally even
// across buffers.
type RevisionID uint64

var revisionCounter uint64

// NewRevisionID returns the next revision id.
func NewRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}
