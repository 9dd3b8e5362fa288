package buffer

import (
	"unicode/utf8"

	"github.com/dshills/keystorm/internal/engine/rope"
)

// Snapshot is an immutable view of a buffer at one revision. The parse
// worker and any other off-thread reader work against snapshots so the
// main thread can keep editing underneath them; sharing one is a
// pointer copy because ropes never mutate.
type Snapshot struct {
	rope       rope.Rope
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
}

// Text materializes the full content.
func (s *Snapshot) Text() string {
	return s.rope.String()
}

// TextRange returns the text within [start, end).
func (s *Snapshot) TextRange(start, end ByteOffset) string {
	return s.rope.Slice(rope.ByteOffset(start), rope.ByteOffset(end))
}

// Len returns the byte length.
func (s *Snapshot) Len() ByteOffset {
	return ByteOffset(s.rope.Len())
}

// IsEmpty reports whether the snapshot holds no text.
func (s *Snapshot) IsEmpty() bool {
	return s.rope.IsEmpty()
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() uint32 {
	return s.rope.LineCount()
}

// LineText returns a line without its newline.
func (s *Snapshot) LineText(line uint32) string {
	return s.rope.LineText(line)
}

// LineLen returns a line's byte length, newline excluded.
func (s *Snapshot) LineLen(line uint32) int {
	return int(s.rope.LineEndOffset(line) - s.rope.LineStartOffset(line))
}

// LineStartOffset returns where a line begins.
func (s *Snapshot) LineStartOffset(line uint32) ByteOffset {
	return ByteOffset(s.rope.LineStartOffset(line))
}

// LineEndOffset returns where a line ends, before its newline.
func (s *Snapshot) LineEndOffset(line uint32) ByteOffset {
	return ByteOffset(s.rope.LineEndOffset(line))
}

// ByteAt returns the byte at an offset.
func (s *Snapshot) ByteAt(off ByteOffset) (byte, bool) {
	return s.rope.ByteAt(rope.ByteOffset(off))
}

// RuneAt decodes the rune starting at a byte offset; size 0 means the
// offset was out of range.
func (s *Snapshot) RuneAt(off ByteOffset) (rune, int) {
	total := s.Len()
	if off < 0 || off >= total {
		return utf8.RuneError, 0
	}
	end := off + utf8.UTFMax
	if end > total {
		end = total
	}
	return utf8.DecodeRuneInString(s.rope.Slice(rope.ByteOffset(off), rope.ByteOffset(end)))
}

// OffsetToPoint converts a byte offset to line/column.
func (s *Snapshot) OffsetToPoint(off ByteOffset) Point {
	p := s.rope.OffsetToPoint(rope.ByteOffset(off))
	return Point{Line: p.Line, Column: p.Column}
}

// PointToOffset converts line/column to a byte offset.
func (s *Snapshot) PointToOffset(p Point) ByteOffset {
	return ByteOffset(s.rope.PointToOffset(rope.Point{Line: p.Line, Column: p.Column}))
}

// OffsetToPointUTF16 converts a byte offset to a UTF-16 position by
// re-measuring the line prefix in code units.
func (s *Snapshot) OffsetToPointUTF16(off ByteOffset) PointUTF16 {
	p := s.rope.OffsetToPoint(rope.ByteOffset(off))
	lineStart := s.rope.LineStartOffset(p.Line)
	prefix := s.rope.Slice(lineStart, rope.ByteOffset(off))
	return PointUTF16{Line: p.Line, Column: utf16ColumnFromString(prefix)}
}

// PointUTF16ToOffset converts a UTF-16 position back to a byte offset,
// clamping the column to the line.
func (s *Snapshot) PointUTF16ToOffset(p PointUTF16) ByteOffset {
	lineStart := s.rope.LineStartOffset(p.Line)
	line := s.rope.Slice(lineStart, s.rope.LineEndOffset(p.Line))
	return ByteOffset(lineStart) + ByteOffset(byteOffsetFromUTF16Column(line, p.Column))
}

// RevisionID returns the revision this snapshot was taken at.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revisionID
}

// LineEnding returns the buffer's line-ending style at snapshot time.
func (s *Snapshot) LineEnding() LineEnding {
	return s.lineEnding
}

// TabWidth returns the buffer's tab width at snapshot time.
func (s *Snapshot) TabWidth() int {
	return s.tabWidth
}

// Rope returns the underlying immutable rope.
func (s *Snapshot) Rope() rope.Rope {
	return s.rope
}

// Chunks streams the snapshot's text fragments.
func (s *Snapshot) Chunks() *rope.ChunkIterator {
	return s.rope.Chunks()
}

// Lines iterates the snapshot's lines.
func (s *Snapshot) Lines() *rope.LineIterator {
	return s.rope.Lines()
}

// Runes iterates the snapshot's runes.
func (s *Snapshot) Runes() *rope.RuneIterator {
	return s.rope.Runes()
}

// Bytes iterates the snapshot's bytes.
func (s *Snapshot) Bytes() *rope.ByteIterator {
	return s.rope.Bytes()
}
