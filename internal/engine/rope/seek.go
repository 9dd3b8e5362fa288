package rope

// seeker resolves a position against the tree's aggregates: one descent
// by bytes or by line count, accumulating the coordinate not being
// descended on. Both directions are O(log n) plus an O(1) lookup in the
// final span's newline table.
type seeker struct {
	offset ByteOffset
	line   uint32 // newlines before offset
}

// toByte positions the seeker at a byte offset (which must be < Len),
// computing the line number on the way down.
func (s *seeker) toByte(r Rope, target ByteOffset) {
	s.offset = target
	s.line = 0
	if r.root == nil {
		return
	}

	n := r.root
	rel := target
	for !n.leaf() {
		i, kidRel := n.kidAtByte(rel)
		for j := 0; j < i; j++ {
			s.line += n.kidAggs[j].breaks
		}
		n = n.kids[i]
		rel = kidRel
	}

	for _, sp := range n.spans {
		if rel < ByteOffset(sp.size()) {
			s.line += breaksBefore(sp, int(rel))
			return
		}
		s.line += sp.meta.breaks
		rel -= ByteOffset(sp.size())
	}
}

// toLine positions the seeker at the first byte of a 0-indexed line.
// Reports false when the line is out of range.
func (s *seeker) toLine(r Rope, line uint32) bool {
	if r.root == nil {
		s.offset, s.line = 0, 0
		return line == 0
	}
	if line == 0 {
		s.offset, s.line = 0, 0
		return true
	}
	if line >= r.LineCount() {
		return false
	}

	n := r.root
	var off ByteOffset
	var crossed uint32
	for !n.leaf() {
		stepped := false
		for i, agg := range n.kidAggs {
			if crossed+agg.breaks >= line {
				n = n.kids[i]
				stepped = true
				break
			}
			crossed += agg.breaks
			off += agg.bytes
		}
		if !stepped {
			return false
		}
	}

	for _, sp := range n.spans {
		if crossed+sp.meta.breaks >= line {
			pos := sp.marks.nth(line - crossed)
			if pos < 0 {
				return false
			}
			s.offset = off + ByteOffset(pos+1)
			s.line = line
			return true
		}
		crossed += sp.meta.breaks
		off += ByteOffset(sp.size())
	}
	return false
}

// point materializes the seeker's position as a line/column pair.
func (s *seeker) point(r Rope) Point {
	return Point{
		Line:   s.line,
		Column: uint32(s.offset - r.LineStartOffset(s.line)),
	}
}

// breaksBefore counts a span's newlines strictly before a byte offset.
func breaksBefore(sp span, off int) uint32 {
	var n uint32
	for _, pos := range sp.marks.all() {
		if int(pos) >= off {
			break
		}
		n++
	}
	return n
}
