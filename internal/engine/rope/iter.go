package rope

import "unicode/utf8"

// iterFrame is one level of an in-order walk over the tree.
type iterFrame struct {
	node *node
	next int // next child (branch) or span (leaf) to visit
}

// ChunkIterator streams the rope's spans in order, giving consumers
// (the parse worker's text provider, LSP full-document sync) the text
// without materializing one big string.
type ChunkIterator struct {
	stack    []iterFrame
	text     string
	start    ByteOffset
	consumed ByteOffset
	primed   bool
}

// Chunks returns an iterator over the rope's text fragments.
func (r Rope) Chunks() *ChunkIterator {
	it := &ChunkIterator{stack: make([]iterFrame, 0, 8)}
	if r.root != nil {
		it.stack = append(it.stack, iterFrame{node: r.root})
	}
	return it
}

// Next advances to the next non-empty fragment.
func (it *ChunkIterator) Next() bool {
	if it.primed {
		it.consumed += ByteOffset(len(it.text))
	}
	it.primed = true

	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]

		if top.node.leaf() {
			if top.next < len(top.node.spans) {
				sp := top.node.spans[top.next]
				top.next++
				if sp.empty() {
					continue
				}
				it.text = sp.text
				it.start = it.consumed
				return true
			}
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}

		if top.next < len(top.node.kids) {
			kid := top.node.kids[top.next]
			top.next++
			it.stack = append(it.stack, iterFrame{node: kid})
			continue
		}
		it.stack = it.stack[:len(it.stack)-1]
	}
	it.text = ""
	return false
}

// Text returns the current fragment.
func (it *ChunkIterator) Text() string {
	return it.text
}

// Offset returns the byte offset where the current fragment begins.
func (it *ChunkIterator) Offset() ByteOffset {
	return it.start
}

// LineIterator walks the rope line by line.
type LineIterator struct {
	rope    Rope
	line    uint32
	start   ByteOffset
	end     ByteOffset
	text    string
	started bool
	done    bool
}

// Lines returns an iterator over the rope's lines. An empty rope yields
// one empty line.
func (r Rope) Lines() *LineIterator {
	return &LineIterator{rope: r}
}

// Next advances to the next line.
func (it *LineIterator) Next() bool {
	if it.done {
		return false
	}
	if !it.started {
		it.started = true
		if it.rope.IsEmpty() {
			it.done = true
			return true
		}
	} else {
		it.line++
		if it.line >= it.rope.LineCount() {
			it.done = true
			return false
		}
	}
	it.start = it.rope.LineStartOffset(it.line)
	it.end = it.rope.LineEndOffset(it.line)
	it.text = it.rope.Slice(it.start, it.end)
	return true
}

// Text returns the current line without its newline.
func (it *LineIterator) Text() string { return it.text }

// Line returns the current 0-indexed line number.
func (it *LineIterator) Line() uint32 { return it.line }

// StartOffset returns the byte offset of the line's first byte.
func (it *LineIterator) StartOffset() ByteOffset { return it.start }

// EndOffset returns the byte offset just past the line's last byte.
func (it *LineIterator) EndOffset() ByteOffset { return it.end }

// RuneIterator decodes the rope rune by rune, streaming fragments from
// a ChunkIterator so each rune costs O(1) amortized.
type RuneIterator struct {
	chunks  *ChunkIterator
	rest    string
	base    ByteOffset
	current rune
	size    int
	offset  ByteOffset
}

// Runes returns an iterator over the rope's runes.
func (r Rope) Runes() *RuneIterator {
	return &RuneIterator{chunks: r.Chunks()}
}

// Next advances to the next rune.
func (it *RuneIterator) Next() bool {
	for it.rest == "" {
		if !it.chunks.Next() {
			return false
		}
		it.rest = it.chunks.Text()
		it.base = it.chunks.Offset()
	}
	it.current, it.size = utf8.DecodeRuneInString(it.rest)
	it.offset = it.base
	it.rest = it.rest[it.size:]
	it.base += ByteOffset(it.size)
	return it.size > 0
}

// Rune returns the current rune.
func (it *RuneIterator) Rune() rune { return it.current }

// Size returns the current rune's byte width.
func (it *RuneIterator) Size() int { return it.size }

// Offset returns the current rune's byte offset.
func (it *RuneIterator) Offset() ByteOffset { return it.offset }

// ByteIterator walks the rope byte by byte.
type ByteIterator struct {
	chunks *ChunkIterator
	rest   string
	offset ByteOffset
	value  byte
	primed bool
}

// Bytes returns an iterator over the rope's bytes.
func (r Rope) Bytes() *ByteIterator {
	return &ByteIterator{chunks: r.Chunks()}
}

// Next advances to the next byte.
func (it *ByteIterator) Next() bool {
	for it.rest == "" {
		if !it.chunks.Next() {
			return false
		}
		it.rest = it.chunks.Text()
		it.offset = it.chunks.Offset()
		it.primed = false
	}
	if it.primed {
		it.offset++
	}
	it.primed = true
	it.value = it.rest[0]
	it.rest = it.rest[1:]
	return true
}

// Byte returns the current byte.
func (it *ByteIterator) Byte() byte { return it.value }

// Offset returns the current byte's offset.
func (it *ByteIterator) Offset() ByteOffset { return it.offset }
