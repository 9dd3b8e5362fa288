package editor

import (
	"unicode"
	"unicode/utf8"

	"github.com/dshills/keystorm/internal/engine"
)

// charClass buckets runes for word motion: whitespace, word characters
// (alphanumeric plus underscore), and everything else as punctuation.
type charClass int

const (
	classWhitespace charClass = iota
	classWord
	classPunctuation
)

func classify(r rune) charClass {
	switch {
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return classWord
	case unicode.IsSpace(r):
		return classWhitespace
	default:
		return classPunctuation
	}
}

// runeAt returns the rune at a byte offset, with ok=false at the buffer
// end.
func runeAt(e *engine.Engine, off engine.ByteOffset) (rune, int, bool) {
	if off >= e.Len() {
		return 0, 0, false
	}
	r, size := e.RuneAt(off)
	if size == 0 {
		return 0, 0, false
	}
	return r, size, true
}

// runeBefore returns the rune ending at a byte offset, with ok=false at
// the buffer start.
func runeBefore(e *engine.Engine, off engine.ByteOffset) (rune, int, bool) {
	if off <= 0 {
		return 0, 0, false
	}
	start := off - utf8.UTFMax
	if start < 0 {
		start = 0
	}
	segment := e.TextRange(start, off)
	if segment == "" {
		return 0, 0, false
	}
	r, size := utf8.DecodeLastRuneInString(segment)
	if size == 0 {
		return 0, 0, false
	}
	return r, size, true
}

// wordLeft returns the offset one word-motion left of off: skip
// non-newline whitespace, then one run of the class found there,
// stopping at newlines.
func wordLeft(e *engine.Engine, off engine.ByteOffset) engine.ByteOffset {
	r, size, ok := runeBefore(e, off)
	if !ok {
		return 0
	}
	// A newline immediately behind the cursor is a single step.
	if r == '\n' {
		return off - engine.ByteOffset(size)
	}
	for ok && r != '\n' && classify(r) == classWhitespace {
		off -= engine.ByteOffset(size)
		r, size, ok = runeBefore(e, off)
	}
	if !ok || r == '\n' {
		return off
	}
	runClass := classify(r)
	for ok && r != '\n' && classify(r) == runClass {
		off -= engine.ByteOffset(size)
		r, size, ok = runeBefore(e, off)
	}
	return off
}

// wordRight returns the offset one word-motion right of off: on
// whitespace skip the whitespace (a newline ends the motion one past
// it); otherwise skip one run of the current class, then trailing
// non-newline whitespace.
func wordRight(e *engine.Engine, off engine.ByteOffset) engine.ByteOffset {
	r, size, ok := runeAt(e, off)
	if !ok {
		return e.Len()
	}
	if classify(r) == classWhitespace {
		for ok && classify(r) == classWhitespace {
			off += engine.ByteOffset(size)
			if r == '\n' {
				return off
			}
			r, size, ok = runeAt(e, off)
		}
		return off
	}
	runClass := classify(r)
	for ok && classify(r) == runClass {
		off += engine.ByteOffset(size)
		r, size, ok = runeAt(e, off)
	}
	for ok && r != '\n' && classify(r) == classWhitespace {
		off += engine.ByteOffset(size)
		r, size, ok = runeAt(e, off)
	}
	return off
}

// moveLeft is a single-rune step left.
func moveLeft(e *engine.Engine, off engine.ByteOffset) engine.ByteOffset {
	_, size, ok := runeBefore(e, off)
	if !ok {
		return 0
	}
	return off - engine.ByteOffset(size)
}

// moveRight is a single-rune step right.
func moveRight(e *engine.Engine, off engine.ByteOffset) engine.ByteOffset {
	_, size, ok := runeAt(e, off)
	if !ok {
		return e.Len()
	}
	return off + engine.ByteOffset(size)
}

// lineStartOffset returns the offset of the first byte of off's line.
func lineStartOffset(e *engine.Engine, off engine.ByteOffset) engine.ByteOffset {
	point := e.OffsetToPoint(off)
	return e.LineStartOffset(point.Line)
}

// lineEndOffset returns the offset just before off's line terminator.
func lineEndOffset(e *engine.Engine, off engine.ByteOffset) engine.ByteOffset {
	point := e.OffsetToPoint(off)
	return e.LineEndOffset(point.Line)
}

// wordRangeAt returns the identifier word containing off, used to seed
// add-cursor-at-next-occurrence.
func wordRangeAt(e *engine.Engine, off engine.ByteOffset) (start, end engine.ByteOffset, ok bool) {
	start, end = off, off
	for {
		r, size, found := runeBefore(e, start)
		if !found || classify(r) != classWord {
			break
		}
		start -= engine.ByteOffset(size)
	}
	for {
		r, size, found := runeAt(e, end)
		if !found || classify(r) != classWord {
			break
		}
		end += engine.ByteOffset(size)
	}
	return start, end, start != end
}
