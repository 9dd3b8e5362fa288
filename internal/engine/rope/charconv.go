package rope

// CharOffset is an absolute Unicode-scalar-value (char) position in the
// rope, as distinct from a ByteOffset. The anchor system operates in char
// indices so a position means the same thing regardless of how wide its
// characters encode; cursor selections use byte offsets.
type CharOffset uint64

// LenChars returns the total number of Unicode scalar values.
func (r Rope) LenChars() CharOffset {
	if r.root == nil {
		return 0
	}
	return CharOffset(r.root.agg.chars)
}

// CharToByte converts a char index to the byte offset of that
// character's first byte. An index equal to LenChars maps to Len;
// anything further clamps.
func (r Rope) CharToByte(idx CharOffset) ByteOffset {
	if r.root == nil || idx == 0 {
		return 0
	}
	if uint64(idx) >= r.root.agg.chars {
		return r.Len()
	}

	n := r.root
	var atByte ByteOffset
	var atChar uint64

	for !n.leaf() {
		stepped := false
		for i, agg := range n.kidAggs {
			if atChar+agg.chars > uint64(idx) {
				n = n.kids[i]
				stepped = true
				break
			}
			atByte += agg.bytes
			atChar += agg.chars
		}
		if !stepped {
			return r.Len()
		}
	}

	for _, sp := range n.spans {
		if atChar+sp.meta.chars > uint64(idx) {
			return atByte + nthRuneOffset(sp.text, uint64(idx)-atChar)
		}
		atByte += ByteOffset(sp.size())
		atChar += sp.meta.chars
	}
	return atByte
}

// ByteToChar converts a byte offset (which must sit on a rune boundary)
// to the char index of the character starting there.
func (r Rope) ByteToChar(off ByteOffset) CharOffset {
	if r.root == nil || off == 0 {
		return 0
	}
	if off >= r.Len() {
		return r.LenChars()
	}

	n := r.root
	var atByte ByteOffset
	var atChar uint64

	for !n.leaf() {
		stepped := false
		for i, agg := range n.kidAggs {
			if atByte+agg.bytes > off {
				n = n.kids[i]
				stepped = true
				break
			}
			atByte += agg.bytes
			atChar += agg.chars
		}
		if !stepped {
			return r.LenChars()
		}
	}

	for _, sp := range n.spans {
		if atByte+ByteOffset(sp.size()) > off {
			return CharOffset(atChar) + runesBefore(sp.text, int(off-atByte))
		}
		atByte += ByteOffset(sp.size())
		atChar += sp.meta.chars
	}
	return CharOffset(atChar)
}

// nthRuneOffset returns the byte offset of the nth (0-indexed) rune in
// s.
func nthRuneOffset(s string, n uint64) ByteOffset {
	var seen uint64
	for i := range s {
		if seen == n {
			return ByteOffset(i)
		}
		seen++
	}
	return ByteOffset(len(s))
}

// runesBefore counts the complete runes preceding a byte offset in s.
func runesBefore(s string, off int) CharOffset {
	var n CharOffset
	for i := range s {
		if i >= off {
			break
		}
		n++
	}
	return n
}
