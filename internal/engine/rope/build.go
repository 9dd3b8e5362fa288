package rope

import (
	"io"
	"strings"
)

// builder accumulates text and packs it into a rope once, so loading a
// file costs one segmentation pass instead of repeated concatenation.
type builder struct {
	spans []span
	buf   strings.Builder
}

// write appends text, flushing the staging buffer to spans whenever it
// grows past two spans' worth.
func (b *builder) write(s string) {
	if len(s) == 0 {
		return
	}
	b.buf.WriteString(s)
	if b.buf.Len() >= spanMax*2 {
		b.flush()
	}
}

func (b *builder) flush() {
	if b.buf.Len() == 0 {
		return
	}
	b.spans = append(b.spans, segment(b.buf.String())...)
	b.buf.Reset()
}

// build packs everything written so far into a rope.
func (b *builder) build() Rope {
	b.flush()
	if len(b.spans) == 0 {
		return New()
	}
	return fromSpans(b.spans)
}

// FromReader creates a rope by draining a reader.
func FromReader(r io.Reader) (Rope, error) {
	var b builder
	buf := make([]byte, 64*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.write(string(buf[:n]))
		}
		if err == io.EOF {
			return b.build(), nil
		}
		if err != nil {
			return Rope{}, err
		}
	}
}
