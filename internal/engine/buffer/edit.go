package buffer

import "fmt"

// Edit is one replacement: the bytes in Range are removed and NewText
// takes their place. An empty range inserts; empty NewText deletes.
type Edit struct {
	Range   Range
	NewText string
}

func (e Edit) String() string {
	switch {
	case e.Range.IsEmpty():
		return fmt.Sprintf("insert %q at %d", e.NewText, e.Range.Start)
	case e.NewText == "":
		return fmt.Sprintf("delete %s", e.Range)
	default:
		return fmt.Sprintf("replace %s with %q", e.Range, e.NewText)
	}
}

// IsInsert reports a pure insertion.
func (e Edit) IsInsert() bool {
	return e.Range.IsEmpty() && e.NewText != ""
}

// IsDelete reports a pure deletion.
func (e Edit) IsDelete() bool {
	return !e.Range.IsEmpty() && e.NewText == ""
}

// IsNoOp reports an edit that changes nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.NewText == ""
}

// Delta returns how many bytes the edit grows (or shrinks) the buffer.
func (e Edit) Delta() ByteOffset {
	return ByteOffset(len(e.NewText)) - e.Range.Len()
}

// EditResult reports what an applied edit actually did, after
// line-ending normalization and clamping.
type EditResult struct {
	OldRange Range
	NewRange Range
	OldText  string
	Delta    int64
}

// Option configures a Buffer at construction.
type Option func(*Buffer)

// WithLineEnding sets the style every inserted text is normalized to.
func WithLineEnding(le LineEnding) Option {
	return func(b *Buffer) { b.lineEnding = le }
}

// WithTabWidth sets the buffer's tab width.
func WithTabWidth(width int) Option {
	return func(b *Buffer) {
		if width > 0 {
			b.tabWidth = width
		}
	}
}
