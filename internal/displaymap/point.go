package displaymap

// BufferPoint is a position in the raw text buffer: line, column in chars.
type BufferPoint struct {
	Row uint32
	Col uint32
}

// FoldPoint is a position after applying folds (some lines hidden).
type FoldPoint struct {
	Row uint32
	Col uint32
}

// WrapPoint is a position after applying soft wraps (one fold line maps to
// one or more display rows).
type WrapPoint struct {
	Row uint32
	Col uint32
}

// DisplayPoint is the final screen position, after fold, wrap and tab
// transforms have all been applied.
type DisplayPoint struct {
	Row uint32
	Col uint32
}

// FoldKind distinguishes how a fold region was created; it has no effect on
// the coordinate math, only on how a renderer might label the fold header.
type FoldKind int

const (
	FoldManual FoldKind = iota
	FoldBlock
	FoldComment
	FoldImports
)

// FoldRegion is a span of buffer lines [StartLine, EndLine] (inclusive,
// 0-indexed) that collapses to its header line when IsFolded.
type FoldRegion struct {
	StartLine uint32
	EndLine   uint32
	Kind      FoldKind
	IsFolded  bool

	// IndentLevel is the indentation depth the region was derived from,
	// for renderers that draw fold guides. Zero for manual folds.
	IndentLevel uint32
}

// HiddenLineCount returns how many lines this region hides when folded:
// every line after the header through EndLine.
func (f FoldRegion) HiddenLineCount() uint32 {
	if f.EndLine <= f.StartLine {
		return 0
	}
	return f.EndLine - f.StartLine
}

// saturatingSub returns a - b, clamped to 0 instead of wrapping.
func saturatingSub(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}
