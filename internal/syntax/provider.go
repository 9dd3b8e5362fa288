package syntax

import "github.com/dshills/keystorm/internal/engine/rope"

// Edit describes a single buffer mutation in the coordinates a parser needs:
// byte offsets before and after the change, plus the line/column points for
// each, matching tree-sitter's TSInputEdit shape.
type Edit struct {
	StartByte  uint32
	OldEndByte uint32
	NewEndByte uint32

	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

// Point is a zero-indexed line/column pair, matching tree-sitter's TSPoint.
type Point struct {
	Row    uint32
	Column uint32
}

// LineSegment is a run of text on one line sharing a single highlight
// category, in display order.
type LineSegment struct {
	StartCol int
	EndCol   int
	Category string
}

// Provider is the narrow interface the editor depends on for incremental
// parsing and highlighting. TreeSitterProvider is the only implementation;
// tests may substitute a stub.
type Provider interface {
	// SetQuery compiles a highlight query for the given language. Language is
	// one of the identifiers registered in the language table (languages.go).
	// Passing an unrecognized language disables highlighting for this
	// provider without an error, matching the editor's degrade-gracefully
	// policy for missing grammars.
	SetQuery(language string, querySource []byte) error

	// RecordEdit queues a pending edit to be applied to the cached tree on
	// the next reparse. It never blocks and never reparses synchronously.
	RecordEdit(e Edit)

	// Reparse applies all queued edits to the cached tree (or parses fresh if
	// there is none) against the current content of r, and returns the new
	// tree version. Intended to be called from a background worker, never
	// from the goroutine that owns the buffer.
	Reparse(r rope.Rope) (version uint64, err error)

	// HighlightRange returns per-line highlight segments for
	// [startLine, endLine) against the given rope, falling back to an
	// unstyled single segment per line when no usable tree exists.
	HighlightRange(r rope.Rope, startLine, endLine uint32) []LineSegments

	// TreeVersion returns the version of the most recently installed tree.
	// Zero means no successful parse has completed yet.
	TreeVersion() uint64

	// IsAvailable reports whether this provider has a compiled query and a
	// language, i.e. whether HighlightRange can do more than return plain
	// text.
	IsAvailable() bool

	// Close releases the parser and any other native resources.
	Close()
}

// LineSegments is the set of highlight runs for a single buffer line.
type LineSegments struct {
	Line     uint32
	Segments []LineSegment
}
