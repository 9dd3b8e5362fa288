package syntax

import (
	"strings"
	"time"

	"github.com/dshills/keystorm/internal/engine"
	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/tracking"
)

// highlightDebounce matches the editor's highlight-refresh debounce.
const highlightDebounce = 50 * time.Millisecond

// Document ties a Provider, a background Worker, and a highlight cache to a
// single engine.Engine, translating buffer changes into tree-sitter edits
// and serving highlight requests from the cache when possible.
type Document struct {
	eng      *engine.Engine
	provider Provider
	worker   *Worker
	cache    *HighlightCache
	theme    *Theme

	lastSeenRev engine.RevisionID
}

// NewDocument creates a syntax-aware wrapper around eng for the given
// language identifier (an LSP-style id such as "go" or "python"). If the
// language has no registered grammar, the document still works but
// Highlight always returns plain text.
func NewDocument(eng *engine.Engine, languageID string, querySource []byte) *Document {
	provider := NewTreeSitterProvider()
	if len(querySource) > 0 {
		// A bad query returns an error and an unknown language returns
		// none; either way the provider stays unavailable and Highlight
		// degrades to plain text rather than surfacing a constructor
		// error for a cosmetic feature.
		_ = provider.SetQuery(languageID, querySource)
	}

	d := &Document{
		eng:      eng,
		provider: provider,
		cache:    NewHighlightCache(defaultCacheSize),
		theme:    DefaultTheme(),
	}
	d.lastSeenRev = eng.RevisionID()
	d.worker = NewWorker(provider, d.snapshot, highlightDebounce)

	// Prime the tree so the first Highlight call after open doesn't fall
	// back to plain text while the worker's debounce is still pending.
	d.worker.NotifyEdit(fullReparseEdit(eng))

	return d
}

func (d *Document) snapshot() (rope.Rope, uint64) {
	return d.eng.Rope(), uint64(d.eng.RevisionID())
}

// Theme returns the color theme used to resolve categories for this
// document.
func (d *Document) Theme() *Theme {
	return d.theme
}

// Close stops the background worker and releases the parser.
func (d *Document) Close() {
	d.worker.Stop()
	d.provider.Close()
}

// NotifyChanges pushes every engine.Change since the document's last
// observed revision into the worker as tree-sitter edits. Call this after
// any edit (Insert/Delete/Replace/ApplyEdit/Undo/Redo) on the wrapped
// engine.
func (d *Document) NotifyChanges() {
	changes := d.eng.ChangesSince(d.lastSeenRev)
	for _, c := range changes {
		d.worker.NotifyEdit(changeToEdit(d.eng, c))
	}
	d.lastSeenRev = d.eng.RevisionID()
}

// Highlight returns cached or freshly computed highlight segments for
// [startLine, endLine). Safe to call from the main goroutine; never blocks
// on a reparse.
func (d *Document) Highlight(startLine, endLine uint32) []LineSegments {
	treeVersion := d.provider.TreeVersion()
	contentVersion := d.worker.ContentVersion()

	if cached := d.cache.Get(startLine, endLine, contentVersion, treeVersion); cached != nil {
		return cached
	}

	result := d.provider.HighlightRange(d.eng.Rope(), startLine, endLine)
	d.cache.Set(startLine, endLine, contentVersion, treeVersion, result)
	return result
}

// changeToEdit converts an engine.Change (byte-offset based) into the
// line/column-aware Edit tree-sitter needs. The start point is identical in
// old and new text since nothing before the edit moved; the old and new end
// points are derived by walking OldText/NewText forward from the start
// point, since the engine doesn't retain the pre-edit rope.
func changeToEdit(eng *engine.Engine, c tracking.Change) Edit {
	startPoint := bufferPointToSyntax(eng.OffsetToPoint(c.NewRange.Start))
	return Edit{
		StartByte:   uint32(c.Range.Start),
		OldEndByte:  uint32(c.Range.End),
		NewEndByte:  uint32(c.NewRange.End),
		StartPoint:  startPoint,
		OldEndPoint: advancePoint(startPoint, c.OldText),
		NewEndPoint: advancePoint(startPoint, c.NewText),
	}
}

func bufferPointToSyntax(p engine.Point) Point {
	return Point{Row: p.Line, Column: p.Column}
}

// advancePoint returns the point reached after walking text forward from
// start, counting newlines for rows and bytes-since-last-newline for
// columns (tree-sitter columns are byte offsets within a line).
func advancePoint(start Point, text string) Point {
	if text == "" {
		return start
	}
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return Point{Row: start.Row, Column: start.Column + uint32(len(text))}
	}
	return Point{
		Row:    start.Row + uint32(len(lines)-1),
		Column: uint32(len(lines[len(lines)-1])),
	}
}

// fullReparseEdit produces a no-op edit spanning the whole document, used
// only to wake the worker for its very first parse.
func fullReparseEdit(eng *engine.Engine) Edit {
	end := eng.OffsetToPoint(eng.Len())
	return Edit{
		StartByte:   0,
		OldEndByte:  0,
		NewEndByte:  uint32(eng.Len()),
		StartPoint:  Point{},
		OldEndPoint: Point{},
		NewEndPoint: bufferPointToSyntax(end),
	}
}
