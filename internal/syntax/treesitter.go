package syntax

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/dshills/keystorm/internal/engine/rope"
)

// maxBytesToQuery bounds how much of the tree a single highlight query walks.
// Past this many bytes from the start of the requested range, HighlightRange
// falls back to plain text for the remainder rather than querying an
// unbounded span — matching the budget the original parser enforced.
const maxBytesToQuery = 16 * 1024

// TreeSitterProvider is the only Provider implementation. It owns a single
// tree-sitter parser and the most recently produced tree for one document,
// and is safe for concurrent use: RecordEdit is meant to be called from the
// goroutine that owns the buffer, while Reparse runs on a Worker's
// background goroutine.
type TreeSitterProvider struct {
	mu sync.Mutex

	language   *sitter.Language
	languageID string
	query      *sitter.Query

	parser *sitter.Parser
	tree   *sitter.Tree

	pending []sitter.EditInput

	version atomic.Uint64
}

// NewTreeSitterProvider creates a provider with no language configured.
// Call SetQuery before the first Reparse to enable parsing.
func NewTreeSitterProvider() *TreeSitterProvider {
	return &TreeSitterProvider{
		parser: sitter.NewParser(),
	}
}

// SetQuery compiles querySource against the grammar registered for
// language. An unrecognized language clears the provider's query and
// language, degrading HighlightRange to plain text without an error.
func (p *TreeSitterProvider) SetQuery(language string, querySource []byte) error {
	lang, ok := LanguageForID(language)
	if !ok {
		p.mu.Lock()
		p.language = nil
		p.languageID = ""
		p.query = nil
		p.mu.Unlock()
		return nil
	}

	query, err := sitter.NewQuery(querySource, lang)
	if err != nil {
		return fmt.Errorf("syntax: compiling query for %s: %w", language, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.query != nil {
		p.query.Close()
	}
	p.language = lang
	p.languageID = language
	p.query = query
	p.parser.SetLanguage(lang)
	// Any previously cached tree was parsed with a different (or no)
	// grammar; it cannot be fed back into ParseCtx as an old tree.
	p.tree = nil
	return nil
}

// RecordEdit queues a pending tree-sitter edit. Never blocks, never parses.
func (p *TreeSitterProvider) RecordEdit(e Edit) {
	input := sitter.EditInput{
		StartIndex:  e.StartByte,
		OldEndIndex: e.OldEndByte,
		NewEndIndex: e.NewEndByte,
		StartPoint:  sitter.Point{Row: e.StartPoint.Row, Column: e.StartPoint.Column},
		OldEndPoint: sitter.Point{Row: e.OldEndPoint.Row, Column: e.OldEndPoint.Column},
		NewEndPoint: sitter.Point{Row: e.NewEndPoint.Row, Column: e.NewEndPoint.Column},
	}
	p.mu.Lock()
	p.pending = append(p.pending, input)
	p.mu.Unlock()
}

// Reparse applies every queued edit to the cached tree, then reparses
// against the current content of r — incrementally if a tree survived the
// edits, from scratch otherwise. It is the only method in this type that
// does real work, and is meant to run off the goroutine that mutates the
// buffer.
func (p *TreeSitterProvider) Reparse(r rope.Rope) (uint64, error) {
	p.mu.Lock()
	language := p.language
	tree := p.tree
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	if language == nil {
		return p.version.Load(), nil
	}

	for _, edit := range pending {
		if tree != nil {
			tree.Edit(edit)
		}
	}

	content := []byte(r.String())
	newTree, err := p.parser.ParseCtx(context.Background(), tree, content)
	if err != nil {
		return p.version.Load(), fmt.Errorf("syntax: parse: %w", err)
	}

	p.mu.Lock()
	p.tree = newTree
	p.mu.Unlock()

	return p.version.Add(1), nil
}

// TreeVersion returns the version of the most recently installed tree.
func (p *TreeSitterProvider) TreeVersion() uint64 {
	return p.version.Load()
}

// IsAvailable reports whether a query and language are both configured.
func (p *TreeSitterProvider) IsAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.language != nil && p.query != nil
}

// Close releases the parser, the cached tree, and the compiled query.
func (p *TreeSitterProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tree != nil {
		p.tree.Close()
		p.tree = nil
	}
	if p.query != nil {
		p.query.Close()
		p.query = nil
	}
	if p.parser != nil {
		p.parser.Close()
	}
}

// capture is an intermediate (byte range, category) pair before it is split
// across lines.
type capture struct {
	start, end int
	category   string
}

// HighlightRange returns per-line highlight segments for
// [startLine, endLine). It falls back to an unstyled single segment per
// line whenever there is no usable tree: no query/language configured, no
// tree produced yet, or the cached tree is stale relative to r (its end
// byte exceeds r's length, meaning an edit was recorded but not yet
// reparsed).
func (p *TreeSitterProvider) HighlightRange(r rope.Rope, startLine, endLine uint32) []LineSegments {
	p.mu.Lock()
	tree := p.tree
	query := p.query
	p.mu.Unlock()

	if tree == nil || query == nil {
		return plainTextSegments(r, startLine, endLine)
	}
	root := tree.RootNode()
	if rope.ByteOffset(root.EndByte()) > r.Len() {
		return plainTextSegments(r, startLine, endLine)
	}

	if endLine == 0 {
		return nil
	}
	startByte := int(r.LineStartOffset(startLine))
	queryEnd := startByte + maxBytesToQuery
	endByte := int(r.LineEndOffset(endLine - 1))
	if endByte < queryEnd {
		queryEnd = endByte
	}
	if queryEnd <= startByte {
		return plainTextSegments(r, startLine, endLine)
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.SetByteRange(uint32(startByte), uint32(queryEnd))
	qc.Exec(query, root)

	var captures []capture
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			name := query.CaptureNameForId(c.Index)
			category, _, _ := splitCategory(name)
			captures = append(captures, capture{
				start:    int(c.Node.StartByte()),
				end:      int(c.Node.EndByte()),
				category: category,
			})
		}
	}
	sort.Slice(captures, func(i, j int) bool { return captures[i].start < captures[j].start })

	return capturesToLines(r, startLine, endLine, captures)
}

// splitCategory extracts the top-level highlight category from a dotted
// tree-sitter capture name, e.g. "function.builtin" -> "function".
func splitCategory(name string) (category, rest string, hasRest bool) {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i], name[i+1:], true
		}
	}
	return name, "", false
}

func plainTextSegments(r rope.Rope, startLine, endLine uint32) []LineSegments {
	out := make([]LineSegments, 0, endLine-startLine)
	for line := startLine; line < endLine && line < r.LineCount(); line++ {
		text := r.LineText(line)
		out = append(out, LineSegments{
			Line: line,
			Segments: []LineSegment{{
				StartCol: 0,
				EndCol:   len([]rune(text)),
				Category: "",
			}},
		})
	}
	return out
}

// capturesToLines converts byte-range captures (sorted by start) into
// per-line column segments, filling uncaptured gaps with the empty
// ("plain") category so every column in range is covered exactly once.
func capturesToLines(r rope.Rope, startLine, endLine uint32, captures []capture) []LineSegments {
	out := make([]LineSegments, 0, endLine-startLine)
	for line := startLine; line < endLine && line < r.LineCount(); line++ {
		lineStart := int(r.LineStartOffset(line))
		lineEnd := int(r.LineEndOffset(line))
		lineText := r.LineText(line)
		lineLen := len([]rune(lineText))

		segs := make([]LineSegment, 0, 4)
		cursor := 0
		for _, c := range captures {
			if c.end <= lineStart || c.start >= lineEnd {
				continue
			}
			segStart := byteToRuneCol(lineText, clampNonNeg(c.start-lineStart))
			segEnd := byteToRuneCol(lineText, clampMax(c.end-lineStart, lineEnd-lineStart))
			if segStart > cursor {
				segs = append(segs, LineSegment{StartCol: cursor, EndCol: segStart, Category: ""})
			}
			if segEnd > segStart {
				segs = append(segs, LineSegment{StartCol: segStart, EndCol: segEnd, Category: c.category})
				cursor = segEnd
			}
		}
		if cursor < lineLen {
			segs = append(segs, LineSegment{StartCol: cursor, EndCol: lineLen, Category: ""})
		}
		if len(segs) == 0 {
			segs = append(segs, LineSegment{StartCol: 0, EndCol: lineLen, Category: ""})
		}
		out = append(out, LineSegments{Line: line, Segments: segs})
	}
	return out
}

func byteToRuneCol(s string, byteOff int) int {
	if byteOff <= 0 {
		return 0
	}
	if byteOff >= len(s) {
		return len([]rune(s))
	}
	return len([]rune(s[:byteOff]))
}

func clampNonNeg(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampMax(v, max int) int {
	if v > max {
		return max
	}
	return v
}

var _ Provider = (*TreeSitterProvider)(nil)
