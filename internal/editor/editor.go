package editor

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dshills/keystorm/internal/displaymap"
	"github.com/dshills/keystorm/internal/engine"
	"github.com/dshills/keystorm/internal/engine/history"
	"github.com/dshills/keystorm/internal/lsp"
	"github.com/dshills/keystorm/internal/syntax"
)

// Viewport is the renderer-reported window the editor scrolls within.
type Viewport struct {
	FirstDisplayRow uint32
	Rows            int
	Cols            int
}

// Editor is the per-document facade. It owns the engine, the display
// map, the fold and find state, and the LSP popup models, and routes
// actions into them.
type Editor struct {
	eng     *engine.Engine
	display *displaymap.Map
	syn     *syntax.Document
	lspMgr  *lsp.Manager
	path    string

	events    *EventHub
	clipboard Clipboard
	folds     *foldState

	Find FindState

	Completion   lsp.CompletionState
	Hover        lsp.HoverState
	Signature    lsp.SignatureHelpState
	CodeActions  lsp.CodeActionState
	InlayHints   lsp.InlayHintState
	DocHighlight lsp.DocumentHighlightState
	Rename       lsp.RenameState

	Viewport Viewport

	tabWidth     int
	insertSpaces bool

	// pendingInlayRange is the range of the last inlay request, so the
	// reply caches against it.
	pendingInlayRange *lsp.Range

	unsubscribe func()
}

// Option configures an Editor.
type Option func(*Editor)

// WithSyntax attaches the incremental parse/highlight engine.
func WithSyntax(doc *syntax.Document) Option {
	return func(ed *Editor) { ed.syn = doc }
}

// WithLSP attaches the LSP manager and this document's path.
func WithLSP(mgr *lsp.Manager, path string) Option {
	return func(ed *Editor) {
		ed.lspMgr = mgr
		ed.path = path
	}
}

// WithClipboard overrides the in-process clipboard.
func WithClipboard(c Clipboard) Option {
	return func(ed *Editor) {
		if c != nil {
			ed.clipboard = c
		}
	}
}

// WithEvents shares an event hub with the host.
func WithEvents(hub *EventHub) Option {
	return func(ed *Editor) {
		if hub != nil {
			ed.events = hub
		}
	}
}

// WithTabSettings sets insertion behavior for the Tab action.
func WithTabSettings(tabWidth int, insertSpaces bool) Option {
	return func(ed *Editor) {
		if tabWidth > 0 {
			ed.tabWidth = tabWidth
		}
		ed.insertSpaces = insertSpaces
	}
}

// New creates an editor over an engine and display map.
func New(eng *engine.Engine, display *displaymap.Map, opts ...Option) *Editor {
	ed := &Editor{
		eng:       eng,
		display:   display,
		events:    NewEventHub(),
		clipboard: &MemoryClipboard{},
		folds:     newFoldState(),
		tabWidth:  4,
		Viewport:  Viewport{Rows: 40, Cols: 120},
	}
	for _, opt := range opts {
		opt(ed)
	}
	ed.unsubscribe = eng.SubscribeEdits(func(ev engine.TextEditEvent) {
		ed.events.Emit(TextEditEvent{
			StartByte:      uint64(ev.StartByte),
			OldEndByte:     uint64(ev.OldEndByte),
			NewEndByte:     uint64(ev.NewEndByte),
			ContentVersion: ev.ContentVersion,
		})
	})
	ed.refreshDisplay()
	return ed
}

// Close releases the editor's subscriptions and the syntax worker.
func (ed *Editor) Close() {
	if ed.unsubscribe != nil {
		ed.unsubscribe()
	}
	if ed.syn != nil {
		ed.syn.Close()
	}
}

// Engine exposes the text engine for hosts and tests.
func (ed *Editor) Engine() *engine.Engine { return ed.eng }

// Display exposes the display map.
func (ed *Editor) Display() *displaymap.Map { return ed.display }

// Events exposes the event hub.
func (ed *Editor) Events() *EventHub { return ed.events }

// Path returns the document path, empty for scratch buffers.
func (ed *Editor) Path() string { return ed.path }

// Apply routes one action. Unknown actions are no-ops.
func (ed *Editor) Apply(input Input) {
	switch input.Action {
	case ActionInsertChar:
		ed.InsertText(input.Text)
	case ActionInsertNewline:
		ed.InsertText("\n")
	case ActionInsertTab:
		if ed.insertSpaces {
			ed.InsertText(strings.Repeat(" ", ed.tabWidth))
		} else {
			ed.InsertText("\t")
		}
	case ActionDeleteBackward:
		ed.execEdit(history.NewDeleteCommand(history.DeleteBackward), true)
	case ActionDeleteForward:
		ed.execEdit(history.NewDeleteCommand(history.DeleteForward), true)
	case ActionDeleteWordBackward:
		ed.deleteByMotion(wordLeft, true)
	case ActionDeleteWordForward:
		ed.deleteByMotion(wordRight, false)
	case ActionDeleteLine:
		ed.deleteLines()

	case ActionMoveLeft:
		ed.moveAll(moveLeft, false)
	case ActionMoveRight:
		ed.moveAll(moveRight, false)
	case ActionMoveUp:
		ed.moveVertical(-1, false)
	case ActionMoveDown:
		ed.moveVertical(1, false)
	case ActionMoveWordLeft:
		ed.moveAll(wordLeft, false)
	case ActionMoveWordRight:
		ed.moveAll(wordRight, false)
	case ActionMoveLineStart:
		ed.moveAll(lineStartOffset, false)
	case ActionMoveLineEnd:
		ed.moveAll(lineEndOffset, false)
	case ActionMoveDocumentStart:
		ed.eng.SetPrimarySelection(engine.Selection{Anchor: 0, Head: 0})
	case ActionMoveDocumentEnd:
		end := ed.eng.Len()
		ed.eng.SetPrimarySelection(engine.Selection{Anchor: end, Head: end})
	case ActionMovePageUp:
		ed.moveVertical(-ed.pageRows(), false)
	case ActionMovePageDown:
		ed.moveVertical(ed.pageRows(), false)

	case ActionSelectLeft:
		ed.moveAll(moveLeft, true)
	case ActionSelectRight:
		ed.moveAll(moveRight, true)
	case ActionSelectUp:
		ed.moveVertical(-1, true)
	case ActionSelectDown:
		ed.moveVertical(1, true)
	case ActionSelectWordLeft:
		ed.moveAll(wordLeft, true)
	case ActionSelectWordRight:
		ed.moveAll(wordRight, true)
	case ActionSelectLineStart:
		ed.moveAll(lineStartOffset, true)
	case ActionSelectLineEnd:
		ed.moveAll(lineEndOffset, true)
	case ActionSelectAll:
		ed.eng.SetPrimarySelection(engine.Selection{Anchor: 0, Head: ed.eng.Len()})
	case ActionClearSelection:
		cs := ed.eng.Cursors()
		cs.CollapseAll()
		ed.eng.SetCursors(cs)

	case ActionCopy:
		ed.copySelection()
	case ActionCut:
		ed.cutSelection()
	case ActionPaste:
		ed.paste()

	case ActionUndo:
		if err := ed.eng.Undo(); err == nil {
			ed.afterEdit()
		}
	case ActionRedo:
		if err := ed.eng.Redo(); err == nil {
			ed.afterEdit()
		}

	case ActionScrollUp:
		ed.scrollBy(-1)
	case ActionScrollDown:
		ed.scrollBy(1)
	case ActionScrollPageUp:
		ed.scrollBy(-ed.pageRows())
	case ActionScrollPageDown:
		ed.scrollBy(ed.pageRows())

	case ActionFind:
		ed.startFind(input.Query)
	case ActionFindNext:
		if m, ok := ed.Find.Next(); ok {
			ed.selectMatch(m)
		}
	case ActionFindPrevious:
		if m, ok := ed.Find.Previous(); ok {
			ed.selectMatch(m)
		}
	case ActionReplace:
		ed.replaceCurrent(input.Text)
	case ActionGotoLine:
		ed.gotoLine(input.Line)

	case ActionRequestCompletion:
		ed.requestCompletion()
	case ActionGotoDefinition:
		ed.requestDefinition()
	case ActionRenameSymbol:
		ed.startRename()

	case ActionAddCursorAtNextOccurrence:
		ed.AddCursorAtNextOccurrence()
	case ActionAddCursorAbove:
		ed.addCursorVertical(-1)
	case ActionAddCursorBelow:
		ed.addCursorVertical(1)
	case ActionClearSecondaryCursors:
		ed.eng.ClearSecondary()

	case ActionToggleFold:
		ed.folds.toggle(ed.primaryLine())
		ed.refreshDisplay()
	case ActionFold:
		ed.folds.fold(ed.primaryLine())
		ed.refreshDisplay()
	case ActionUnfold:
		ed.folds.unfold(ed.primaryLine())
		ed.refreshDisplay()
	case ActionFoldAll:
		ed.folds.foldAll()
		ed.refreshDisplay()
	case ActionUnfoldAll:
		ed.folds.unfoldAll()
		ed.refreshDisplay()

	case ActionSave:
		ed.events.Emit(SaveRequestedEvent{Path: ed.path, Content: ed.eng.Text()})
	case ActionOpen:
		ed.events.Emit(OpenRequestedEvent{})
	}
}

// InsertText inserts at every cursor, coalescing with adjacent typing
// per the history's grouping rules.
func (ed *Editor) InsertText(text string) {
	if text == "" {
		return
	}
	ed.execEdit(history.NewInsertCommand(text), true)
	ed.updateCompletionFilter()
}

// execEdit runs an edit command and refreshes the dependent state.
func (ed *Editor) execEdit(cmd engine.Command, coalesce bool) {
	var err error
	if coalesce {
		err = ed.eng.ExecuteCoalescing(cmd)
	} else {
		err = ed.eng.Execute(cmd)
	}
	if err != nil {
		return
	}
	ed.afterEdit()
}

// afterEdit refreshes everything derived from the buffer after any
// mutation: fold regions, the display map, the syntax worker's deferred
// edits, and the LSP dirty flag.
func (ed *Editor) afterEdit() {
	ed.refreshDisplay()
	if ed.syn != nil {
		ed.syn.NotifyChanges()
	}
	if ed.lspMgr != nil && ed.path != "" {
		ed.lspMgr.MarkDirty(ed.path, time.Now())
	}
	ed.InlayHints.Invalidate()
	ed.DocHighlight.Clear()
}

// refreshDisplay recomputes fold regions and rebuilds the display map.
func (ed *Editor) refreshDisplay() {
	lineCount := ed.eng.LineCount()
	ed.folds.update(lineCount, ed.eng.LineText)
	ed.display.Update(lineCount, ed.folds.activeRegions(), ed.eng.LineText)
}

// moveAll applies a motion to every cursor; with extend the anchors
// stay put.
func (ed *Editor) moveAll(motion func(*engine.Engine, engine.ByteOffset) engine.ByteOffset, extend bool) {
	ed.eng.Cursors().MapInPlace(func(sel engine.Selection) engine.Selection {
		head := motion(ed.eng, sel.Head)
		if extend {
			return engine.Selection{Anchor: sel.Anchor, Head: head}
		}
		return engine.Selection{Anchor: head, Head: head}
	})
	ed.afterMove()
}

// moveVertical moves every cursor by rows display rows, through the
// fold/wrap pipeline so folded lines are skipped and wrapped lines
// step visually.
func (ed *Editor) moveVertical(rows int, extend bool) {
	snap := ed.display.Snapshot()
	ed.eng.Cursors().MapInPlace(func(sel engine.Selection) engine.Selection {
		dp := snap.ToDisplayPoint(ed.bufferPoint(sel.Head))
		row := int(dp.Row) + rows
		if row < 0 {
			row = 0
		}
		if maxRow := int(snap.DisplayRowCount()) - 1; maxRow >= 0 && row > maxRow {
			row = maxRow
		}
		bp := snap.ToBufferPoint(displaymap.DisplayPoint{Row: uint32(row), Col: dp.Col})
		head := ed.offsetForBufferPoint(bp)
		if extend {
			return engine.Selection{Anchor: sel.Anchor, Head: head}
		}
		return engine.Selection{Anchor: head, Head: head}
	})
	ed.afterMove()
}

// afterMove reacts to cursor movement: the hover and signature popups
// close, and the document-highlight debounce re-arms.
func (ed *Editor) afterMove() {
	ed.Hover.Reset()
	ed.Signature.Reset()
	if ed.Completion.Visible {
		ed.Completion.Reset()
	}
	ed.DocHighlight.Arm(int(ed.eng.PrimaryCursor()), time.Now(), 150*time.Millisecond)
}

// pageRows returns the vertical page step.
func (ed *Editor) pageRows() int {
	if ed.Viewport.Rows > 1 {
		return ed.Viewport.Rows - 1
	}
	return 20
}

// scrollBy moves the viewport without touching cursors.
func (ed *Editor) scrollBy(rows int) {
	row := int(ed.Viewport.FirstDisplayRow) + rows
	if row < 0 {
		row = 0
	}
	snap := ed.display.Snapshot()
	if maxRow := int(snap.DisplayRowCount()) - 1; maxRow >= 0 && row > maxRow {
		row = maxRow
	}
	ed.Viewport.FirstDisplayRow = uint32(row)
}

// primaryLine returns the primary cursor's buffer line.
func (ed *Editor) primaryLine() uint32 {
	return ed.eng.OffsetToPoint(ed.eng.PrimaryCursor()).Line
}

// bufferPoint converts a byte offset to a display-pipeline buffer point
// (row, char column).
func (ed *Editor) bufferPoint(off engine.ByteOffset) displaymap.BufferPoint {
	p := ed.eng.OffsetToPoint(off)
	line := ed.eng.LineText(p.Line)
	byteCol := int(p.Column)
	if byteCol > len(line) {
		byteCol = len(line)
	}
	return displaymap.BufferPoint{
		Row: p.Line,
		Col: uint32(utf8.RuneCountInString(line[:byteCol])),
	}
}

// offsetForBufferPoint converts a display-pipeline buffer point back to
// a byte offset, clamping the column to the line.
func (ed *Editor) offsetForBufferPoint(bp displaymap.BufferPoint) engine.ByteOffset {
	line := ed.eng.LineText(bp.Row)
	byteCol := 0
	for chars := uint32(0); chars < bp.Col && byteCol < len(line); chars++ {
		_, size := utf8.DecodeRuneInString(line[byteCol:])
		byteCol += size
	}
	return ed.eng.PointToOffset(engine.Point{Line: bp.Row, Column: uint32(byteCol)})
}

// deleteByMotion deletes from each cursor to its motion target.
// backward motions produce [target, cursor) ranges, forward ones
// [cursor, target).
func (ed *Editor) deleteByMotion(motion func(*engine.Engine, engine.ByteOffset) engine.ByteOffset, backward bool) {
	sels := ed.eng.Cursors().All()
	edits := make([]engine.Edit, 0, len(sels))
	for i := len(sels) - 1; i >= 0; i-- {
		sel := sels[i]
		var start, end engine.ByteOffset
		if !sel.IsEmpty() {
			start, end = sel.Start(), sel.End()
		} else if backward {
			start, end = motion(ed.eng, sel.Head), sel.Head
		} else {
			start, end = sel.Head, motion(ed.eng, sel.Head)
		}
		if start < end {
			edits = append(edits, engine.Edit{Range: engine.Range{Start: start, End: end}})
		}
	}
	if len(edits) == 0 {
		return
	}
	if err := ed.eng.ApplyEdits(edits); err != nil {
		return
	}
	ed.afterEdit()
}

// deleteLines removes the whole line under every cursor.
func (ed *Editor) deleteLines() {
	lineCount := ed.eng.LineCount()
	seen := make(map[uint32]bool)
	var lines []uint32
	for _, sel := range ed.eng.Cursors().All() {
		line := ed.eng.OffsetToPoint(sel.Head).Line
		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}
	// Highest line first so earlier offsets stay valid.
	for i := 0; i < len(lines); i++ {
		for j := i + 1; j < len(lines); j++ {
			if lines[j] > lines[i] {
				lines[i], lines[j] = lines[j], lines[i]
			}
		}
	}
	edits := make([]engine.Edit, 0, len(lines))
	for _, line := range lines {
		start := ed.eng.LineStartOffset(line)
		var end engine.ByteOffset
		if line+1 < lineCount {
			end = ed.eng.LineStartOffset(line + 1)
		} else {
			end = ed.eng.Len()
			// The last line has no trailing newline; eat the previous
			// one so the line disappears entirely.
			if start > 0 {
				start--
			}
		}
		if start < end {
			edits = append(edits, engine.Edit{Range: engine.Range{Start: start, End: end}})
		}
	}
	if len(edits) == 0 {
		return
	}
	if err := ed.eng.ApplyEdits(edits); err != nil {
		return
	}
	ed.afterEdit()
}

// selectedText joins every selection's text with newlines.
func (ed *Editor) selectedText() string {
	var parts []string
	for _, sel := range ed.eng.Cursors().All() {
		if !sel.IsEmpty() {
			parts = append(parts, ed.eng.TextRange(sel.Start(), sel.End()))
		}
	}
	return strings.Join(parts, "\n")
}

func (ed *Editor) copySelection() {
	if text := ed.selectedText(); text != "" {
		ed.clipboard.SetText(text)
	}
}

func (ed *Editor) cutSelection() {
	text := ed.selectedText()
	if text == "" {
		return
	}
	ed.clipboard.SetText(text)
	ed.execEdit(history.NewDeleteCommand(history.DeleteBackward), false)
}

func (ed *Editor) paste() {
	text, err := ed.clipboard.GetText()
	if err != nil || text == "" {
		return
	}
	ed.execEdit(history.NewPasteCommand(text), true)
}

// startFind opens the search with a query and selects the first match
// at or after the cursor.
func (ed *Editor) startFind(query string) {
	ed.Find.Active = true
	if query != "" {
		ed.Find.Query = query
	}
	ed.Find.Search(ed.eng, ed.eng.PrimaryCursor())
	if m, ok := ed.Find.CurrentMatch(); ok {
		ed.selectMatch(m)
	}
}

// selectMatch selects a match with the cursor at its end.
func (ed *Editor) selectMatch(m Match) {
	ed.eng.SetPrimarySelection(engine.Selection{Anchor: m.Start, Head: m.End})
}

// replaceCurrent replaces the selected match and re-searches.
func (ed *Editor) replaceCurrent(replacement string) {
	m, ok := ed.Find.CurrentMatch()
	if !ok {
		return
	}
	if _, err := ed.eng.Replace(m.Start, m.End, replacement); err != nil {
		return
	}
	ed.afterEdit()
	ed.Find.Search(ed.eng, m.Start+engine.ByteOffset(len(replacement)))
	if next, ok := ed.Find.CurrentMatch(); ok {
		ed.selectMatch(next)
	}
}

// gotoLine jumps the primary cursor to a 1-based line.
func (ed *Editor) gotoLine(line int) {
	if line < 1 {
		line = 1
	}
	target := uint32(line - 1)
	if max := ed.eng.LineCount(); max > 0 && target >= max {
		target = max - 1
	}
	off := ed.eng.LineStartOffset(target)
	ed.eng.SetPrimarySelection(engine.Selection{Anchor: off, Head: off})
	ed.afterMove()
}

// addCursorVertical adds a cursor one display row above or below the
// primary.
func (ed *Editor) addCursorVertical(rows int) {
	snap := ed.display.Snapshot()
	primary := ed.eng.Cursors().Primary()
	dp := snap.ToDisplayPoint(ed.bufferPoint(primary.Head))
	row := int(dp.Row) + rows
	if row < 0 || row >= int(snap.DisplayRowCount()) {
		return
	}
	bp := snap.ToBufferPoint(displaymap.DisplayPoint{Row: uint32(row), Col: dp.Col})
	ed.eng.AddCursor(ed.offsetForBufferPoint(bp))
}

// AddCursorAtNextOccurrence implements select-next-occurrence: with no
// selection it selects the word at the cursor; otherwise it searches
// forward from the furthest selection end (wrapping) and adds a
// selection over the next occurrence of the primary's text, unless that
// occurrence is already covered.
func (ed *Editor) AddCursorAtNextOccurrence() {
	cursors := ed.eng.Cursors()
	primary := cursors.Primary()

	if primary.IsEmpty() {
		start, end, ok := wordRangeAt(ed.eng, primary.Head)
		if !ok {
			return
		}
		cursors.SetPrimary(engine.Selection{Anchor: start, Head: end})
		return
	}

	needle := ed.eng.TextRange(primary.Start(), primary.End())
	if needle == "" {
		return
	}
	text := ed.eng.Text()

	var searchFrom engine.ByteOffset
	for _, sel := range cursors.All() {
		if sel.End() > searchFrom {
			searchFrom = sel.End()
		}
	}

	idx := strings.Index(text[searchFrom:], needle)
	var start engine.ByteOffset
	if idx >= 0 {
		start = searchFrom + engine.ByteOffset(idx)
	} else {
		// Wrap to the document start.
		idx = strings.Index(text, needle)
		if idx < 0 {
			return
		}
		start = engine.ByteOffset(idx)
	}
	end := start + engine.ByteOffset(len(needle))

	for _, sel := range cursors.All() {
		if sel.Start() <= start && end <= sel.End() {
			return
		}
	}
	ed.eng.AddSelection(engine.Selection{Anchor: start, Head: end})
}
