package editor

import (
	"github.com/dshills/keystorm/internal/engine"
	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/lsp"
)

// lspClient returns the client for this document's language, nil when
// LSP is unattached or no server handles the file.
func (ed *Editor) lspClient() *lsp.Client {
	if ed.lspMgr == nil || ed.path == "" {
		return nil
	}
	client, err := ed.lspMgr.ClientForPath(ed.path)
	if err != nil {
		return nil
	}
	return client
}

// lspPosition converts a byte offset to a UTF-16 protocol position.
func (ed *Editor) lspPosition(off engine.ByteOffset) lsp.Position {
	p := ed.eng.OffsetToPointUTF16(off)
	return lsp.Position{Line: int(p.Line), Character: int(p.Column)}
}

// offsetForLSPPosition converts a protocol position back to a byte
// offset.
func (ed *Editor) offsetForLSPPosition(pos lsp.Position) engine.ByteOffset {
	return ed.eng.PointUTF16ToOffset(engine.PointUTF16{
		Line:   uint32(pos.Line),
		Column: uint32(pos.Character),
	})
}

// requestCompletion records the trigger position and asks the server
// for completions. Word completions are mined immediately so the popup
// has fallback content when the reply is slow or empty.
func (ed *Editor) requestCompletion() {
	client := ed.lspClient()
	if client == nil {
		return
	}
	cursor := ed.eng.PrimaryCursor()
	wordStart, _, ok := wordRangeAt(ed.eng, cursor)
	if !ok {
		wordStart = cursor
	}
	ed.Completion.StartCharIndex = int(ed.eng.Rope().ByteToChar(rope.ByteOffset(wordStart)))
	ed.Completion.UpdateWordCompletions(ed.eng.Text(), int(cursor))
	client.Completion(lsp.FilePathToURI(ed.path), ed.lspPosition(cursor))
}

// requestDefinition asks for the definition of the symbol at the
// cursor.
func (ed *Editor) requestDefinition() {
	if client := ed.lspClient(); client != nil {
		client.GotoDefinition(lsp.FilePathToURI(ed.path), ed.lspPosition(ed.eng.PrimaryCursor()))
	}
}

// RequestHover asks for hover info at the cursor.
func (ed *Editor) RequestHover() {
	client := ed.lspClient()
	if client == nil {
		return
	}
	cursor := ed.eng.PrimaryCursor()
	ed.Hover.RequestedAt = int(cursor)
	client.Hover(lsp.FilePathToURI(ed.path), ed.lspPosition(cursor))
}

// RequestReferences asks for all references to the symbol at the
// cursor.
func (ed *Editor) RequestReferences() {
	if client := ed.lspClient(); client != nil {
		client.References(lsp.FilePathToURI(ed.path), ed.lspPosition(ed.eng.PrimaryCursor()))
	}
}

// RequestFormat asks for whole-document formatting.
func (ed *Editor) RequestFormat() {
	if client := ed.lspClient(); client != nil {
		client.Format(lsp.FilePathToURI(ed.path), lsp.FormattingOptions{
			TabSize:      ed.tabWidth,
			InsertSpaces: ed.insertSpaces,
		})
	}
}

// RequestInlayHints asks for inlay hints over a line range unless the
// cache already covers it.
func (ed *Editor) RequestInlayHints(startLine, endLine uint32) {
	client := ed.lspClient()
	if client == nil {
		return
	}
	rng := lsp.Range{
		Start: lsp.Position{Line: int(startLine)},
		End:   lsp.Position{Line: int(endLine) + 1},
	}
	if ed.InlayHints.IsRangeCached(rng) {
		return
	}
	ed.pendingInlayRange = &rng
	client.InlayHint(lsp.FilePathToURI(ed.path), rng)
}

// RequestDocumentHighlights asks for occurrence highlights at the
// cursor, called when the debounce fires.
func (ed *Editor) RequestDocumentHighlights() {
	if client := ed.lspClient(); client != nil {
		client.DocumentHighlight(lsp.FilePathToURI(ed.path), ed.lspPosition(ed.eng.PrimaryCursor()))
	}
}

// startRename begins the rename flow with a prepareRename request.
func (ed *Editor) startRename() {
	client := ed.lspClient()
	if client == nil {
		return
	}
	pos := ed.lspPosition(ed.eng.PrimaryCursor())
	ed.Rename.StartPrepare(pos)
	client.PrepareRename(lsp.FilePathToURI(ed.path), pos)
}

// SubmitRename sends the typed name; the reply's workspace edit is
// applied by HandleLSPResponse.
func (ed *Editor) SubmitRename() {
	client := ed.lspClient()
	if client == nil || !ed.Rename.CanSubmit() || ed.Rename.Position == nil {
		return
	}
	client.Rename(lsp.FilePathToURI(ed.path), *ed.Rename.Position, ed.Rename.NewName)
	ed.Rename.Visible = false
}

// AcceptCompletion inserts the selected completion item, replacing the
// filter text typed since the trigger.
func (ed *Editor) AcceptCompletion() {
	item, ok := ed.Completion.Selected()
	if !ok {
		ed.Completion.Reset()
		return
	}
	start := engine.ByteOffset(ed.eng.Rope().CharToByte(rope.CharOffset(ed.Completion.StartCharIndex)))
	cursor := ed.eng.PrimaryCursor()
	if start > cursor {
		start = cursor
	}
	if _, err := ed.eng.Replace(start, cursor, item.Insert()); err == nil {
		ed.afterEdit()
	}
	ed.Completion.Reset()
}

// updateCompletionFilter refreshes the filter from the text between the
// trigger position and the cursor.
func (ed *Editor) updateCompletionFilter() {
	if !ed.Completion.Visible {
		return
	}
	start := engine.ByteOffset(ed.eng.Rope().CharToByte(rope.CharOffset(ed.Completion.StartCharIndex)))
	cursor := ed.eng.PrimaryCursor()
	if cursor < start {
		ed.Completion.Reset()
		return
	}
	ed.Completion.Filter = ed.eng.TextRange(start, cursor)
	ed.Completion.SelectedIndex = 0
	ed.Completion.EnsureSelectedVisible(lsp.CompletionMaxVisible)
}

// HandleLSPResponse routes one decoded server message into the popup
// models, the document, or an outbound event.
func (ed *Editor) HandleLSPResponse(resp lsp.Response) {
	switch resp.Type {
	case lsp.ResponseCompletion:
		ed.Completion.Open(resp.Items, resp.IsIncomplete, ed.Completion.StartCharIndex)
		ed.updateCompletionFilter()
		ed.Completion.Visible = true

	case lsp.ResponseHover:
		if int(ed.eng.PrimaryCursor()) != ed.Hover.RequestedAt {
			return
		}
		ed.Hover.Content = resp.HoverText
		ed.Hover.Range = resp.HoverRange
		ed.Hover.Visible = resp.HoverText != ""

	case lsp.ResponseDefinition:
		ed.navigate(resp.Locations, "definition")

	case lsp.ResponseReferences:
		ed.navigate(resp.Locations, "references")

	case lsp.ResponseFormat:
		ed.ApplyTextEdits(resp.Edits)

	case lsp.ResponseSignatureHelp:
		ed.Signature.Set(resp.Signatures, resp.ActiveSignature, resp.ActiveParameter)

	case lsp.ResponseCodeActions:
		ed.CodeActions.Actions = resp.Actions
		ed.CodeActions.SelectedIndex = 0
		ed.CodeActions.Visible = len(resp.Actions) > 0

	case lsp.ResponseInlayHints:
		if ed.pendingInlayRange != nil {
			ed.InlayHints.Set(resp.Hints, *ed.pendingInlayRange)
			ed.pendingInlayRange = nil
		}

	case lsp.ResponseDocumentHighlights:
		ed.DocHighlight.Set(resp.Highlights)

	case lsp.ResponsePrepareRename:
		placeholder := resp.Placeholder
		if placeholder == "" {
			start := ed.offsetForLSPPosition(resp.RenameRange.Start)
			end := ed.offsetForLSPPosition(resp.RenameRange.End)
			placeholder = ed.eng.TextRange(start, end)
		}
		ed.Rename.OnPrepareResponse(resp.RenameRange, placeholder)

	case lsp.ResponseRename:
		ed.applyWorkspaceEdit(resp.WorkspaceEdit)
		ed.Rename.Reset()
	}
}

// navigate turns definition/references results into cursor movement or
// host events.
func (ed *Editor) navigate(locations []lsp.Location, kind string) {
	if len(locations) == 0 {
		return
	}
	selfURI := lsp.FilePathToURI(ed.path)
	if len(locations) == 1 {
		loc := locations[0]
		if loc.URI == selfURI {
			off := ed.offsetForLSPPosition(loc.Range.Start)
			ed.eng.SetPrimarySelection(engine.Selection{Anchor: off, Head: off})
			ed.afterMove()
			return
		}
		ed.events.Emit(NavigateToFileEvent{
			URI:       string(loc.URI),
			Line:      loc.Range.Start.Line,
			Character: loc.Range.Start.Character,
		})
		return
	}
	refs := make([]LocationRef, len(locations))
	for i, loc := range locations {
		refs[i] = LocationRef{
			URI:       string(loc.URI),
			Line:      loc.Range.Start.Line,
			Character: loc.Range.Start.Character,
		}
	}
	ed.events.Emit(MultipleLocationsEvent{Kind: kind, Locations: refs})
}

// ApplyTextEdits applies protocol edits to this document, last first so
// earlier positions stay valid, as one undo transaction. Each edit
// reaches the parse engine through the buffer's edit events.
func (ed *Editor) ApplyTextEdits(edits []lsp.TextEdit) {
	if len(edits) == 0 {
		return
	}
	sorted := make([]lsp.TextEdit, len(edits))
	copy(sorted, edits)
	lsp.SortTextEditsDescending(sorted)

	ed.eng.BeginUndoGroup("apply edits")
	for _, edit := range sorted {
		start := ed.offsetForLSPPosition(edit.Range.Start)
		end := ed.offsetForLSPPosition(edit.Range.End)
		if end < start {
			start, end = end, start
		}
		ed.eng.Replace(start, end, edit.NewText)
	}
	ed.eng.EndUndoGroup()
	ed.afterEdit()
}

// applyWorkspaceEdit applies the current document's portion of a
// workspace edit and surfaces the rest as an event.
func (ed *Editor) applyWorkspaceEdit(we lsp.WorkspaceEdit) {
	selfURI := lsp.FilePathToURI(ed.path)
	if edits := we.EditsFor(selfURI); len(edits) > 0 {
		ed.ApplyTextEdits(edits)
	}
	var others []string
	for _, uri := range we.URIs() {
		if uri != selfURI {
			others = append(others, string(uri))
		}
	}
	if len(others) > 0 {
		ed.events.Emit(WorkspaceEditEvent{URIs: others})
	}
}
