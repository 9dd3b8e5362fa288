package lsp

import (
	"encoding/json"
	"strings"
)

// DocumentURI is a document identifier (file:// URI).
type DocumentURI string

// Position is a zero-based line/character position. Character offsets are
// UTF-16 code units, per the protocol default.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a [start, end) span of positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location is a range inside a document.
type Location struct {
	URI   DocumentURI `json:"uri"`
	Range Range       `json:"range"`
}

// LocationLink is the richer definition-result form some servers return.
type LocationLink struct {
	OriginSelectionRange *Range      `json:"originSelectionRange,omitempty"`
	TargetURI            DocumentURI `json:"targetUri"`
	TargetRange          Range       `json:"targetRange"`
	TargetSelectionRange Range       `json:"targetSelectionRange"`
}

// TextDocumentIdentifier names a document by URI.
type TextDocumentIdentifier struct {
	URI DocumentURI `json:"uri"`
}

// VersionedTextDocumentIdentifier adds the client's version counter.
type VersionedTextDocumentIdentifier struct {
	URI     DocumentURI `json:"uri"`
	Version int         `json:"version"`
}

// TextDocumentItem describes a document being opened.
type TextDocumentItem struct {
	URI        DocumentURI `json:"uri"`
	LanguageID string      `json:"languageId"`
	Version    int         `json:"version"`
	Text       string      `json:"text"`
}

// TextEdit replaces a range with new text.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// TextDocumentContentChangeEvent carries a document change. With a nil
// Range it replaces the whole document (full sync).
type TextDocumentContentChangeEvent struct {
	Range *Range `json:"range,omitempty"`
	Text  string `json:"text"`
}

// MarkupContent is structured hover/documentation text.
type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// markedString tolerates both the plain-string and {language, value}
// forms of the deprecated MarkedString type.
type markedString struct {
	Language string
	Value    string
}

func (m *markedString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.Value = s
		return nil
	}
	var obj struct {
		Language string `json:"language"`
		Value    string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	m.Language = obj.Language
	m.Value = obj.Value
	return nil
}

// Hover is a hover reply. Contents may arrive as MarkupContent, a single
// MarkedString, or an array of MarkedStrings; Text normalizes all three.
type Hover struct {
	Contents json.RawMessage `json:"contents"`
	Range    *Range          `json:"range,omitempty"`
}

// Text extracts the display text from whichever contents form the server
// chose.
func (h *Hover) Text() string {
	if len(h.Contents) == 0 {
		return ""
	}
	var markup MarkupContent
	if err := json.Unmarshal(h.Contents, &markup); err == nil && markup.Kind != "" {
		return markup.Value
	}
	var scalar markedString
	if err := json.Unmarshal(h.Contents, &scalar); err == nil && scalar.Value != "" {
		return scalar.Value
	}
	var arr []markedString
	if err := json.Unmarshal(h.Contents, &arr); err == nil {
		parts := make([]string, 0, len(arr))
		for _, ms := range arr {
			if ms.Value != "" {
				parts = append(parts, ms.Value)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

// CompletionItem is a single completion suggestion.
type CompletionItem struct {
	Label         string          `json:"label"`
	Kind          int             `json:"kind,omitempty"`
	Detail        string          `json:"detail,omitempty"`
	Documentation json.RawMessage `json:"documentation,omitempty"`
	SortText      string          `json:"sortText,omitempty"`
	FilterText    string          `json:"filterText,omitempty"`
	InsertText    string          `json:"insertText,omitempty"`
	TextEdit      *TextEdit       `json:"textEdit,omitempty"`
	Deprecated    bool            `json:"deprecated,omitempty"`
}

// Insert returns the text to insert when this item is accepted.
func (ci *CompletionItem) Insert() string {
	if ci.TextEdit != nil && ci.TextEdit.NewText != "" {
		return ci.TextEdit.NewText
	}
	if ci.InsertText != "" {
		return ci.InsertText
	}
	return ci.Label
}

// CompletionList is the {isIncomplete, items} completion reply form.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

// decodeCompletionResult accepts both the bare-array and CompletionList
// reply forms.
func decodeCompletionResult(result json.RawMessage) (items []CompletionItem, isIncomplete bool, ok bool) {
	var arr []CompletionItem
	if err := json.Unmarshal(result, &arr); err == nil {
		return arr, false, true
	}
	var list CompletionList
	if err := json.Unmarshal(result, &list); err == nil {
		return list.Items, list.IsIncomplete, true
	}
	return nil, false, false
}

// decodeLocations accepts the Location, []Location, and []LocationLink
// forms a definition reply may take.
func decodeLocations(result json.RawMessage) ([]Location, bool) {
	var one Location
	if err := json.Unmarshal(result, &one); err == nil && one.URI != "" {
		return []Location{one}, true
	}
	var many []Location
	if err := json.Unmarshal(result, &many); err == nil {
		valid := many[:0]
		for _, loc := range many {
			if loc.URI != "" {
				valid = append(valid, loc)
			}
		}
		if len(valid) > 0 {
			return valid, true
		}
	}
	var links []LocationLink
	if err := json.Unmarshal(result, &links); err == nil {
		locs := make([]Location, 0, len(links))
		for _, link := range links {
			if link.TargetURI != "" {
				locs = append(locs, Location{URI: link.TargetURI, Range: link.TargetSelectionRange})
			}
		}
		if len(locs) > 0 {
			return locs, true
		}
	}
	return nil, false
}

// Diagnostic is a published problem report.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity,omitempty"`
	Code     any    `json:"code,omitempty"`
	Source   string `json:"source,omitempty"`
	Message  string `json:"message"`
}

// Diagnostic severities.
const (
	SeverityError       = 1
	SeverityWarning     = 2
	SeverityInformation = 3
	SeverityHint        = 4
)

// PublishDiagnosticsParams is the payload of
// textDocument/publishDiagnostics.
type PublishDiagnosticsParams struct {
	URI         DocumentURI  `json:"uri"`
	Version     *int         `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// ParameterInformation describes one signature parameter.
type ParameterInformation struct {
	Label         json.RawMessage `json:"label"`
	Documentation json.RawMessage `json:"documentation,omitempty"`
}

// SignatureInformation describes one callable signature.
type SignatureInformation struct {
	Label         string                 `json:"label"`
	Documentation json.RawMessage        `json:"documentation,omitempty"`
	Parameters    []ParameterInformation `json:"parameters,omitempty"`
}

// SignatureHelp is the signatureHelp reply.
type SignatureHelp struct {
	Signatures      []SignatureInformation `json:"signatures"`
	ActiveSignature *int                   `json:"activeSignature,omitempty"`
	ActiveParameter *int                   `json:"activeParameter,omitempty"`
}

// Command is a server-defined command reference.
type Command struct {
	Title     string `json:"title"`
	Command   string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

// CodeAction is a quick fix or refactoring offered by the server.
type CodeAction struct {
	Title       string         `json:"title"`
	Kind        string         `json:"kind,omitempty"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
	IsPreferred bool           `json:"isPreferred,omitempty"`
	Edit        *WorkspaceEdit `json:"edit,omitempty"`
	Command     *Command       `json:"command,omitempty"`
}

// CodeActionOrCommand holds one entry of a codeAction reply, which mixes
// bare Commands and CodeAction literals in the same array.
type CodeActionOrCommand struct {
	Action  *CodeAction
	Command *Command
}

func (c *CodeActionOrCommand) UnmarshalJSON(data []byte) error {
	var probe struct {
		Command json.RawMessage `json:"command"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	// A bare Command has a string "command" field; a CodeAction's
	// "command" field, when present, is an object.
	var cmdName string
	if len(probe.Command) > 0 && json.Unmarshal(probe.Command, &cmdName) == nil {
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			return err
		}
		c.Command = &cmd
		return nil
	}
	var action CodeAction
	if err := json.Unmarshal(data, &action); err != nil {
		return err
	}
	c.Action = &action
	return nil
}

// InlayHint is an inline annotation (a parameter name, an inferred type).
type InlayHint struct {
	Position Position        `json:"position"`
	Label    json.RawMessage `json:"label"`
	Kind     int             `json:"kind,omitempty"`
	Tooltip  json.RawMessage `json:"tooltip,omitempty"`
}

// LabelText flattens the string-or-parts label forms.
func (h *InlayHint) LabelText() string {
	var s string
	if err := json.Unmarshal(h.Label, &s); err == nil {
		return s
	}
	var parts []struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(h.Label, &parts); err == nil {
		var b strings.Builder
		for _, p := range parts {
			b.WriteString(p.Value)
		}
		return b.String()
	}
	return ""
}

// DocumentHighlight marks one occurrence of the symbol under the cursor.
type DocumentHighlight struct {
	Range Range `json:"range"`
	Kind  int   `json:"kind,omitempty"`
}

// PrepareRenameResult carries the rename range and optional placeholder.
type PrepareRenameResult struct {
	Range       Range
	Placeholder string
}

// decodePrepareRename accepts the bare-Range and {range, placeholder}
// reply forms. The defaultBehavior form is not supported and decodes as
// not-ok.
func decodePrepareRename(result json.RawMessage) (PrepareRenameResult, bool) {
	var withPlaceholder struct {
		Range       *Range `json:"range"`
		Placeholder string `json:"placeholder"`
	}
	if err := json.Unmarshal(result, &withPlaceholder); err == nil && withPlaceholder.Range != nil {
		return PrepareRenameResult{Range: *withPlaceholder.Range, Placeholder: withPlaceholder.Placeholder}, true
	}
	var rng Range
	if err := json.Unmarshal(result, &rng); err == nil && (rng.Start != rng.End || rng.Start != (Position{})) {
		return PrepareRenameResult{Range: rng}, true
	}
	return PrepareRenameResult{}, false
}

// WorkspaceEdit is a set of text edits across documents.
type WorkspaceEdit struct {
	Changes         map[DocumentURI][]TextEdit `json:"changes,omitempty"`
	DocumentChanges []TextDocumentEdit         `json:"documentChanges,omitempty"`
}

// TextDocumentEdit is the versioned documentChanges entry form.
type TextDocumentEdit struct {
	TextDocument VersionedTextDocumentIdentifier `json:"textDocument"`
	Edits        []TextEdit                      `json:"edits"`
}

// EditsFor collects every edit the workspace edit targets at uri,
// merging the changes map and documentChanges forms.
func (we *WorkspaceEdit) EditsFor(uri DocumentURI) []TextEdit {
	var edits []TextEdit
	if we.Changes != nil {
		edits = append(edits, we.Changes[uri]...)
	}
	for _, dc := range we.DocumentChanges {
		if dc.TextDocument.URI == uri {
			edits = append(edits, dc.Edits...)
		}
	}
	return edits
}

// URIs returns every document the workspace edit touches.
func (we *WorkspaceEdit) URIs() []DocumentURI {
	seen := make(map[DocumentURI]bool)
	var uris []DocumentURI
	for uri := range we.Changes {
		if !seen[uri] {
			seen[uri] = true
			uris = append(uris, uri)
		}
	}
	for _, dc := range we.DocumentChanges {
		if !seen[dc.TextDocument.URI] {
			seen[dc.TextDocument.URI] = true
			uris = append(uris, dc.TextDocument.URI)
		}
	}
	return uris
}

// WorkspaceFolder names a workspace root sent during initialize.
type WorkspaceFolder struct {
	URI  DocumentURI `json:"uri"`
	Name string      `json:"name"`
}

// FormattingOptions are the tab settings sent with a formatting request.
type FormattingOptions struct {
	TabSize      int  `json:"tabSize"`
	InsertSpaces bool `json:"insertSpaces"`
}

// InitializeResult is the server's initialize reply.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// ServerInfo identifies the server implementation.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ComparePositions orders two positions, -1 if a < b.
func ComparePositions(a, b Position) int {
	if a.Line != b.Line {
		if a.Line < b.Line {
			return -1
		}
		return 1
	}
	if a.Character != b.Character {
		if a.Character < b.Character {
			return -1
		}
		return 1
	}
	return 0
}

// PositionInRange reports whether pos lies within rng, end-exclusive.
func PositionInRange(pos Position, rng Range) bool {
	return ComparePositions(pos, rng.Start) >= 0 && ComparePositions(pos, rng.End) < 0
}
