package lsp

import (
	"encoding/json"
)

// RequestKind identifies an outgoing request so the reader can decode
// its response into the right Response variant.
type RequestKind int

const (
	KindNone RequestKind = iota
	KindInitialize
	KindCompletion
	KindHover
	KindGotoDefinition
	KindReferences
	KindFormat
	KindSignatureHelp
	KindCodeAction
	KindInlayHint
	KindDocumentHighlight
	KindPrepareRename
	KindRename
	KindExecuteCommand
)

// String returns the kind's wire method, for logging.
func (k RequestKind) String() string {
	switch k {
	case KindInitialize:
		return "initialize"
	case KindCompletion:
		return "textDocument/completion"
	case KindHover:
		return "textDocument/hover"
	case KindGotoDefinition:
		return "textDocument/definition"
	case KindReferences:
		return "textDocument/references"
	case KindFormat:
		return "textDocument/formatting"
	case KindSignatureHelp:
		return "textDocument/signatureHelp"
	case KindCodeAction:
		return "textDocument/codeAction"
	case KindInlayHint:
		return "textDocument/inlayHint"
	case KindDocumentHighlight:
		return "textDocument/documentHighlight"
	case KindPrepareRename:
		return "textDocument/prepareRename"
	case KindRename:
		return "textDocument/rename"
	case KindExecuteCommand:
		return "workspace/executeCommand"
	default:
		return "none"
	}
}

// ResponseType tags a Response with which payload fields are set.
type ResponseType int

const (
	ResponseInitialized ResponseType = iota + 1
	ResponseCompletion
	ResponseHover
	ResponseDefinition
	ResponseReferences
	ResponseFormat
	ResponseSignatureHelp
	ResponseCodeActions
	ResponseInlayHints
	ResponseDocumentHighlights
	ResponsePrepareRename
	ResponseRename
	ResponseDiagnostics
)

// Response is a decoded server message delivered through TryRecv. One
// struct with a type tag rather than an interface: the consumer is a
// single switch in the editor's poll loop.
type Response struct {
	Type ResponseType

	// Initialized
	Capabilities ServerCapabilities

	// Completion
	Items        []CompletionItem
	IsIncomplete bool

	// Hover
	HoverText  string
	HoverRange *Range

	// Definition, References
	Locations []Location

	// Format
	Edits []TextEdit

	// SignatureHelp
	Signatures      []SignatureInformation
	ActiveSignature *int
	ActiveParameter *int

	// CodeActions
	Actions []CodeActionOrCommand

	// InlayHints
	Hints []InlayHint

	// DocumentHighlights
	Highlights []DocumentHighlight

	// PrepareRename
	RenameRange Range
	Placeholder string

	// Rename
	WorkspaceEdit WorkspaceEdit

	// Diagnostics
	URI         DocumentURI
	Diagnostics []Diagnostic
}

// decodeResponse turns a raw result into the typed variant for the
// recorded request kind. Returns ok=false for payloads that don't decode;
// the caller drops them with a debug log.
func decodeResponse(kind RequestKind, result json.RawMessage) (Response, bool) {
	switch kind {
	case KindInitialize:
		var init InitializeResult
		if err := json.Unmarshal(result, &init); err != nil {
			return Response{}, false
		}
		return Response{Type: ResponseInitialized, Capabilities: init.Capabilities}, true

	case KindCompletion:
		items, isIncomplete, ok := decodeCompletionResult(result)
		if !ok {
			return Response{}, false
		}
		return Response{Type: ResponseCompletion, Items: items, IsIncomplete: isIncomplete}, true

	case KindHover:
		var hover Hover
		if err := json.Unmarshal(result, &hover); err != nil {
			return Response{}, false
		}
		return Response{Type: ResponseHover, HoverText: hover.Text(), HoverRange: hover.Range}, true

	case KindGotoDefinition:
		locs, ok := decodeLocations(result)
		if !ok {
			return Response{}, false
		}
		return Response{Type: ResponseDefinition, Locations: locs}, true

	case KindReferences:
		var locs []Location
		if err := json.Unmarshal(result, &locs); err != nil {
			return Response{}, false
		}
		return Response{Type: ResponseReferences, Locations: locs}, true

	case KindFormat:
		var edits []TextEdit
		if err := json.Unmarshal(result, &edits); err != nil {
			return Response{}, false
		}
		return Response{Type: ResponseFormat, Edits: edits}, true

	case KindSignatureHelp:
		var help SignatureHelp
		if err := json.Unmarshal(result, &help); err != nil {
			return Response{}, false
		}
		return Response{
			Type:            ResponseSignatureHelp,
			Signatures:      help.Signatures,
			ActiveSignature: help.ActiveSignature,
			ActiveParameter: help.ActiveParameter,
		}, true

	case KindCodeAction, KindExecuteCommand:
		var actions []CodeActionOrCommand
		if err := json.Unmarshal(result, &actions); err != nil {
			return Response{}, false
		}
		return Response{Type: ResponseCodeActions, Actions: actions}, true

	case KindInlayHint:
		var hints []InlayHint
		if err := json.Unmarshal(result, &hints); err != nil {
			return Response{}, false
		}
		return Response{Type: ResponseInlayHints, Hints: hints}, true

	case KindDocumentHighlight:
		var highlights []DocumentHighlight
		if err := json.Unmarshal(result, &highlights); err != nil {
			return Response{}, false
		}
		return Response{Type: ResponseDocumentHighlights, Highlights: highlights}, true

	case KindPrepareRename:
		prep, ok := decodePrepareRename(result)
		if !ok {
			return Response{}, false
		}
		return Response{Type: ResponsePrepareRename, RenameRange: prep.Range, Placeholder: prep.Placeholder}, true

	case KindRename:
		var edit WorkspaceEdit
		if err := json.Unmarshal(result, &edit); err != nil {
			return Response{}, false
		}
		return Response{Type: ResponseRename, WorkspaceEdit: edit}, true
	}
	return Response{}, false
}

// decodeNotification handles server-initiated notifications. Only
// publishDiagnostics produces a Response; everything else is ignored.
func decodeNotification(method string, params json.RawMessage) (Response, bool) {
	if method != "textDocument/publishDiagnostics" {
		return Response{}, false
	}
	var p PublishDiagnosticsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return Response{}, false
	}
	return Response{Type: ResponseDiagnostics, URI: p.URI, Diagnostics: p.Diagnostics}, true
}
