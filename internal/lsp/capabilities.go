package lsp

import (
	"encoding/json"
	"sync"
)

// ServerCapabilities is the capability snapshot from the initialize
// reply. Provider fields may be a boolean or an options object; keep the
// raw form and test with capEnabled.
type ServerCapabilities struct {
	TextDocumentSync           json.RawMessage       `json:"textDocumentSync,omitempty"`
	CompletionProvider         *CompletionOptions    `json:"completionProvider,omitempty"`
	HoverProvider              json.RawMessage       `json:"hoverProvider,omitempty"`
	SignatureHelpProvider      *SignatureHelpOptions `json:"signatureHelpProvider,omitempty"`
	DefinitionProvider         json.RawMessage       `json:"definitionProvider,omitempty"`
	ReferencesProvider         json.RawMessage       `json:"referencesProvider,omitempty"`
	DocumentHighlightProvider  json.RawMessage       `json:"documentHighlightProvider,omitempty"`
	CodeActionProvider         json.RawMessage       `json:"codeActionProvider,omitempty"`
	DocumentFormattingProvider json.RawMessage       `json:"documentFormattingProvider,omitempty"`
	RenameProvider             json.RawMessage       `json:"renameProvider,omitempty"`
	InlayHintProvider          json.RawMessage       `json:"inlayHintProvider,omitempty"`
	ExecuteCommandProvider     json.RawMessage       `json:"executeCommandProvider,omitempty"`
}

// CompletionOptions carries the server's completion trigger characters.
type CompletionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
	ResolveProvider   bool     `json:"resolveProvider,omitempty"`
}

// SignatureHelpOptions carries signature-help trigger characters.
type SignatureHelpOptions struct {
	TriggerCharacters   []string `json:"triggerCharacters,omitempty"`
	RetriggerCharacters []string `json:"retriggerCharacters,omitempty"`
}

// capEnabled interprets a bool-or-object provider field: absent or
// `false` means unsupported, anything else means supported.
func capEnabled(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	return true
}

// capabilityCache shares the capability snapshot between the client's
// caller and its reader goroutine. The reader populates it when the
// initialize reply arrives; senders consult it when gating requests.
type capabilityCache struct {
	mu   sync.RWMutex
	caps ServerCapabilities
	set  bool
}

func (c *capabilityCache) store(caps ServerCapabilities) {
	c.mu.Lock()
	c.caps = caps
	c.set = true
	c.mu.Unlock()
}

func (c *capabilityCache) snapshot() (ServerCapabilities, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.caps, c.set
}

// supports reports whether the capability bit for a request kind is set.
// Kinds with no corresponding bit (lifecycle and sync messages) are
// always allowed.
func (c *capabilityCache) supports(kind RequestKind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.set {
		// Before initialize completes only ungated traffic passes, and
		// that never reaches this check.
		return false
	}
	switch kind {
	case KindCompletion:
		return c.caps.CompletionProvider != nil
	case KindHover:
		return capEnabled(c.caps.HoverProvider)
	case KindGotoDefinition:
		return capEnabled(c.caps.DefinitionProvider)
	case KindReferences:
		return capEnabled(c.caps.ReferencesProvider)
	case KindFormat:
		return capEnabled(c.caps.DocumentFormattingProvider)
	case KindSignatureHelp:
		return c.caps.SignatureHelpProvider != nil
	case KindCodeAction:
		return capEnabled(c.caps.CodeActionProvider)
	case KindInlayHint:
		return capEnabled(c.caps.InlayHintProvider)
	case KindDocumentHighlight:
		return capEnabled(c.caps.DocumentHighlightProvider)
	case KindPrepareRename:
		// Servers that support rename but not prepareRename still accept
		// the rename request; prepare shares the rename bit.
		return capEnabled(c.caps.RenameProvider)
	case KindRename:
		return capEnabled(c.caps.RenameProvider)
	default:
		return true
	}
}

// completionTriggers returns the server's completion trigger characters.
func (c *capabilityCache) completionTriggers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.caps.CompletionProvider == nil {
		return nil
	}
	return c.caps.CompletionProvider.TriggerCharacters
}

// signatureTriggers returns the signature-help trigger characters.
func (c *capabilityCache) signatureTriggers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.caps.SignatureHelpProvider == nil {
		return nil
	}
	return c.caps.SignatureHelpProvider.TriggerCharacters
}
