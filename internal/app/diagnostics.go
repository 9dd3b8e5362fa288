package app

import (
	"sync"

	"github.com/dshills/keystorm/internal/lsp"
)

// DiagnosticsHandler receives a language server's diagnostics for a single
// document, replacing whatever set was previously published for that URI.
type DiagnosticsHandler func(uri lsp.DocumentURI, diagnostics []lsp.Diagnostic)

// diagnosticsHub fans out diagnostics notifications from the LSP manager to
// interested subscribers (a status line, a problems panel), the same
// multi-handler pattern the config watcher uses for file change events.
type diagnosticsHub struct {
	mu       sync.RWMutex
	handlers []DiagnosticsHandler
}

func newDiagnosticsHub() *diagnosticsHub {
	return &diagnosticsHub{}
}

// Subscribe registers a handler for diagnostics notifications.
func (h *diagnosticsHub) Subscribe(handler DiagnosticsHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = append(h.handlers, handler)
}

// publish is passed to lsp.WithDiagnosticsCallback and fans out to subscribers.
func (h *diagnosticsHub) publish(uri lsp.DocumentURI, diagnostics []lsp.Diagnostic) {
	h.mu.RLock()
	handlers := make([]DiagnosticsHandler, len(h.handlers))
	copy(handlers, h.handlers)
	h.mu.RUnlock()

	for _, handler := range handlers {
		h.safeCall(handler, uri, diagnostics)
	}
}

func (h *diagnosticsHub) safeCall(handler DiagnosticsHandler, uri lsp.DocumentURI, diagnostics []lsp.Diagnostic) {
	defer func() {
		_ = recover()
	}()
	handler(uri, diagnostics)
}
