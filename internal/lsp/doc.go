// Package lsp implements a language-server-protocol client for the
// Keystorm editor core.
//
// Each language server runs as a child process speaking JSON-RPC 2.0 over
// stdio with Content-Length framing. A Client owns three goroutines per
// server: a writer draining an unbounded outgoing queue into stdin, a
// reader decoding framed messages from stdout, and a drain forwarding
// stderr lines to the logger. Outgoing requests are correlated with
// responses by a process-wide monotonic id; the reader resolves each
// response through the recorded request kind into a typed Response pushed
// onto an inbox the main thread polls with TryRecv.
//
// Requests are gated on the capability snapshot populated from the
// server's initialize result. A periodic cleanup pass expires pending
// requests past their timeout; late responses are dropped.
//
// Document synchronization is debounced: mutations mark a SyncState
// dirty, and when its timer fires the Manager sends a full-text
// didChange built from the rope's chunks.
package lsp
