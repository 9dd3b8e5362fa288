// Package syntax provides incremental parsing and semantic highlighting for
// Keystorm documents using tree-sitter grammars.
//
// The package is organized around these core components:
//
//   - Provider: the narrow interface the rest of the editor depends on —
//     record an edit, fetch the current tree, highlight a line range.
//   - TreeSitterProvider: the only implementation, backed by
//     github.com/smacker/go-tree-sitter. It keeps a cached tree, a cached
//     parser, and a queue of pending edits so that reparsing is always
//     incremental after the first parse.
//   - Worker: runs a TreeSitterProvider on a background goroutine per
//     document so that edits, which happen on the main goroutine, never
//     block on a reparse.
//   - Cache: a small LRU of already-highlighted line ranges keyed by the
//     buffer and tree versions they were computed against, so that redundant
//     highlight requests for an unchanged view are free.
//   - Theme: maps tree-sitter capture names to colors.
//
// # Data flow
//
// A Document owns one Worker. Document.NotifyChanges passes every buffer
// edit to Worker.NotifyEdit as an Edit (byte offsets plus line/column
// points); the provider turns it into a sitter.EditInput and queues it.
// NotifyEdit also wakes the worker's goroutine, which waits out its
// debounce and then asks the TreeSitterProvider to reparse — incrementally when a previous tree exists, from scratch
// otherwise — then publishes the resulting tree version atomically so
// Document.Highlight (called from the main goroutine) always sees either the
// old tree or the new one, never a partial one.
//
// # Fallback behavior
//
// If no query is loaded, no tree has been produced yet, or the cached tree
// is stale relative to the current buffer length, Highlight degrades to
// returning the requested lines as a single unstyled segment rather than
// blocking or erroring. The editor is always usable without syntax
// highlighting.
package syntax
