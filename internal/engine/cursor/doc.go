// Package cursor implements the selection model: a Selection is an
// anchor/head pair of byte offsets, and a CursorSet is the non-empty,
// sorted, non-overlapping collection of them that multi-cursor editing
// operates on.
//
// A selection with Anchor == Head is just a cursor. Head is where
// typing happens; the pair's order records which way the user dragged,
// and merging preserves the primary selection's direction.
//
// CursorSet index 0 is the primary selection: it drives scrolling and
// is the seed for unary operations like select-next-occurrence. After
// any mutation the set re-sorts by start offset and folds overlapping
// or touching entries together, so the invariants (non-empty, sorted,
// disjoint) hold at every observable moment.
//
// Edit transforms: TransformSelection moves a selection across a buffer
// edit with the model's bias pairing — the head stays before text
// inserted exactly at it, the anchor moves after — and positions inside
// a deleted range collapse to the deletion's start.
//
// Selections are immutable values; CursorSet is single-owner state
// guarded by the engine's lock.
package cursor
