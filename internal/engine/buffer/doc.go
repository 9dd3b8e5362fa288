// Package buffer wraps the rope in the editor's document model: a
// thread-safe mutable text with line-ending normalization, byte/point/
// UTF-16 coordinate conversion, a monotonic content version, and edit
// events for the parse and sync pipelines.
//
// Reads take a read lock; writes take the write lock, bump the revision,
// and notify subscribers with the edit's byte ranges. Snapshot hands out
// an immutable view (a rope copy is a pointer) for readers that must not
// observe concurrent writes, which is how the parse worker sees the
// document.
//
// Coordinate types: ByteOffset indexes raw bytes, Point is line/column
// with a byte column, and PointUTF16 is line/column in UTF-16 code units
// for the LSP layer.
package buffer
