// Package rope stores document text as an immutable B+ tree of small
// string spans. Every mutation returns a new Rope sharing structure with
// the old one, which is what makes snapshots for the parse worker a
// pointer copy.
//
// Each span carries a precomputed measure: bytes, chars (Unicode scalar
// values), UTF-16 units, and newline counts. Tree nodes aggregate the
// measures of their subtrees, so byte, char, and line coordinates
// convert in O(log n) by descending against the aggregates. The UTF-16
// total is aggregated too, but the rope offers no UTF-16 seek. Spans additionally keep a small table of their newline
// positions so line seeks finish in O(1) once the right span is found.
//
// The three coordinate spaces:
//
//	byte offset   what the tree is keyed by; all public ranges
//	char index    anchors (stable across encodings); selections use bytes
//	line/column   Point, for the display pipeline and LSP
package rope
