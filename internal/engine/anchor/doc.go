// Package anchor provides edit-resilient positions.
//
// An Anchor is a (id, offset, bias) value keyed by char index. Applying an
// edit to the owning AnchorSet adjusts every anchor's offset according to its
// bias without requiring the anchor to reference the rope or the edit
// directly — resolution is always a lookup against the owning set, never a
// pointer chase.
//
// Typical usage:
//
//	set := anchor.NewSet(10)
//	a := set.Create(5, anchor.Left)
//	set.RecordEdit(anchor.TextEdit{Start: 0, OldEnd: 0, NewEnd: 3})
//	set.ApplyPendingEdits()
//	offset, _ := set.Resolve(a.ID()) // 8
package anchor
