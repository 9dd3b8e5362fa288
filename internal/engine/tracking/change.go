package tracking

import (
	"fmt"
	"strings"

	"github.com/dshills/keystorm/internal/engine/buffer"
)

// ChangeType categorizes a recorded change.
type ChangeType uint8

const (
	// ChangeInsert added text; OldText is empty.
	ChangeInsert ChangeType = iota
	// ChangeDelete removed text; NewText is empty.
	ChangeDelete
	// ChangeReplace swapped one text for another.
	ChangeReplace
)

func (ct ChangeType) String() string {
	switch ct {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change records one buffer mutation with enough detail to describe,
// summarize, or invert it: the affected range in the old text, the
// resulting range in the new text, both texts, and the revision the
// buffer landed on.
type Change struct {
	Type       ChangeType
	Range      buffer.Range // span in the pre-change text
	NewRange   buffer.Range // span in the post-change text
	OldText    string
	NewText    string
	RevisionID RevisionID
}

// NewInsertChange records text inserted at an offset.
func NewInsertChange(offset buffer.ByteOffset, text string, revID RevisionID) Change {
	return Change{
		Type:       ChangeInsert,
		Range:      buffer.Range{Start: offset, End: offset},
		NewRange:   buffer.Range{Start: offset, End: offset + buffer.ByteOffset(len(text))},
		NewText:    text,
		RevisionID: revID,
	}
}

// NewDeleteChange records a removed span.
func NewDeleteChange(start, end buffer.ByteOffset, oldText string, revID RevisionID) Change {
	return Change{
		Type:       ChangeDelete,
		Range:      buffer.Range{Start: start, End: end},
		NewRange:   buffer.Range{Start: start, End: start},
		OldText:    oldText,
		RevisionID: revID,
	}
}

// NewReplaceChange records a span swapped for new text.
func NewReplaceChange(start, end buffer.ByteOffset, oldText, newText string, revID RevisionID) Change {
	return Change{
		Type:       ChangeReplace,
		Range:      buffer.Range{Start: start, End: end},
		NewRange:   buffer.Range{Start: start, End: start + buffer.ByteOffset(len(newText))},
		OldText:    oldText,
		NewText:    newText,
		RevisionID: revID,
	}
}

// clip shortens text for log-friendly change descriptions.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func (c Change) String() string {
	switch c.Type {
	case ChangeInsert:
		return fmt.Sprintf("Insert %q at %d", clip(c.NewText, 20), c.Range.Start)
	case ChangeDelete:
		return fmt.Sprintf("Delete %q at %v", clip(c.OldText, 20), c.Range)
	case ChangeReplace:
		return fmt.Sprintf("Replace %q with %q at %v", clip(c.OldText, 10), clip(c.NewText, 10), c.Range)
	default:
		return "Unknown change"
	}
}

// Delta returns how many bytes the change grew (or shrank) the buffer.
func (c Change) Delta() int64 {
	return int64(len(c.NewText)) - int64(len(c.OldText))
}

// IsInsert reports a pure insertion.
func (c Change) IsInsert() bool { return c.Type == ChangeInsert }

// IsDelete reports a pure deletion.
func (c Change) IsDelete() bool { return c.Type == ChangeDelete }

// IsReplace reports a replacement.
func (c Change) IsReplace() bool { return c.Type == ChangeReplace }

// Invert returns the change that would undo this one. The revision id
// is carried over unchanged; applying the inverse mints its own.
func (c Change) Invert() Change {
	inverse := ChangeReplace
	switch c.Type {
	case ChangeInsert:
		inverse = ChangeDelete
	case ChangeDelete:
		inverse = ChangeInsert
	}
	return Change{
		Type:       inverse,
		Range:      c.NewRange,
		NewRange:   c.Range,
		OldText:    c.NewText,
		NewText:    c.OldText,
		RevisionID: c.RevisionID,
	}
}

// ChangeSet accumulates related changes in application order, tracking
// the revision span they cover.
type ChangeSet struct {
	Changes       []Change
	StartRevision RevisionID
	EndRevision   RevisionID
}

// NewChangeSet starts an empty set at a revision.
func NewChangeSet(startRevision RevisionID) *ChangeSet {
	return &ChangeSet{StartRevision: startRevision, EndRevision: startRevision}
}

// Add appends a change and advances the end revision.
func (cs *ChangeSet) Add(c Change) {
	cs.Changes = append(cs.Changes, c)
	cs.EndRevision = c.RevisionID
}

// Len returns the number of changes.
func (cs *ChangeSet) Len() int { return len(cs.Changes) }

// IsEmpty reports an empty set.
func (cs *ChangeSet) IsEmpty() bool { return len(cs.Changes) == 0 }

// TotalDelta sums every change's byte delta.
func (cs *ChangeSet) TotalDelta() int64 {
	var delta int64
	for _, c := range cs.Changes {
		delta += c.Delta()
	}
	return delta
}

// Summary renders the set as a one-line description for session
// snapshots and logs.
func (cs *ChangeSet) Summary() string {
	if cs.IsEmpty() {
		return "no changes"
	}

	var inserts, deletes, replaces int
	var grew, shrank int64
	for _, c := range cs.Changes {
		switch c.Type {
		case ChangeInsert:
			inserts++
			grew += int64(len(c.NewText))
		case ChangeDelete:
			deletes++
			shrank += int64(len(c.OldText))
		case ChangeReplace:
			replaces++
			grew += int64(len(c.NewText))
			shrank += int64(len(c.OldText))
		}
	}

	var parts []string
	if inserts > 0 {
		parts = append(parts, fmt.Sprintf("%d inserts (+%d bytes)", inserts, grew))
	}
	if deletes > 0 {
		parts = append(parts, fmt.Sprintf("%d deletes (-%d bytes)", deletes, shrank))
	}
	if replaces > 0 {
		parts = append(parts, fmt.Sprintf("%d replaces", replaces))
	}
	return strings.Join(parts, ", ")
}

// trackedChange is the tracker's ring-buffer entry.
type trackedChange struct {
	revision RevisionID
	change   Change
}
