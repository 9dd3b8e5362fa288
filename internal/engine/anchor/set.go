package anchor

import "sort"

// TextEdit is a char-index edit record: the range [Start, OldEnd) is
// replaced by a span of length (NewEnd - Start).
type TextEdit struct {
	Start  uint64
	OldEnd uint64
	NewEnd uint64
}

// Set owns a collection of anchors and a queue of pending edits. Anchors are
// not adjusted until ApplyPendingEdits runs; Resolve before that returns the
// anchor's offset as of the last batch.
type Set struct {
	anchors map[ID]*Anchor
	order   []ID
	pending []TextEdit
	version uint64
	length  uint64 // tracked rope char length, kept in sync via RecordEdit
}

// NewSet creates an anchor set for a rope of the given char length.
func NewSet(length uint64) *Set {
	return &Set{
		anchors: make(map[ID]*Anchor),
		length:  length,
	}
}

// Create adds a new anchor at offset with the given bias, clamped to
// [0, length]. The anchor is stamped with the set's current version.
func (s *Set) Create(offset uint64, bias Bias) Anchor {
	if offset > s.length {
		offset = s.length
	}
	a := &Anchor{id: newID(), offset: offset, bias: bias, version: s.version}
	s.anchors[a.id] = a
	s.order = append(s.order, a.id)
	return *a
}

// Remove drops an anchor from the set. Resolving a removed id afterward
// returns (0, false).
func (s *Set) Remove(id ID) {
	delete(s.anchors, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Resolve returns an anchor's current offset.
func (s *Set) Resolve(id ID) (uint64, bool) {
	a, ok := s.anchors[id]
	if !ok {
		return 0, false
	}
	return a.offset, true
}

// Get returns the current value of an anchor.
func (s *Set) Get(id ID) (Anchor, bool) {
	a, ok := s.anchors[id]
	if !ok {
		return Anchor{}, false
	}
	return *a, true
}

// Version returns the set's current version, bumped on each
// ApplyPendingEdits call.
func (s *Set) Version() uint64 { return s.version }

// Len returns the tracked rope char length.
func (s *Set) Len() uint64 { return s.length }

// RecordEdit queues an edit for the next ApplyPendingEdits call and updates
// the set's tracked length so subsequently created anchors clamp correctly
// even before the batch is applied.
func (s *Set) RecordEdit(e TextEdit) {
	s.pending = append(s.pending, e)
	delta := int64(e.NewEnd) - int64(e.OldEnd)
	newLen := int64(s.length) + delta
	if newLen < 0 {
		newLen = 0
	}
	s.length = uint64(newLen)
}

// PendingCount returns the number of queued, unapplied edits.
func (s *Set) PendingCount() int { return len(s.pending) }

// ApplyPendingEdits applies every queued edit, in the order recorded, to
// every anchor, then clears the queue, bumps the version, and re-sorts the
// anchor order by (offset, bias) with Left before Right at equal offsets.
func (s *Set) ApplyPendingEdits() {
	if len(s.pending) == 0 {
		return
	}
	for _, edit := range s.pending {
		for _, a := range s.anchors {
			a.offset = adjust(a.offset, a.bias, edit)
		}
	}
	s.pending = s.pending[:0]
	s.version++
	for _, a := range s.anchors {
		a.version = s.version
	}
	sort.Slice(s.order, func(i, j int) bool {
		ai, aj := s.anchors[s.order[i]], s.anchors[s.order[j]]
		if ai.offset != aj.offset {
			return ai.offset < aj.offset
		}
		return ai.bias < aj.bias // Left (0) sorts before Right (1)
	})
}

// adjust applies the edit-adjustment rules from the anchor resolution model
// to a single offset.
func adjust(a uint64, bias Bias, e TextEdit) uint64 {
	if a < e.Start {
		return a
	}
	if e.Start == e.OldEnd && a == e.Start {
		// Pure insertion exactly at the anchor.
		if bias == Left {
			return a
		}
		return e.NewEnd
	}
	if a > e.OldEnd {
		delta := int64(e.NewEnd) - int64(e.OldEnd)
		v := int64(a) + delta
		if v < 0 {
			return 0
		}
		return uint64(v)
	}
	// e.Start <= a <= e.OldEnd: inside the replaced/deleted span.
	return e.Start
}

// Ordered returns anchor IDs in the set's current sort order
// (offset, then Left before Right).
func (s *Set) Ordered() []ID {
	out := make([]ID, len(s.order))
	copy(out, s.order)
	return out
}
