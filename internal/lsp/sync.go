package lsp

import (
	"time"
)

// DefaultSyncDebounce is the didChange debounce interval.
const DefaultSyncDebounce = 200 * time.Millisecond

// SyncState debounces document synchronization. Every buffer mutation
// marks it dirty; the owner ticks it, and when the timer fires while
// dirty a full-text didChange goes out.
type SyncState struct {
	dirty    bool
	deadline time.Time
	debounce time.Duration
}

// NewSyncState creates a sync state with the given debounce interval.
func NewSyncState(debounce time.Duration) *SyncState {
	if debounce <= 0 {
		debounce = DefaultSyncDebounce
	}
	return &SyncState{debounce: debounce}
}

// MarkDirty flags a pending change and restarts the one-shot timer.
func (s *SyncState) MarkDirty(now time.Time) {
	s.dirty = true
	s.deadline = now.Add(s.debounce)
}

// Fire reports whether a sync should be sent now; a true return clears
// the dirty flag.
func (s *SyncState) Fire(now time.Time) bool {
	if !s.dirty || now.Before(s.deadline) {
		return false
	}
	s.dirty = false
	return true
}

// Dirty reports whether a change is pending.
func (s *SyncState) Dirty() bool {
	return s.dirty
}

// trackedDocument is a document the manager has announced to a server.
type trackedDocument struct {
	uri        DocumentURI
	languageID string
	version    int
	sync       *SyncState

	// fullText produces the current document text for didChange. It is
	// built from the rope's chunks at send time so the text is only
	// materialized when a sync actually fires.
	fullText func() string
}
