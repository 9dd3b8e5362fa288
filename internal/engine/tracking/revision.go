package tracking

import (
	"time"

	"github.com/dshills/keystorm/internal/engine/buffer"
	"github.com/dshills/keystorm/internal/engine/rope"
)

// RevisionID aliases the buffer's revision counter; one id names one
// buffer state.
type RevisionID = buffer.RevisionID

// Revision pins a buffer state: the rope as it stood (a pointer, since
// ropes are immutable) plus when it was recorded.
type Revision struct {
	ID        RevisionID
	Timestamp time.Time

	rope rope.Rope
}

// NewRevision records a rope under an id.
func NewRevision(id RevisionID, rp rope.Rope) *Revision {
	return &Revision{ID: id, Timestamp: time.Now(), rope: rp}
}

// Rope returns the pinned rope.
func (r *Revision) Rope() rope.Rope {
	return r.rope
}

// Text materializes the revision's content.
func (r *Revision) Text() string {
	return r.rope.String()
}

// Len returns the revision's byte length.
func (r *Revision) Len() int64 {
	return int64(r.rope.Len())
}

// LineCount returns the revision's line count.
func (r *Revision) LineCount() uint32 {
	return r.rope.LineCount()
}

// revisionStore keeps a bounded set of revisions, evicting the oldest
// ids once over capacity.
type revisionStore struct {
	revisions  map[RevisionID]*Revision
	maxEntries int
}

func newRevisionStore(maxEntries int) *revisionStore {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &revisionStore{
		revisions:  make(map[RevisionID]*Revision),
		maxEntries: maxEntries,
	}
}

// Add stores a revision and evicts down to capacity.
func (rs *revisionStore) Add(rev *Revision) {
	rs.revisions[rev.ID] = rev
	for len(rs.revisions) > rs.maxEntries {
		var oldest RevisionID
		for id := range rs.revisions {
			if oldest == 0 || id < oldest {
				oldest = id
			}
		}
		if oldest == 0 {
			return
		}
		delete(rs.revisions, oldest)
	}
}

// Get looks a revision up by id.
func (rs *revisionStore) Get(id RevisionID) (*Revision, bool) {
	rev, ok := rs.revisions[id]
	return rev, ok
}

// Delete drops a revision.
func (rs *revisionStore) Delete(id RevisionID) {
	delete(rs.revisions, id)
}

// Len returns how many revisions are held.
func (rs *revisionStore) Len() int {
	return len(rs.revisions)
}

// Clear drops everything.
func (rs *revisionStore) Clear() {
	rs.revisions = make(map[RevisionID]*Revision)
}
