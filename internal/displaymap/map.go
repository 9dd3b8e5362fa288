package displaymap

import "sync"

// Map owns the mutable fold/wrap/tab layers for one document. Update is
// meant to be called from a single owner (the document's main-thread
// coordinator); Snapshot is safe to call concurrently and hands out an
// immutable copy so readers never race a concurrent Update.
type Map struct {
	mu      sync.Mutex
	foldMap *FoldMap
	wrapMap *WrapMap
	tabMap  *TabMap
	version uint64
}

// NewMap creates a display map with the given wrap width (0 = no wrap) and
// tab size.
func NewMap(wrapWidth, tabSize uint32) *Map {
	return &Map{
		foldMap: NewFoldMap(),
		wrapMap: NewWrapMap(wrapWidth),
		tabMap:  NewTabMap(tabSize),
	}
}

// Update rebuilds the fold and wrap layers from the buffer's current line
// count and fold regions. getBufferLine resolves a buffer line's text,
// used by the wrap layer to decide where to break.
func (m *Map) Update(bufferLineCount uint32, regions []FoldRegion, getBufferLine func(uint32) string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.foldMap.Update(bufferLineCount, regions)
	m.wrapMap.Update(m.foldMap.VisibleLineCount(), func(foldLine uint32) string {
		return getBufferLine(m.foldMap.FoldToBufferRow(foldLine))
	})
	m.version++
}

// SetWrapWidth changes the wrap width; takes effect on the next Update.
func (m *Map) SetWrapWidth(w uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wrapMap.SetWrapWidth(w)
}

// SetTabSize changes the tab size, effective immediately (TabMap is
// stateless per query).
func (m *Map) SetTabSize(size uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabMap.SetTabSize(size)
}

// Version returns the number of times Update has run.
func (m *Map) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Snapshot captures a consistent, independently-readable view of all three
// layers as they stand right now.
func (m *Map) Snapshot() *DisplaySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &DisplaySnapshot{
		foldMap: m.foldMap.clone(),
		wrapMap: m.wrapMap.clone(),
		tabMap:  m.tabMap.clone(),
	}
}
