package syntax

import (
	"container/list"
	"sync"
)

// cacheKey identifies a highlight result by the line range requested and the
// buffer/tree versions it was computed against. Any change to either
// version invalidates every key that used the old value, simply by no
// longer matching future lookups.
type cacheKey struct {
	startLine      uint32
	endLine        uint32
	contentVersion uint64
	treeVersion    uint64
}

// HighlightCache is an LRU of recently computed highlight ranges, so that
// redisplaying an unchanged viewport doesn't re-run a tree-sitter query.
// Safe for concurrent use.
type HighlightCache struct {
	mu      sync.RWMutex
	maxSize int
	items   map[cacheKey]*list.Element
	lru     *list.List
}

type cacheEntry struct {
	key    cacheKey
	result []LineSegments
}

// defaultCacheSize matches the ~20-entry window a document needs to cover a
// screen's worth of scrolling without re-highlighting on every frame.
const defaultCacheSize = 20

// NewHighlightCache creates an LRU cache with the given capacity. A
// non-positive size uses defaultCacheSize.
func NewHighlightCache(maxSize int) *HighlightCache {
	if maxSize <= 0 {
		maxSize = defaultCacheSize
	}
	return &HighlightCache{
		maxSize: maxSize,
		items:   make(map[cacheKey]*list.Element),
		lru:     list.New(),
	}
}

// Get returns the cached result for the given range and versions, or nil if
// absent.
func (c *HighlightCache) Get(startLine, endLine uint32, contentVersion, treeVersion uint64) []LineSegments {
	key := cacheKey{startLine, endLine, contentVersion, treeVersion}

	c.mu.RLock()
	_, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok {
		return nil
	}
	c.lru.MoveToFront(elem)
	entry := elem.Value.(*cacheEntry)
	out := make([]LineSegments, len(entry.result))
	copy(out, entry.result)
	return out
}

// Set stores a result for the given range and versions.
func (c *HighlightCache) Set(startLine, endLine uint32, contentVersion, treeVersion uint64, result []LineSegments) {
	key := cacheKey{startLine, endLine, contentVersion, treeVersion}
	stored := make([]LineSegments, len(result))
	copy(stored, result)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).result = stored
		return
	}

	if c.lru.Len() >= c.maxSize {
		c.evictOldest()
	}

	entry := &cacheEntry{key: key, result: stored}
	elem := c.lru.PushFront(entry)
	c.items[key] = elem
}

// Invalidate drops every entry, used when a document's query or language
// changes underneath an existing cache.
func (c *HighlightCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[cacheKey]*list.Element)
	c.lru.Init()
}

func (c *HighlightCache) evictOldest() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	c.lru.Remove(elem)
	entry := elem.Value.(*cacheEntry)
	delete(c.items, entry.key)
}
