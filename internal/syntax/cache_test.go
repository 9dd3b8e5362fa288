package syntax

import "testing"

func sampleResult(n int) []LineSegments {
	out := make([]LineSegments, n)
	for i := range out {
		out[i] = LineSegments{Line: uint32(i), Segments: []LineSegment{{StartCol: 0, EndCol: 1, Category: "keyword"}}}
	}
	return out
}

func TestHighlightCacheMissThenHit(t *testing.T) {
	c := NewHighlightCache(4)

	if got := c.Get(0, 10, 1, 1); got != nil {
		t.Fatalf("expected miss on empty cache, got %v", got)
	}

	c.Set(0, 10, 1, 1, sampleResult(10))

	got := c.Get(0, 10, 1, 1)
	if got == nil {
		t.Fatal("expected hit after Set")
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 line segments, got %d", len(got))
	}
}

func TestHighlightCacheVersionChangeMisses(t *testing.T) {
	c := NewHighlightCache(4)
	c.Set(0, 10, 1, 1, sampleResult(10))

	if got := c.Get(0, 10, 2, 1); got != nil {
		t.Fatal("expected miss when content version differs")
	}
	if got := c.Get(0, 10, 1, 2); got != nil {
		t.Fatal("expected miss when tree version differs")
	}
}

func TestHighlightCacheEvictsOldest(t *testing.T) {
	c := NewHighlightCache(2)
	c.Set(0, 1, 1, 1, sampleResult(1))
	c.Set(1, 2, 1, 1, sampleResult(1))
	c.Set(2, 3, 1, 1, sampleResult(1)) // evicts (0,1)

	if got := c.Get(0, 1, 1, 1); got != nil {
		t.Fatal("expected oldest entry to be evicted")
	}
	if got := c.Get(2, 3, 1, 1); got == nil {
		t.Fatal("expected most recently set entry to remain")
	}
}

func TestHighlightCacheReturnsCopy(t *testing.T) {
	c := NewHighlightCache(2)
	c.Set(0, 1, 1, 1, sampleResult(1))

	got := c.Get(0, 1, 1, 1)
	got[0].Segments[0].Category = "mutated"

	again := c.Get(0, 1, 1, 1)
	if again[0].Segments[0].Category == "mutated" {
		t.Fatal("cache entry was mutated through the returned slice")
	}
}

func TestHighlightCacheInvalidate(t *testing.T) {
	c := NewHighlightCache(4)
	c.Set(0, 10, 1, 1, sampleResult(10))
	c.Invalidate()

	if got := c.Get(0, 10, 1, 1); got != nil {
		t.Fatal("expected cache to be empty after Invalidate")
	}
}

func TestNewHighlightCacheDefaultsSize(t *testing.T) {
	c := NewHighlightCache(0)
	if c.maxSize != defaultCacheSize {
		t.Fatalf("expected default size %d, got %d", defaultCacheSize, c.maxSize)
	}
}
