package syntax

import (
	"testing"
	"time"

	"github.com/dshills/keystorm/internal/engine"
)

func TestDocumentHighlightDegradesWithoutGrammar(t *testing.T) {
	eng := engine.New(engine.WithContent("package main\n\nfunc main() {}\n"))
	doc := NewDocument(eng, "go", nil)
	defer doc.Close()

	segs := doc.Highlight(0, 3)
	if len(segs) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(segs))
	}
	for _, ls := range segs {
		for _, seg := range ls.Segments {
			if seg.Category != "" {
				t.Errorf("expected no categories without a grammar, got %q", seg.Category)
			}
		}
	}
}

func TestDocumentNotifyChangesAdvancesRevision(t *testing.T) {
	eng := engine.New(engine.WithContent("abc"))
	doc := NewDocument(eng, "unknown-language", nil)
	defer doc.Close()

	before := doc.lastSeenRev
	if _, err := eng.Insert(0, "xyz"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	doc.NotifyChanges()

	if doc.lastSeenRev == before {
		t.Fatal("expected lastSeenRev to advance after NotifyChanges")
	}
}

func TestDocumentHighlightStableAcrossCalls(t *testing.T) {
	eng := engine.New(engine.WithContent("line one\nline two\n"))
	doc := NewDocument(eng, "unknown-language", nil)
	defer doc.Close()

	first := doc.Highlight(0, 2)
	// Give the worker time to settle so content/tree versions are stable.
	time.Sleep(10 * time.Millisecond)
	second := doc.Highlight(0, 2)

	if len(first) != len(second) {
		t.Fatalf("expected stable highlight results, got %d vs %d lines", len(first), len(second))
	}
}
