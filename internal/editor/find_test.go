package editor

import (
	"testing"

	"github.com/dshills/keystorm/internal/engine"
)

func TestFindMatchesAscendingOrder(t *testing.T) {
	eng := engine.New(engine.WithContent("ab ab ab"))
	f := FindState{Query: "ab"}
	f.Search(eng, 0)

	if len(f.Matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(f.Matches))
	}
	for i := 1; i < len(f.Matches); i++ {
		if f.Matches[i].Start <= f.Matches[i-1].Start {
			t.Errorf("matches not ascending: %+v", f.Matches)
		}
	}
}

func TestFindWholeWordNonOverlapping(t *testing.T) {
	eng := engine.New(engine.WithContent("aaaa aa aaa"))
	f := FindState{Query: "aa", WholeWord: true}
	f.Search(eng, 0)

	// Only the standalone "aa" matches; "aaaa" and "aaa" are flanked by
	// word characters.
	if len(f.Matches) != 1 {
		t.Fatalf("matches = %+v, want exactly the standalone aa", f.Matches)
	}
	if f.Matches[0].Start != 5 {
		t.Errorf("match at %d, want 5", f.Matches[0].Start)
	}

	for i := 1; i < len(f.Matches); i++ {
		if f.Matches[i].Start < f.Matches[i-1].End {
			t.Error("whole-word matches overlap")
		}
	}
}

func TestFindOverlappingWithoutWholeWord(t *testing.T) {
	eng := engine.New(engine.WithContent("aaa"))
	f := FindState{Query: "aa"}
	f.Search(eng, 0)
	if len(f.Matches) != 2 {
		t.Errorf("matches = %d, want 2 overlapping", len(f.Matches))
	}
}

func TestFindCaseInsensitiveDefault(t *testing.T) {
	eng := engine.New(engine.WithContent("Foo foo FOO"))
	f := FindState{Query: "foo"}
	f.Search(eng, 0)
	if len(f.Matches) != 3 {
		t.Errorf("matches = %d, want 3", len(f.Matches))
	}

	f.CaseSensitive = true
	f.Search(eng, 0)
	if len(f.Matches) != 1 {
		t.Errorf("case-sensitive matches = %d, want 1", len(f.Matches))
	}
}

func TestFindNextPreviousWrap(t *testing.T) {
	eng := engine.New(engine.WithContent("x.x.x"))
	f := FindState{Query: "x"}
	f.Search(eng, 0)
	if f.Current != 0 {
		t.Fatalf("Current = %d", f.Current)
	}

	f.Next()
	f.Next()
	if m, _ := f.CurrentMatch(); m.Start != 4 {
		t.Fatalf("after two Next: %d", m.Start)
	}
	f.Next() // wraps
	if m, _ := f.CurrentMatch(); m.Start != 0 {
		t.Errorf("Next did not wrap: %d", m.Start)
	}
	f.Previous() // wraps back
	if m, _ := f.CurrentMatch(); m.Start != 4 {
		t.Errorf("Previous did not wrap: %d", m.Start)
	}
}

func TestFindStartsAtCursor(t *testing.T) {
	eng := engine.New(engine.WithContent("ab ab ab"))
	f := FindState{Query: "ab"}
	f.Search(eng, 4)
	if m, _ := f.CurrentMatch(); m.Start != 6 {
		t.Errorf("Current match at %d, want first match at/after 4 (6)", m.Start)
	}
}

func TestReplaceCurrentAdvances(t *testing.T) {
	ed := newTestEditor("cat dog cat")
	ed.Apply(Input{Action: ActionFind, Query: "cat"})
	ed.Apply(Input{Action: ActionReplace, Text: "bird"})
	if got := ed.Engine().Text(); got != "bird dog cat" {
		t.Fatalf("text = %q", got)
	}
	// Search state refreshed against the new text.
	if len(ed.Find.Matches) != 1 {
		t.Errorf("matches after replace = %d, want 1", len(ed.Find.Matches))
	}
}
