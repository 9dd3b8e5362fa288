package editor

import (
	"strings"

	"github.com/dshills/keystorm/internal/engine"
)

// Match is one search hit in byte offsets.
type Match struct {
	Start engine.ByteOffset
	End   engine.ByteOffset
}

// FindState holds the search query and its matches. Matches are kept in
// ascending start order; with WholeWord set no two matches overlap.
type FindState struct {
	Query         string
	CaseSensitive bool
	WholeWord     bool

	Matches []Match
	Current int

	// Active reports whether the search bar is open.
	Active bool
}

// Search recomputes Matches against the engine's text and resets
// Current to the first match at or after fromOffset.
func (f *FindState) Search(e *engine.Engine, fromOffset engine.ByteOffset) {
	f.Matches = f.Matches[:0]
	f.Current = 0
	if f.Query == "" {
		return
	}

	text := e.Text()
	query := f.Query
	haystack := text
	if !f.CaseSensitive {
		haystack = strings.ToLower(text)
		query = strings.ToLower(query)
	}

	for from := 0; ; {
		i := strings.Index(haystack[from:], query)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(query)
		if !f.WholeWord || isWholeWord(text, start, end) {
			f.Matches = append(f.Matches, Match{
				Start: engine.ByteOffset(start),
				End:   engine.ByteOffset(end),
			})
			if f.WholeWord {
				// Restarting past the hit keeps whole-word matches
				// non-overlapping even for self-overlapping queries.
				from = end
				continue
			}
		}
		from = start + 1
	}

	for i, m := range f.Matches {
		if m.Start >= fromOffset {
			f.Current = i
			return
		}
	}
	f.Current = 0
}

// isWholeWord reports whether text[start:end] is not flanked by word
// characters.
func isWholeWord(text string, start, end int) bool {
	if start > 0 {
		if r := previousRune(text, start); classify(r) == classWord {
			return false
		}
	}
	if end < len(text) {
		if r, _ := decodeRune(text, end); classify(r) == classWord {
			return false
		}
	}
	return true
}

func previousRune(text string, at int) rune {
	r := rune(text[at-1])
	if r < 0x80 {
		return r
	}
	for i := at - 1; i >= 0 && at-i <= 4; i-- {
		if text[i]&0xC0 != 0x80 {
			r, _ = decodeRune(text, i)
			return r
		}
	}
	return r
}

func decodeRune(text string, at int) (rune, int) {
	for _, r := range text[at:] {
		return r, len(string(r))
	}
	return 0, 0
}

// Next advances to the following match, wrapping.
func (f *FindState) Next() (Match, bool) {
	if len(f.Matches) == 0 {
		return Match{}, false
	}
	f.Current = (f.Current + 1) % len(f.Matches)
	return f.Matches[f.Current], true
}

// Previous steps to the preceding match, wrapping.
func (f *FindState) Previous() (Match, bool) {
	if len(f.Matches) == 0 {
		return Match{}, false
	}
	f.Current--
	if f.Current < 0 {
		f.Current = len(f.Matches) - 1
	}
	return f.Matches[f.Current], true
}

// CurrentMatch returns the selected match.
func (f *FindState) CurrentMatch() (Match, bool) {
	if len(f.Matches) == 0 || f.Current >= len(f.Matches) {
		return Match{}, false
	}
	return f.Matches[f.Current], true
}

// Clear closes the search.
func (f *FindState) Clear() {
	f.Query = ""
	f.Matches = nil
	f.Current = 0
	f.Active = false
}
