package lsp

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// CompletionMaxVisible is the default popup height in items.
const CompletionMaxVisible = 10

// WordCompletionItem is a fallback completion mined from the document
// text.
type WordCompletionItem struct {
	Word string
}

// UnifiedCompletionItem is one row of the filtered completion list,
// either a server item or a mined word.
type UnifiedCompletionItem struct {
	LSP  *CompletionItem
	Word string
}

// Label returns the display label.
func (u UnifiedCompletionItem) Label() string {
	if u.LSP != nil {
		return u.LSP.Label
	}
	return u.Word
}

// Insert returns the text inserted on accept.
func (u UnifiedCompletionItem) Insert() string {
	if u.LSP != nil {
		return u.LSP.Insert()
	}
	return u.Word
}

// IsWord reports whether the item came from document mining.
func (u UnifiedCompletionItem) IsWord() bool {
	return u.LSP == nil
}

// CompletionState is the completion popup model. The renderer reads it;
// the editor owns and mutates it.
type CompletionState struct {
	// Visible reports whether the popup is open.
	Visible bool

	// Items is the unfiltered server list.
	Items []CompletionItem

	// WordItems are completions mined from the document, appended after
	// server items when a filter is active.
	WordItems []WordCompletionItem

	// SelectedIndex indexes into the filtered list.
	SelectedIndex int

	// ScrollOffset is the first visible filtered index.
	ScrollOffset int

	// StartCharIndex is the char offset where completion was triggered;
	// text typed between it and the cursor becomes the filter.
	StartCharIndex int

	// Filter is what the user typed since the popup opened.
	Filter string

	// IsIncomplete marks a partial server list that should be re-queried
	// as the filter grows.
	IsIncomplete bool
}

// fuzzyGate reports whether pattern is a case-insensitive subsequence of
// candidate. Ranking among survivors is done with a string-similarity
// metric; the subsequence gate is what makes it feel like fuzzy filtering
// rather than spell correction.
func fuzzyGate(candidate, pattern string) bool {
	if pattern == "" {
		return true
	}
	c := strings.ToLower(candidate)
	p := strings.ToLower(pattern)
	i := 0
	for _, r := range c {
		if i < len(p) && r == rune(p[i]) {
			i++
		}
	}
	return i == len(p)
}

var completionRanker = metrics.NewJaroWinkler()

// fuzzyScore ranks a gated candidate against the filter. Higher is
// better.
func fuzzyScore(candidate, pattern string) float64 {
	score := strutil.Similarity(strings.ToLower(candidate), strings.ToLower(pattern), completionRanker)
	if strings.HasPrefix(strings.ToLower(candidate), strings.ToLower(pattern)) {
		score += 1
	}
	return score
}

// FilteredItems applies the fuzzy filter: server items first, ordered by
// score descending, then mined words de-duplicated against server
// labels. With an empty filter the server list passes through unranked
// and word completions are suppressed.
func (s *CompletionState) FilteredItems() []UnifiedCompletionItem {
	if s.Filter == "" {
		out := make([]UnifiedCompletionItem, 0, len(s.Items))
		for i := range s.Items {
			out = append(out, UnifiedCompletionItem{LSP: &s.Items[i]})
		}
		return out
	}

	var lspScored []scoredItem
	for i := range s.Items {
		item := &s.Items[i]
		target := item.Label
		if !fuzzyGate(target, s.Filter) {
			if item.FilterText == "" || !fuzzyGate(item.FilterText, s.Filter) {
				continue
			}
			target = item.FilterText
		}
		lspScored = append(lspScored, scoredItem{UnifiedCompletionItem{LSP: item}, fuzzyScore(target, s.Filter)})
	}
	sortScoredDesc(lspScored)

	lspLabels := make(map[string]bool, len(s.Items))
	for i := range s.Items {
		lspLabels[s.Items[i].Label] = true
	}

	var wordScored []scoredItem
	for _, w := range s.WordItems {
		if lspLabels[w.Word] || !fuzzyGate(w.Word, s.Filter) {
			continue
		}
		wordScored = append(wordScored, scoredItem{UnifiedCompletionItem{Word: w.Word}, fuzzyScore(w.Word, s.Filter)})
	}
	sortScoredDesc(wordScored)

	out := make([]UnifiedCompletionItem, 0, len(lspScored)+len(wordScored))
	for _, sc := range lspScored {
		out = append(out, sc.item)
	}
	for _, sc := range wordScored {
		out = append(out, sc.item)
	}
	return out
}

type scoredItem struct {
	item  UnifiedCompletionItem
	score float64
}

func sortScoredDesc(items []scoredItem) {
	// Insertion sort keeps equal-score items in their original order,
	// which for server items is the server's own ranking.
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].score > items[j-1].score; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// UpdateWordCompletions mines identifier-like words (length >= 2,
// alphanumeric or underscore runs) from text, skipping the word under
// the cursor. cursorByte is the cursor's byte offset into text.
func (s *CompletionState) UpdateWordCompletions(text string, cursorByte int) {
	cursorWord := wordAtByte(text, cursorByte)
	seen := make(map[string]bool)
	var words []WordCompletionItem

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := text[start:end]
		if len(word) >= 2 && word != cursorWord && !seen[word] {
			seen[word] = true
			words = append(words, WordCompletionItem{Word: word})
		}
		start = -1
	}
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if start < 0 {
				start = i
			}
		} else {
			flush(i)
		}
	}
	flush(len(text))

	s.WordItems = words
}

// wordAtByte returns the identifier containing the byte offset, or ""
// when the offset is not inside one.
func wordAtByte(text string, offset int) string {
	if offset <= 0 || offset > len(text) {
		return ""
	}
	isWord := func(r byte) bool {
		return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') || r >= 0x80
	}
	start := offset
	for start > 0 && isWord(text[start-1]) {
		start--
	}
	end := offset
	for end < len(text) && isWord(text[end]) {
		end++
	}
	if start == end {
		return ""
	}
	return text[start:end]
}

// EnsureSelectedVisible clamps the selection and scrolls it into the
// window of maxVisible rows.
func (s *CompletionState) EnsureSelectedVisible(maxVisible int) {
	if maxVisible <= 0 {
		maxVisible = CompletionMaxVisible
	}
	count := len(s.FilteredItems())
	if count == 0 {
		s.SelectedIndex = 0
		s.ScrollOffset = 0
		return
	}
	if s.SelectedIndex >= count {
		s.SelectedIndex = count - 1
	}
	if s.SelectedIndex < 0 {
		s.SelectedIndex = 0
	}
	if s.SelectedIndex < s.ScrollOffset {
		s.ScrollOffset = s.SelectedIndex
	} else if s.SelectedIndex >= s.ScrollOffset+maxVisible {
		s.ScrollOffset = s.SelectedIndex - maxVisible + 1
	}
	if maxScroll := count - maxVisible; s.ScrollOffset > maxScroll {
		s.ScrollOffset = maxScroll
	}
	if s.ScrollOffset < 0 {
		s.ScrollOffset = 0
	}
}

// MoveSelection moves the selection by delta, clamped to the filtered
// list.
func (s *CompletionState) MoveSelection(delta, maxVisible int) {
	s.SelectedIndex += delta
	s.EnsureSelectedVisible(maxVisible)
}

// Selected returns the currently selected filtered item.
func (s *CompletionState) Selected() (UnifiedCompletionItem, bool) {
	items := s.FilteredItems()
	if len(items) == 0 || s.SelectedIndex >= len(items) {
		return UnifiedCompletionItem{}, false
	}
	return items[s.SelectedIndex], true
}

// Open installs a server reply and shows the popup.
func (s *CompletionState) Open(items []CompletionItem, isIncomplete bool, startCharIndex int) {
	s.Visible = true
	s.Items = items
	s.IsIncomplete = isIncomplete
	s.StartCharIndex = startCharIndex
	s.SelectedIndex = 0
	s.ScrollOffset = 0
	s.Filter = ""
}

// Reset hides the popup and clears its state.
func (s *CompletionState) Reset() {
	s.Visible = false
	s.Items = nil
	s.WordItems = nil
	s.SelectedIndex = 0
	s.ScrollOffset = 0
	s.Filter = ""
	s.IsIncomplete = false
}
