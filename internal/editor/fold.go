package editor

import (
	"strings"

	"github.com/dshills/keystorm/internal/displaymap"
)

// computeFoldRegions derives foldable regions from indentation: a line
// whose successors are more deeply indented heads a region spanning the
// deeper block. Blank lines extend whatever region they sit inside.
func computeFoldRegions(lineCount uint32, lineText func(uint32) string) []displaymap.FoldRegion {
	indents := make([]int, lineCount)
	blank := make([]bool, lineCount)
	for i := uint32(0); i < lineCount; i++ {
		text := lineText(i)
		if strings.TrimSpace(text) == "" {
			blank[i] = true
			continue
		}
		indents[i] = indentWidth(text)
	}

	var regions []displaymap.FoldRegion
	for i := uint32(0); i < lineCount; i++ {
		if blank[i] {
			continue
		}
		head := indents[i]

		// Find the first following non-blank line; it must be deeper.
		j := i + 1
		for j < lineCount && blank[j] {
			j++
		}
		if j >= lineCount || indents[j] <= head {
			continue
		}

		// Extend through the deeper block, letting trailing blanks fall
		// outside the region.
		end := i
		for k := j; k < lineCount; k++ {
			if blank[k] {
				continue
			}
			if indents[k] <= head {
				break
			}
			end = k
		}
		if end > i {
			regions = append(regions, displaymap.FoldRegion{
				StartLine:   i,
				EndLine:     end,
				Kind:        displaymap.FoldBlock,
				IndentLevel: uint32(head),
			})
		}
	}
	return regions
}

// indentWidth counts leading whitespace, tabs expanded to 4.
func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}

// foldState tracks which derived regions are collapsed, keyed by header
// line.
type foldState struct {
	regions []displaymap.FoldRegion
	folded  map[uint32]bool
}

func newFoldState() *foldState {
	return &foldState{folded: make(map[uint32]bool)}
}

// update recomputes the derived regions after an edit, carrying over
// fold flags for headers that still exist.
func (s *foldState) update(lineCount uint32, lineText func(uint32) string) {
	s.regions = computeFoldRegions(lineCount, lineText)
	valid := make(map[uint32]bool, len(s.regions))
	for _, r := range s.regions {
		valid[r.StartLine] = true
	}
	for line := range s.folded {
		if !valid[line] {
			delete(s.folded, line)
		}
	}
}

// regionAt returns the innermost region whose span contains line.
func (s *foldState) regionAt(line uint32) (displaymap.FoldRegion, bool) {
	var best displaymap.FoldRegion
	found := false
	for _, r := range s.regions {
		if r.StartLine <= line && line <= r.EndLine {
			if !found || r.StartLine > best.StartLine {
				best = r
				found = true
			}
		}
	}
	return best, found
}

// fold collapses the region containing line.
func (s *foldState) fold(line uint32) bool {
	r, ok := s.regionAt(line)
	if !ok {
		return false
	}
	s.folded[r.StartLine] = true
	return true
}

// unfold expands the folded region whose span contains line.
func (s *foldState) unfold(line uint32) bool {
	for _, r := range s.regions {
		if s.folded[r.StartLine] && r.StartLine <= line && line <= r.EndLine {
			delete(s.folded, r.StartLine)
			return true
		}
	}
	return false
}

// toggle folds or unfolds at line.
func (s *foldState) toggle(line uint32) {
	if !s.unfold(line) {
		s.fold(line)
	}
}

// foldAll collapses every region.
func (s *foldState) foldAll() {
	for _, r := range s.regions {
		s.folded[r.StartLine] = true
	}
}

// unfoldAll expands everything.
func (s *foldState) unfoldAll() {
	clear(s.folded)
}

// activeRegions returns the regions with their current fold flags, for
// the display map.
func (s *foldState) activeRegions() []displaymap.FoldRegion {
	out := make([]displaymap.FoldRegion, len(s.regions))
	copy(out, s.regions)
	for i := range out {
		out[i].IsFolded = s.folded[out[i].StartLine]
	}
	return out
}
