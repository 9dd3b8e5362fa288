package lsp

import "sort"

// SortTextEditsDescending orders edits by start position, last first.
// Applying in this order keeps earlier positions valid while later text
// shifts underneath them.
func SortTextEditsDescending(edits []TextEdit) {
	sort.SliceStable(edits, func(i, j int) bool {
		return ComparePositions(edits[i].Range.Start, edits[j].Range.Start) > 0
	})
}
