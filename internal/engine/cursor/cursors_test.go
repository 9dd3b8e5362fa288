package cursor

import "testing"

func set(sels ...Selection) *CursorSet {
	return NewCursorSetFromSlice(sels)
}

func TestCursorSetNeverEmpty(t *testing.T) {
	cs := NewCursorSetFromSlice(nil)
	if cs.Count() != 1 {
		t.Fatalf("Count = %d, want fallback cursor", cs.Count())
	}
	cs.Clear()
	if cs.Count() != 1 {
		t.Errorf("Count after Clear = %d, want 1", cs.Count())
	}
}

func TestCursorSetSortedByStart(t *testing.T) {
	cs := set(NewCursorSelection(50))
	cs.Add(NewCursorSelection(10))
	cs.Add(NewCursorSelection(30))

	all := cs.All()
	for i := 1; i < len(all); i++ {
		if all[i].Start() < all[i-1].Start() {
			t.Fatalf("not sorted: %+v", all)
		}
	}
}

func TestCursorSetMergesOverlapping(t *testing.T) {
	cs := set(NewSelection(0, 10))
	cs.Add(NewSelection(5, 15))
	if cs.Count() != 1 {
		t.Fatalf("Count = %d, want merged 1", cs.Count())
	}
	merged := cs.Primary()
	if merged.Start() != 0 || merged.End() != 15 {
		t.Errorf("merged = [%d,%d)", merged.Start(), merged.End())
	}
}

func TestCursorSetMergesAdjacent(t *testing.T) {
	cs := set(NewSelection(0, 5))
	cs.Add(NewSelection(5, 9))
	if cs.Count() != 1 {
		t.Fatalf("Count = %d, want 1 (touching selections merge)", cs.Count())
	}
	if got := cs.Primary(); got.Start() != 0 || got.End() != 9 {
		t.Errorf("merged = [%d,%d)", got.Start(), got.End())
	}
}

func TestMergePreservesPrimaryDirection(t *testing.T) {
	// Primary faces backward (head before anchor). Merging a secondary
	// into it must not flip it forward.
	primary := NewSelection(10, 4) // anchor 10, head 4
	cs := NewCursorSet(primary)
	cs.Add(NewSelection(8, 14))

	if cs.Count() != 1 {
		t.Fatalf("Count = %d", cs.Count())
	}
	merged := cs.Primary()
	if !merged.IsBackward() {
		t.Errorf("merge flipped the primary forward: %+v", merged)
	}
	if merged.Start() != 4 || merged.End() != 14 {
		t.Errorf("merged span = [%d,%d), want [4,14)", merged.Start(), merged.End())
	}
}

func TestDisjointSelectionsStaySeparate(t *testing.T) {
	cs := set(NewSelection(0, 3))
	cs.Add(NewSelection(10, 13))
	cs.Add(NewSelection(20, 20))
	if cs.Count() != 3 {
		t.Errorf("Count = %d, want 3", cs.Count())
	}
	for i := 1; i < cs.Count(); i++ {
		if cs.Get(i).Start() < cs.Get(i-1).End() {
			t.Error("selections overlap")
		}
	}
}

func TestClearSecondaryKeepsPrimary(t *testing.T) {
	cs := set(NewSelection(5, 9))
	cs.Add(NewCursorSelection(20))
	cs.Add(NewCursorSelection(30))

	cs.Clear()
	if cs.Count() != 1 {
		t.Fatalf("Count = %d", cs.Count())
	}
	if got := cs.Primary(); got.Start() != 5 || got.End() != 9 {
		t.Errorf("primary after Clear = %+v", got)
	}
}

func TestCollapseAll(t *testing.T) {
	cs := set(NewSelection(0, 5))
	cs.Add(NewSelection(10, 18))
	cs.CollapseAll()
	for _, sel := range cs.All() {
		if !sel.IsEmpty() {
			t.Errorf("selection survived collapse: %+v", sel)
		}
	}
}

func TestClampDropsOutOfRange(t *testing.T) {
	cs := set(NewSelection(2, 40))
	cs.Clamp(10)
	got := cs.Primary()
	if got.End() > 10 {
		t.Errorf("Clamp left end %d past max", got.End())
	}
}

func TestMapInPlaceRenormalizes(t *testing.T) {
	cs := set(NewCursorSelection(0))
	cs.Add(NewCursorSelection(10))

	// Move everything to the same offset: entries must merge.
	cs.MapInPlace(func(Selection) Selection { return NewCursorSelection(7) })
	if cs.Count() != 1 {
		t.Errorf("Count = %d after converging move", cs.Count())
	}
}

func TestSelectionRangesSkipsCursors(t *testing.T) {
	cs := set(NewSelection(0, 4))
	cs.Add(NewCursorSelection(10))
	cs.Add(NewSelection(20, 22))

	ranges := cs.SelectionRanges()
	if len(ranges) != 2 {
		t.Errorf("SelectionRanges = %+v", ranges)
	}
}

func TestSelectionAlgebra(t *testing.T) {
	forward := NewSelection(3, 9)
	backward := NewSelection(9, 3)

	if forward.Start() != 3 || forward.End() != 9 || !forward.IsForward() {
		t.Errorf("forward: %+v", forward)
	}
	if backward.Start() != 3 || backward.End() != 9 || !backward.IsBackward() {
		t.Errorf("backward: %+v", backward)
	}
	if flipped := forward.Flip(); !flipped.IsBackward() || flipped.Start() != 3 {
		t.Errorf("Flip: %+v", flipped)
	}
	if got := forward.CollapseToStart(); got.Head != 3 || !got.IsEmpty() {
		t.Errorf("CollapseToStart: %+v", got)
	}
	if got := backward.CollapseToEnd(); got.Head != 9 || !got.IsEmpty() {
		t.Errorf("CollapseToEnd: %+v", got)
	}
	if !forward.Contains(3) || forward.Contains(9) {
		t.Error("Contains must be start-inclusive, end-exclusive")
	}
}

func TestTransformOffsetRules(t *testing.T) {
	tests := []struct {
		name   string
		offset ByteOffset
		edit   Edit
		want   ByteOffset
	}{
		{
			name:   "edit after offset",
			offset: 5,
			edit:   Edit{Range: Range{Start: 10, End: 12}},
			want:   5,
		},
		{
			name:   "insert before offset shifts right",
			offset: 5,
			edit:   Edit{Range: Range{Start: 2, End: 2}, NewText: "xxx"},
			want:   8,
		},
		{
			name:   "delete before offset shifts left",
			offset: 10,
			edit:   Edit{Range: Range{Start: 2, End: 6}},
			want:   6,
		},
		{
			name:   "offset inside deletion collapses to start",
			offset: 5,
			edit:   Edit{Range: Range{Start: 3, End: 8}},
			want:   3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TransformOffset(tt.offset, tt.edit); got != tt.want {
				t.Errorf("TransformOffset = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTransformStickyAtInsertionPoint(t *testing.T) {
	insert := Edit{Range: Range{Start: 5, End: 5}, NewText: "abc"}

	if got := TransformOffsetSticky(5, insert, true); got != 5 {
		t.Errorf("sticky (left-biased) = %d, want 5", got)
	}
	if got := TransformOffsetSticky(5, insert, false); got != 8 {
		t.Errorf("non-sticky (right-biased) = %d, want 8", got)
	}
}

func TestTransformSelectionBiasPairing(t *testing.T) {
	// Insertion exactly at both endpoints of a cursor: the head stays
	// (left bias), the anchor moves (right bias).
	sel := NewCursorSelection(5)
	moved := TransformSelection(sel, Edit{Range: Range{Start: 5, End: 5}, NewText: "xy"})
	if moved.Head != 5 {
		t.Errorf("head = %d, want left-biased 5", moved.Head)
	}
	if moved.Anchor != 7 {
		t.Errorf("anchor = %d, want right-biased 7", moved.Anchor)
	}
}

func TestTransformSelectionThroughDeletion(t *testing.T) {
	sel := NewSelection(2, 5)
	// Delete a range covering both endpoints.
	moved := TransformSelection(sel, Edit{Range: Range{Start: 1, End: 6}})
	if moved.Anchor != 1 || moved.Head != 1 {
		t.Errorf("collapsed = %+v, want both endpoints at 1", moved)
	}
}

func TestTransformCursorSetMulti(t *testing.T) {
	cs := set(NewCursorSelection(4))
	cs.Add(NewCursorSelection(10))

	// Two inserts, given in application order.
	edits := []Edit{
		{Range: Range{Start: 0, End: 0}, NewText: "aa"},
		{Range: Range{Start: 8, End: 8}, NewText: "b"},
	}
	TransformCursorSetMulti(cs, edits)

	all := cs.All()
	if all[0].Head != 6 {
		t.Errorf("first cursor = %d, want 6", all[0].Head)
	}
	if all[1].Head != 13 {
		t.Errorf("second cursor = %d, want 13", all[1].Head)
	}
}

func TestSortEditsReverse(t *testing.T) {
	edits := []Edit{
		{Range: Range{Start: 2, End: 3}},
		{Range: Range{Start: 9, End: 12}},
		{Range: Range{Start: 5, End: 6}},
	}
	SortEditsReverse(edits)
	if !EditsInReverseOrder(edits) {
		t.Errorf("not reverse-ordered: %+v", edits)
	}
	if edits[0].Range.Start != 9 {
		t.Errorf("first = %+v", edits[0])
	}
}
