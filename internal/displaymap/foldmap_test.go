package displaymap

import "testing"

func folded(start, end uint32) FoldRegion {
	return FoldRegion{StartLine: start, EndLine: end, IsFolded: true}
}

func TestFoldMapNoFolds(t *testing.T) {
	m := NewFoldMap()
	m.Update(5, nil)

	if got := m.VisibleLineCount(); got != 5 {
		t.Errorf("VisibleLineCount() = %d, want 5", got)
	}
	if got := m.BufferToFoldRow(2); got != 2 {
		t.Errorf("BufferToFoldRow(2) = %d, want 2", got)
	}
	if got := m.FoldToBufferRow(2); got != 2 {
		t.Errorf("FoldToBufferRow(2) = %d, want 2", got)
	}
}

func TestFoldMapSingleFold(t *testing.T) {
	m := NewFoldMap()
	m.Update(6, []FoldRegion{folded(1, 3)})

	if got := m.VisibleLineCount(); got != 4 {
		t.Errorf("VisibleLineCount() = %d, want 4", got)
	}

	hidden := map[uint32]bool{0: false, 1: false, 2: true, 3: true, 4: false}
	for line, want := range hidden {
		if got := m.IsLineHidden(line); got != want {
			t.Errorf("IsLineHidden(%d) = %v, want %v", line, got, want)
		}
	}

	if got := m.BufferToFoldRow(0); got != 0 {
		t.Errorf("BufferToFoldRow(0) = %d, want 0", got)
	}
	if got := m.BufferToFoldRow(1); got != 1 {
		t.Errorf("BufferToFoldRow(1) = %d, want 1", got)
	}
	if got := m.BufferToFoldRow(4); got != 2 {
		t.Errorf("BufferToFoldRow(4) = %d, want 2", got)
	}
}

func TestFoldMapMultipleFolds(t *testing.T) {
	m := NewFoldMap()
	m.Update(10, []FoldRegion{folded(1, 2), folded(5, 7)})

	if got := m.VisibleLineCount(); got != 7 {
		t.Errorf("VisibleLineCount() = %d, want 7", got)
	}

	tests := []struct {
		bufRow uint32
		want   uint32
	}{
		{0, 0},
		{1, 1},
		{2, 1}, // inside first fold -> fold start
		{3, 2},
		{4, 3},
		{5, 4},
		{8, 5},
	}
	for _, tt := range tests {
		if got := m.BufferToFoldRow(tt.bufRow); got != tt.want {
			t.Errorf("BufferToFoldRow(%d) = %d, want %d", tt.bufRow, got, tt.want)
		}
	}

	roundtrip := []struct {
		foldRow uint32
		want    uint32
	}{
		{0, 0},
		{1, 1},
		{2, 3},
		{4, 5},
		{5, 8},
	}
	for _, tt := range roundtrip {
		if got := m.FoldToBufferRow(tt.foldRow); got != tt.want {
			t.Errorf("FoldToBufferRow(%d) = %d, want %d", tt.foldRow, got, tt.want)
		}
	}
}

func TestFoldAtLine(t *testing.T) {
	m := NewFoldMap()
	m.Update(5, []FoldRegion{folded(1, 3)})

	if _, ok := m.FoldAtLine(0); ok {
		t.Error("FoldAtLine(0) found a fold, want none")
	}
	if _, ok := m.FoldAtLine(1); !ok {
		t.Error("FoldAtLine(1) found no fold, want the fold header")
	}
	if _, ok := m.FoldAtLine(2); ok {
		t.Error("FoldAtLine(2) found a fold, want none (inside, not header)")
	}
}

func TestFoldMapHiddenRowStillMapsDefined(t *testing.T) {
	m := NewFoldMap()
	m.Update(6, []FoldRegion{folded(1, 3)})

	// A point whose row is hidden inside the fold must still resolve to a
	// defined fold row (the header's), never panic.
	p := m.ToFoldPoint(BufferPoint{Row: 2, Col: 4})
	if p.Row != 1 {
		t.Errorf("ToFoldPoint for hidden row = %+v, want Row 1 (fold header)", p)
	}
}
