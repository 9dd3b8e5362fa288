package buffer

import (
	"strings"
	"testing"
)

func TestBufferBasicEditing(t *testing.T) {
	b := NewBufferFromString("hello world")

	end, err := b.Insert(5, ",")
	if err != nil || end != 6 {
		t.Fatalf("Insert = %d, %v", end, err)
	}
	if b.Text() != "hello, world" {
		t.Fatalf("text = %q", b.Text())
	}

	if err := b.Delete(5, 6); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if b.Text() != "hello world" {
		t.Fatalf("text = %q", b.Text())
	}

	end, err = b.Replace(6, 11, "there")
	if err != nil || end != 11 {
		t.Fatalf("Replace = %d, %v", end, err)
	}
	if b.Text() != "hello there" {
		t.Errorf("text = %q", b.Text())
	}
}

func TestBufferRevisionAdvancesOnMutation(t *testing.T) {
	b := NewBufferFromString("x")
	before := b.RevisionID()
	b.Insert(1, "y")
	mid := b.RevisionID()
	if mid <= before {
		t.Error("Insert did not advance the revision")
	}
	b.Delete(0, 1)
	if b.RevisionID() <= mid {
		t.Error("Delete did not advance the revision")
	}
}

func TestBufferContentVersionMatchesEvents(t *testing.T) {
	b := NewBufferFromString("abc")
	var events []TextEditEvent
	b.Subscribe(func(ev TextEditEvent) { events = append(events, ev) })

	b.Insert(3, "d")
	if len(events) != 1 {
		t.Fatalf("events = %d", len(events))
	}
	ev := events[0]
	if ev.StartByte != 3 || ev.OldEndByte != 3 || ev.NewEndByte != 4 {
		t.Errorf("event = %+v", ev)
	}
	if ev.ContentVersion != b.ContentVersion() {
		t.Errorf("event version %d != buffer version %d", ev.ContentVersion, b.ContentVersion())
	}

	b.Delete(0, 2)
	last := events[len(events)-1]
	if last.StartByte != 0 || last.OldEndByte != 2 || last.NewEndByte != 0 {
		t.Errorf("delete event = %+v", last)
	}
}

func TestBufferUnsubscribe(t *testing.T) {
	b := NewBufferFromString("")
	fired := 0
	unsubscribe := b.Subscribe(func(TextEditEvent) { fired++ })
	b.Insert(0, "a")
	unsubscribe()
	b.Insert(1, "b")
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestBufferLineQueries(t *testing.T) {
	b := NewBufferFromString("one\ntwo\nthree")
	if b.LineCount() != 3 {
		t.Fatalf("LineCount = %d", b.LineCount())
	}
	if got := b.LineText(1); got != "two" {
		t.Errorf("LineText(1) = %q", got)
	}
	if got := b.LineLen(2); got != 5 {
		t.Errorf("LineLen(2) = %d", got)
	}
	if got := b.LineStartOffset(1); got != 4 {
		t.Errorf("LineStartOffset(1) = %d", got)
	}
	if got := b.LineEndOffset(0); got != 3 {
		t.Errorf("LineEndOffset(0) = %d", got)
	}
}

func TestBufferPointConversion(t *testing.T) {
	b := NewBufferFromString("ab\ncdef")
	tests := []struct {
		off   ByteOffset
		point Point
	}{
		{0, Point{0, 0}},
		{2, Point{0, 2}},
		{3, Point{1, 0}},
		{6, Point{1, 3}},
	}
	for _, tt := range tests {
		if got := b.OffsetToPoint(tt.off); got != tt.point {
			t.Errorf("OffsetToPoint(%d) = %+v, want %+v", tt.off, got, tt.point)
		}
		if got := b.PointToOffset(tt.point); got != tt.off {
			t.Errorf("PointToOffset(%+v) = %d, want %d", tt.point, got, tt.off)
		}
	}
}

func TestBufferUTF16Conversion(t *testing.T) {
	// 𝄞 is one char, two UTF-16 units, four bytes.
	b := NewBufferFromString("a𝄞b\nx")

	p := b.OffsetToPointUTF16(5) // byte offset of 'b'
	if p.Line != 0 || p.Column != 3 {
		t.Errorf("OffsetToPointUTF16(5) = %+v, want (0:3)", p)
	}
	if got := b.PointUTF16ToOffset(PointUTF16{Line: 0, Column: 3}); got != 5 {
		t.Errorf("PointUTF16ToOffset = %d, want 5", got)
	}
	// Column past the line end clamps to it.
	if got := b.PointUTF16ToOffset(PointUTF16{Line: 1, Column: 99}); got != 8 {
		t.Errorf("clamped = %d, want 8", got)
	}
}

func TestBufferLineEndingNormalization(t *testing.T) {
	b := NewBuffer(WithLineEnding(LineEndingLF))
	b.Insert(0, "a\r\nb\rc\n")
	if got := b.Text(); got != "a\nb\nc\n" {
		t.Errorf("normalized = %q", got)
	}

	crlf := NewBuffer(WithLineEnding(LineEndingCRLF))
	crlf.Insert(0, "a\nb")
	if got := crlf.Text(); got != "a\r\nb" {
		t.Errorf("crlf normalized = %q", got)
	}
}

func TestBufferApplyEdit(t *testing.T) {
	b := NewBufferFromString("hello world")
	result, err := b.ApplyEdit(Edit{Range: Range{Start: 6, End: 11}, NewText: "gopher"})
	if err != nil {
		t.Fatalf("ApplyEdit error: %v", err)
	}
	if b.Text() != "hello gopher" {
		t.Fatalf("text = %q", b.Text())
	}
	if result.OldText != "world" || result.Delta != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.NewRange.Start != 6 || result.NewRange.End != 12 {
		t.Errorf("NewRange = %+v", result.NewRange)
	}
}

func TestBufferApplyEditsReverseOrder(t *testing.T) {
	b := NewBufferFromString("aaa bbb ccc")
	// Highest offset first, as ApplyEdits requires.
	edits := []Edit{
		{Range: Range{Start: 8, End: 11}, NewText: "C"},
		{Range: Range{Start: 0, End: 3}, NewText: "A"},
	}
	if err := b.ApplyEdits(edits); err != nil {
		t.Fatalf("ApplyEdits error: %v", err)
	}
	if b.Text() != "A bbb C" {
		t.Errorf("text = %q", b.Text())
	}
}

func TestBufferBoundsErrors(t *testing.T) {
	b := NewBufferFromString("abc")
	if _, err := b.Insert(99, "x"); err == nil {
		t.Error("Insert past end must fail")
	}
	if err := b.Delete(2, 1); err == nil {
		t.Error("inverted Delete range must fail")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	b := NewBufferFromString("before")
	snap := b.Snapshot()
	b.Replace(0, 6, "after")

	if snap.Text() != "before" {
		t.Error("snapshot observed a later edit")
	}
	if b.Text() != "after" {
		t.Error("buffer lost the edit")
	}
	if snap.RevisionID() == b.RevisionID() {
		t.Error("snapshot revision should lag the buffer's")
	}
}

func TestSnapshotQueries(t *testing.T) {
	b := NewBufferFromString("line a\nline b")
	snap := b.Snapshot()

	if snap.LineCount() != 2 || snap.LineText(1) != "line b" {
		t.Errorf("lines: count=%d text=%q", snap.LineCount(), snap.LineText(1))
	}
	if got := snap.TextRange(5, 9); got != "a\nli" {
		t.Errorf("TextRange = %q", got)
	}
	if r, size := snap.RuneAt(0); r != 'l' || size != 1 {
		t.Errorf("RuneAt(0) = %q, %d", r, size)
	}
	if _, size := snap.RuneAt(99); size != 0 {
		t.Error("RuneAt past end must report size 0")
	}
	if b, ok := snap.ByteAt(6); !ok || b != '\n' {
		t.Errorf("ByteAt(6) = %q, %v", b, ok)
	}
	if snap.Rope().String() != "line a\nline b" {
		t.Error("Rope() content mismatch")
	}
}

func TestSnapshotIterators(t *testing.T) {
	text := strings.Repeat("chunked content line\n", 50)
	snap := NewBufferFromString(text).Snapshot()

	var sb strings.Builder
	chunks := snap.Chunks()
	for chunks.Next() {
		sb.WriteString(chunks.Text())
	}
	if sb.String() != text {
		t.Error("chunk iteration mismatch")
	}

	lines := snap.Lines()
	count := 0
	for lines.Next() {
		count++
	}
	if count != 51 { // 50 content lines plus the empty final line
		t.Errorf("line count = %d", count)
	}
}

func TestRangeAlgebra(t *testing.T) {
	a := NewRange(2, 8)
	b := NewRange(5, 12)

	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Error("Overlaps")
	}
	if got := a.Intersect(b); got.Start != 5 || got.End != 8 {
		t.Errorf("Intersect = %+v", got)
	}
	if got := a.Union(b); got.Start != 2 || got.End != 12 {
		t.Errorf("Union = %+v", got)
	}
	if a.Contains(8) {
		t.Error("End is exclusive")
	}
	if !a.Contains(2) {
		t.Error("Start is inclusive")
	}
	if got := a.Shift(3); got.Start != 5 || got.End != 11 {
		t.Errorf("Shift = %+v", got)
	}
	disjoint := NewRange(20, 25)
	if a.Overlaps(disjoint) || !a.Intersect(disjoint).IsEmpty() {
		t.Error("disjoint ranges")
	}
}

func TestEditPredicates(t *testing.T) {
	insert := Edit{Range: NewRange(3, 3), NewText: "x"}
	del := Edit{Range: NewRange(1, 4)}
	noop := Edit{Range: NewRange(2, 2)}

	if !insert.IsInsert() || insert.IsDelete() || insert.Delta() != 1 {
		t.Errorf("insert predicates: %+v", insert)
	}
	if !del.IsDelete() || del.Delta() != -3 {
		t.Errorf("delete predicates: %+v", del)
	}
	if !noop.IsNoOp() {
		t.Errorf("noop predicates: %+v", noop)
	}
}

func TestPointCompare(t *testing.T) {
	a := Point{Line: 1, Column: 4}
	b := Point{Line: 1, Column: 9}
	c := Point{Line: 2, Column: 0}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Error("column ordering")
	}
	if b.Compare(c) != -1 {
		t.Error("line ordering")
	}
}
