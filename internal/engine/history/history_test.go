package history

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/keystorm/internal/engine/buffer"
	"github.com/dshills/keystorm/internal/engine/cursor"
)

// workspace builds the buffer/cursor pair commands operate on.
func workspace(content string, cursorAt ByteOffset) (*buffer.Buffer, *cursor.CursorSet) {
	return buffer.NewBufferFromString(content), cursor.NewCursorSetAt(cursorAt)
}

func TestOperationInvertRoundTrip(t *testing.T) {
	op := NewReplaceOperation(Range{Start: 2, End: 5}, "old", "newer")
	inv := op.Invert()

	if inv.Range.Start != 2 || inv.Range.End != 7 {
		t.Errorf("inverted range = %+v", inv.Range)
	}
	if inv.OldText != "newer" || inv.NewText != "old" {
		t.Errorf("inverted texts = %q -> %q", inv.OldText, inv.NewText)
	}
	back := inv.Invert()
	if back.Range != op.Range || back.OldText != op.OldText || back.NewText != op.NewText {
		t.Error("double inversion is not the identity")
	}
}

func TestOperationPredicatesAndDelta(t *testing.T) {
	ins := NewInsertOperation(4, "abc")
	del := NewDeleteOperation(Range{Start: 1, End: 4}, "xyz")
	rep := NewReplaceOperation(Range{Start: 0, End: 2}, "ab", "wxyz")

	if !ins.IsInsert() || ins.BytesDelta() != 3 {
		t.Errorf("insert: %+v", ins)
	}
	if !del.IsDelete() || del.BytesDelta() != -3 {
		t.Errorf("delete: %+v", del)
	}
	if !rep.IsReplace() || rep.BytesDelta() != 2 {
		t.Errorf("replace: %+v", rep)
	}
}

func TestInsertCommandAtCursor(t *testing.T) {
	buf, cursors := workspace("hello", 5)
	cmd := NewInsertCommand(" world")

	if err := cmd.Execute(buf, cursors); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if buf.Text() != "hello world" {
		t.Fatalf("text = %q", buf.Text())
	}
	if cursors.PrimaryCursor() != 11 {
		t.Errorf("cursor = %d", cursors.PrimaryCursor())
	}

	if err := cmd.Undo(buf, cursors); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if buf.Text() != "hello" || cursors.PrimaryCursor() != 5 {
		t.Errorf("after undo: %q, cursor %d", buf.Text(), cursors.PrimaryCursor())
	}
}

func TestInsertCommandReplacesSelection(t *testing.T) {
	buf, _ := workspace("hello world", 0)
	cursors := cursor.NewCursorSet(cursor.NewSelection(0, 5))

	if err := NewInsertCommand("goodbye").Execute(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "goodbye world" {
		t.Errorf("text = %q", buf.Text())
	}
}

func TestInsertCommandMultiCursor(t *testing.T) {
	buf, _ := workspace("a b c", 0)
	cursors := cursor.NewCursorSetFromSlice([]cursor.Selection{
		cursor.NewCursorSelection(1),
		cursor.NewCursorSelection(3),
		cursor.NewCursorSelection(5),
	})

	cmd := NewInsertCommand("!")
	if err := cmd.Execute(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "a! b! c!" {
		t.Fatalf("text = %q", buf.Text())
	}

	if err := cmd.Undo(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "a b c" {
		t.Errorf("after undo: %q", buf.Text())
	}
}

func TestDeleteCommandDirections(t *testing.T) {
	buf, cursors := workspace("abcdef", 3)
	if err := NewDeleteCommand(DeleteBackward).Execute(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "abdef" || cursors.PrimaryCursor() != 2 {
		t.Fatalf("backspace: %q, cursor %d", buf.Text(), cursors.PrimaryCursor())
	}

	if err := NewDeleteCommand(DeleteForward).Execute(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "abef" || cursors.PrimaryCursor() != 2 {
		t.Errorf("forward delete: %q, cursor %d", buf.Text(), cursors.PrimaryCursor())
	}
}

func TestDeleteCommandSelectionAndUndo(t *testing.T) {
	buf, _ := workspace("hello world", 0)
	cursors := cursor.NewCursorSet(cursor.NewSelection(5, 11))

	cmd := NewDeleteCommand(DeleteBackward)
	if err := cmd.Execute(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "hello" {
		t.Fatalf("text = %q", buf.Text())
	}
	if err := cmd.Undo(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "hello world" {
		t.Errorf("after undo: %q", buf.Text())
	}
}

func TestDeleteCommandCount(t *testing.T) {
	buf, cursors := workspace("abcdef", 5)
	if err := NewDeleteCommandN(DeleteBackward, 3).Execute(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "abf" {
		t.Errorf("text = %q", buf.Text())
	}
}

func TestReplaceCommand(t *testing.T) {
	buf, cursors := workspace("one two three", 0)
	cmd := NewReplaceCommand(Range{Start: 4, End: 7}, "2")
	if err := cmd.Execute(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "one 2 three" {
		t.Fatalf("text = %q", buf.Text())
	}
	if err := cmd.Undo(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "one two three" {
		t.Errorf("after undo: %q", buf.Text())
	}
}

func TestCompoundCommandUndoesAsOne(t *testing.T) {
	buf, cursors := workspace("", 0)
	compound := NewCompoundCommand("two inserts",
		NewInsertCommand("ab"),
		NewInsertCommand("cd"),
	)
	if err := compound.Execute(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "abcd" {
		t.Fatalf("text = %q", buf.Text())
	}
	if err := compound.Undo(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "" {
		t.Errorf("after undo: %q", buf.Text())
	}
}

func TestHistoryUndoRedoCycle(t *testing.T) {
	buf, cursors := workspace("", 0)
	h := NewHistory(100)

	h.Execute(NewInsertCommand("one "), buf, cursors)
	h.Execute(NewInsertCommand("two"), buf, cursors)
	if buf.Text() != "one two" {
		t.Fatalf("text = %q", buf.Text())
	}

	if err := h.Undo(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "one " {
		t.Fatalf("after one undo: %q", buf.Text())
	}
	if err := h.Redo(buf, cursors); err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "one two" {
		t.Errorf("after redo: %q", buf.Text())
	}
}

func TestHistoryRedoClearedByNewEdit(t *testing.T) {
	buf, cursors := workspace("", 0)
	h := NewHistory(100)

	h.Execute(NewInsertCommand("a"), buf, cursors)
	h.Undo(buf, cursors)
	if !h.CanRedo() {
		t.Fatal("expected redo available")
	}
	h.Execute(NewInsertCommand("b"), buf, cursors)
	if h.CanRedo() {
		t.Error("new edit must clear the redo stack")
	}
}

func TestHistoryDepthBound(t *testing.T) {
	buf, cursors := workspace("", 0)
	h := NewHistory(3)

	for i := 0; i < 6; i++ {
		h.Execute(NewInsertCommand("x"), buf, cursors)
	}
	if h.UndoCount() != 3 {
		t.Errorf("UndoCount = %d, want bounded 3", h.UndoCount())
	}
}

func TestHistoryEmptyStacks(t *testing.T) {
	buf, cursors := workspace("", 0)
	h := NewHistory(10)

	if h.CanUndo() || h.CanRedo() {
		t.Error("fresh history reports available undo/redo")
	}
	if err := h.Undo(buf, cursors); err == nil {
		t.Error("Undo on empty stack must fail")
	}
	if err := h.Redo(buf, cursors); err == nil {
		t.Error("Redo on empty stack must fail")
	}
}

func TestHistoryGroupingIsOneStep(t *testing.T) {
	buf, cursors := workspace("", 0)
	h := NewHistory(100)

	h.BeginGroup("scripted")
	h.Execute(NewInsertCommand("aa"), buf, cursors)
	h.Execute(NewInsertCommand("bb"), buf, cursors)
	h.EndGroup()

	if h.UndoCount() != 1 {
		t.Fatalf("UndoCount = %d, want 1", h.UndoCount())
	}
	h.Undo(buf, cursors)
	if buf.Text() != "" {
		t.Errorf("group undo left %q", buf.Text())
	}
}

func TestHistoryTransaction(t *testing.T) {
	buf, cursors := workspace("", 0)
	h := NewHistory(100)

	err := h.Transaction("ok", func() error {
		return h.Execute(NewInsertCommand("x"), buf, cursors)
	})
	if err != nil || h.UndoCount() != 1 {
		t.Fatalf("Transaction: err=%v count=%d", err, h.UndoCount())
	}

	boom := errors.New("boom")
	err = h.Transaction("fails", func() error {
		h.Execute(NewInsertCommand("y"), buf, cursors)
		return boom
	})
	if err != boom {
		t.Fatalf("Transaction error = %v", err)
	}
	// The cancelled group records nothing new.
	if h.UndoCount() != 1 {
		t.Errorf("UndoCount = %d after cancelled transaction", h.UndoCount())
	}
}

func TestHistoryExecuteGrouped(t *testing.T) {
	buf, cursors := workspace("", 0)
	h := NewHistory(100)

	err := h.ExecuteGrouped("pair", buf, cursors,
		NewInsertCommand("12"),
		NewInsertCommand("34"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if h.UndoCount() != 1 {
		t.Fatalf("UndoCount = %d", h.UndoCount())
	}
	h.Undo(buf, cursors)
	if buf.Text() != "" {
		t.Errorf("after undo: %q", buf.Text())
	}
}

func TestCoalescingMergesTypingRun(t *testing.T) {
	buf, cursors := workspace("", 0)
	h := NewHistory(100)

	for _, ch := range []string{"g", "o", "p", "h", "e", "r"} {
		if err := h.ExecuteCoalescing(NewInsertCommand(ch), buf, cursors); err != nil {
			t.Fatal(err)
		}
	}
	if buf.Text() != "gopher" {
		t.Fatalf("text = %q", buf.Text())
	}
	if h.UndoCount() != 1 {
		t.Fatalf("UndoCount = %d, want one coalesced step", h.UndoCount())
	}
	h.Undo(buf, cursors)
	if buf.Text() != "" {
		t.Errorf("after undo: %q", buf.Text())
	}
}

func TestCoalescingKindBoundaries(t *testing.T) {
	buf, cursors := workspace("abc", 3)
	h := NewHistory(100)

	// A typed char, then a backspace: different categories, two steps.
	h.ExecuteCoalescing(NewInsertCommand("d"), buf, cursors)
	h.ExecuteCoalescing(NewDeleteCommand(DeleteBackward), buf, cursors)
	if h.UndoCount() != 2 {
		t.Errorf("UndoCount = %d, want 2 (insert vs delete)", h.UndoCount())
	}

	// Two backspaces coalesce with each other.
	h.ExecuteCoalescing(NewDeleteCommand(DeleteBackward), buf, cursors)
	if h.UndoCount() != 2 {
		t.Errorf("UndoCount = %d, want 2 (backspace run merged)", h.UndoCount())
	}
}

func TestCoalescingNewlineAndPasteBarriers(t *testing.T) {
	buf, cursors := workspace("", 0)
	h := NewHistory(100)

	h.ExecuteCoalescing(NewInsertCommand("a"), buf, cursors)
	h.ExecuteCoalescing(NewInsertCommand("\n"), buf, cursors)
	h.ExecuteCoalescing(NewInsertCommand("b"), buf, cursors)
	h.ExecuteCoalescing(NewPasteCommand("PASTE"), buf, cursors)
	h.ExecuteCoalescing(NewInsertCommand("c"), buf, cursors)

	// a | newline | b | paste | c — nothing merges across the barriers.
	if h.UndoCount() != 5 {
		t.Errorf("UndoCount = %d, want 5", h.UndoCount())
	}
}

func TestCoalescingRequiresContiguity(t *testing.T) {
	buf, cursors := workspace("", 0)
	h := NewHistory(100)

	h.ExecuteCoalescing(NewInsertCommand("ab"), buf, cursors)
	// Move the cursor away: the next insert is not contiguous.
	cursors.Set(cursor.NewCursorSelection(0))
	h.ExecuteCoalescing(NewInsertCommand("z"), buf, cursors)

	if h.UndoCount() != 2 {
		t.Errorf("UndoCount = %d, want 2 after cursor move", h.UndoCount())
	}
}

func TestCoalescingRespectsGroupInterval(t *testing.T) {
	buf, cursors := workspace("", 0)
	h := NewHistory(100)
	h.SetGroupInterval(time.Millisecond)

	h.ExecuteCoalescing(NewInsertCommand("a"), buf, cursors)
	time.Sleep(5 * time.Millisecond)
	h.ExecuteCoalescing(NewInsertCommand("b"), buf, cursors)

	if h.UndoCount() != 2 {
		t.Errorf("UndoCount = %d, want 2 after the interval lapsed", h.UndoCount())
	}
}

func TestCoalescingStopsAtUndoBoundary(t *testing.T) {
	buf, cursors := workspace("", 0)
	h := NewHistory(100)

	h.ExecuteCoalescing(NewInsertCommand("a"), buf, cursors)
	h.Undo(buf, cursors)
	h.Redo(buf, cursors)
	h.ExecuteCoalescing(NewInsertCommand("b"), buf, cursors)

	// The redone "a" and the new "b" must be separate steps.
	if h.UndoCount() != 2 {
		t.Errorf("UndoCount = %d, want 2", h.UndoCount())
	}
	h.Undo(buf, cursors)
	if buf.Text() != "a" {
		t.Errorf("after undo: %q, want %q", buf.Text(), "a")
	}
}

func TestReplaceNeverCoalesces(t *testing.T) {
	buf, cursors := workspace("aaaa", 0)
	h := NewHistory(100)

	h.ExecuteCoalescing(NewReplaceCommand(Range{Start: 0, End: 1}, "b"), buf, cursors)
	h.ExecuteCoalescing(NewReplaceCommand(Range{Start: 1, End: 2}, "c"), buf, cursors)
	if h.UndoCount() != 2 {
		t.Errorf("UndoCount = %d, want 2 (replace is always its own step)", h.UndoCount())
	}
}
