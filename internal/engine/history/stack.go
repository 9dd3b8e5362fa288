package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/keystorm/internal/engine/buffer"
	"github.com/dshills/keystorm/internal/engine/cursor"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// undoEntry wraps a command with metadata.
type undoEntry struct {
	command   Command
	timestamp time.Time
}

// DefaultGroupInterval is the default idle gap allowed between two edits of
// the same kind before auto-coalescing stops joining them into one
// transaction.
const DefaultGroupInterval = 300 * time.Millisecond

// coalesceState records what's needed to decide whether the next command
// joins the currently open (auto-coalesced) transaction.
type coalesceState struct {
	kind        OperationKind
	timestamp   time.Time
	cursorAfter []Selection
}

// History manages undo/redo state for a buffer.
type History struct {
	mu sync.Mutex

	undoStack []*undoEntry
	redoStack []*undoEntry

	// Grouping state
	grouping  bool
	groupName string
	groupCmds []Command

	// Auto-coalescing state (see ExecuteCoalescing).
	groupInterval time.Duration
	lastCoalesce  *coalesceState

	// Configuration
	maxEntries int
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = 1000 // Default
	}
	return &History{
		maxEntries:    maxEntries,
		groupInterval: DefaultGroupInterval,
	}
}

// SetGroupInterval changes the idle gap allowed between coalescing edits.
func (h *History) SetGroupInterval(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.groupInterval = d
}

// GroupInterval returns the current coalescing idle gap.
func (h *History) GroupInterval() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.groupInterval
}

// ExecuteCoalescing runs cmd and records it in the undo stack, merging it
// into the currently open transaction when all of the following hold:
//   - cmd implements Coalescable (ReplaceCommand and anything else that
//     doesn't is always KindOther, which never coalesces)
//   - its kind matches the open transaction's kind exactly (Insert,
//     DeleteBackward and DeleteForward are distinct categories; Newline and
//     Paste never coalesce)
//   - it arrives within GroupInterval of the open transaction's last edit
//   - cursors haven't moved since the open transaction's last edit (the new
//     edit picks up exactly where the last one left the cursor)
//
// An explicit BeginGroup/EndGroup span takes precedence: while grouping,
// commands are appended to the group as usual and coalescing is skipped.
func (h *History) ExecuteCoalescing(cmd Command, buf *buffer.Buffer, cursors *cursor.CursorSet) error {
	kind := KindOther
	if c, ok := cmd.(Coalescable); ok {
		kind = c.CoalesceKind()
	}
	cursorBefore := cursors.All()

	if err := cmd.Execute(buf, cursors); err != nil {
		return err
	}

	cursorAfter := cursors.All()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.groupCmds = append(h.groupCmds, cmd)
		return nil
	}

	if h.canCoalesceLocked(kind, cursorBefore) {
		h.coalesceLocked(cmd)
	} else {
		h.pushLocked(cmd)
	}
	h.lastCoalesce = &coalesceState{kind: kind, timestamp: time.Now(), cursorAfter: cursorAfter}

	return nil
}

// canCoalesceLocked reports whether an edit of the given kind, starting from
// cursorBefore, may join the open transaction. h.mu must be held.
func (h *History) canCoalesceLocked(kind OperationKind, cursorBefore []Selection) bool {
	if h.lastCoalesce == nil || len(h.undoStack) == 0 {
		return false
	}
	switch kind {
	case KindNewline, KindPaste, KindOther:
		return false
	}
	if kind != h.lastCoalesce.kind {
		return false
	}
	if time.Since(h.lastCoalesce.timestamp) > h.groupInterval {
		return false
	}
	return sameCursorPositions(cursorBefore, h.lastCoalesce.cursorAfter)
}

// coalesceLocked merges cmd into the top-of-stack entry, growing it into (or
// extending) a coalesced CompoundCommand. h.mu must be held.
func (h *History) coalesceLocked(cmd Command) {
	last := h.undoStack[len(h.undoStack)-1]
	if compound, ok := last.command.(*CompoundCommand); ok && compound.coalesced {
		compound.Add(cmd)
		last.timestamp = time.Now()
		return
	}
	last.command = &CompoundCommand{
		Name:      cmd.Description(),
		Commands:  []Command{last.command, cmd},
		coalesced: true,
	}
	last.timestamp = time.Now()
}

// sameCursorPositions compares two cursor snapshots by head position only;
// a differing count (cursors added/removed) never matches.
func sameCursorPositions(a, b []Selection) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Head != b[i].Head {
			return false
		}
	}
	return true
}

// Execute runs a command and adds it to the undo stack.
func (h *History) Execute(cmd Command, buf *buffer.Buffer, cursors *cursor.CursorSet) error {
	if err := cmd.Execute(buf, cursors); err != nil {
		return err
	}

	h.Push(cmd)
	return nil
}

// Push adds a command to the undo stack.
// Clears the redo stack.
func (h *History) Push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.groupCmds = append(h.groupCmds, cmd)
		return
	}

	h.pushLocked(cmd)
}

// pushLocked adds a command without acquiring the lock.
func (h *History) pushLocked(cmd Command) {
	h.undoStack = append(h.undoStack, &undoEntry{
		command:   cmd,
		timestamp: time.Now(),
	})

	// Clear redo stack
	h.redoStack = nil

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		// Remove oldest entries
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo undoes the last command.
// The lock is released during command execution to avoid holding it during
// potentially long-running buffer operations.
func (h *History) Undo(buf *buffer.Buffer, cursors *cursor.CursorSet) error {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}

	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.lastCoalesce = nil
	h.mu.Unlock()

	// Execute undo without holding the lock
	if err := entry.command.Undo(buf, cursors); err != nil {
		// Restore entry on failure
		h.mu.Lock()
		h.undoStack = append(h.undoStack, entry)
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, entry)
	h.mu.Unlock()
	return nil
}

// Redo redoes the last undone command.
// The lock is released during command execution to avoid holding it during
// potentially long-running buffer operations.
func (h *History) Redo(buf *buffer.Buffer, cursors *cursor.CursorSet) error {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}

	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.lastCoalesce = nil
	h.mu.Unlock()

	// Execute redo without holding the lock
	if err := entry.command.Execute(buf, cursors); err != nil {
		// Restore entry on failure
		h.mu.Lock()
		h.redoStack = append(h.redoStack, entry)
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, entry)
	h.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts a command group.
// Commands pushed while grouping will be combined into a single undo unit.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		// Already grouping, ignore nested calls
		return
	}

	h.grouping = true
	h.groupName = name
	h.groupCmds = nil
	h.lastCoalesce = nil
}

// EndGroup finishes a command group.
// All commands since BeginGroup are combined into a CompoundCommand.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}

	h.grouping = false

	if len(h.groupCmds) == 0 {
		h.groupCmds = nil
		return
	}

	// Create compound command
	compound := &CompoundCommand{
		Name:     h.groupName,
		Commands: h.groupCmds,
	}

	h.pushLocked(compound)
	h.groupCmds = nil
}

// CancelGroup cancels a command group without adding to history.
// Note: Commands already executed still affect the buffer!
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grouping = false
	h.groupCmds = nil
}

// IsGrouping returns true if currently in a command group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupCmds = nil
	h.lastCoalesce = nil
}

// UndoInfo returns info about available undo operations.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]OperationInfo, len(h.undoStack))
	for i, entry := range h.undoStack {
		result[i] = OperationInfo{
			Description: entry.command.Description(),
			Timestamp:   entry.timestamp,
		}
	}
	return result
}

// RedoInfo returns info about available redo operations.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]OperationInfo, len(h.redoStack))
	for i, entry := range h.redoStack {
		result[i] = OperationInfo{
			Description: entry.command.Description(),
			Timestamp:   entry.timestamp,
		}
	}
	return result
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}

	entry := h.undoStack[len(h.undoStack)-1]
	return OperationInfo{
		Description: entry.command.Description(),
		Timestamp:   entry.timestamp,
	}, true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}

	entry := h.redoStack[len(h.redoStack)-1]
	return OperationInfo{
		Description: entry.command.Description(),
		Timestamp:   entry.timestamp,
	}, true
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = 1000
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max

	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
