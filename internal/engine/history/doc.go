// Package history is the undo/redo transaction log. Edits are recorded
// as Commands (insert, delete, replace, compounds of those), each able
// to reverse itself, and History keeps them on two stacks.
//
// Transactions form three ways:
//
//   - Every Execute pushes one command as its own undo step.
//   - BeginGroup/EndGroup (or ExecuteGrouped) bracket several commands
//     into one step, for scripted edits like find-and-replace-all.
//   - ExecuteCoalescing merges a run of ordinary typing into the open
//     step automatically, when the kind matches, the group interval
//     hasn't elapsed, and the new edit starts where the last one left
//     the cursor. Newline, paste, and replace edits always start fresh.
//
// Recording anything clears the redo stack; the stack depth is bounded
// and the oldest transactions fall off. Undo replays a transaction's
// operations in reverse and restores the cursors captured before it;
// redo replays forward and restores the cursors captured after.
package history
