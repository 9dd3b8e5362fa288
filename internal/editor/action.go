package editor

// Action identifies one editor operation. Input layers translate raw
// key events into these; Apply routes them.
type Action int

const (
	ActionNone Action = iota

	// Text entry. InsertChar and Paste carry their text in the Input
	// struct.
	ActionInsertChar
	ActionInsertNewline
	ActionInsertTab
	ActionDeleteBackward
	ActionDeleteForward
	ActionDeleteWordBackward
	ActionDeleteWordForward
	ActionDeleteLine

	// Cursor movement.
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionMoveWordLeft
	ActionMoveWordRight
	ActionMoveLineStart
	ActionMoveLineEnd
	ActionMoveDocumentStart
	ActionMoveDocumentEnd
	ActionMovePageUp
	ActionMovePageDown

	// Selection extension.
	ActionSelectLeft
	ActionSelectRight
	ActionSelectUp
	ActionSelectDown
	ActionSelectWordLeft
	ActionSelectWordRight
	ActionSelectLineStart
	ActionSelectLineEnd
	ActionSelectAll
	ActionClearSelection

	// Clipboard.
	ActionCopy
	ActionCut
	ActionPaste

	// History.
	ActionUndo
	ActionRedo

	// Viewport.
	ActionScrollUp
	ActionScrollDown
	ActionScrollPageUp
	ActionScrollPageDown

	// Search and replace.
	ActionFind
	ActionFindNext
	ActionFindPrevious
	ActionReplace
	ActionGotoLine

	// Language features.
	ActionRequestCompletion
	ActionGotoDefinition
	ActionRenameSymbol

	// Multi-cursor.
	ActionAddCursorAtNextOccurrence
	ActionAddCursorAbove
	ActionAddCursorBelow
	ActionClearSecondaryCursors

	// Folding.
	ActionToggleFold
	ActionFold
	ActionUnfold
	ActionFoldAll
	ActionUnfoldAll

	// Host round-trips.
	ActionSave
	ActionOpen
)

// Input carries an action plus its payload where one is needed.
type Input struct {
	Action Action

	// Text is the character(s) for InsertChar and the replacement text
	// for Replace.
	Text string

	// Query is the search pattern for Find.
	Query string

	// Line is the 1-based target for GotoLine.
	Line int
}
