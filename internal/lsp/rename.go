package lsp

// RenameState drives the rename flow: PrepareRename is sent, the reply
// opens an inline input anchored at the returned range, submit sends
// Rename, and the workspace edit in its reply is applied by the editor.
type RenameState struct {
	// Visible reports whether the inline input is open.
	Visible bool

	// Range is the renameable range from the prepare reply.
	Range *Range

	// OriginalText is the symbol being renamed.
	OriginalText string

	// NewName is what the user has typed.
	NewName string

	// Position is where rename was initiated.
	Position *Position

	// Preparing is set between sending prepareRename and its reply.
	Preparing bool

	// Err holds a failure message for the status line.
	Err string
}

// StartPrepare begins the flow at pos.
func (s *RenameState) StartPrepare(pos Position) {
	s.Reset()
	s.Position = &pos
	s.Preparing = true
}

// OnPrepareResponse opens the input with the server's range and
// placeholder.
func (s *RenameState) OnPrepareResponse(rng Range, placeholder string) {
	s.Preparing = false
	s.Range = &rng
	s.OriginalText = placeholder
	s.NewName = placeholder
	s.Visible = true
}

// CanSubmit reports whether the typed name is submittable.
func (s *RenameState) CanSubmit() bool {
	return s.Visible && s.NewName != "" && s.NewName != s.OriginalText
}

// Reset closes the input and clears the flow.
func (s *RenameState) Reset() {
	s.Visible = false
	s.Range = nil
	s.OriginalText = ""
	s.NewName = ""
	s.Position = nil
	s.Preparing = false
	s.Err = ""
}
