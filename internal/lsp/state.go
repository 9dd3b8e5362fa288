package lsp

import "time"

// HoverState is the hover popup model.
type HoverState struct {
	Visible bool
	Content string
	Range   *Range

	// RequestedAt is the byte offset the hover was requested for, so a
	// stale reply after cursor movement can be discarded.
	RequestedAt int
}

// Reset hides the popup.
func (s *HoverState) Reset() {
	s.Visible = false
	s.Content = ""
	s.Range = nil
}

// SignatureHelpState is the signature popup model.
type SignatureHelpState struct {
	Visible         bool
	Signatures      []SignatureInformation
	ActiveSignature int
	ActiveParameter int
}

// Current returns the active signature.
func (s *SignatureHelpState) Current() (SignatureInformation, bool) {
	if !s.Visible || s.ActiveSignature >= len(s.Signatures) {
		return SignatureInformation{}, false
	}
	return s.Signatures[s.ActiveSignature], true
}

// Set installs a signatureHelp reply.
func (s *SignatureHelpState) Set(signatures []SignatureInformation, activeSig, activeParam *int) {
	s.Signatures = signatures
	s.ActiveSignature = 0
	s.ActiveParameter = 0
	if activeSig != nil && *activeSig >= 0 && *activeSig < len(signatures) {
		s.ActiveSignature = *activeSig
	}
	if activeParam != nil && *activeParam >= 0 {
		s.ActiveParameter = *activeParam
	}
	s.Visible = len(signatures) > 0
}

// Reset hides the popup.
func (s *SignatureHelpState) Reset() {
	s.Visible = false
	s.Signatures = nil
	s.ActiveSignature = 0
	s.ActiveParameter = 0
}

// CodeActionState is the code-action menu model.
type CodeActionState struct {
	Visible       bool
	Actions       []CodeActionOrCommand
	SelectedIndex int
}

// Selected returns the highlighted action.
func (s *CodeActionState) Selected() (CodeActionOrCommand, bool) {
	if !s.Visible || s.SelectedIndex >= len(s.Actions) {
		return CodeActionOrCommand{}, false
	}
	return s.Actions[s.SelectedIndex], true
}

// Reset hides the menu.
func (s *CodeActionState) Reset() {
	s.Visible = false
	s.Actions = nil
	s.SelectedIndex = 0
}

// InlayHintState caches the last inlay-hint reply and the range it was
// requested for.
type InlayHintState struct {
	Hints       []InlayHint
	CachedRange *Range
}

// IsRangeCached reports whether hints for rng are already present.
func (s *InlayHintState) IsRangeCached(rng Range) bool {
	return s.CachedRange != nil && *s.CachedRange == rng
}

// Set installs a reply for rng.
func (s *InlayHintState) Set(hints []InlayHint, rng Range) {
	s.Hints = hints
	s.CachedRange = &rng
}

// Invalidate clears the cache; the next render re-requests.
func (s *InlayHintState) Invalidate() {
	s.Hints = nil
	s.CachedRange = nil
}

// DocumentHighlightState tracks occurrence highlights for the symbol
// under the cursor, with a debounce so rapid cursor movement doesn't
// spam the server.
type DocumentHighlightState struct {
	Highlights     []DocumentHighlight
	CursorPosition int
	Visible        bool

	debounceAt time.Time
	armed      bool
}

// Arm schedules a highlight request for the cursor position, debounced
// by delay.
func (s *DocumentHighlightState) Arm(cursorPosition int, now time.Time, delay time.Duration) {
	s.CursorPosition = cursorPosition
	s.debounceAt = now.Add(delay)
	s.armed = true
}

// Fire reports whether the debounce elapsed; a true return disarms it.
func (s *DocumentHighlightState) Fire(now time.Time) bool {
	if !s.armed || now.Before(s.debounceAt) {
		return false
	}
	s.armed = false
	return true
}

// Set installs a reply.
func (s *DocumentHighlightState) Set(highlights []DocumentHighlight) {
	s.Highlights = highlights
	s.Visible = len(highlights) > 0
}

// Clear removes the highlights without disturbing the debounce.
func (s *DocumentHighlightState) Clear() {
	s.Highlights = nil
	s.Visible = false
}

// Reset clears everything.
func (s *DocumentHighlightState) Reset() {
	s.Clear()
	s.armed = false
}
