package engine

import (
	"time"

	"github.com/dshills/keystorm/internal/engine/buffer"
)

// Defaults applied when no option overrides them.
const (
	DefaultTabWidth       = 4
	DefaultMaxUndoEntries = 1000
	DefaultMaxChanges     = 10000
	DefaultMaxRevisions   = 100
)

// Option configures an Engine at construction.
type Option func(*Engine)

// WithContent seeds the engine with initial text.
func WithContent(content string) Option {
	return func(e *Engine) { e.initContent = content }
}

// WithTabWidth sets the tab width.
func WithTabWidth(width int) Option {
	return func(e *Engine) {
		if width > 0 {
			e.tabWidth = width
		}
	}
}

// WithLineEnding sets the style inserted text is normalized to.
func WithLineEnding(ending buffer.LineEnding) Option {
	return func(e *Engine) { e.lineEnding = ending }
}

// WithMaxUndoEntries bounds the undo history depth.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithMaxChanges bounds the change-tracking ring.
func WithMaxChanges(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxChanges = max
		}
	}
}

// WithMaxRevisions bounds the stored revision history.
func WithMaxRevisions(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxRevisions = max
		}
	}
}

// WithUndoGroupInterval sets the idle window within which consecutive
// same-kind edits coalesce into one undo transaction.
func WithUndoGroupInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.groupInterval = d
		}
	}
}

// WithReadOnly makes every write return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) { e.readOnly = true }
}
