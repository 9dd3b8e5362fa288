package config

import "time"

// Settings is one immutable snapshot of the merged configuration.
type Settings struct {
	Editor    EditorSettings   `toml:"editor"`
	Display   DisplaySettings  `toml:"display"`
	Syntax    SyntaxSettings   `toml:"syntax"`
	LSP       LSPSettings      `toml:"lsp"`
	Durations DurationSettings `toml:"durations"`
	Logging   LoggingSettings  `toml:"logging"`
}

// EditorSettings covers the text engine.
type EditorSettings struct {
	// TabWidth is the tab stop used for indentation commands.
	TabWidth int `toml:"tab_width"`

	// InsertSpaces inserts spaces instead of a tab character.
	InsertSpaces bool `toml:"insert_spaces"`

	// MaxUndoEntries bounds the undo history.
	MaxUndoEntries int `toml:"max_undo_entries"`

	// LineEnding is "lf", "crlf", or "cr".
	LineEnding string `toml:"line_ending"`
}

// DisplaySettings covers the fold/wrap/tab pipeline.
type DisplaySettings struct {
	// WrapWidth is the soft-wrap column; 0 disables wrapping.
	WrapWidth int `toml:"wrap_width"`

	// TabSize is the visual tab stop.
	TabSize int `toml:"tab_size"`
}

// SyntaxSettings covers the parse/highlight engine.
type SyntaxSettings struct {
	// CacheRanges is the highlight cache capacity in line ranges.
	CacheRanges int `toml:"cache_ranges"`

	// QueryByteBudget bounds one highlight query's byte span.
	QueryByteBudget int `toml:"query_byte_budget"`
}

// LSPSettings covers the language-server client.
type LSPSettings struct {
	// Enabled turns the whole subsystem on or off.
	Enabled bool `toml:"enabled"`

	// RequestTimeoutMs is the per-request timeout.
	RequestTimeoutMs int `toml:"request_timeout_ms"`

	// Servers maps language ids to command lines, the first element
	// being the executable.
	Servers map[string][]string `toml:"servers"`
}

// DurationSettings exposes the debounce intervals as configuration, in
// milliseconds.
type DurationSettings struct {
	RenderMs            int `toml:"render_ms"`
	HighlightMs         int `toml:"highlight_ms"`
	LSPDidChangeMs      int `toml:"lsp_did_change_ms"`
	UndoGroupMs         int `toml:"undo_group_ms"`
	DocumentHighlightMs int `toml:"document_highlight_ms"`
}

// LoggingSettings covers the logger.
type LoggingSettings struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Editor: EditorSettings{
			TabWidth:       4,
			InsertSpaces:   false,
			MaxUndoEntries: 1000,
			LineEnding:     "lf",
		},
		Display: DisplaySettings{
			WrapWidth: 0,
			TabSize:   4,
		},
		Syntax: SyntaxSettings{
			CacheRanges:     20,
			QueryByteBudget: 16 * 1024,
		},
		LSP: LSPSettings{
			Enabled:          true,
			RequestTimeoutMs: 30_000,
			Servers:          map[string][]string{},
		},
		Durations: DurationSettings{
			RenderMs:            16,
			HighlightMs:         50,
			LSPDidChangeMs:      200,
			UndoGroupMs:         300,
			DocumentHighlightMs: 150,
		},
		Logging: LoggingSettings{
			Level: "info",
		},
	}
}

// Normalize clamps out-of-range values back to usable ones rather than
// rejecting the file.
func (s *Settings) Normalize() {
	if s.Editor.TabWidth < 1 {
		s.Editor.TabWidth = 4
	}
	if s.Editor.MaxUndoEntries < 1 {
		s.Editor.MaxUndoEntries = 1000
	}
	switch s.Editor.LineEnding {
	case "lf", "crlf", "cr":
	default:
		s.Editor.LineEnding = "lf"
	}
	if s.Display.WrapWidth < 0 {
		s.Display.WrapWidth = 0
	}
	if s.Display.TabSize < 1 {
		s.Display.TabSize = 4
	}
	if s.Syntax.CacheRanges < 1 {
		s.Syntax.CacheRanges = 20
	}
	if s.Syntax.QueryByteBudget < 1024 {
		s.Syntax.QueryByteBudget = 16 * 1024
	}
	if s.LSP.RequestTimeoutMs < 1000 {
		s.LSP.RequestTimeoutMs = 30_000
	}
	if s.Durations.RenderMs < 0 {
		s.Durations.RenderMs = 16
	}
	if s.Durations.HighlightMs < 0 {
		s.Durations.HighlightMs = 50
	}
	if s.Durations.LSPDidChangeMs < 0 {
		s.Durations.LSPDidChangeMs = 200
	}
	if s.Durations.UndoGroupMs < 0 {
		s.Durations.UndoGroupMs = 300
	}
	if s.Durations.DocumentHighlightMs < 0 {
		s.Durations.DocumentHighlightMs = 150
	}
}

// RequestTimeout returns the LSP timeout as a duration.
func (s LSPSettings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutMs) * time.Millisecond
}

// Render returns the render debounce.
func (d DurationSettings) Render() time.Duration {
	return time.Duration(d.RenderMs) * time.Millisecond
}

// Highlight returns the highlight debounce.
func (d DurationSettings) Highlight() time.Duration {
	return time.Duration(d.HighlightMs) * time.Millisecond
}

// LSPDidChange returns the document sync debounce.
func (d DurationSettings) LSPDidChange() time.Duration {
	return time.Duration(d.LSPDidChangeMs) * time.Millisecond
}

// UndoGroup returns the undo-coalescing window.
func (d DurationSettings) UndoGroup() time.Duration {
	return time.Duration(d.UndoGroupMs) * time.Millisecond
}

// DocumentHighlight returns the occurrence-highlight debounce.
func (d DurationSettings) DocumentHighlight() time.Duration {
	return time.Duration(d.DocumentHighlightMs) * time.Millisecond
}
