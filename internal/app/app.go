// Package app provides the main application structure and coordination
// for the Keystorm editor core. It wires together the config system, the
// document manager (engine + display map + syntax), and the LSP manager
// behind a single facade used by front ends (a CLI driver, a future TUI).
package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/keystorm/internal/config"
	"github.com/dshills/keystorm/internal/editor"
	"github.com/dshills/keystorm/internal/lsp"
)

// Application is the central coordinator for the editor's core components.
// It owns no rendering surface; it manages component lifecycles and wiring
// only.
type Application struct {
	mu sync.RWMutex

	config  *config.Config
	logger  *Logger
	metrics *Metrics

	documents *DocumentManager
	lsp       *lsp.Manager

	diagnostics *diagnosticsHub
	events      *editor.EventHub
	clipboard   editor.Clipboard

	running atomic.Bool

	shutdownOnce sync.Once

	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// WorkspacePath is the workspace/project directory, used as the LSP
	// workspace root.
	WorkspacePath string

	// Files are files to open on startup.
	Files []string

	// Debug enables debug mode with extra logging.
	Debug bool

	// LogLevel sets the logging verbosity.
	LogLevel string

	// ReadOnly opens files in read-only mode.
	ReadOnly bool

	// QueryLoader resolves tree-sitter highlight queries by language ID.
	// May be nil, in which case documents open without syntax highlighting.
	QueryLoader QueryLoader

	// Clipboard is the host clipboard; nil falls back to the in-process
	// one.
	Clipboard editor.Clipboard
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:        opts,
		logger:      NewLogger(loggerConfigFor(opts)),
		metrics:     NewMetrics(),
		diagnostics: newDiagnosticsHub(),
		events:      editor.NewEventHub(),
	}
	app.clipboard = opts.Clipboard
	if app.clipboard == nil {
		app.clipboard = &editor.MemoryClipboard{}
	}

	cfg := config.New(
		config.WithProjectConfigDir(opts.WorkspacePath),
	)
	if err := cfg.Load(context.Background()); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}
	app.config = cfg
	settings := cfg.Settings()

	if opts.LogLevel == "" && !opts.Debug {
		app.logger.SetLevel(ParseLogLevel(settings.Logging.Level))
	}
	if settings.Logging.File != "" {
		if w, err := openLogFile(settings.Logging.File); err == nil {
			app.logger.SetOutput(w)
		}
	}

	app.lsp = lsp.NewManager(
		lsp.WithDiagnosticsCallback(app.diagnostics.publish),
		lsp.WithManagerRequestTimeout(settings.LSP.RequestTimeout()),
		lsp.WithSyncDebounce(settings.Durations.LSPDidChange()),
		lsp.WithManagerDebugLog(func(format string, args ...any) {
			app.logger.Debug(format, args...)
		}),
	)
	if opts.WorkspacePath != "" {
		app.lsp.SetWorkspaceFolders([]lsp.WorkspaceFolder{
			{URI: lsp.FilePathToURI(opts.WorkspacePath), Name: "workspace"},
		})
	}
	for languageID, cmd := range settings.LSP.Servers {
		if len(cmd) > 0 {
			app.lsp.RegisterServer(languageID, lsp.ServerConfig{Command: cmd[0], Args: cmd[1:]})
		}
	}

	app.documents = NewDocumentManager(documentDeps{
		loadQuery: opts.QueryLoader,
		lspMgr:    app.lspForDocuments(settings),
		clipboard: app.clipboard,
		events:    app.events,
		wrapWidth: uint32(settings.Display.WrapWidth),
		tabSize:   uint32(settings.Display.TabSize),
		undoGroup: settings.Durations.UndoGroup(),
	})

	for _, path := range opts.Files {
		if _, err := app.OpenFile(path); err != nil {
			app.logger.Warn("failed to open %s: %v", path, err)
		}
	}

	return app, nil
}

// lspForDocuments returns the manager documents should attach, nil when
// LSP is disabled.
func (app *Application) lspForDocuments(settings config.Settings) *lsp.Manager {
	if !settings.LSP.Enabled {
		return nil
	}
	return app.lsp
}

func loggerConfigFor(opts Options) LoggerConfig {
	cfg := DefaultLoggerConfig()
	if opts.LogLevel != "" {
		cfg.Level = ParseLogLevel(opts.LogLevel)
	} else if opts.Debug {
		cfg.Level = LogLevelDebug
	}
	return cfg
}

// Start marks the application as running. A second call leaves it running
// and returns ErrAlreadyRunning.
func (app *Application) Start() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	return nil
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Tick drives the periodic work: the LSP didChange debounce and request
// timeout cleanup, then routing of arrived responses into the active
// document's editor. Call it from the host's main loop.
func (app *Application) Tick(now time.Time) {
	app.lsp.Tick(now)

	responses := app.lsp.Poll()
	if len(responses) == 0 {
		return
	}
	active := app.documents.Active()
	if active == nil {
		return
	}
	for _, routed := range responses {
		if routed.LanguageID != "" && routed.LanguageID != active.LanguageID {
			continue
		}
		active.Editor.HandleLSPResponse(routed.Response)
		app.metrics.IncrementLSPResponses()
	}
}

// Run ticks until the context is cancelled.
func (app *Application) Run(ctx context.Context) error {
	if err := app.Start(); err != nil && err != ErrAlreadyRunning {
		return err
	}
	ticker := time.NewTicker(app.config.Settings().Durations.Render())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			app.Tick(now)
		}
	}
}

// Shutdown initiates graceful shutdown. Safe to call multiple times.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		app.running.Store(false)
		app.shutdown()
	})
}

// shutdown performs cleanup in reverse initialization order.
func (app *Application) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, doc := range app.documents.All() {
		doc.Close()
	}

	if app.lsp != nil {
		app.lsp.Shutdown(ctx)
	}

	if app.config != nil {
		app.config.Close()
	}
}

// Config returns the configuration system.
func (app *Application) Config() *config.Config {
	return app.config
}

// Documents returns the document manager.
func (app *Application) Documents() *DocumentManager {
	return app.documents
}

// LSP returns the LSP manager.
func (app *Application) LSP() *lsp.Manager {
	return app.lsp
}

// Events returns the hub carrying core-to-host events (save requests,
// navigation, workspace edits).
func (app *Application) Events() *editor.EventHub {
	return app.events
}

// Metrics returns the application metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Diagnostics returns the diagnostics hub, which fans out LSP diagnostics
// notifications to subscribers (a status line, a problems panel).
func (app *Application) Diagnostics() *diagnosticsHub {
	return app.diagnostics
}

// ActiveDocument returns the active document (may be nil).
func (app *Application) ActiveDocument() *Document {
	return app.documents.Active()
}

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return "init " + e.Component
	}
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
