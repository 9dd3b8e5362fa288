// Package main is the entry point for the Keystorm editor core daemon.
// It hosts the engine headlessly: documents open with LSP attached (this
// driver sets no highlight QueryLoader, so no syntax worker runs), and the
// process ticks the core's debounce loops until interrupted. Rendering
// front ends attach through the app facade.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/keystorm/internal/app"
	"github.com/dshills/keystorm/internal/editor"
	"github.com/dshills/keystorm/internal/lsp"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	logger := application.Logger()

	application.Events().Subscribe(func(ev editor.Event) {
		switch e := ev.(type) {
		case editor.SaveRequestedEvent:
			if err := application.SaveDocument(); err != nil {
				logger.Warn("save %s: %v", e.Path, err)
			}
		case editor.NavigateToFileEvent:
			if _, err := application.OpenFile(lsp.URIToFilePath(lsp.DocumentURI(e.URI))); err != nil {
				logger.Warn("navigate to %s: %v", e.URI, err)
			}
		}
	})
	application.Diagnostics().Subscribe(func(uri lsp.DocumentURI, diagnostics []lsp.Diagnostic) {
		logger.Info("%s: %d diagnostics", uri, len(diagnostics))
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.WorkspacePath, "workspace", "", "Workspace/project directory")
	flag.StringVar(&opts.WorkspacePath, "w", "", "Workspace/project directory (shorthand)")
	flag.BoolVar(&opts.Debug, "debug", false, "Enable debug mode")
	flag.BoolVar(&opts.Debug, "d", false, "Enable debug mode (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.ReadOnly, "readonly", false, "Open files in read-only mode")
	flag.BoolVar(&opts.ReadOnly, "R", false, "Open files in read-only mode (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Keystorm - source-code editor core\n\n")
		fmt.Fprintf(os.Stderr, "Usage: keystorm [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  keystorm                    Start with no documents open\n")
		fmt.Fprintf(os.Stderr, "  keystorm file.go            Open a file\n")
		fmt.Fprintf(os.Stderr, "  keystorm -w ./project       Open workspace\n")
		fmt.Fprintf(os.Stderr, "  keystorm -R file.go         Open file read-only\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if showVersion {
		fmt.Printf("Keystorm %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	opts.Files = flag.Args()

	// Default the workspace to the first file's directory.
	if opts.WorkspacePath == "" && len(opts.Files) > 0 {
		if absPath, err := filepath.Abs(opts.Files[0]); err == nil {
			opts.WorkspacePath = filepath.Dir(absPath)
		}
	}

	return opts
}
