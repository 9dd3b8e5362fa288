// Package app provides the main application structure and coordination.
package app

import "errors"

// Sentinel errors for the application lifecycle and document flow.
var (
	// ErrQuit signals a normal, user-requested exit.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning rejects a second Start.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNotRunning rejects operations that need a started application.
	ErrNotRunning = errors.New("application not running")

	// ErrNoActiveDocument means an operation needed a focused document.
	ErrNoActiveDocument = errors.New("no active document")

	// ErrDocumentNotFound means the named document is not open.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentAlreadyOpen means the path already has a document.
	ErrDocumentAlreadyOpen = errors.New("document already open")

	// ErrUnsavedChanges guards closes and quits over dirty documents.
	ErrUnsavedChanges = errors.New("unsaved changes")

	// ErrInitialization wraps component startup failures.
	ErrInitialization = errors.New("initialization failed")

	// ErrShutdownTimeout means graceful shutdown gave up waiting.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)
