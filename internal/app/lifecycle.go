package app

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// SaveDocument saves the active document to disk.
func (app *Application) SaveDocument() error {
	doc := app.documents.Active()
	if doc == nil {
		return ErrNoActiveDocument
	}
	if doc.IsScratch() {
		return ErrNoFilePath
	}
	if doc.ReadOnly {
		return ErrReadOnly
	}

	content := doc.Content()
	if err := os.WriteFile(doc.Path, []byte(content), 0o644); err != nil {
		return &FileError{Op: "save", Path: doc.Path, Err: err}
	}
	doc.SetModified(false)
	return nil
}

// SaveDocumentAs saves the active document to a new path.
func (app *Application) SaveDocumentAs(path string) error {
	doc := app.documents.Active()
	if doc == nil {
		return ErrNoActiveDocument
	}

	content := doc.Content()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}

	doc.Path = path
	doc.Name = filepath.Base(path)
	doc.SetModified(false)
	return nil
}

// CloseDocument closes the specified document. Returns ErrUnsavedChanges
// if the document has unsaved changes and force is false.
func (app *Application) CloseDocument(doc *Document, force bool) error {
	if doc == nil {
		return ErrNoActiveDocument
	}
	if doc.IsModified() && !force {
		return ErrUnsavedChanges
	}

	if doc.IsLSPOpened() && app.lsp != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		app.lsp.CloseDocument(ctx, doc.Path)
	}

	return app.documents.CloseDocument(doc)
}

// CloseActiveDocument closes the active document.
func (app *Application) CloseActiveDocument(force bool) error {
	return app.CloseDocument(app.documents.Active(), force)
}

// OpenFile opens a file and creates a document for it.
func (app *Application) OpenFile(path string) (*Document, error) {
	doc, err := app.documents.Open(path)
	if err != nil {
		return nil, &FileError{Op: "open", Path: path, Err: err}
	}
	if app.opts.ReadOnly {
		doc.ReadOnly = true
	}

	if app.lsp != nil && !doc.IsLSPOpened() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := app.lsp.OpenDocument(ctx, doc.Path, doc.Content()); err == nil {
			doc.SetLSPOpened(true)
			app.lsp.SetDocumentSource(doc.Path, contentSource(doc))
		}
	}

	return doc, nil
}

// Quit initiates application shutdown. Returns ErrUnsavedChanges if
// there are unsaved changes and force is false.
func (app *Application) Quit(force bool) error {
	if !force && app.documents.HasDirty() {
		return ErrUnsavedChanges
	}
	app.Shutdown()
	return nil
}

// ForceQuit forces immediate shutdown, discarding unsaved changes.
func (app *Application) ForceQuit() {
	app.Shutdown()
}

// ConfirmQuit checks if quit is safe (no unsaved changes).
func (app *Application) ConfirmQuit() bool {
	return !app.documents.HasDirty()
}

// FileError represents a file operation error.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return e.Op + " " + e.Path
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ErrNoFilePath indicates the document has no file path.
var ErrNoFilePath = constError("no file path")

// ErrReadOnly indicates the document is read-only.
var ErrReadOnly = constError("document is read-only")

// constError is a simple constant error type.
type constError string

func (e constError) Error() string { return string(e) }
