package app

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SessionSnapshot is what survives a restart: the open files, the
// active one, and cursor positions. Buffer contents are not persisted;
// the host owns file persistence.
type SessionSnapshot struct {
	SavedAt   time.Time          `yaml:"saved_at"`
	Workspace string             `yaml:"workspace,omitempty"`
	Active    string             `yaml:"active,omitempty"`
	Documents []DocumentSnapshot `yaml:"documents"`
}

// DocumentSnapshot records one open document's position state.
type DocumentSnapshot struct {
	Path         string `yaml:"path"`
	CursorOffset int64  `yaml:"cursor_offset"`
	FirstRow     uint32 `yaml:"first_row"`
}

// sessionFileName sits in the workspace config directory.
const sessionFileName = "session.yaml"

// SnapshotSession captures the current session state.
func (app *Application) SnapshotSession() SessionSnapshot {
	snap := SessionSnapshot{
		SavedAt:   time.Now(),
		Workspace: app.opts.WorkspacePath,
	}
	active := app.documents.Active()
	for _, doc := range app.documents.All() {
		if doc.IsScratch() {
			continue
		}
		snap.Documents = append(snap.Documents, DocumentSnapshot{
			Path:         doc.Path,
			CursorOffset: doc.Editor.Engine().PrimaryCursor(),
			FirstRow:     doc.Editor.Viewport.FirstDisplayRow,
		})
		if doc == active {
			snap.Active = doc.Path
		}
	}
	return snap
}

// SaveSession writes the session snapshot next to the project config.
// A workspace-less session is not persisted.
func (app *Application) SaveSession() error {
	if app.opts.WorkspacePath == "" {
		return nil
	}
	data, err := yaml.Marshal(app.SnapshotSession())
	if err != nil {
		return err
	}
	path := filepath.Join(app.opts.WorkspacePath, ".keystorm", sessionFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// RestoreSession reopens the files a previous session had open. Files
// that no longer exist are skipped.
func (app *Application) RestoreSession() error {
	if app.opts.WorkspacePath == "" {
		return nil
	}
	path := filepath.Join(app.opts.WorkspacePath, ".keystorm", sessionFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var snap SessionSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return err
	}

	for _, ds := range snap.Documents {
		doc, err := app.OpenFile(ds.Path)
		if err != nil {
			continue
		}
		doc.Editor.Engine().SetPrimaryCursor(ds.CursorOffset)
		doc.Editor.Engine().ClampCursors()
		doc.Editor.Viewport.FirstDisplayRow = ds.FirstRow
	}
	if snap.Active != "" {
		app.documents.SetActiveByPath(snap.Active)
	}
	return nil
}
