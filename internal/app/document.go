package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/keystorm/internal/displaymap"
	"github.com/dshills/keystorm/internal/editor"
	"github.com/dshills/keystorm/internal/engine"
	"github.com/dshills/keystorm/internal/lsp"
	"github.com/dshills/keystorm/internal/syntax"
)

// Document is one open file: its editor facade plus host-side metadata.
type Document struct {
	// Path is the absolute file path (empty for scratch buffers).
	Path string

	// Name is the display name (filename or "Untitled").
	Name string

	// Editor owns the engine, display map, syntax worker, and LSP popup
	// state for this document.
	Editor *editor.Editor

	// LanguageID is the detected language for LSP and syntax.
	LanguageID string

	// ReadOnly makes SaveDocument refuse with ErrReadOnly. It does not
	// block edits to the buffer itself.
	ReadOnly bool

	modified  atomic.Bool
	lspOpened atomic.Bool
}

// documentDeps is what the manager wires into every new document.
type documentDeps struct {
	loadQuery QueryLoader
	lspMgr    *lsp.Manager
	clipboard editor.Clipboard
	events    *editor.EventHub
	wrapWidth uint32
	tabSize   uint32
	undoGroup time.Duration
}

// newDocument builds a document and its editor stack.
func newDocument(path string, content []byte, deps documentDeps) *Document {
	name := filepath.Base(path)
	if path == "" {
		name = "Untitled"
	}

	engOpts := []engine.Option{
		engine.WithContent(string(content)),
		engine.WithTabWidth(int(deps.tabSize)),
	}
	if deps.undoGroup > 0 {
		engOpts = append(engOpts, engine.WithUndoGroupInterval(deps.undoGroup))
	}
	eng := engine.New(engOpts...)
	languageID := lsp.DetectLanguageID(path)

	opts := []editor.Option{
		editor.WithTabSettings(int(deps.tabSize), false),
	}
	if deps.clipboard != nil {
		opts = append(opts, editor.WithClipboard(deps.clipboard))
	}
	if deps.events != nil {
		opts = append(opts, editor.WithEvents(deps.events))
	}
	if deps.lspMgr != nil && path != "" {
		opts = append(opts, editor.WithLSP(deps.lspMgr, path))
	}
	if deps.loadQuery != nil && languageID != "" {
		if query := deps.loadQuery(languageID); query != nil {
			opts = append(opts, editor.WithSyntax(syntax.NewDocument(eng, languageID, query)))
		}
	}

	ed := editor.New(eng, displaymap.NewMap(deps.wrapWidth, deps.tabSize), opts...)

	doc := &Document{
		Path:       path,
		Name:       name,
		Editor:     ed,
		LanguageID: languageID,
	}
	// Subscribe on this document's engine, not the shared event hub:
	// another document's edits must not flip this one's modified flag.
	eng.SubscribeEdits(func(engine.TextEditEvent) {
		doc.modified.Store(true)
	})
	return doc
}

// Close releases the document's background resources.
func (d *Document) Close() {
	d.Editor.Close()
}

// IsModified returns true if the document has unsaved changes.
func (d *Document) IsModified() bool {
	return d.modified.Load()
}

// SetModified sets the modified flag.
func (d *Document) SetModified(modified bool) {
	d.modified.Store(modified)
}

// IsScratch returns true for buffers with no file path.
func (d *Document) IsScratch() bool {
	return d.Path == ""
}

// IsLSPOpened reports whether the document was announced to a server.
func (d *Document) IsLSPOpened() bool {
	return d.lspOpened.Load()
}

// SetLSPOpened marks the document as announced.
func (d *Document) SetLSPOpened(opened bool) {
	d.lspOpened.Store(opened)
}

// Content returns the full document text.
func (d *Document) Content() string {
	return d.Editor.Engine().Text()
}

// QueryLoader resolves the tree-sitter highlight query source for a
// language identifier, or nil if the language has no query available.
type QueryLoader func(languageID string) []byte

// DocumentManager manages all open documents.
type DocumentManager struct {
	mu        sync.RWMutex
	documents map[string]*Document // path or scratch key -> document
	active    *Document
	order     []string // open order, for buffer switching
	counter   int      // scratch buffer naming
	deps      documentDeps
}

// NewDocumentManager creates a document manager. Dependencies may be
// zero-valued; documents then open without syntax or LSP.
func NewDocumentManager(deps documentDeps) *DocumentManager {
	if deps.tabSize == 0 {
		deps.tabSize = 4
	}
	return &DocumentManager{
		documents: make(map[string]*Document),
		deps:      deps,
	}
}

// Open opens a document from a file, returning the existing one when
// the path is already open.
func (dm *DocumentManager) Open(path string) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if doc, exists := dm.documents[absPath]; exists {
		dm.active = doc
		return doc, nil
	}

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	content, err := decodeFileContent(raw)
	if err != nil {
		return nil, err
	}

	doc := newDocument(absPath, content, dm.deps)
	dm.documents[absPath] = doc
	dm.order = append(dm.order, absPath)
	dm.active = doc
	return doc, nil
}

// CreateScratch creates a new unsaved document.
func (dm *DocumentManager) CreateScratch() *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	dm.counter++
	doc := newDocument("", nil, dm.deps)
	if dm.counter > 1 {
		doc.Name = "Untitled-" + strconv.Itoa(dm.counter)
	}

	key := scratchKey(dm.counter)
	dm.documents[key] = doc
	dm.order = append(dm.order, key)
	dm.active = doc
	return doc
}

// Close closes a document by its key (path or scratch key).
func (dm *DocumentManager) Close(path string) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.closeLocked(path)
}

func (dm *DocumentManager) closeLocked(path string) error {
	doc, exists := dm.documents[path]
	if !exists {
		return ErrDocumentNotFound
	}
	doc.Close()
	delete(dm.documents, path)

	for i, p := range dm.order {
		if p == path {
			dm.order = append(dm.order[:i], dm.order[i+1:]...)
			break
		}
	}

	if dm.active == doc {
		if len(dm.order) > 0 {
			dm.active = dm.documents[dm.order[len(dm.order)-1]]
		} else {
			dm.active = nil
		}
	}
	return nil
}

// CloseDocument closes a document by identity.
func (dm *DocumentManager) CloseDocument(doc *Document) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for k, d := range dm.documents {
		if d == doc {
			return dm.closeLocked(k)
		}
	}
	return ErrDocumentNotFound
}

// Active returns the currently active document.
func (dm *DocumentManager) Active() *Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.active
}

// SetActive sets the active document.
func (dm *DocumentManager) SetActive(doc *Document) {
	dm.mu.Lock()
	dm.active = doc
	dm.mu.Unlock()
}

// SetActiveByPath sets the active document by path.
func (dm *DocumentManager) SetActiveByPath(path string) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	doc, exists := dm.documents[path]
	if !exists {
		return ErrDocumentNotFound
	}
	dm.active = doc
	return nil
}

// Get returns a document by path.
func (dm *DocumentManager) Get(path string) (*Document, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	doc, exists := dm.documents[path]
	return doc, exists
}

// All returns all open documents in open order.
func (dm *DocumentManager) All() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	docs := make([]*Document, 0, len(dm.documents))
	for _, path := range dm.order {
		if doc, exists := dm.documents[path]; exists {
			docs = append(docs, doc)
		}
	}
	return docs
}

// Count returns the number of open documents.
func (dm *DocumentManager) Count() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.documents)
}

// DirtyDocuments returns all documents with unsaved changes.
func (dm *DocumentManager) DirtyDocuments() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	var dirty []*Document
	for _, doc := range dm.documents {
		if doc.IsModified() {
			dirty = append(dirty, doc)
		}
	}
	return dirty
}

// HasDirty returns true if any document has unsaved changes.
func (dm *DocumentManager) HasDirty() bool {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for _, doc := range dm.documents {
		if doc.IsModified() {
			return true
		}
	}
	return false
}

// Next activates and returns the next document in open order.
func (dm *DocumentManager) Next() *Document {
	return dm.step(1)
}

// Previous activates and returns the previous document in open order.
func (dm *DocumentManager) Previous() *Document {
	return dm.step(-1)
}

func (dm *DocumentManager) step(delta int) *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if len(dm.order) == 0 || dm.active == nil {
		return nil
	}
	current := -1
	for i, path := range dm.order {
		if dm.documents[path] == dm.active {
			current = i
			break
		}
	}
	if current == -1 {
		return dm.active
	}
	next := (current + delta + len(dm.order)) % len(dm.order)
	dm.active = dm.documents[dm.order[next]]
	return dm.active
}

// scratchKey generates a map key for scratch buffers.
func scratchKey(n int) string {
	return "::scratch::" + strconv.Itoa(n)
}

// contentSource builds a document's full text from the rope's chunks,
// for the LSP sync layer's full-document didChange.
func contentSource(doc *Document) func() string {
	return func() string {
		var b strings.Builder
		it := doc.Editor.Engine().Rope().Chunks()
		for it.Next() {
			b.WriteString(it.Text())
		}
		return b.String()
	}
}
