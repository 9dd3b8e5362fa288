package lsp

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DiagnosticsCallback receives published diagnostics, replacing the
// previous set for the URI.
type DiagnosticsCallback func(uri DocumentURI, diagnostics []Diagnostic)

// Manager owns one Client per language and the per-document sync state.
// It is the editor core's single entry point to LSP: documents are
// opened through it, mutations mark them dirty, and Tick drives the
// debounced didChange, the timeout cleanup, and response routing.
type Manager struct {
	mu sync.Mutex

	// instanceID uniquely identifies this manager; see InstanceID.
	instanceID string

	configs   map[string]ServerConfig
	clients   map[string]*Client
	documents map[string]*trackedDocument // keyed by absolute path

	workspaceFolders []WorkspaceFolder

	requestTimeout time.Duration
	syncDebounce   time.Duration
	onDiagnostics  DiagnosticsCallback
	debugf         DebugLogFunc
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDiagnosticsCallback routes publishDiagnostics notifications.
func WithDiagnosticsCallback(cb DiagnosticsCallback) ManagerOption {
	return func(m *Manager) { m.onDiagnostics = cb }
}

// WithManagerRequestTimeout overrides the per-request timeout for every
// server the manager starts.
func WithManagerRequestTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.requestTimeout = d
		}
	}
}

// WithSyncDebounce overrides the didChange debounce interval.
func WithSyncDebounce(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.syncDebounce = d
		}
	}
}

// WithManagerDebugLog routes debug output from the manager and its
// clients.
func WithManagerDebugLog(f DebugLogFunc) ManagerOption {
	return func(m *Manager) {
		if f != nil {
			m.debugf = f
		}
	}
}

// WithServerConfigs replaces the default server command table.
func WithServerConfigs(configs map[string]ServerConfig) ManagerOption {
	return func(m *Manager) {
		if configs != nil {
			m.configs = configs
		}
	}
}

// NewManager creates a manager with the stock server table.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		instanceID:     uuid.NewString(),
		configs:        DefaultServerConfigs(),
		clients:        make(map[string]*Client),
		documents:      make(map[string]*trackedDocument),
		requestTimeout: DefaultRequestTimeout,
		syncDebounce:   DefaultSyncDebounce,
		debugf:         func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// InstanceID returns the manager's unique identifier.
func (m *Manager) InstanceID() string {
	return m.instanceID
}

// RegisterServer adds or replaces the server command for a language.
func (m *Manager) RegisterServer(languageID string, config ServerConfig) {
	m.mu.Lock()
	m.configs[languageID] = config
	m.mu.Unlock()
}

// SetWorkspaceFolders sets the folders sent with initialize. Has no
// effect on servers already started.
func (m *Manager) SetWorkspaceFolders(folders []WorkspaceFolder) {
	m.mu.Lock()
	m.workspaceFolders = folders
	m.mu.Unlock()
}

// clientFor returns the running client for a language, starting it on
// first use. Caller must hold m.mu.
func (m *Manager) clientFor(languageID string) (*Client, error) {
	if client, ok := m.clients[languageID]; ok {
		return client, nil
	}
	config, ok := m.configs[languageID]
	if !ok {
		return nil, ErrServerNotFound
	}
	client := NewClient(
		WithRequestTimeout(m.requestTimeout),
		WithDebugLog(m.debugf),
	)
	if err := client.Start(config.Command, config.Args...); err != nil {
		return nil, err
	}

	var rootURI DocumentURI
	if len(m.workspaceFolders) > 0 {
		rootURI = m.workspaceFolders[0].URI
	}
	if err := client.Initialize(rootURI, m.workspaceFolders); err != nil {
		client.Close()
		return nil, err
	}
	m.clients[languageID] = client
	return client, nil
}

// ClientForLanguage returns the client for a language, starting its
// server on first use.
func (m *Manager) ClientForLanguage(languageID string) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clientFor(languageID)
}

// ClientForPath returns the client responsible for a file path.
func (m *Manager) ClientForPath(path string) (*Client, error) {
	languageID := DetectLanguageID(path)
	if languageID == "" {
		return nil, ErrServerNotFound
	}
	return m.ClientForLanguage(languageID)
}

// OpenDocument announces a document to its language's server, starting
// the server if needed.
func (m *Manager) OpenDocument(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	languageID := DetectLanguageID(abs)
	if languageID == "" {
		return ErrServerNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	client, err := m.clientFor(languageID)
	if err != nil {
		return err
	}

	doc := &trackedDocument{
		uri:        FilePathToURI(abs),
		languageID: languageID,
		version:    1,
		sync:       NewSyncState(m.syncDebounce),
		fullText:   func() string { return content },
	}
	m.documents[abs] = doc
	return client.DidOpen(doc.uri, languageID, doc.version, content)
}

// SetDocumentSource registers the provider for a document's current
// text, called when a debounced sync fires. The provider should stream
// from the rope's chunks rather than keep a copy.
func (m *Manager) SetDocumentSource(path string, source func() string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	m.mu.Lock()
	if doc, ok := m.documents[abs]; ok && source != nil {
		doc.fullText = source
	}
	m.mu.Unlock()
}

// CloseDocument retracts a document from its server.
func (m *Manager) CloseDocument(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[abs]
	if !ok {
		return ErrDocumentNotOpen
	}
	delete(m.documents, abs)
	client, ok := m.clients[doc.languageID]
	if !ok {
		return nil
	}
	return client.DidClose(doc.uri)
}

// MarkDirty flags a document changed; the next Tick past the debounce
// sends didChange.
func (m *Manager) MarkDirty(path string, now time.Time) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	m.mu.Lock()
	if doc, ok := m.documents[abs]; ok {
		doc.sync.MarkDirty(now)
	}
	m.mu.Unlock()
}

// DocumentVersion returns the sync version for a document.
func (m *Manager) DocumentVersion(path string) (int, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[abs]
	if !ok {
		return 0, false
	}
	return doc.version, true
}

// IsDocumentOpen reports whether the manager tracks the path.
func (m *Manager) IsDocumentOpen(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.documents[abs]
	return ok
}

// Tick drives the debounced document syncs and the pending-request
// cleanup. Call it from the main loop.
func (m *Manager) Tick(now time.Time) {
	m.mu.Lock()
	type firing struct {
		client  *Client
		uri     DocumentURI
		version int
		text    string
	}
	var fired []firing
	for _, doc := range m.documents {
		if !doc.sync.Fire(now) {
			continue
		}
		client, ok := m.clients[doc.languageID]
		if !ok {
			continue
		}
		doc.version++
		fired = append(fired, firing{client, doc.uri, doc.version, doc.fullText()})
	}
	clients := make([]*Client, 0, len(m.clients))
	for _, client := range m.clients {
		clients = append(clients, client)
	}
	m.mu.Unlock()

	for _, f := range fired {
		f.client.DidChange(f.uri, f.version, f.text)
	}
	for _, client := range clients {
		client.CleanupTimeouts()
	}
}

// RoutedResponse pairs a response with the language it came from.
type RoutedResponse struct {
	LanguageID string
	Response
}

// Poll drains every client's inbox. Diagnostics go to the registered
// callback; everything else is returned for the editor to consume.
func (m *Manager) Poll() []RoutedResponse {
	m.mu.Lock()
	type entry struct {
		languageID string
		client     *Client
	}
	clients := make([]entry, 0, len(m.clients))
	for id, client := range m.clients {
		clients = append(clients, entry{id, client})
	}
	cb := m.onDiagnostics
	m.mu.Unlock()

	var out []RoutedResponse
	for _, e := range clients {
		for {
			resp, ok := e.client.TryRecv()
			if !ok {
				break
			}
			if resp.Type == ResponseDiagnostics && cb != nil {
				cb(resp.URI, resp.Diagnostics)
				continue
			}
			out = append(out, RoutedResponse{e.languageID, resp})
		}
	}
	return out
}

// Shutdown kills every server process. Worker goroutines exit as their
// queues and pipes close.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	clients := make([]*Client, 0, len(m.clients))
	for _, client := range m.clients {
		clients = append(clients, client)
	}
	m.clients = make(map[string]*Client)
	m.documents = make(map[string]*trackedDocument)
	m.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
	return ctx.Err()
}
