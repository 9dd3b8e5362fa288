package lsp

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRequestTimeout bounds how long a pending request is kept before
// the cleanup pass drops it.
const DefaultRequestTimeout = 30 * time.Second

// nextRequestID is the process-wide request id counter, shared by every
// client so ids stay unique across servers.
var nextRequestID atomic.Int64

// pendingRequest records an in-flight request so the reader can decode
// its response and the cleanup pass can expire it.
type pendingRequest struct {
	kind    RequestKind
	sentAt  time.Time
	timeout time.Duration
}

// DebugLogFunc receives the client's debug traffic (dropped responses,
// gated requests, stderr lines).
type DebugLogFunc func(format string, args ...any)

// Client is a connection to one language server process. Three
// goroutines service it: a writer draining the outgoing queue into
// stdin, a reader decoding frames from stdout, and a drain forwarding
// stderr to the debug log. The main thread talks to it only through
// non-blocking calls: request methods enqueue, TryRecv polls the inbox.
type Client struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	outgoing *queue[[]byte]
	inbox    *queue[Response]

	pendingMu sync.Mutex
	pending   map[int64]pendingRequest

	caps        *capabilityCache
	initialized atomic.Bool

	requestTimeout time.Duration
	debugf         DebugLogFunc

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRequestTimeout overrides the per-request timeout.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithDebugLog routes the client's debug output.
func WithDebugLog(f DebugLogFunc) ClientOption {
	return func(c *Client) {
		if f != nil {
			c.debugf = f
		}
	}
}

// NewClient creates an unconnected client. Call Start to spawn the
// server process.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		outgoing:       newQueue[[]byte](),
		inbox:          newQueue[Response](),
		pending:        make(map[int64]pendingRequest),
		caps:           &capabilityCache{},
		requestTimeout: DefaultRequestTimeout,
		debugf:         func(string, ...any) {},
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start spawns the server process and begins servicing its pipes.
func (c *Client) Start(command string, args ...string) error {
	cmd := exec.Command(command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	c.cmd = cmd
	c.startIO(stdin, stdout, stderr)
	return nil
}

// startIO launches the writer, reader, and stderr-drain goroutines over
// the given streams. Split from Start so tests can drive a client over
// in-memory pipes.
func (c *Client) startIO(stdin io.WriteCloser, stdout, stderr io.Reader) {
	c.stdin = stdin
	go c.writerLoop()
	go c.readerLoop(stdout)
	if stderr != nil {
		go c.stderrLoop(stderr)
	}
}

// writerLoop drains the outgoing queue into the server's stdin. A write
// failure ends the loop; subsequent sends still enqueue but nothing
// drains them, and the caller observes only the loss of replies.
func (c *Client) writerLoop() {
	for {
		payload, ok := c.outgoing.pop()
		if !ok {
			return
		}
		if err := writeFrame(c.stdin, payload); err != nil {
			c.debugf("lsp: writer exiting: %v", err)
			return
		}
	}
}

// readerLoop decodes framed messages from the server's stdout and
// resolves them against the pending map.
func (c *Client) readerLoop(stdout io.Reader) {
	br := bufio.NewReaderSize(stdout, 64*1024)
	for {
		frame, err := readFrame(br)
		if err != nil {
			if err != io.EOF && !c.closed.Load() {
				c.debugf("lsp: reader exiting: %v", err)
			}
			return
		}
		c.dispatch(frame)
	}
}

// stderrLoop forwards server stderr lines to the debug log.
func (c *Client) stderrLoop(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 16*1024), 256*1024)
	for scanner.Scan() {
		c.debugf("lsp stderr: %s", scanner.Text())
	}
}

// dispatch routes one decoded frame: a response is matched by id against
// the pending map, a notification is decoded directly. Unmatched ids,
// error replies, and null results are dropped with a debug log.
func (c *Client) dispatch(frame []byte) {
	var probe struct {
		ID     *int64          `json:"id"`
		Method string          `json:"method"`
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(frame, &probe); err != nil {
		c.debugf("lsp: undecodable frame: %v", err)
		return
	}

	if probe.ID == nil {
		if probe.Method == "" {
			return
		}
		resp, ok := decodeNotification(probe.Method, probe.Params)
		if !ok {
			c.debugf("lsp: ignoring notification %s", probe.Method)
			return
		}
		c.inbox.push(resp)
		return
	}

	// Server-to-client requests (window/workDoneProgress/create and
	// friends) carry both an id and a method; none are supported, and
	// replying is not required for the features the core consumes.
	if probe.Method != "" {
		c.debugf("lsp: ignoring server request %s", probe.Method)
		return
	}

	c.pendingMu.Lock()
	req, matched := c.pending[*probe.ID]
	if matched {
		delete(c.pending, *probe.ID)
	}
	c.pendingMu.Unlock()

	if !matched {
		c.debugf("lsp: dropping response for unknown id %d", *probe.ID)
		return
	}
	if probe.Error != nil {
		c.debugf("lsp: %s failed: %v", req.kind, probe.Error)
		return
	}
	if len(probe.Result) == 0 || string(probe.Result) == "null" {
		c.debugf("lsp: null result for %s (id %d)", req.kind, *probe.ID)
		return
	}

	resp, ok := decodeResponse(req.kind, probe.Result)
	if !ok {
		c.debugf("lsp: undecodable %s result (id %d)", req.kind, *probe.ID)
		return
	}
	if resp.Type == ResponseInitialized {
		c.caps.store(resp.Capabilities)
		c.initialized.Store(true)
		c.notify("initialized", struct{}{})
	}
	c.inbox.push(resp)
}

// request enqueues a request after checking the capability gate.
// Initialize and executeCommand are never gated.
func (c *Client) request(kind RequestKind, method string, params any) error {
	if c.closed.Load() {
		return ErrShutdown
	}
	if kind != KindInitialize && kind != KindExecuteCommand && !c.caps.supports(kind) {
		c.debugf("lsp: suppressing %s: capability not supported", method)
		return ErrUnsupported
	}

	id := nextRequestID.Add(1)
	payload, err := json.Marshal(struct {
		JSONRPC string `json:"jsonrpc"`
		ID      int64  `json:"id"`
		Method  string `json:"method"`
		Params  any    `json:"params"`
	}{"2.0", id, method, params})
	if err != nil {
		return err
	}

	c.pendingMu.Lock()
	c.pending[id] = pendingRequest{kind: kind, sentAt: time.Now(), timeout: c.requestTimeout}
	c.pendingMu.Unlock()

	c.outgoing.push(payload)
	return nil
}

// notify enqueues a notification. Notifications are never gated.
func (c *Client) notify(method string, params any) error {
	if c.closed.Load() {
		return ErrShutdown
	}
	payload, err := json.Marshal(struct {
		JSONRPC string `json:"jsonrpc"`
		Method  string `json:"method"`
		Params  any    `json:"params"`
	}{"2.0", method, params})
	if err != nil {
		return err
	}
	c.outgoing.push(payload)
	return nil
}

// Initialize sends the initialize request. The capability snapshot is
// populated when the reply arrives; the initialized notification follows
// automatically.
func (c *Client) Initialize(rootURI DocumentURI, folders []WorkspaceFolder) error {
	params := map[string]any{
		"processId": os.Getpid(),
		"rootUri":   rootURI,
		"capabilities": map[string]any{
			"textDocument": map[string]any{
				"completion": map[string]any{
					"completionItem": map[string]any{"snippetSupport": false},
				},
				"hover": map[string]any{
					"contentFormat": []string{"markdown", "plaintext"},
				},
				"publishDiagnostics": map[string]any{},
			},
			"workspace": map[string]any{
				"workspaceFolders": true,
				"applyEdit":        true,
			},
		},
		"clientInfo": map[string]any{"name": "keystorm"},
	}
	if len(folders) > 0 {
		params["workspaceFolders"] = folders
	}
	return c.request(KindInitialize, "initialize", params)
}

// DidOpen announces a document. Never gated.
func (c *Client) DidOpen(uri DocumentURI, languageID string, version int, text string) error {
	return c.notify("textDocument/didOpen", map[string]any{
		"textDocument": TextDocumentItem{URI: uri, LanguageID: languageID, Version: version, Text: text},
	})
}

// DidChange sends a full-text document sync. Never gated.
func (c *Client) DidChange(uri DocumentURI, version int, text string) error {
	return c.notify("textDocument/didChange", map[string]any{
		"textDocument":   VersionedTextDocumentIdentifier{URI: uri, Version: version},
		"contentChanges": []TextDocumentContentChangeEvent{{Text: text}},
	})
}

// DidClose retracts a document. Never gated.
func (c *Client) DidClose(uri DocumentURI) error {
	return c.notify("textDocument/didClose", map[string]any{
		"textDocument": TextDocumentIdentifier{URI: uri},
	})
}

// Completion requests completions at a position.
func (c *Client) Completion(uri DocumentURI, pos Position) error {
	return c.request(KindCompletion, "textDocument/completion", map[string]any{
		"textDocument": TextDocumentIdentifier{URI: uri},
		"position":     pos,
	})
}

// Hover requests hover information at a position.
func (c *Client) Hover(uri DocumentURI, pos Position) error {
	return c.request(KindHover, "textDocument/hover", map[string]any{
		"textDocument": TextDocumentIdentifier{URI: uri},
		"position":     pos,
	})
}

// GotoDefinition requests the definition of the symbol at a position.
func (c *Client) GotoDefinition(uri DocumentURI, pos Position) error {
	return c.request(KindGotoDefinition, "textDocument/definition", map[string]any{
		"textDocument": TextDocumentIdentifier{URI: uri},
		"position":     pos,
	})
}

// References requests all references to the symbol at a position,
// including its declaration.
func (c *Client) References(uri DocumentURI, pos Position) error {
	return c.request(KindReferences, "textDocument/references", map[string]any{
		"textDocument": TextDocumentIdentifier{URI: uri},
		"position":     pos,
		"context":      map[string]any{"includeDeclaration": true},
	})
}

// Format requests whole-document formatting edits.
func (c *Client) Format(uri DocumentURI, opts FormattingOptions) error {
	return c.request(KindFormat, "textDocument/formatting", map[string]any{
		"textDocument": TextDocumentIdentifier{URI: uri},
		"options":      opts,
	})
}

// SignatureHelp requests call-signature information at a position.
func (c *Client) SignatureHelp(uri DocumentURI, pos Position) error {
	return c.request(KindSignatureHelp, "textDocument/signatureHelp", map[string]any{
		"textDocument": TextDocumentIdentifier{URI: uri},
		"position":     pos,
	})
}

// CodeAction requests actions for a range and its diagnostics.
func (c *Client) CodeAction(uri DocumentURI, rng Range, diagnostics []Diagnostic) error {
	if diagnostics == nil {
		diagnostics = []Diagnostic{}
	}
	return c.request(KindCodeAction, "textDocument/codeAction", map[string]any{
		"textDocument": TextDocumentIdentifier{URI: uri},
		"range":        rng,
		"context":      map[string]any{"diagnostics": diagnostics},
	})
}

// InlayHint requests inlay hints for a range.
func (c *Client) InlayHint(uri DocumentURI, rng Range) error {
	return c.request(KindInlayHint, "textDocument/inlayHint", map[string]any{
		"textDocument": TextDocumentIdentifier{URI: uri},
		"range":        rng,
	})
}

// DocumentHighlight requests occurrence highlights for the symbol at a
// position.
func (c *Client) DocumentHighlight(uri DocumentURI, pos Position) error {
	return c.request(KindDocumentHighlight, "textDocument/documentHighlight", map[string]any{
		"textDocument": TextDocumentIdentifier{URI: uri},
		"position":     pos,
	})
}

// PrepareRename asks the server for the renameable range at a position.
func (c *Client) PrepareRename(uri DocumentURI, pos Position) error {
	return c.request(KindPrepareRename, "textDocument/prepareRename", map[string]any{
		"textDocument": TextDocumentIdentifier{URI: uri},
		"position":     pos,
	})
}

// Rename requests a workspace edit renaming the symbol at a position.
func (c *Client) Rename(uri DocumentURI, pos Position, newName string) error {
	return c.request(KindRename, "textDocument/rename", map[string]any{
		"textDocument": TextDocumentIdentifier{URI: uri},
		"position":     pos,
		"newName":      newName,
	})
}

// ExecuteCommand runs a server-defined command. Never gated.
func (c *Client) ExecuteCommand(command string, arguments []any) error {
	if arguments == nil {
		arguments = []any{}
	}
	return c.request(KindExecuteCommand, "workspace/executeCommand", map[string]any{
		"command":   command,
		"arguments": arguments,
	})
}

// TryRecv returns the next decoded server message without blocking.
func (c *Client) TryRecv() (Response, bool) {
	return c.inbox.tryPop()
}

// CleanupTimeouts drops pending requests older than their timeout and
// returns how many were expired. Late responses for expired ids are
// dropped by dispatch as unknown.
func (c *Client) CleanupTimeouts() int {
	now := time.Now()
	expired := 0
	c.pendingMu.Lock()
	for id, req := range c.pending {
		if now.Sub(req.sentAt) > req.timeout {
			c.debugf("lsp: request %d (%s) timed out", id, req.kind)
			delete(c.pending, id)
			expired++
		}
	}
	c.pendingMu.Unlock()
	return expired
}

// PendingCount returns the number of in-flight requests.
func (c *Client) PendingCount() int {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	return len(c.pending)
}

// IsReady reports whether the initialize handshake has completed.
func (c *Client) IsReady() bool {
	return c.initialized.Load()
}

// Capabilities returns the server's capability snapshot.
func (c *Client) Capabilities() (ServerCapabilities, bool) {
	return c.caps.snapshot()
}

// CompletionTriggers returns the server's completion trigger characters.
func (c *Client) CompletionTriggers() []string {
	return c.caps.completionTriggers()
}

// SignatureHelpTriggers returns the signature-help trigger characters.
func (c *Client) SignatureHelpTriggers() []string {
	return c.caps.signatureTriggers()
}

// Close kills the server process and releases the worker goroutines.
// The writer exits when its queue closes; the reader and stderr drain
// exit when the process's pipes close.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		c.outgoing.close()
		c.inbox.close()
		if c.stdin != nil {
			c.stdin.Close()
		}
		if c.cmd != nil && c.cmd.Process != nil {
			c.cmd.Process.Kill()
			go c.cmd.Wait()
		}
	})
}
