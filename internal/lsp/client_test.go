package lsp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"
)

// fakeServer drives a Client over in-memory pipes, standing in for the
// child process.
type fakeServer struct {
	t      *testing.T
	client *Client

	fromClient *bufio.Reader
	toClient   io.WriteCloser
}

func newFakeServer(t *testing.T, opts ...ClientOption) *fakeServer {
	t.Helper()
	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()

	client := NewClient(opts...)
	client.startIO(stdinW, stdoutR, nil)
	t.Cleanup(func() {
		client.Close()
		stdinR.Close()
		stdoutW.Close()
	})

	return &fakeServer{
		t:          t,
		client:     client,
		fromClient: bufio.NewReader(stdinR),
		toClient:   stdoutW,
	}
}

// readRequest reads the next frame the client sent and returns its
// decoded envelope.
func (s *fakeServer) readRequest() (id *int64, method string, params json.RawMessage) {
	s.t.Helper()
	frame, err := readFrame(s.fromClient)
	if err != nil {
		s.t.Fatalf("read client frame: %v", err)
	}
	var env struct {
		ID     *int64          `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		s.t.Fatalf("decode client frame: %v", err)
	}
	return env.ID, env.Method, env.Params
}

// reply sends a raw JSON-RPC message to the client.
func (s *fakeServer) reply(body string) {
	s.t.Helper()
	if err := writeFrame(s.toClient, []byte(body)); err != nil {
		s.t.Fatalf("write server frame: %v", err)
	}
}

// initialize performs the handshake, granting the given capabilities.
func (s *fakeServer) initialize(capabilities string) {
	s.t.Helper()
	if err := s.client.Initialize("file:///ws", nil); err != nil {
		s.t.Fatalf("Initialize() error = %v", err)
	}
	id, method, _ := s.readRequest()
	if method != "initialize" || id == nil {
		s.t.Fatalf("first request = %s (id %v), want initialize", method, id)
	}
	s.reply(fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"result":{"capabilities":%s}}`, *id, capabilities))

	resp := s.waitRecv()
	if resp.Type != ResponseInitialized {
		s.t.Fatalf("response type = %v, want ResponseInitialized", resp.Type)
	}
	// The initialized notification follows automatically.
	if _, method, _ := s.readRequest(); method != "initialized" {
		s.t.Fatalf("after handshake got %s, want initialized", method)
	}
}

// waitRecv polls TryRecv until a response arrives.
func (s *fakeServer) waitRecv() Response {
	s.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if resp, ok := s.client.TryRecv(); ok {
			return resp
		}
		time.Sleep(time.Millisecond)
	}
	s.t.Fatal("timed out waiting for response")
	return Response{}
}

// expectNoRecv asserts nothing arrives within the window.
func (s *fakeServer) expectNoRecv(d time.Duration) {
	s.t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if resp, ok := s.client.TryRecv(); ok {
			s.t.Fatalf("unexpected response: %+v", resp)
		}
		time.Sleep(time.Millisecond)
	}
}

const allCapabilities = `{
	"completionProvider": {"triggerCharacters": ["."]},
	"hoverProvider": true,
	"definitionProvider": true,
	"referencesProvider": true,
	"documentFormattingProvider": true,
	"signatureHelpProvider": {"triggerCharacters": ["("]},
	"codeActionProvider": true,
	"inlayHintProvider": true,
	"documentHighlightProvider": true,
	"renameProvider": {"prepareProvider": true}
}`

func TestClientInitializeHandshake(t *testing.T) {
	s := newFakeServer(t)
	s.initialize(allCapabilities)

	if !s.client.IsReady() {
		t.Error("IsReady() = false after handshake")
	}
	if got := s.client.CompletionTriggers(); len(got) != 1 || got[0] != "." {
		t.Errorf("CompletionTriggers() = %v, want [.]", got)
	}
}

func TestClientCompletionCorrelation(t *testing.T) {
	s := newFakeServer(t)
	s.initialize(allCapabilities)

	if err := s.client.Completion("file:///a.go", Position{Line: 1, Character: 2}); err != nil {
		t.Fatalf("Completion() error = %v", err)
	}
	id, method, _ := s.readRequest()
	if method != "textDocument/completion" || id == nil {
		t.Fatalf("request = %s (id %v)", method, id)
	}
	s.reply(fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"result":{"isIncomplete":true,"items":[{"label":"Foo"}]}}`, *id))

	resp := s.waitRecv()
	if resp.Type != ResponseCompletion {
		t.Fatalf("response type = %v, want ResponseCompletion", resp.Type)
	}
	if !resp.IsIncomplete || len(resp.Items) != 1 || resp.Items[0].Label != "Foo" {
		t.Errorf("completion = %+v", resp)
	}
	if n := s.client.PendingCount(); n != 0 {
		t.Errorf("PendingCount() = %d after reply, want 0", n)
	}
}

func TestClientNullResultDropped(t *testing.T) {
	s := newFakeServer(t)
	s.initialize(allCapabilities)

	if err := s.client.Completion("file:///a.go", Position{}); err != nil {
		t.Fatalf("Completion() error = %v", err)
	}
	id, _, _ := s.readRequest()
	s.reply(fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"result":null}`, *id))

	s.expectNoRecv(50 * time.Millisecond)
	if n := s.client.PendingCount(); n != 0 {
		t.Errorf("PendingCount() = %d, want 0 (null reply still clears pending)", n)
	}
}

func TestClientUnknownIDDropped(t *testing.T) {
	s := newFakeServer(t)
	s.initialize(allCapabilities)

	s.reply(`{"jsonrpc":"2.0","id":999999,"result":{"isIncomplete":false,"items":[]}}`)
	s.expectNoRecv(50 * time.Millisecond)
}

func TestClientResponseMatchedAtMostOnce(t *testing.T) {
	s := newFakeServer(t)
	s.initialize(allCapabilities)

	if err := s.client.Hover("file:///a.go", Position{}); err != nil {
		t.Fatalf("Hover() error = %v", err)
	}
	id, _, _ := s.readRequest()
	body := fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"result":{"contents":"docs"}}`, *id)
	s.reply(body)
	s.reply(body) // duplicate: id already resolved, must be dropped

	resp := s.waitRecv()
	if resp.Type != ResponseHover || resp.HoverText != "docs" {
		t.Fatalf("hover = %+v", resp)
	}
	s.expectNoRecv(50 * time.Millisecond)
}

func TestClientErrorResponseDropped(t *testing.T) {
	s := newFakeServer(t)
	s.initialize(allCapabilities)

	if err := s.client.Hover("file:///a.go", Position{}); err != nil {
		t.Fatalf("Hover() error = %v", err)
	}
	id, _, _ := s.readRequest()
	s.reply(fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"nope"}}`, *id))
	s.expectNoRecv(50 * time.Millisecond)
}

func TestClientCapabilityGating(t *testing.T) {
	s := newFakeServer(t)
	s.initialize(`{"completionProvider": {}}`)

	// Hover was not advertised: suppressed before reaching the wire.
	if err := s.client.Hover("file:///a.go", Position{}); err != ErrUnsupported {
		t.Fatalf("Hover() error = %v, want ErrUnsupported", err)
	}
	if n := s.client.PendingCount(); n != 0 {
		t.Errorf("PendingCount() = %d, want 0", n)
	}

	// Completion was advertised and goes out.
	if err := s.client.Completion("file:///a.go", Position{}); err != nil {
		t.Fatalf("Completion() error = %v", err)
	}
	if _, method, _ := s.readRequest(); method != "textDocument/completion" {
		t.Errorf("request method = %s", method)
	}
}

func TestClientNotificationsNeverGated(t *testing.T) {
	s := newFakeServer(t)
	s.initialize(`{}`)

	if err := s.client.DidOpen("file:///a.go", "go", 1, "package a"); err != nil {
		t.Fatalf("DidOpen() error = %v", err)
	}
	if _, method, _ := s.readRequest(); method != "textDocument/didOpen" {
		t.Errorf("method = %s, want textDocument/didOpen", method)
	}
	if err := s.client.DidChange("file:///a.go", 2, "package b"); err != nil {
		t.Fatalf("DidChange() error = %v", err)
	}
	if _, method, _ := s.readRequest(); method != "textDocument/didChange" {
		t.Errorf("method = %s, want textDocument/didChange", method)
	}
}

func TestClientTimeoutCleanup(t *testing.T) {
	s := newFakeServer(t, WithRequestTimeout(time.Millisecond))
	s.initialize(allCapabilities)

	if err := s.client.Completion("file:///a.go", Position{}); err != nil {
		t.Fatalf("Completion() error = %v", err)
	}
	s.readRequest()

	time.Sleep(5 * time.Millisecond)
	if expired := s.client.CleanupTimeouts(); expired != 1 {
		t.Fatalf("CleanupTimeouts() = %d, want 1", expired)
	}
	if n := s.client.PendingCount(); n != 0 {
		t.Errorf("PendingCount() = %d, want 0", n)
	}
}

func TestClientDiagnosticsNotification(t *testing.T) {
	s := newFakeServer(t)
	s.initialize(`{}`)

	s.reply(`{"jsonrpc":"2.0","method":"textDocument/publishDiagnostics","params":{"uri":"file:///a.go","diagnostics":[{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":3}},"severity":1,"message":"boom"}]}}`)

	resp := s.waitRecv()
	if resp.Type != ResponseDiagnostics {
		t.Fatalf("response type = %v, want ResponseDiagnostics", resp.Type)
	}
	if resp.URI != "file:///a.go" || len(resp.Diagnostics) != 1 || resp.Diagnostics[0].Message != "boom" {
		t.Errorf("diagnostics = %+v", resp)
	}
}

func TestClientUnknownNotificationIgnored(t *testing.T) {
	s := newFakeServer(t)
	s.initialize(`{}`)

	s.reply(`{"jsonrpc":"2.0","method":"window/logMessage","params":{"type":3,"message":"hi"}}`)
	s.expectNoRecv(50 * time.Millisecond)
}

func TestClientSendAfterClose(t *testing.T) {
	s := newFakeServer(t)
	s.client.Close()
	if err := s.client.Completion("file:///a.go", Position{}); err != ErrShutdown {
		t.Errorf("Completion() after Close = %v, want ErrShutdown", err)
	}
}

func TestQueueOrdering(t *testing.T) {
	q := newQueue[int]()
	for i := 0; i < 100; i++ {
		q.push(i)
	}
	for i := 0; i < 100; i++ {
		got, ok := q.tryPop()
		if !ok || got != i {
			t.Fatalf("tryPop() = %d,%v, want %d,true", got, ok, i)
		}
	}
	if _, ok := q.tryPop(); ok {
		t.Error("tryPop() on empty queue returned ok")
	}
}
