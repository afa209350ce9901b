package application

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"azure-devops-mcp-server/internal/domain"
)

// sseFrame is one parsed event-stream block.
type sseFrame struct {
	event   string
	data    string
	comment string
}

// readFrame reads lines up to the next blank line.
func readFrame(t *testing.T, reader *bufio.Reader) sseFrame {
	t.Helper()
	var frame sseFrame
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("Failed to read event stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return frame
		case strings.HasPrefix(line, "event: "):
			frame.event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			frame.data = strings.TrimPrefix(line, "data: ")
		case strings.HasPrefix(line, ": "):
			frame.comment = strings.TrimPrefix(line, ": ")
		}
	}
}

// openStream connects to an SSE endpoint and returns a reader plus a cancel
// function that disconnects the client.
func openStream(t *testing.T, url string) (*bufio.Reader, *http.Response, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to create request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		t.Fatalf("Failed to open stream: %v", err)
	}
	return bufio.NewReader(resp.Body), resp, func() {
		cancel()
		resp.Body.Close()
	}
}

// sessionIDFromEndpoint extracts the session id from an endpoint frame.
func sessionIDFromEndpoint(t *testing.T, frame sseFrame) string {
	t.Helper()
	if frame.event != "endpoint" {
		t.Fatalf("Expected endpoint event first, got %q", frame.event)
	}
	const prefix = "/message?sessionId="
	if !strings.HasPrefix(frame.data, prefix) {
		t.Fatalf("Unexpected endpoint data %q", frame.data)
	}
	return strings.TrimPrefix(frame.data, prefix)
}

func waitForSessions(t *testing.T, manager *SessionManager, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if manager.ActiveSessions() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d active sessions, got %d", want, manager.ActiveSessions())
}

func TestSessionManager_Handshake(t *testing.T) {
	manager := NewSessionManager(time.Hour, "/message", discardLogger())
	srv := httptest.NewServer(http.HandlerFunc(manager.ServeSSE))
	defer srv.Close()

	reader, resp, disconnect := openStream(t, srv.URL)
	defer disconnect()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %q", ct)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Expected Cache-Control no-cache, got %q", cc)
	}

	sessionID := sessionIDFromEndpoint(t, readFrame(t, reader))
	if _, err := uuid.Parse(sessionID); err != nil {
		t.Errorf("Expected a UUID session id, got %q", sessionID)
	}

	hello := readFrame(t, reader)
	if hello.event != "message" {
		t.Fatalf("Expected hello message second, got %q", hello.event)
	}
	var notification struct {
		JSONRPC string `json:"jsonrpc"`
		Method  string `json:"method"`
		Params  struct {
			SessionID  string                 `json:"sessionId"`
			ServerInfo map[string]interface{} `json:"serverInfo"`
		} `json:"params"`
	}
	if err := json.Unmarshal([]byte(hello.data), &notification); err != nil {
		t.Fatalf("Hello is not JSON: %v", err)
	}
	if notification.JSONRPC != "2.0" || notification.Method != "hello" {
		t.Errorf("Unexpected hello envelope %+v", notification)
	}
	if notification.Params.SessionID != sessionID {
		t.Errorf("Expected hello to carry session %s, got %s", sessionID, notification.Params.SessionID)
	}
	if notification.Params.ServerInfo["name"] != domain.ServerName {
		t.Errorf("Expected serverInfo name %s, got %v", domain.ServerName, notification.Params.ServerInfo["name"])
	}

	waitForSessions(t, manager, 1)
}

func TestSessionManager_UniqueSessions(t *testing.T) {
	manager := NewSessionManager(time.Hour, "/message", discardLogger())
	srv := httptest.NewServer(http.HandlerFunc(manager.ServeSSE))
	defer srv.Close()

	first, _, disconnectFirst := openStream(t, srv.URL)
	defer disconnectFirst()
	second, _, disconnectSecond := openStream(t, srv.URL)
	defer disconnectSecond()

	a := sessionIDFromEndpoint(t, readFrame(t, first))
	b := sessionIDFromEndpoint(t, readFrame(t, second))
	if a == b {
		t.Errorf("Expected distinct session ids, both were %s", a)
	}
	waitForSessions(t, manager, 2)
}

func TestSessionManager_Heartbeat(t *testing.T) {
	manager := NewSessionManager(20*time.Millisecond, "/message", discardLogger())
	manager.now = func() time.Time { return fixedTime }
	srv := httptest.NewServer(http.HandlerFunc(manager.ServeSSE))
	defer srv.Close()

	reader, _, disconnect := openStream(t, srv.URL)
	defer disconnect()

	readFrame(t, reader)
	readFrame(t, reader)

	heartbeat := readFrame(t, reader)
	if heartbeat.comment != "heartbeat 2024-01-01T12:00:00.000Z" {
		t.Errorf("Unexpected heartbeat %q", heartbeat.comment)
	}
	if heartbeat.event != "" || heartbeat.data != "" {
		t.Errorf("Expected heartbeat to be a comment only, got %+v", heartbeat)
	}
}

func TestSessionManager_DisconnectRemovesSession(t *testing.T) {
	manager := NewSessionManager(10*time.Millisecond, "/message", discardLogger())
	srv := httptest.NewServer(http.HandlerFunc(manager.ServeSSE))
	defer srv.Close()

	reader, _, disconnect := openStream(t, srv.URL)
	sessionID := sessionIDFromEndpoint(t, readFrame(t, reader))
	waitForSessions(t, manager, 1)

	disconnect()

	waitForSessions(t, manager, 0)
	if manager.Deliver(sessionID, domain.NewResult(json.RawMessage("1"), "x")) {
		t.Error("Expected delivery to a closed session to fail")
	}
}

func TestSessionManager_Deliver(t *testing.T) {
	manager := NewSessionManager(time.Hour, "/message", discardLogger())
	srv := httptest.NewServer(http.HandlerFunc(manager.ServeSSE))
	defer srv.Close()

	reader, _, disconnect := openStream(t, srv.URL)
	defer disconnect()

	sessionID := sessionIDFromEndpoint(t, readFrame(t, reader))
	readFrame(t, reader)

	if !manager.Deliver(sessionID, domain.NewResult(json.RawMessage(`"req-1"`), map[string]interface{}{"ok": true})) {
		t.Fatal("Expected delivery to a live session to succeed")
	}

	frame := readFrame(t, reader)
	if frame.event != "message" {
		t.Fatalf("Expected message event, got %q", frame.event)
	}
	if frame.data != `{"jsonrpc":"2.0","id":"req-1","result":{"ok":true}}` {
		t.Errorf("Unexpected delivered payload %s", frame.data)
	}

	if manager.Deliver("unknown-session", domain.NewResult(json.RawMessage("1"), "x")) {
		t.Error("Expected delivery to an unknown session to fail")
	}
}

func TestSessionManager_ShutdownEndsStream(t *testing.T) {
	manager := NewSessionManager(time.Hour, "/message", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewUnstartedServer(http.HandlerFunc(manager.ServeSSE))
	srv.Config.BaseContext = func(_ net.Listener) context.Context { return ctx }
	srv.Start()
	defer srv.Close()

	reader, _, disconnect := openStream(t, srv.URL)
	defer disconnect()
	readFrame(t, reader)
	waitForSessions(t, manager, 1)

	cancel()

	waitForSessions(t, manager, 0)
}

// nonFlusher hides the Flush method of the wrapped writer.
type nonFlusher struct {
	http.ResponseWriter
}

func TestSessionManager_RequiresFlusher(t *testing.T) {
	manager := NewSessionManager(time.Hour, "/message", discardLogger())
	recorder := httptest.NewRecorder()

	manager.ServeSSE(nonFlusher{recorder}, httptest.NewRequest(http.MethodGet, "/sse", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 without streaming support, got %d", recorder.Code)
	}
	if manager.ActiveSessions() != 0 {
		t.Error("Expected no session to be opened")
	}
}

func TestNewSessionManager_DefaultHeartbeat(t *testing.T) {
	manager := NewSessionManager(0, "/message", discardLogger())
	if manager.heartbeat != domain.DefaultHeartbeatInterval {
		t.Errorf("Expected default heartbeat %s, got %s", domain.DefaultHeartbeatInterval, manager.heartbeat)
	}
}
