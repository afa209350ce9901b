package application

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"azure-devops-mcp-server/internal/domain"
)

// sessionBuffer bounds the responses queued for one SSE session.
const sessionBuffer = 16

// Session is one open event stream.
type Session struct {
	ID        string
	CreatedAt time.Time
	outbound  chan []byte
}

// SessionManager serves Server-Sent Event streams. Each stream gets a fresh
// session id, an endpoint event naming where to POST JSON-RPC calls, a
// hello message, and then heartbeat comments until the client goes away.
type SessionManager struct {
	heartbeat   time.Duration
	messagePath string
	logger      *StructuredLogger
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a session manager. A non-positive heartbeat
// falls back to the default interval.
func NewSessionManager(heartbeat time.Duration, messagePath string, logger *StructuredLogger) *SessionManager {
	if heartbeat <= 0 {
		heartbeat = domain.DefaultHeartbeatInterval
	}
	return &SessionManager{
		heartbeat:   heartbeat,
		messagePath: messagePath,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// ActiveSessions returns the number of open streams.
func (m *SessionManager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Deliver queues a JSON-RPC response on a live session's stream.
// It reports false when the session is unknown or its queue is full.
func (m *SessionManager) Deliver(sessionID string, response *domain.Response) bool {
	m.mu.RLock()
	session, exists := m.sessions[sessionID]
	m.mu.RUnlock()
	if !exists {
		return false
	}

	payload, err := json.Marshal(response)
	if err != nil {
		m.logger.LogError("failed to marshal session message", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return false
	}

	select {
	case session.outbound <- payload:
		return true
	default:
		m.logger.LogWarn("session queue full, dropping message", map[string]interface{}{
			"session_id": sessionID,
		})
		return false
	}
}

// ServeSSE runs one event stream until the request context is done or a
// write fails. All writes happen on the calling goroutine.
func (m *SessionManager) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	session := m.open()
	defer m.close(session.ID)

	ticker := time.NewTicker(m.heartbeat)
	defer ticker.Stop()

	hello, err := json.Marshal(helloNotification{
		JSONRPC: domain.JSONRPCVersion,
		Method:  "hello",
		Params: helloParams{
			SessionID:  session.ID,
			ServerInfo: domain.ServerInfo(),
		},
	})
	if err != nil {
		m.logger.LogError("failed to marshal hello", err, nil)
		return
	}

	endpoint := fmt.Sprintf("%s?sessionId=%s", m.messagePath, session.ID)
	if err := writeEvent(w, "endpoint", []byte(endpoint)); err != nil {
		return
	}
	if err := writeEvent(w, "message", hello); err != nil {
		return
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-session.outbound:
			if err := writeEvent(w, "message", payload); err != nil {
				m.logger.LogError("failed to write session message", err, map[string]interface{}{
					"session_id": session.ID,
				})
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": heartbeat %s\n\n", m.now().UTC().Format(TimestampFormat)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

type helloNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  helloParams `json:"params"`
}

type helloParams struct {
	SessionID  string                 `json:"sessionId"`
	ServerInfo map[string]interface{} `json:"serverInfo"`
}

func (m *SessionManager) open() *Session {
	session := &Session{
		ID:        uuid.New().String(),
		CreatedAt: m.now(),
		outbound:  make(chan []byte, sessionBuffer),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.LogInfo("sse session opened", map[string]interface{}{
		"session_id": session.ID,
	})
	return session
}

func (m *SessionManager) close(sessionID string) {
	m.mu.Lock()
	session, exists := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if exists {
		m.logger.LogInfo("sse session closed", map[string]interface{}{
			"session_id":  sessionID,
			"duration_ms": m.now().Sub(session.CreatedAt).Milliseconds(),
		})
	}
}

// writeEvent writes one named SSE frame.
func writeEvent(w io.Writer, event string, data []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
