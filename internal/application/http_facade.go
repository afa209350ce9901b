package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"azure-devops-mcp-server/internal/domain"
)

const (
	// maxBodyBytes caps JSON-RPC and REST request bodies.
	maxBodyBytes = 4 << 20

	shutdownTimeout = 10 * time.Second
)

// HTTPFacade exposes the MCP endpoints, the SSE stream and the plain REST
// tool surface over HTTP.
type HTTPFacade struct {
	server   *Server
	sessions *SessionManager
	config   *domain.Config
	logger   *StructuredLogger
}

// NewHTTPFacade creates the HTTP surface for server.
func NewHTTPFacade(server *Server, config *domain.Config) *HTTPFacade {
	logger := server.Logger()
	return &HTTPFacade{
		server:   server,
		sessions: NewSessionManager(config.Transport.HTTP.HeartbeatInterval, "/message", logger),
		config:   config,
		logger:   logger,
	}
}

// Sessions returns the SSE session manager.
func (f *HTTPFacade) Sessions() *SessionManager {
	return f.sessions
}

// Router builds the HTTP handler with CORS, logging and recovery applied.
func (f *HTTPFacade) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", f.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/sse", f.sessions.ServeSSE).Methods(http.MethodGet)
	for _, path := range []string{"/sse", "/message", "/mcp"} {
		r.HandleFunc(path, f.handleJSONRPC).Methods(http.MethodPost)
	}
	r.HandleFunc("/api/tools", f.handleListTools).Methods(http.MethodGet)
	r.HandleFunc("/api/tools/{toolName}", f.handleCallTool).Methods(http.MethodPost)

	r.Use(f.recoveryMiddleware, f.loggingMiddleware)

	origins := f.config.Transport.HTTP.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(r)
}

// ListenAndServe serves HTTP until ctx is cancelled, then shuts down.
// Request contexts derive from ctx so open SSE streams end on shutdown.
func (f *HTTPFacade) ListenAndServe(ctx context.Context) error {
	httpConfig := f.config.Transport.HTTP
	srv := &http.Server{
		Addr:              net.JoinHostPort(httpConfig.Host, strconv.Itoa(httpConfig.Port)),
		Handler:           f.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	// A listen failure cancels egCtx, which also releases the shutdown goroutine.
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		f.logger.LogInfo("http server listening", map[string]interface{}{
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		f.logger.LogInfo("http server shutting down", nil)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return nil
	})

	return eg.Wait()
}

func (f *HTTPFacade) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"version":      domain.ServerVersion,
		"organization": f.config.AzureDevOps.OrganizationName(),
		"timestamp":    f.server.Timestamp(),
	})
}

// handleJSONRPC answers one JSON-RPC envelope. Notifications get an empty
// 202. When the caller names a live SSE session the response is also
// pushed onto that stream.
func (f *HTTPFacade) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, domain.NewErrorResponse(nil, domain.ParseError, "Parse error", err.Error()))
		return
	}

	response := f.server.HandleMessage(r.Context(), body)
	if response == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if sessionID := r.URL.Query().Get("sessionId"); sessionID != "" {
		if !f.sessions.Deliver(sessionID, response) {
			f.logger.LogWarn("response not delivered to session", map[string]interface{}{
				"session_id": sessionID,
			})
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func (f *HTTPFacade) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"tools":   f.server.Registry().List(false),
	})
}

// handleCallTool runs a tool with the request body as its arguments,
// bypassing the JSON-RPC envelope.
func (f *HTTPFacade) handleCallTool(w http.ResponseWriter, r *http.Request) {
	toolName := mux.Vars(r)["toolName"]

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeToolError(w, http.StatusBadRequest, "failed to read request body", err.Error())
		return
	}

	args := make(map[string]interface{})
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			writeToolError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
			return
		}
		if args == nil {
			args = make(map[string]interface{})
		}
	}

	result, err := f.server.CallTool(r.Context(), toolName, args)
	if err != nil {
		rpcErr := asRPCError(err)
		writeToolError(w, domain.HTTPStatusForCode(rpcErr.Code), rpcErr.Message, rpcErr.Data)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": !result.IsError,
		"result":  result,
	})
}

func writeToolError(w http.ResponseWriter, status int, message string, data interface{}) {
	body := map[string]interface{}{
		"success": false,
		"error":   message,
	}
	if data != nil {
		body["details"] = data
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE streaming working through the recorder.
func (s *statusRecorder) Flush() {
	if flusher, ok := s.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (f *HTTPFacade) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		f.logger.LogInfo("http request", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"remote":      r.RemoteAddr,
			"status":      recorder.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

func (f *HTTPFacade) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				f.logger.LogError("http handler panicked", fmt.Errorf("%v", rec), map[string]interface{}{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				writeToolError(w, http.StatusInternalServerError, "internal server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
