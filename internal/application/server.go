package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"azure-devops-mcp-server/internal/domain"
)

// TimestampFormat is ISO-8601 in UTC with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Server is the MCP dispatcher.
// It interprets JSON-RPC envelopes, implements the MCP protocol methods and
// runs tool calls against the shared backend connection.
type Server struct {
	registry *ToolRegistry
	provider domain.ConnectionProvider
	config   *domain.Config
	logger   *StructuredLogger
	mapper   domain.ResponseMapper
	now      func() time.Time
}

// NewServer creates a new MCP server instance.
func NewServer(
	registry *ToolRegistry,
	provider domain.ConnectionProvider,
	config *domain.Config,
	logger *StructuredLogger,
) *Server {
	if logger == nil {
		logger = NewStructuredLogger(config.LogLevel)
	}
	return &Server{
		registry: registry,
		provider: provider,
		config:   config,
		logger:   logger,
		mapper:   domain.NewResponseMapper(),
		now:      time.Now,
	}
}

// Registry returns the tool registry served by this server.
func (s *Server) Registry() *ToolRegistry {
	return s.registry
}

// Logger returns the server's logger.
func (s *Server) Logger() *StructuredLogger {
	return s.logger
}

// Timestamp returns the current time in the protocol timestamp format.
func (s *Server) Timestamp() string {
	return s.now().UTC().Format(TimestampFormat)
}

// Serve processes requests from a message-stream transport until the
// context is cancelled or the transport closes its receive channel.
func (s *Server) Serve(ctx context.Context, transport domain.Transport) error {
	if err := transport.Start(ctx); err != nil {
		s.logger.LogError("failed to start transport", err, map[string]interface{}{
			"transport_type": s.config.Transport.Type,
		})
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.logger.LogInfo("server started", map[string]interface{}{
		"transport_type": s.config.Transport.Type,
		"tools":          s.registry.Len(),
	})

	reqChan := transport.Receive()
	for {
		select {
		case <-ctx.Done():
			s.logger.LogInfo("server shutting down", nil)
			return transport.Close()
		case req, ok := <-reqChan:
			if !ok {
				// Channel closed, transport is shutting down
				return transport.Close()
			}

			response := s.Dispatch(ctx, req)
			if response == nil {
				continue
			}
			if err := transport.Send(response); err != nil {
				s.logger.LogError("failed to send response", err, map[string]interface{}{
					"request_id": string(req.ID),
				})
			}
		}
	}
}

// HandleMessage decodes one JSON-RPC envelope and dispatches it.
// A nil response means the message was a notification.
func (s *Server) HandleMessage(ctx context.Context, raw []byte) *domain.Response {
	var req domain.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		s.logger.LogError("failed to parse request", err, nil)
		return domain.NewErrorResponse(nil, domain.ParseError, "Parse error", err.Error())
	}
	return s.Dispatch(ctx, &req)
}

// Dispatch routes a decoded JSON-RPC request by method.
// A nil response means no JSON-RPC body must be sent.
func (s *Server) Dispatch(ctx context.Context, req *domain.Request) *domain.Response {
	s.logger.LogInfo("received request", map[string]interface{}{
		"method":     req.Method,
		"request_id": string(req.ID),
	})

	if err := validateRequest(req); err != nil {
		id := req.ID
		if !req.ValidID() {
			id = nil
		}
		return domain.NewErrorResponse(id, domain.InvalidRequest, "Invalid Request", err.Error())
	}

	if req.IsNotification() {
		s.logger.LogDebug("notification received", map[string]interface{}{
			"method": req.Method,
		})
		return nil
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return domain.NewResult(req.ID, map[string]interface{}{
			"timestamp": s.Timestamp(),
		})
	case "hello":
		return domain.NewResult(req.ID, map[string]interface{}{
			"message":    "hello",
			"serverInfo": domain.ServerInfo(),
			"timestamp":  s.Timestamp(),
		})
	default:
		return domain.NewErrorResponse(req.ID, domain.MethodNotFound, "Method not found", req.Method)
	}
}

// validateRequest validates the basic structure of a JSON-RPC request.
func validateRequest(req *domain.Request) error {
	if req.JSONRPC != domain.JSONRPCVersion {
		return fmt.Errorf("invalid jsonrpc version: %q", req.JSONRPC)
	}

	if req.Method == "" {
		return fmt.Errorf("method is required")
	}

	if !req.ValidID() {
		return fmt.Errorf("invalid id type: %s", req.ID)
	}

	return nil
}

// handleInitialize handles the MCP initialize handshake.
// The client's requested protocol version is echoed back.
func (s *Server) handleInitialize(req *domain.Request) *domain.Response {
	var params struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if len(req.Params) > 0 {
		// Malformed initialize params only cost the client its version request.
		_ = json.Unmarshal(req.Params, &params)
	}

	version := params.ProtocolVersion
	if version == "" {
		version = domain.DefaultProtocolVersion
	}

	return domain.NewResult(req.ID, map[string]interface{}{
		"protocolVersion": version,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{
				"listChanged": false,
			},
		},
		"serverInfo": domain.ServerInfo(),
	})
}

// handleToolsList returns every registered tool.
func (s *Server) handleToolsList(req *domain.Request) *domain.Response {
	return domain.NewResult(req.ID, map[string]interface{}{
		"tools": s.registry.List(s.config.Tools.Minimal),
	})
}

// handleToolsCall executes a tool and wraps its normalized result.
func (s *Server) handleToolsCall(ctx context.Context, req *domain.Request) *domain.Response {
	toolReq, err := parseToolRequest(req.Params)
	if err != nil {
		return domain.NewErrorResponse(req.ID, domain.InvalidParams, "Invalid params", err.Error())
	}

	toolResp, err := s.CallTool(ctx, toolReq.Name, toolReq.Arguments)
	if err != nil {
		rpcErr := asRPCError(err)
		return domain.NewErrorResponse(req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}

	return domain.NewResult(req.ID, toolResp)
}

// parseToolRequest decodes tools/call params. Missing arguments default to
// an empty object; any other non-object value is rejected.
func parseToolRequest(params json.RawMessage) (*domain.ToolRequest, error) {
	if len(params) == 0 || string(params) == "null" {
		return nil, fmt.Errorf("params is required for tools/call")
	}

	var raw struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool request: %w", err)
	}

	if raw.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}

	toolReq := &domain.ToolRequest{Name: raw.Name}
	if len(raw.Arguments) > 0 && string(raw.Arguments) != "null" {
		if err := json.Unmarshal(raw.Arguments, &toolReq.Arguments); err != nil {
			return nil, fmt.Errorf("arguments must be an object")
		}
	}
	if toolReq.Arguments == nil {
		toolReq.Arguments = make(map[string]interface{})
	}

	return toolReq, nil
}

// CallTool looks up a tool, runs it against the backend connection and
// normalizes the result. Errors are always *domain.Error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (*domain.ToolResponse, error) {
	tool, exists := s.registry.Lookup(name)
	if !exists {
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: "Tool not found",
			Data:    name,
		}
	}

	conn, err := s.provider.Connection(ctx)
	if err != nil {
		s.logger.LogError("backend connection unavailable", err, map[string]interface{}{
			"tool": name,
		})
		var rpcErr *domain.Error
		if errors.As(err, &rpcErr) {
			return nil, rpcErr
		}
		return nil, &domain.Error{
			Code:    domain.AuthenticationError,
			Message: "failed to connect to Azure DevOps",
			Data:    err.Error(),
		}
	}

	if args == nil {
		args = make(map[string]interface{})
	}

	start := s.now()
	result, err := s.invoke(ctx, tool, args, conn)
	if err != nil {
		s.logger.LogError("tool execution failed", err, map[string]interface{}{
			"tool": name,
		})
		var rpcErr *domain.Error
		if errors.As(err, &rpcErr) {
			return nil, rpcErr
		}
		// Backend status errors keep their category; anything else is internal.
		if mapped := s.mapper.MapError(err); mapped.Code != domain.InternalError {
			return nil, mapped
		}
		return nil, &domain.Error{
			Code:    domain.InternalError,
			Message: "Internal error executing tool",
			Data:    err.Error(),
		}
	}

	toolResp, err := domain.Normalize(result)
	if err != nil {
		s.logger.LogError("tool returned malformed result", err, map[string]interface{}{
			"tool": name,
		})
		return nil, err
	}

	s.logger.LogInfo("tool executed", map[string]interface{}{
		"tool":        name,
		"is_error":    toolResp.IsError,
		"duration_ms": s.now().Sub(start).Milliseconds(),
	})
	return toolResp, nil
}

// invoke runs the tool handler, turning a panic into an error.
func (s *Server) invoke(ctx context.Context, tool domain.Tool, args map[string]interface{}, conn domain.Connection) (result domain.ToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.LogError("tool handler panicked", fmt.Errorf("%v", r), map[string]interface{}{
				"tool":  tool.Name(),
				"stack": string(debug.Stack()),
			})
			result = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return tool.Handler(ctx, args, conn)
}

// CheckBackend verifies connectivity by listing at most one project.
// It is run once at startup; any error is fatal.
func (s *Server) CheckBackend(ctx context.Context) error {
	conn, err := s.provider.Connection(ctx)
	if err != nil {
		return err
	}

	projects, _, err := conn.Core().ListProjects(ctx, 1, 0)
	if err != nil {
		if rpcErr := s.mapper.MapError(err); rpcErr.Code != domain.InternalError {
			return rpcErr
		}
		return &domain.Error{
			Code:    domain.AuthenticationError,
			Message: "failed to list projects",
			Data:    err.Error(),
		}
	}

	s.logger.LogInfo("connected to Azure DevOps", map[string]interface{}{
		"organization":     conn.OrganizationURL(),
		"projects_visible": len(projects) > 0,
	})
	return nil
}

// asRPCError converts any error into a JSON-RPC error object.
func asRPCError(err error) *domain.Error {
	var rpcErr *domain.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return &domain.Error{
		Code:    domain.InternalError,
		Message: "Internal error",
		Data:    err.Error(),
	}
}
