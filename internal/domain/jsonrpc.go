package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// JSONRPCVersion is the only protocol version accepted in envelopes.
const JSONRPCVersion = "2.0"

// NotificationPrefix marks methods that never receive a JSON-RPC response.
const NotificationPrefix = "notifications/"

// Request represents a JSON-RPC 2.0 request message.
// ID and Params are kept raw so the id can be echoed byte-for-byte.
type Request struct {
	JSONRPC string          `json:"jsonrpc"` // Must be "2.0"
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// HasID reports whether the request carried an id member.
func (r *Request) HasID() bool {
	return len(r.ID) > 0
}

// ValidID reports whether the id is a string, a number or null, the only
// id types JSON-RPC 2.0 allows. An absent id is valid.
func (r *Request) ValidID() bool {
	id := bytes.TrimSpace(r.ID)
	if len(id) == 0 || string(id) == "null" {
		return true
	}
	switch c := id[0]; {
	case c == '"', c == '-':
		return true
	case c >= '0' && c <= '9':
		return true
	default:
		return false
	}
}

// IsNotification reports whether the request expects no response body:
// either the method lives under the notification namespace or no id was sent.
func (r *Request) IsNotification() bool {
	return strings.HasPrefix(r.Method, NotificationPrefix) || !r.HasID()
}

// Response represents a JSON-RPC 2.0 response message.
// A nil ID marshals as null, which is what parse errors require.
type Response struct {
	JSONRPC string          `json:"jsonrpc"` // Must be "2.0"
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResult builds a success response echoing id.
func NewResult(id json.RawMessage, result interface{}) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse builds an error response echoing id.
func NewErrorResponse(id json.RawMessage, code int, message string, data interface{}) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	return e.Message
}

// JSON-RPC 2.0 error codes
const (
	// Standard JSON-RPC 2.0 error codes
	ParseError     = -32700 // Invalid JSON received
	InvalidRequest = -32600 // Invalid JSON-RPC request structure
	MethodNotFound = -32601 // Unknown MCP method or tool
	InvalidParams  = -32602 // Invalid method parameters
	InternalError  = -32603 // Server internal error

	// Application-specific error codes
	ConfigurationError  = -32001 // Configuration validation failed
	AuthenticationError = -32002 // Authentication failed
	APIError            = -32003 // Azure DevOps API returned error
	NetworkError        = -32004 // Network connectivity issue
	RateLimitError      = -32005 // Rate limit exceeded
)
