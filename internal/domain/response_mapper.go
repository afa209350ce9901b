package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
)

// DefaultResponseMapper is the default implementation of ResponseMapper.
type DefaultResponseMapper struct{}

// NewResponseMapper creates a new instance of DefaultResponseMapper.
func NewResponseMapper() ResponseMapper {
	return &DefaultResponseMapper{}
}

// MapToToolResult renders the response as indented JSON text.
func (m *DefaultResponseMapper) MapToToolResult(apiResponse interface{}) (ToolResult, error) {
	if apiResponse == nil {
		return TextResult("{}"), nil
	}

	jsonBytes, err := json.MarshalIndent(apiResponse, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal API response: %w", err)
	}

	paginationInfo := extractPaginationInfo(apiResponse)
	if paginationInfo != "" {
		return &StructuredResult{
			Content: []ContentBlock{
				TextContent(string(jsonBytes)),
				TextContent(paginationInfo),
			},
		}, nil
	}

	return TextResult(string(jsonBytes)), nil
}

// extractPaginationInfo returns a continuation hint for paged responses,
// or an empty string when there is nothing more to fetch.
func extractPaginationInfo(apiResponse interface{}) string {
	var page *Page
	switch p := apiResponse.(type) {
	case *Page:
		page = p
	case Page:
		page = &p
	default:
		return ""
	}

	if page == nil || page.ContinuationToken == "" {
		return ""
	}
	return fmt.Sprintf("Continuation token: %s", page.ContinuationToken)
}

// MapError converts an API error to MCP error format.
func (m *DefaultResponseMapper) MapError(err error) *Error {
	if err == nil {
		return nil
	}

	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return mapHTTPError(httpErr)
	}

	if statusCode, message, ok := sdkError(err); ok {
		return mapHTTPError(HTTPError{StatusCode: statusCode, Message: message})
	}

	return &Error{
		Code:    InternalError,
		Message: err.Error(),
	}
}

// sdkError extracts the HTTP status from an azure-devops-go-api error.
func sdkError(err error) (int, string, bool) {
	var wrapped *azuredevops.WrappedError
	if !errors.As(err, &wrapped) {
		var value azuredevops.WrappedError
		if !errors.As(err, &value) {
			return 0, "", false
		}
		wrapped = &value
	}
	if wrapped.StatusCode == nil {
		return 0, "", false
	}
	message := ""
	if wrapped.Message != nil {
		message = *wrapped.Message
	}
	return *wrapped.StatusCode, message, true
}

// HTTPError represents an HTTP error with status code and message.
// The REST clients return it for non-success responses.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface for HTTPError.
func (e HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Message, e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(statusCode int, message string, body string) HTTPError {
	return HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Body:       body,
	}
}

// mapHTTPError maps HTTP status codes to JSON-RPC error codes.
func mapHTTPError(httpErr HTTPError) *Error {
	var code int
	var message string

	switch httpErr.StatusCode {
	case http.StatusUnauthorized:
		code = AuthenticationError
		message = "Authentication failed"
	case http.StatusForbidden:
		code = AuthenticationError
		message = "Access forbidden - insufficient permissions"
	case http.StatusNotFound:
		code = APIError
		message = "Resource not found"
	case http.StatusBadRequest:
		code = InvalidParams
		message = "Bad request - invalid parameters"
	case http.StatusConflict:
		code = APIError
		message = "Conflict - resource already exists or version mismatch"
	case http.StatusTooManyRequests:
		code = RateLimitError
		message = "Rate limit exceeded"
	case http.StatusInternalServerError:
		code = APIError
		message = "Internal server error"
	case http.StatusServiceUnavailable:
		code = NetworkError
		message = "Service unavailable"
	case http.StatusGatewayTimeout:
		code = NetworkError
		message = "Gateway timeout"
	default:
		if httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
			code = APIError
			message = fmt.Sprintf("Client error: %s", httpErr.Message)
		} else if httpErr.StatusCode >= 500 {
			code = APIError
			message = fmt.Sprintf("Server error: %s", httpErr.Message)
		} else {
			code = InternalError
			message = httpErr.Message
		}
	}

	errorData := map[string]interface{}{
		"statusCode": httpErr.StatusCode,
		"message":    httpErr.Message,
	}
	if httpErr.Body != "" {
		errorData["body"] = httpErr.Body
	}

	return &Error{
		Code:    code,
		Message: message,
		Data:    errorData,
	}
}

// HTTPStatusForCode picks the REST status code that matches a JSON-RPC error code.
func HTTPStatusForCode(code int) int {
	switch code {
	case InvalidParams, InvalidRequest, ParseError:
		return http.StatusBadRequest
	case MethodNotFound:
		return http.StatusNotFound
	case AuthenticationError:
		return http.StatusUnauthorized
	case RateLimitError:
		return http.StatusTooManyRequests
	case NetworkError, APIError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
