package domain

// ResponseMapper converts Azure DevOps API responses to tool results.
type ResponseMapper interface {
	// MapToToolResult renders a deserialized API response as a tool result.
	// Paged responses with a continuation token get a second content block.
	MapToToolResult(apiResponse interface{}) (ToolResult, error)

	// MapError converts an API error to a JSON-RPC error.
	// HTTP status codes from the REST clients and the SDK are mapped to
	// the matching JSON-RPC error codes.
	MapError(err error) *Error
}
