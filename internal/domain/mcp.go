package domain

// DefaultProtocolVersion is announced when the client does not request one.
const DefaultProtocolVersion = "2024-11-05"

// Server identity reported by initialize, hello and /health.
var (
	ServerName    = "azure-devops-mcp-server"
	ServerVersion = "1.0.0"
)

// ServerInfo returns the serverInfo object used in protocol handshakes.
func ServerInfo() map[string]interface{} {
	return map[string]interface{}{
		"name":    ServerName,
		"version": ServerVersion,
	}
}

// ToolDefinition represents an MCP tool definition.
// This describes a tool that can be called by MCP clients.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// ToolRequest represents the params of a tools/call request.
type ToolRequest struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolResponse is the canonical content-array shape returned to clients.
type ToolResponse struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// Text joins the text of every content block, separated by newlines.
func (r *ToolResponse) Text() string {
	text := ""
	for i, block := range r.Content {
		if i > 0 {
			text += "\n"
		}
		text += block.Text
	}
	return text
}

// ContentBlock represents a piece of content in the response.
type ContentBlock struct {
	Type string `json:"type"` // "text"
	Text string `json:"text"`
}

// TextContent builds a text content block.
func TextContent(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

// JSONSchema represents a JSON Schema for tool input validation.
type JSONSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`
}
