package domain

// Normalize converts a handler result into the canonical MCP content array.
// A nil result or a structured result without content is a handler bug.
func Normalize(result ToolResult) (*ToolResponse, error) {
	switch r := result.(type) {
	case TextResult:
		return &ToolResponse{
			Content: []ContentBlock{TextContent(string(r))},
		}, nil
	case *StructuredResult:
		if r == nil || r.Content == nil {
			return nil, malformedResult()
		}
		return &ToolResponse{
			Content: r.Content,
			IsError: r.IsError,
		}, nil
	default:
		return nil, malformedResult()
	}
}

func malformedResult() *Error {
	return &Error{
		Code:    InternalError,
		Message: "malformed tool result",
	}
}

// minimalPropertyKeys are the schema keys kept when advertising tools in minimal mode.
var minimalPropertyKeys = []string{"type", "enum", "items"}

// MinimizeToolDefinition strips descriptions from a tool definition and
// reduces each property schema to its type, enum and items.
// The accepted arguments are unchanged.
func MinimizeToolDefinition(def ToolDefinition) ToolDefinition {
	minimal := ToolDefinition{
		Name: def.Name,
		InputSchema: JSONSchema{
			Type:     def.InputSchema.Type,
			Required: def.InputSchema.Required,
		},
	}

	if def.InputSchema.Properties != nil {
		minimal.InputSchema.Properties = make(map[string]interface{}, len(def.InputSchema.Properties))
		for name, prop := range def.InputSchema.Properties {
			propMap, ok := prop.(map[string]interface{})
			if !ok {
				minimal.InputSchema.Properties[name] = prop
				continue
			}
			reduced := make(map[string]interface{})
			for _, key := range minimalPropertyKeys {
				if value, exists := propMap[key]; exists {
					reduced[key] = value
				}
			}
			minimal.InputSchema.Properties[name] = reduced
		}
	}

	return minimal
}
