package domain

// ToolResult is what a tool handler produces. It is either a TextResult
// (the legacy plain string shape) or a StructuredResult; Normalize turns
// both into a ToolResponse.
type ToolResult interface {
	toolResult()
}

// TextResult is a plain text payload.
type TextResult string

func (TextResult) toolResult() {}

// StructuredResult carries content blocks and an optional error flag.
type StructuredResult struct {
	Content []ContentBlock
	IsError bool
}

func (*StructuredResult) toolResult() {}

// ErrorResult is an in-band failure: the call succeeded at the protocol
// level but the requested operation did not.
func ErrorResult(text string) *StructuredResult {
	return &StructuredResult{
		Content: []ContentBlock{TextContent(text)},
		IsError: true,
	}
}
