package domain

import (
	"context"
)

// ToolFunc executes one tool against the shared backend connection.
type ToolFunc func(ctx context.Context, args map[string]interface{}, conn Connection) (ToolResult, error)

// Tool pairs an advertised definition with the function that serves it.
type Tool struct {
	Definition ToolDefinition
	Handler    ToolFunc
}

// Name returns the tool's unique name.
func (t Tool) Name() string {
	return t.Definition.Name
}

// ToolHandler groups the tools of one Azure DevOps area
// (core, work items, builds, repos, wiki, releases, test plans, search).
type ToolHandler interface {
	// ToolName returns the area identifier, which is also the tool name prefix.
	ToolName() string

	// Tools returns the tools served by this area, in advertisement order.
	Tools() []Tool
}

// ConnectionProvider hands out the process-wide backend connection.
type ConnectionProvider interface {
	Connection(ctx context.Context) (Connection, error)
}
