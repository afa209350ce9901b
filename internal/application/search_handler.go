package application

import (
	"context"

	"azure-devops-mcp-server/internal/domain"
)

// SearchHandler implements ToolHandler for code, wiki and work item search.
type SearchHandler struct {
	mapper domain.ResponseMapper
}

// NewSearchHandler creates a new SearchHandler instance.
func NewSearchHandler(mapper domain.ResponseMapper) *SearchHandler {
	return &SearchHandler{mapper: mapper}
}

// Tool name constants for search operations
const (
	ToolSearchCode     = "search_code"
	ToolSearchWiki     = "search_wiki"
	ToolSearchWorkItem = "search_workitem"
)

// ToolName returns the identifier for this handler.
func (h *SearchHandler) ToolName() string {
	return "search"
}

// Tools returns the search tools.
func (h *SearchHandler) Tools() []domain.Tool {
	return []domain.Tool{
		{
			Definition: domain.ToolDefinition{
				Name:        ToolSearchCode,
				Description: "Search source code across repositories",
				InputSchema: searchSchema(),
			},
			Handler: h.searchTool(domain.SearchCode, "searching code"),
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolSearchWiki,
				Description: "Search wiki pages",
				InputSchema: searchSchema(),
			},
			Handler: h.searchTool(domain.SearchWiki, "searching wiki"),
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolSearchWorkItem,
				Description: "Search work items by text",
				InputSchema: searchSchema(),
			},
			Handler: h.searchTool(domain.SearchWorkItem, "searching work items"),
		},
	}
}

func searchSchema() domain.JSONSchema {
	return objectSchema(map[string]interface{}{
		"searchText": stringProperty("Text to search for"),
		"project":    stringProperty("Project to search in. Defaults to the configured default project, or the whole organization."),
		"top":        topProperty("results"),
	}, "searchText")
}

// searchTool builds the handler for one search index.
func (h *SearchHandler) searchTool(kind domain.SearchKind, action string) domain.ToolFunc {
	return func(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
		text, err := getStringParam(args, "searchText", true)
		if err != nil {
			return nil, err
		}
		project, err := getOptionalProjectParam(args, conn)
		if err != nil {
			return nil, err
		}
		top, err := getIntParam(args, "top", false)
		if err != nil {
			return nil, err
		}

		results, err := conn.Search().Search(ctx, kind, domain.SearchRequest{
			Text:    text,
			Project: project,
			Top:     top,
		})
		if err != nil {
			return backendFailure(action, err), nil
		}

		return h.mapper.MapToToolResult(results)
	}
}
