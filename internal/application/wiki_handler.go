package application

import (
	"context"

	"azure-devops-mcp-server/internal/domain"
)

// WikiHandler implements ToolHandler for project and code wikis.
type WikiHandler struct {
	mapper domain.ResponseMapper
}

// NewWikiHandler creates a new WikiHandler instance.
func NewWikiHandler(mapper domain.ResponseMapper) *WikiHandler {
	return &WikiHandler{mapper: mapper}
}

// Tool name constants for wiki operations
const (
	ToolWikiListWikis      = "wiki_list_wikis"
	ToolWikiGetPageContent = "wiki_get_page_content"
	ToolWikiCreateOrUpdate = "wiki_create_or_update_page"
)

const wikiIdentifierDescription = "Wiki name or ID"

// ToolName returns the identifier for this handler.
func (h *WikiHandler) ToolName() string {
	return "wiki"
}

// Tools returns the wiki tools.
func (h *WikiHandler) Tools() []domain.Tool {
	return []domain.Tool{
		{
			Definition: domain.ToolDefinition{
				Name:        ToolWikiListWikis,
				Description: "List the wikis of a project, or of the organization when no project is set",
				InputSchema: objectSchema(map[string]interface{}{
					"project": projectProperty(),
				}),
			},
			Handler: h.handleListWikis,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolWikiGetPageContent,
				Description: "Get a wiki page and its content",
				InputSchema: objectSchema(map[string]interface{}{
					"wikiIdentifier": stringProperty(wikiIdentifierDescription),
					"path":           stringProperty("Page path (e.g., /Home)"),
					"project":        projectProperty(),
				}, "wikiIdentifier", "path"),
			},
			Handler: h.handleGetPageContent,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolWikiCreateOrUpdate,
				Description: "Create a wiki page or replace the content of an existing one",
				InputSchema: objectSchema(map[string]interface{}{
					"wikiIdentifier": stringProperty(wikiIdentifierDescription),
					"path":           stringProperty("Page path (e.g., /Home)"),
					"content":        stringProperty("Page content in markdown"),
					"project":        projectProperty(),
					"version":        stringProperty("ETag of the page being replaced; required when updating"),
					"comment":        stringProperty("Revision comment"),
				}, "wikiIdentifier", "path", "content"),
			},
			Handler: h.handleCreateOrUpdatePage,
		},
	}
}

func (h *WikiHandler) handleListWikis(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	project, err := getOptionalProjectParam(args, conn)
	if err != nil {
		return nil, err
	}

	wikis, err := conn.Wikis().ListWikis(ctx, project)
	if err != nil {
		return backendFailure("listing wikis", err), nil
	}
	if len(wikis) == 0 {
		return domain.ErrorResult("No wikis found"), nil
	}

	return h.mapper.MapToToolResult(wikis)
}

func (h *WikiHandler) handleGetPageContent(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	wikiIdentifier, err := getStringParam(args, "wikiIdentifier", true)
	if err != nil {
		return nil, err
	}
	path, err := getStringParam(args, "path", true)
	if err != nil {
		return nil, err
	}
	project, err := getOptionalProjectParam(args, conn)
	if err != nil {
		return nil, err
	}

	page, err := conn.Wikis().GetPage(ctx, project, wikiIdentifier, path)
	if err != nil {
		return backendFailure("getting wiki page", err), nil
	}

	return h.mapper.MapToToolResult(page)
}

func (h *WikiHandler) handleCreateOrUpdatePage(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	wikiIdentifier, err := getStringParam(args, "wikiIdentifier", true)
	if err != nil {
		return nil, err
	}
	path, err := getStringParam(args, "path", true)
	if err != nil {
		return nil, err
	}
	content, err := getStringParam(args, "content", true)
	if err != nil {
		return nil, err
	}
	project, err := getOptionalProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	version, err := getStringParam(args, "version", false)
	if err != nil {
		return nil, err
	}
	comment, err := getStringParam(args, "comment", false)
	if err != nil {
		return nil, err
	}

	page, err := conn.Wikis().CreateOrUpdatePage(ctx, project, wikiIdentifier, path, content, version, comment)
	if err != nil {
		return backendFailure("writing wiki page", err), nil
	}

	return h.mapper.MapToToolResult(page)
}
