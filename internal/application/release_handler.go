package application

import (
	"context"
	"fmt"

	"azure-devops-mcp-server/internal/domain"
)

// ReleaseHandler implements ToolHandler for classic release pipelines.
type ReleaseHandler struct {
	mapper domain.ResponseMapper
}

// NewReleaseHandler creates a new ReleaseHandler instance.
func NewReleaseHandler(mapper domain.ResponseMapper) *ReleaseHandler {
	return &ReleaseHandler{mapper: mapper}
}

// Tool name constants for release operations
const (
	ToolReleaseGetDefinitions = "release_get_definitions"
	ToolReleaseGetReleases    = "release_get_releases"
	ToolReleaseGetRelease     = "release_get_release"
)

// ToolName returns the identifier for this handler.
func (h *ReleaseHandler) ToolName() string {
	return "release"
}

// Tools returns the release tools.
func (h *ReleaseHandler) Tools() []domain.Tool {
	return []domain.Tool{
		{
			Definition: domain.ToolDefinition{
				Name:        ToolReleaseGetDefinitions,
				Description: "List release definitions of a project",
				InputSchema: objectSchema(map[string]interface{}{
					"project":    projectProperty(),
					"searchText": stringProperty("Filter definitions whose name contains this text"),
					"top":        topProperty("definitions"),
				}),
			},
			Handler: h.handleGetDefinitions,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolReleaseGetReleases,
				Description: "List releases of a project, optionally for one definition",
				InputSchema: objectSchema(map[string]interface{}{
					"project":      projectProperty(),
					"definitionId": integerProperty("Release definition ID to filter by"),
					"top":          topProperty("releases"),
				}),
			},
			Handler: h.handleGetReleases,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolReleaseGetRelease,
				Description: "Get a release by ID",
				InputSchema: objectSchema(map[string]interface{}{
					"releaseId": integerProperty("The release ID"),
					"project":   projectProperty(),
				}, "releaseId"),
			},
			Handler: h.handleGetRelease,
		},
	}
}

func (h *ReleaseHandler) handleGetDefinitions(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	searchText, err := getStringParam(args, "searchText", false)
	if err != nil {
		return nil, err
	}
	top, err := getIntParam(args, "top", false)
	if err != nil {
		return nil, err
	}

	definitions, token, err := conn.Releases().ListDefinitions(ctx, project, searchText, top)
	if err != nil {
		return backendFailure("listing release definitions", err), nil
	}

	return h.mapper.MapToToolResult(newPage(definitions, len(definitions), token))
}

func (h *ReleaseHandler) handleGetReleases(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	definitionID, err := getIntParam(args, "definitionId", false)
	if err != nil {
		return nil, err
	}
	top, err := getIntParam(args, "top", false)
	if err != nil {
		return nil, err
	}

	releases, token, err := conn.Releases().ListReleases(ctx, project, definitionID, top)
	if err != nil {
		return backendFailure("listing releases", err), nil
	}

	return h.mapper.MapToToolResult(newPage(releases, len(releases), token))
}

func (h *ReleaseHandler) handleGetRelease(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	releaseID, err := getIntParam(args, "releaseId", true)
	if err != nil {
		return nil, err
	}
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}

	release, err := conn.Releases().GetRelease(ctx, project, releaseID)
	if err != nil {
		return backendFailure("getting release", err), nil
	}
	if release == nil {
		return domain.ErrorResult(fmt.Sprintf("Release %d not found", releaseID)), nil
	}

	return h.mapper.MapToToolResult(release)
}
