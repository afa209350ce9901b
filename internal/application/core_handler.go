package application

import (
	"context"

	"azure-devops-mcp-server/internal/domain"
)

// CoreHandler implements ToolHandler for projects and teams.
type CoreHandler struct {
	mapper domain.ResponseMapper
}

// NewCoreHandler creates a new CoreHandler instance.
func NewCoreHandler(mapper domain.ResponseMapper) *CoreHandler {
	return &CoreHandler{mapper: mapper}
}

// Tool name constants for core operations
const (
	ToolCoreListProjects     = "core_list_projects"
	ToolCoreGetProject       = "core_get_project"
	ToolCoreListProjectTeams = "core_list_project_teams"
)

// ToolName returns the identifier for this handler.
func (h *CoreHandler) ToolName() string {
	return "core"
}

// Tools returns the core tools.
func (h *CoreHandler) Tools() []domain.Tool {
	return []domain.Tool{
		{
			Definition: domain.ToolDefinition{
				Name:        ToolCoreListProjects,
				Description: "List the projects in the Azure DevOps organization",
				InputSchema: objectSchema(map[string]interface{}{
					"top":  topProperty("projects"),
					"skip": integerProperty("Number of projects to skip"),
				}),
			},
			Handler: h.handleListProjects,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolCoreGetProject,
				Description: "Get the details of a project by name or ID",
				InputSchema: objectSchema(map[string]interface{}{
					"project": stringProperty("Project name or ID"),
				}, "project"),
			},
			Handler: h.handleGetProject,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolCoreListProjectTeams,
				Description: "List the teams of a project",
				InputSchema: objectSchema(map[string]interface{}{
					"project": projectProperty(),
					"top":     topProperty("teams"),
					"mine":    booleanProperty("Only return teams the caller belongs to"),
				}),
			},
			Handler: h.handleListProjectTeams,
		},
	}
}

func (h *CoreHandler) handleListProjects(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	top, err := getIntParam(args, "top", false)
	if err != nil {
		return nil, err
	}
	skip, err := getIntParam(args, "skip", false)
	if err != nil {
		return nil, err
	}

	projects, token, err := conn.Core().ListProjects(ctx, top, skip)
	if err != nil {
		return backendFailure("listing projects", err), nil
	}
	if len(projects) == 0 {
		return domain.ErrorResult("No projects found"), nil
	}

	return h.mapper.MapToToolResult(newPage(projects, len(projects), token))
}

func (h *CoreHandler) handleGetProject(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	project, err := getStringParam(args, "project", true)
	if err != nil {
		return nil, err
	}

	result, err := conn.Core().GetProject(ctx, project)
	if err != nil {
		return backendFailure("getting project", err), nil
	}
	if result == nil {
		return domain.ErrorResult("Project " + project + " not found"), nil
	}

	return h.mapper.MapToToolResult(result)
}

func (h *CoreHandler) handleListProjectTeams(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	top, err := getIntParam(args, "top", false)
	if err != nil {
		return nil, err
	}
	mine, err := getBoolParam(args, "mine")
	if err != nil {
		return nil, err
	}

	teams, err := conn.Core().ListTeams(ctx, project, mine, top)
	if err != nil {
		return backendFailure("listing teams", err), nil
	}
	if len(teams) == 0 {
		return domain.ErrorResult("No teams found in project " + project), nil
	}

	return h.mapper.MapToToolResult(teams)
}
