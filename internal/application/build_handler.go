package application

import (
	"context"
	"fmt"
	"strings"

	"azure-devops-mcp-server/internal/domain"
)

// BuildHandler implements ToolHandler for build pipelines.
type BuildHandler struct {
	mapper domain.ResponseMapper
}

// NewBuildHandler creates a new BuildHandler instance.
func NewBuildHandler(mapper domain.ResponseMapper) *BuildHandler {
	return &BuildHandler{mapper: mapper}
}

// Tool name constants for build operations
const (
	ToolBuildGetBuilds      = "build_get_builds"
	ToolBuildGetStatus      = "build_get_status"
	ToolBuildGetDefinitions = "build_get_definitions"
	ToolBuildRunBuild       = "build_run_build"
	ToolBuildGetLog         = "build_get_log"
	ToolBuildGetLogByID     = "build_get_log_by_id"
)

// ToolName returns the identifier for this handler.
func (h *BuildHandler) ToolName() string {
	return "build"
}

// Tools returns the build tools.
func (h *BuildHandler) Tools() []domain.Tool {
	return []domain.Tool{
		{
			Definition: domain.ToolDefinition{
				Name:        ToolBuildGetBuilds,
				Description: "List builds of a project, optionally filtered by definition and branch",
				InputSchema: objectSchema(map[string]interface{}{
					"project":     projectProperty(),
					"definitions": arrayProperty("integer", "Build definition IDs to filter by"),
					"top":         topProperty("builds"),
					"branchName":  stringProperty("Branch to filter by (e.g., refs/heads/main)"),
				}),
			},
			Handler: h.handleGetBuilds,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolBuildGetStatus,
				Description: "Get the status and result of a build",
				InputSchema: objectSchema(map[string]interface{}{
					"buildId": integerProperty("The build ID"),
					"project": projectProperty(),
				}, "buildId"),
			},
			Handler: h.handleGetStatus,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolBuildGetDefinitions,
				Description: "List build definitions (pipelines) of a project",
				InputSchema: objectSchema(map[string]interface{}{
					"project": projectProperty(),
					"name":    stringProperty("Filter definitions by name"),
					"top":     topProperty("definitions"),
				}),
			},
			Handler: h.handleGetDefinitions,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolBuildRunBuild,
				Description: "Queue a new build of a definition",
				InputSchema: objectSchema(map[string]interface{}{
					"definitionId": integerProperty("The build definition ID"),
					"project":      projectProperty(),
					"sourceBranch": stringProperty("Branch to build (defaults to the definition's default branch)"),
				}, "definitionId"),
			},
			Handler: h.handleRunBuild,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolBuildGetLog,
				Description: "List the logs produced by a build",
				InputSchema: objectSchema(map[string]interface{}{
					"buildId": integerProperty("The build ID"),
					"project": projectProperty(),
				}, "buildId"),
			},
			Handler: h.handleGetLog,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolBuildGetLogByID,
				Description: "Get the lines of one build log",
				InputSchema: objectSchema(map[string]interface{}{
					"buildId":   integerProperty("The build ID"),
					"logId":     integerProperty("The log ID"),
					"project":   projectProperty(),
					"startLine": integerProperty("First line to return"),
					"endLine":   integerProperty("Last line to return"),
				}, "buildId", "logId"),
			},
			Handler: h.handleGetLogByID,
		},
	}
}

func (h *BuildHandler) handleGetBuilds(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	definitions, err := getIntSliceParam(args, "definitions", false)
	if err != nil {
		return nil, err
	}
	top, err := getIntParam(args, "top", false)
	if err != nil {
		return nil, err
	}
	branch, err := getStringParam(args, "branchName", false)
	if err != nil {
		return nil, err
	}

	builds, token, err := conn.Builds().ListBuilds(ctx, project, definitions, branch, top)
	if err != nil {
		return backendFailure("listing builds", err), nil
	}

	return h.mapper.MapToToolResult(newPage(builds, len(builds), token))
}

func (h *BuildHandler) handleGetStatus(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	buildID, err := getIntParam(args, "buildId", true)
	if err != nil {
		return nil, err
	}
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}

	b, err := conn.Builds().GetBuild(ctx, project, buildID)
	if err != nil {
		return backendFailure("getting build status", err), nil
	}
	if b == nil {
		return domain.ErrorResult(fmt.Sprintf("Build %d not found", buildID)), nil
	}

	status := map[string]interface{}{
		"id":           b.Id,
		"buildNumber":  b.BuildNumber,
		"status":       b.Status,
		"result":       b.Result,
		"sourceBranch": b.SourceBranch,
		"queueTime":    b.QueueTime,
		"startTime":    b.StartTime,
		"finishTime":   b.FinishTime,
	}
	if b.Definition != nil {
		status["definition"] = map[string]interface{}{
			"id":   b.Definition.Id,
			"name": b.Definition.Name,
		}
	}

	return h.mapper.MapToToolResult(status)
}

func (h *BuildHandler) handleGetDefinitions(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	name, err := getStringParam(args, "name", false)
	if err != nil {
		return nil, err
	}
	top, err := getIntParam(args, "top", false)
	if err != nil {
		return nil, err
	}

	definitions, token, err := conn.Builds().ListDefinitions(ctx, project, name, top)
	if err != nil {
		return backendFailure("listing build definitions", err), nil
	}

	return h.mapper.MapToToolResult(newPage(definitions, len(definitions), token))
}

func (h *BuildHandler) handleRunBuild(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	definitionID, err := getIntParam(args, "definitionId", true)
	if err != nil {
		return nil, err
	}
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	sourceBranch, err := getStringParam(args, "sourceBranch", false)
	if err != nil {
		return nil, err
	}

	queued, err := conn.Builds().QueueBuild(ctx, project, definitionID, sourceBranch)
	if err != nil {
		return backendFailure("queueing build", err), nil
	}

	return h.mapper.MapToToolResult(queued)
}

func (h *BuildHandler) handleGetLog(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	buildID, err := getIntParam(args, "buildId", true)
	if err != nil {
		return nil, err
	}
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}

	logs, err := conn.Builds().GetBuildLogs(ctx, project, buildID)
	if err != nil {
		return backendFailure("getting build logs", err), nil
	}
	if len(logs) == 0 {
		return domain.ErrorResult(fmt.Sprintf("No logs found for build %d", buildID)), nil
	}

	return h.mapper.MapToToolResult(logs)
}

func (h *BuildHandler) handleGetLogByID(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	buildID, err := getIntParam(args, "buildId", true)
	if err != nil {
		return nil, err
	}
	logID, err := getIntParam(args, "logId", true)
	if err != nil {
		return nil, err
	}
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	startLine, err := getIntParam(args, "startLine", false)
	if err != nil {
		return nil, err
	}
	endLine, err := getIntParam(args, "endLine", false)
	if err != nil {
		return nil, err
	}

	lines, err := conn.Builds().GetBuildLogLines(ctx, project, buildID, logID, startLine, endLine)
	if err != nil {
		return backendFailure("getting build log", err), nil
	}

	return domain.TextResult(strings.Join(lines, "\n")), nil
}
