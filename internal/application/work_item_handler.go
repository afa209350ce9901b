package application

import (
	"context"
	"fmt"

	"azure-devops-mcp-server/internal/domain"
)

// WorkItemHandler implements ToolHandler for work item tracking.
// It routes MCP tool calls to the WorkItemAPI and renders responses
// with the ResponseMapper.
type WorkItemHandler struct {
	mapper domain.ResponseMapper
}

// NewWorkItemHandler creates a new WorkItemHandler instance.
func NewWorkItemHandler(mapper domain.ResponseMapper) *WorkItemHandler {
	return &WorkItemHandler{mapper: mapper}
}

// Tool name constants for work item operations
const (
	ToolWitGetWorkItem         = "wit_get_work_item"
	ToolWitGetWorkItemsBatch   = "wit_get_work_items_batch_by_ids"
	ToolWitQueryByWiql         = "wit_query_by_wiql"
	ToolWitCreateWorkItem      = "wit_create_work_item"
	ToolWitUpdateWorkItem      = "wit_update_work_item"
	ToolWitAddWorkItemComment  = "wit_add_work_item_comment"
	ToolWitListWorkItemComment = "wit_list_work_item_comments"
)

// ToolName returns the identifier for this handler.
func (h *WorkItemHandler) ToolName() string {
	return "wit"
}

// Tools returns the work item tools.
func (h *WorkItemHandler) Tools() []domain.Tool {
	return []domain.Tool{
		{
			Definition: domain.ToolDefinition{
				Name:        ToolWitGetWorkItem,
				Description: "Get a single work item by ID",
				InputSchema: objectSchema(map[string]interface{}{
					"id":      integerProperty("The work item ID"),
					"project": projectProperty(),
					"expand":  enumProperty("Which related data to include", "none", "relations", "fields", "links", "all"),
				}, "id"),
			},
			Handler: h.handleGetWorkItem,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolWitGetWorkItemsBatch,
				Description: "Get several work items by their IDs",
				InputSchema: objectSchema(map[string]interface{}{
					"ids":     arrayProperty("integer", "The work item IDs"),
					"project": projectProperty(),
					"fields":  arrayProperty("string", "Field reference names to return (e.g., System.Title)"),
				}, "ids"),
			},
			Handler: h.handleGetWorkItemsBatch,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolWitQueryByWiql,
				Description: "Run a WIQL query and return the matching work item references",
				InputSchema: objectSchema(map[string]interface{}{
					"query":   stringProperty("The WIQL query text"),
					"project": projectProperty(),
					"top":     topProperty("work items"),
				}, "query"),
			},
			Handler: h.handleQueryByWiql,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolWitCreateWorkItem,
				Description: "Create a work item of the given type",
				InputSchema: objectSchema(map[string]interface{}{
					"workItemType": stringProperty("Work item type (e.g., Bug, Task, User Story)"),
					"fields":       objectProperty("Field values keyed by reference name (e.g., {\"System.Title\": \"...\"})"),
					"project":      projectProperty(),
				}, "workItemType", "fields"),
			},
			Handler: h.handleCreateWorkItem,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolWitUpdateWorkItem,
				Description: "Update fields of an existing work item",
				InputSchema: objectSchema(map[string]interface{}{
					"id":      integerProperty("The work item ID"),
					"fields":  objectProperty("Field values keyed by reference name"),
					"project": projectProperty(),
				}, "id", "fields"),
			},
			Handler: h.handleUpdateWorkItem,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolWitAddWorkItemComment,
				Description: "Add a comment to a work item",
				InputSchema: objectSchema(map[string]interface{}{
					"workItemId": integerProperty("The work item ID"),
					"comment":    stringProperty("Comment text (HTML or markdown)"),
					"project":    projectProperty(),
				}, "workItemId", "comment"),
			},
			Handler: h.handleAddComment,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolWitListWorkItemComment,
				Description: "List the comments of a work item",
				InputSchema: objectSchema(map[string]interface{}{
					"workItemId": integerProperty("The work item ID"),
					"project":    projectProperty(),
					"top":        topProperty("comments"),
				}, "workItemId"),
			},
			Handler: h.handleListComments,
		},
	}
}

func (h *WorkItemHandler) handleGetWorkItem(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	id, err := getIntParam(args, "id", true)
	if err != nil {
		return nil, err
	}
	project, err := getOptionalProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	expand, err := getStringParam(args, "expand", false)
	if err != nil {
		return nil, err
	}

	item, err := conn.WorkItems().GetWorkItem(ctx, project, id, expand)
	if err != nil {
		return backendFailure("getting work item", err), nil
	}
	if item == nil {
		return domain.ErrorResult(fmt.Sprintf("Work item %d not found", id)), nil
	}

	return h.mapper.MapToToolResult(item)
}

func (h *WorkItemHandler) handleGetWorkItemsBatch(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	ids, err := getIntSliceParam(args, "ids", true)
	if err != nil {
		return nil, err
	}
	project, err := getOptionalProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	fields, err := getStringSliceParam(args, "fields")
	if err != nil {
		return nil, err
	}

	items, err := conn.WorkItems().GetWorkItems(ctx, project, ids, fields)
	if err != nil {
		return backendFailure("getting work items", err), nil
	}

	return h.mapper.MapToToolResult(items)
}

func (h *WorkItemHandler) handleQueryByWiql(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	query, err := getStringParam(args, "query", true)
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

	result, err := conn.WorkItems().QueryByWiql(ctx, project, query, top)
	if err != nil {
		return backendFailure("querying work items", err), nil
	}

	return h.mapper.MapToToolResult(result)
}

func (h *WorkItemHandler) handleCreateWorkItem(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	workItemType, err := getStringParam(args, "workItemType", true)
	if err != nil {
		return nil, err
	}
	fields, err := getMapParam(args, "fields")
	if err != nil {
		return nil, err
	}
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}

	item, err := conn.WorkItems().CreateWorkItem(ctx, project, workItemType, fields)
	if err != nil {
		return backendFailure("creating work item", err), nil
	}

	return h.mapper.MapToToolResult(item)
}

func (h *WorkItemHandler) handleUpdateWorkItem(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	id, err := getIntParam(args, "id", true)
	if err != nil {
		return nil, err
	}
	fields, err := getMapParam(args, "fields")
	if err != nil {
		return nil, err
	}
	project, err := getOptionalProjectParam(args, conn)
	if err != nil {
		return nil, err
	}

	item, err := conn.WorkItems().UpdateWorkItem(ctx, project, id, fields)
	if err != nil {
		return backendFailure("updating work item", err), nil
	}

	return h.mapper.MapToToolResult(item)
}

func (h *WorkItemHandler) handleAddComment(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	workItemID, err := getIntParam(args, "workItemId", true)
	if err != nil {
		return nil, err
	}
	comment, err := getStringParam(args, "comment", true)
	if err != nil {
		return nil, err
	}
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}

	result, err := conn.WorkItems().AddComment(ctx, project, workItemID, comment)
	if err != nil {
		return backendFailure("adding work item comment", err), nil
	}

	return h.mapper.MapToToolResult(result)
}

func (h *WorkItemHandler) handleListComments(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	workItemID, err := getIntParam(args, "workItemId", true)
	if err != nil {
		return nil, err
	}
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	top, err := getIntParam(args, "top", false)
	if err != nil {
		return nil, err
	}

	comments, err := conn.WorkItems().ListComments(ctx, project, workItemID, top)
	if err != nil {
		return backendFailure("listing work item comments", err), nil
	}

	return h.mapper.MapToToolResult(comments)
}
