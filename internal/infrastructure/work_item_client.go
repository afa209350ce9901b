package infrastructure

import (
	"context"
	"sort"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"
)

// WorkItemClient handles work item tracking operations.
type WorkItemClient struct {
	client workitemtracking.Client
}

// NewWorkItemClient wraps an SDK work item tracking client.
func NewWorkItemClient(client workitemtracking.Client) *WorkItemClient {
	return &WorkItemClient{client: client}
}

// GetWorkItem retrieves a single work item. expand is one of
// none, relations, fields, links or all; empty leaves the server default.
func (c *WorkItemClient) GetWorkItem(ctx context.Context, project string, id int, expand string) (*workitemtracking.WorkItem, error) {
	args := workitemtracking.GetWorkItemArgs{
		Id:      &id,
		Project: optionalString(project),
	}
	if expand != "" {
		value := workitemtracking.WorkItemExpand(expand)
		args.Expand = &value
	}
	return c.client.GetWorkItem(ctx, args)
}

// GetWorkItems retrieves several work items in one call.
func (c *WorkItemClient) GetWorkItems(ctx context.Context, project string, ids []int, fields []string) ([]workitemtracking.WorkItem, error) {
	args := workitemtracking.GetWorkItemsArgs{
		Ids:     &ids,
		Project: optionalString(project),
	}
	if len(fields) > 0 {
		args.Fields = &fields
	}

	items, err := c.client.GetWorkItems(ctx, args)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []workitemtracking.WorkItem{}, nil
	}
	return *items, nil
}

// QueryByWiql runs a WIQL query and returns the matching references.
func (c *WorkItemClient) QueryByWiql(ctx context.Context, project, query string, top int) (*workitemtracking.WorkItemQueryResult, error) {
	return c.client.QueryByWiql(ctx, workitemtracking.QueryByWiqlArgs{
		Wiql:    &workitemtracking.Wiql{Query: &query},
		Project: optionalString(project),
		Top:     optionalInt(top),
	})
}

// CreateWorkItem creates a work item of the given type with fields set.
func (c *WorkItemClient) CreateWorkItem(ctx context.Context, project, workItemType string, fields map[string]interface{}) (*workitemtracking.WorkItem, error) {
	document := fieldPatchDocument(fields)
	return c.client.CreateWorkItem(ctx, workitemtracking.CreateWorkItemArgs{
		Document: &document,
		Project:  &project,
		Type:     &workItemType,
	})
}

// UpdateWorkItem sets fields on an existing work item.
func (c *WorkItemClient) UpdateWorkItem(ctx context.Context, project string, id int, fields map[string]interface{}) (*workitemtracking.WorkItem, error) {
	document := fieldPatchDocument(fields)
	return c.client.UpdateWorkItem(ctx, workitemtracking.UpdateWorkItemArgs{
		Document: &document,
		Id:       &id,
		Project:  optionalString(project),
	})
}

// AddComment posts a comment on a work item.
func (c *WorkItemClient) AddComment(ctx context.Context, project string, workItemID int, text string) (*workitemtracking.Comment, error) {
	return c.client.AddComment(ctx, workitemtracking.AddCommentArgs{
		Request:    &workitemtracking.CommentCreate{Text: &text},
		Project:    &project,
		WorkItemId: &workItemID,
	})
}

// ListComments returns the comments of a work item.
func (c *WorkItemClient) ListComments(ctx context.Context, project string, workItemID int, top int) (*workitemtracking.CommentList, error) {
	return c.client.GetComments(ctx, workitemtracking.GetCommentsArgs{
		Project:    &project,
		WorkItemId: &workItemID,
		Top:        optionalInt(top),
	})
}

// fieldPatchDocument turns a field map into JSON patch "add" operations,
// ordered by field reference name.
func fieldPatchDocument(fields map[string]interface{}) []webapi.JsonPatchOperation {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	document := make([]webapi.JsonPatchOperation, 0, len(names))
	for _, name := range names {
		op := webapi.OperationValues.Add
		path := "/fields/" + name
		document = append(document, webapi.JsonPatchOperation{
			Op:    &op,
			Path:  &path,
			Value: fields[name],
		})
	}
	return document
}
