package infrastructure

import (
	"context"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
)

// CoreClient handles project and team operations.
type CoreClient struct {
	client core.Client
}

// NewCoreClient wraps an SDK core client.
func NewCoreClient(client core.Client) *CoreClient {
	return &CoreClient{client: client}
}

// ListProjects returns one page of projects and the continuation token, if any.
func (c *CoreClient) ListProjects(ctx context.Context, top, skip int) ([]core.TeamProjectReference, string, error) {
	resp, err := c.client.GetProjects(ctx, core.GetProjectsArgs{
		Top:  optionalInt(top),
		Skip: optionalInt(skip),
	})
	if err != nil {
		return nil, "", err
	}
	if resp == nil {
		return nil, "", nil
	}
	return resp.Value, resp.ContinuationToken, nil
}

// GetProject retrieves a project by name or id, including its capabilities.
func (c *CoreClient) GetProject(ctx context.Context, project string) (*core.TeamProject, error) {
	return c.client.GetProject(ctx, core.GetProjectArgs{
		ProjectId:           &project,
		IncludeCapabilities: boolPtr(true),
	})
}

// ListTeams returns the teams of a project.
func (c *CoreClient) ListTeams(ctx context.Context, project string, mine bool, top int) ([]core.WebApiTeam, error) {
	teams, err := c.client.GetTeams(ctx, core.GetTeamsArgs{
		ProjectId: &project,
		Mine:      boolPtr(mine),
		Top:       optionalInt(top),
	})
	if err != nil {
		return nil, err
	}
	if teams == nil {
		return []core.WebApiTeam{}, nil
	}
	return *teams, nil
}
