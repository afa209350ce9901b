package infrastructure

import (
	"context"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/release"
)

// ReleaseClient handles classic release pipeline operations.
type ReleaseClient struct {
	client release.Client
}

// NewReleaseClient wraps an SDK release client.
func NewReleaseClient(client release.Client) *ReleaseClient {
	return &ReleaseClient{client: client}
}

// ListDefinitions returns one page of release definitions.
func (c *ReleaseClient) ListDefinitions(ctx context.Context, project, searchText string, top int) ([]release.ReleaseDefinition, string, error) {
	resp, err := c.client.GetReleaseDefinitions(ctx, release.GetReleaseDefinitionsArgs{
		Project:    &project,
		SearchText: optionalString(searchText),
		Top:        optionalInt(top),
	})
	if err != nil {
		return nil, "", err
	}
	if resp == nil {
		return nil, "", nil
	}
	return resp.Value, resp.ContinuationToken, nil
}

// ListReleases returns one page of releases, optionally for one definition.
func (c *ReleaseClient) ListReleases(ctx context.Context, project string, definitionID, top int) ([]release.Release, string, error) {
	resp, err := c.client.GetReleases(ctx, release.GetReleasesArgs{
		Project:      &project,
		DefinitionId: optionalInt(definitionID),
		Top:          optionalInt(top),
	})
	if err != nil {
		return nil, "", err
	}
	if resp == nil {
		return nil, "", nil
	}
	return resp.Value, resp.ContinuationToken, nil
}

// GetRelease retrieves one release.
func (c *ReleaseClient) GetRelease(ctx context.Context, project string, releaseID int) (*release.Release, error) {
	return c.client.GetRelease(ctx, release.GetReleaseArgs{
		Project:   &project,
		ReleaseId: &releaseID,
	})
}
