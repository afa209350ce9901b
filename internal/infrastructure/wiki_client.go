package infrastructure

import (
	"context"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/wiki"
)

// WikiClient handles wiki operations.
type WikiClient struct {
	client wiki.Client
}

// NewWikiClient wraps an SDK wiki client.
func NewWikiClient(client wiki.Client) *WikiClient {
	return &WikiClient{client: client}
}

// ListWikis returns the wikis of a project, or of the organization when project is empty.
func (c *WikiClient) ListWikis(ctx context.Context, project string) ([]wiki.WikiV2, error) {
	wikis, err := c.client.GetAllWikis(ctx, wiki.GetAllWikisArgs{
		Project: optionalString(project),
	})
	if err != nil {
		return nil, err
	}
	if wikis == nil {
		return []wiki.WikiV2{}, nil
	}
	return *wikis, nil
}

// GetPage retrieves a wiki page with its content.
func (c *WikiClient) GetPage(ctx context.Context, project, wikiIdentifier, path string) (interface{}, error) {
	page, err := c.client.GetPage(ctx, wiki.GetPageArgs{
		Project:        optionalString(project),
		WikiIdentifier: &wikiIdentifier,
		Path:           &path,
		IncludeContent: boolPtr(true),
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// CreateOrUpdatePage writes page content. version is the page ETag and is
// required when editing an existing page.
func (c *WikiClient) CreateOrUpdatePage(ctx context.Context, project, wikiIdentifier, path, content, version, comment string) (interface{}, error) {
	page, err := c.client.CreateOrUpdatePage(ctx, wiki.CreateOrUpdatePageArgs{
		Parameters:     &wiki.WikiPageCreateOrUpdateParameters{Content: &content},
		Project:        optionalString(project),
		WikiIdentifier: &wikiIdentifier,
		Path:           &path,
		Version:        &version,
		Comment:        optionalString(comment),
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
