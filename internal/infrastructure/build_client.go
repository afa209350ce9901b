package infrastructure

import (
	"context"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
)

// BuildClient handles build pipeline operations.
type BuildClient struct {
	client build.Client
}

// NewBuildClient wraps an SDK build client.
func NewBuildClient(client build.Client) *BuildClient {
	return &BuildClient{client: client}
}

// ListBuilds returns one page of builds, optionally filtered by definition and branch.
func (c *BuildClient) ListBuilds(ctx context.Context, project string, definitions []int, branch string, top int) ([]build.Build, string, error) {
	args := build.GetBuildsArgs{
		Project:    &project,
		BranchName: optionalString(branch),
		Top:        optionalInt(top),
	}
	if len(definitions) > 0 {
		args.Definitions = &definitions
	}

	resp, err := c.client.GetBuilds(ctx, args)
	if err != nil {
		return nil, "", err
	}
	if resp == nil {
		return nil, "", nil
	}
	return resp.Value, resp.ContinuationToken, nil
}

// GetBuild retrieves one build, which carries its status and result.
func (c *BuildClient) GetBuild(ctx context.Context, project string, buildID int) (*build.Build, error) {
	return c.client.GetBuild(ctx, build.GetBuildArgs{
		Project: &project,
		BuildId: &buildID,
	})
}

// ListDefinitions returns one page of build definitions.
func (c *BuildClient) ListDefinitions(ctx context.Context, project, name string, top int) ([]build.BuildDefinitionReference, string, error) {
	resp, err := c.client.GetDefinitions(ctx, build.GetDefinitionsArgs{
		Project: &project,
		Name:    optionalString(name),
		Top:     optionalInt(top),
	})
	if err != nil {
		return nil, "", err
	}
	if resp == nil {
		return nil, "", nil
	}
	return resp.Value, resp.ContinuationToken, nil
}

// QueueBuild queues a build of a definition, optionally on a specific branch.
func (c *BuildClient) QueueBuild(ctx context.Context, project string, definitionID int, sourceBranch string) (*build.Build, error) {
	return c.client.QueueBuild(ctx, build.QueueBuildArgs{
		Build: &build.Build{
			Definition:   &build.DefinitionReference{Id: &definitionID},
			SourceBranch: optionalString(sourceBranch),
		},
		Project: &project,
	})
}

// GetBuildLogs lists the logs produced by a build.
func (c *BuildClient) GetBuildLogs(ctx context.Context, project string, buildID int) ([]build.BuildLog, error) {
	logs, err := c.client.GetBuildLogs(ctx, build.GetBuildLogsArgs{
		Project: &project,
		BuildId: &buildID,
	})
	if err != nil {
		return nil, err
	}
	if logs == nil {
		return []build.BuildLog{}, nil
	}
	return *logs, nil
}

// GetBuildLogLines returns the lines of one build log. Non-positive
// startLine and endLine select the whole log.
func (c *BuildClient) GetBuildLogLines(ctx context.Context, project string, buildID, logID, startLine, endLine int) ([]string, error) {
	args := build.GetBuildLogLinesArgs{
		Project: &project,
		BuildId: &buildID,
		LogId:   &logID,
	}
	if startLine > 0 {
		start := uint64(startLine)
		args.StartLine = &start
	}
	if endLine > 0 {
		end := uint64(endLine)
		args.EndLine = &end
	}

	lines, err := c.client.GetBuildLogLines(ctx, args)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		return []string{}, nil
	}
	return *lines, nil
}
