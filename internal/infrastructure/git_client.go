package infrastructure

import (
	"context"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
)

// defaultPullRequestStatus is used when a caller does not filter by status.
const defaultPullRequestStatus = "active"

// GitClient handles repository operations.
type GitClient struct {
	client git.Client
}

// NewGitClient wraps an SDK git client.
func NewGitClient(client git.Client) *GitClient {
	return &GitClient{client: client}
}

// ListRepositories returns the repositories of a project.
func (c *GitClient) ListRepositories(ctx context.Context, project string) ([]git.GitRepository, error) {
	repos, err := c.client.GetRepositories(ctx, git.GetRepositoriesArgs{
		Project: optionalString(project),
	})
	if err != nil {
		return nil, err
	}
	if repos == nil {
		return []git.GitRepository{}, nil
	}
	return *repos, nil
}

// GetRepository retrieves a repository by name or id.
func (c *GitClient) GetRepository(ctx context.Context, project, repository string) (*git.GitRepository, error) {
	return c.client.GetRepository(ctx, git.GetRepositoryArgs{
		RepositoryId: &repository,
		Project:      optionalString(project),
	})
}

// ListPullRequests returns pull requests of a repository in the given status
// (active, abandoned, completed or all).
func (c *GitClient) ListPullRequests(ctx context.Context, project, repository, status string, top int) ([]git.GitPullRequest, error) {
	if status == "" {
		status = defaultPullRequestStatus
	}
	prStatus := git.PullRequestStatus(status)

	prs, err := c.client.GetPullRequests(ctx, git.GetPullRequestsArgs{
		RepositoryId:   &repository,
		Project:        optionalString(project),
		SearchCriteria: &git.GitPullRequestSearchCriteria{Status: &prStatus},
		Top:            optionalInt(top),
	})
	if err != nil {
		return nil, err
	}
	if prs == nil {
		return []git.GitPullRequest{}, nil
	}
	return *prs, nil
}

// GetPullRequest retrieves one pull request.
func (c *GitClient) GetPullRequest(ctx context.Context, project, repository string, pullRequestID int) (*git.GitPullRequest, error) {
	return c.client.GetPullRequest(ctx, git.GetPullRequestArgs{
		RepositoryId:  &repository,
		PullRequestId: &pullRequestID,
		Project:       optionalString(project),
	})
}

// ListBranches returns branch statistics for a repository.
func (c *GitClient) ListBranches(ctx context.Context, project, repository string) ([]git.GitBranchStats, error) {
	branches, err := c.client.GetBranches(ctx, git.GetBranchesArgs{
		RepositoryId: &repository,
		Project:      optionalString(project),
	})
	if err != nil {
		return nil, err
	}
	if branches == nil {
		return []git.GitBranchStats{}, nil
	}
	return *branches, nil
}

// ListCommits returns recent commits, optionally filtered by author.
func (c *GitClient) ListCommits(ctx context.Context, project, repository, author string, top int) ([]git.GitCommitRef, error) {
	commits, err := c.client.GetCommits(ctx, git.GetCommitsArgs{
		RepositoryId:   &repository,
		Project:        optionalString(project),
		SearchCriteria: &git.GitQueryCommitsCriteria{Author: optionalString(author)},
		Top:            optionalInt(top),
	})
	if err != nil {
		return nil, err
	}
	if commits == nil {
		return []git.GitCommitRef{}, nil
	}
	return *commits, nil
}
