package application

import (
	"context"
	"fmt"

	"azure-devops-mcp-server/internal/domain"
)

// RepoHandler implements ToolHandler for Git repositories and pull requests.
type RepoHandler struct {
	mapper domain.ResponseMapper
}

// NewRepoHandler creates a new RepoHandler instance.
func NewRepoHandler(mapper domain.ResponseMapper) *RepoHandler {
	return &RepoHandler{mapper: mapper}
}

// Tool name constants for repository operations
const (
	ToolRepoListRepos        = "repo_list_repos_by_project"
	ToolRepoGetRepo          = "repo_get_repo_by_name_or_id"
	ToolRepoListPullRequests = "repo_list_pull_requests_by_repo"
	ToolRepoGetPullRequest   = "repo_get_pull_request_by_id"
	ToolRepoListBranches     = "repo_list_branches_by_repo"
	ToolRepoSearchCommits    = "repo_search_commits"
)

const repositoryIDDescription = "Repository name or ID"

// ToolName returns the identifier for this handler.
func (h *RepoHandler) ToolName() string {
	return "repo"
}

// Tools returns the repository tools.
func (h *RepoHandler) Tools() []domain.Tool {
	return []domain.Tool{
		{
			Definition: domain.ToolDefinition{
				Name:        ToolRepoListRepos,
				Description: "List the Git repositories of a project",
				InputSchema: objectSchema(map[string]interface{}{
					"project": projectProperty(),
				}),
			},
			Handler: h.handleListRepos,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolRepoGetRepo,
				Description: "Get a Git repository by name or ID",
				InputSchema: objectSchema(map[string]interface{}{
					"repositoryId": stringProperty(repositoryIDDescription),
					"project":      projectProperty(),
				}, "repositoryId"),
			},
			Handler: h.handleGetRepo,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolRepoListPullRequests,
				Description: "List the pull requests of a repository",
				InputSchema: objectSchema(map[string]interface{}{
					"repositoryId": stringProperty(repositoryIDDescription),
					"project":      projectProperty(),
					"status":       enumProperty("Pull request status (defaults to active)", "active", "abandoned", "completed", "all"),
					"top":          topProperty("pull requests"),
				}, "repositoryId"),
			},
			Handler: h.handleListPullRequests,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolRepoGetPullRequest,
				Description: "Get a pull request by ID",
				InputSchema: objectSchema(map[string]interface{}{
					"repositoryId":  stringProperty(repositoryIDDescription),
					"pullRequestId": integerProperty("The pull request ID"),
					"project":       projectProperty(),
				}, "repositoryId", "pullRequestId"),
			},
			Handler: h.handleGetPullRequest,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolRepoListBranches,
				Description: "List the branches of a repository",
				InputSchema: objectSchema(map[string]interface{}{
					"repositoryId": stringProperty(repositoryIDDescription),
					"project":      projectProperty(),
				}, "repositoryId"),
			},
			Handler: h.handleListBranches,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolRepoSearchCommits,
				Description: "List recent commits of a repository, optionally by author",
				InputSchema: objectSchema(map[string]interface{}{
					"repositoryId": stringProperty(repositoryIDDescription),
					"project":      projectProperty(),
					"author":       stringProperty("Commit author name or email"),
					"top":          topProperty("commits"),
				}, "repositoryId"),
			},
			Handler: h.handleSearchCommits,
		},
	}
}

func (h *RepoHandler) handleListRepos(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}

	repos, err := conn.Repos().ListRepositories(ctx, project)
	if err != nil {
		return backendFailure("listing repositories", err), nil
	}
	if len(repos) == 0 {
		return domain.ErrorResult("No repositories found in project " + project), nil
	}

	return h.mapper.MapToToolResult(repos)
}

func (h *RepoHandler) handleGetRepo(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	repository, err := getStringParam(args, "repositoryId", true)
	if err != nil {
		return nil, err
	}
	project, err := getOptionalProjectParam(args, conn)
	if err != nil {
		return nil, err
	}

	repo, err := conn.Repos().GetRepository(ctx, project, repository)
	if err != nil {
		return backendFailure("getting repository", err), nil
	}
	if repo == nil {
		return domain.ErrorResult("Repository " + repository + " not found"), nil
	}

	return h.mapper.MapToToolResult(repo)
}

func (h *RepoHandler) handleListPullRequests(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	repository, err := getStringParam(args, "repositoryId", true)
	if err != nil {
		return nil, err
	}
	project, err := getOptionalProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	status, err := getStringParam(args, "status", false)
	if err != nil {
		return nil, err
	}
	top, err := getIntParam(args, "top", false)
	if err != nil {
		return nil, err
	}

	prs, err := conn.Repos().ListPullRequests(ctx, project, repository, status, top)
	if err != nil {
		return backendFailure("listing pull requests", err), nil
	}

	return h.mapper.MapToToolResult(prs)
}

func (h *RepoHandler) handleGetPullRequest(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	repository, err := getStringParam(args, "repositoryId", true)
	if err != nil {
		return nil, err
	}
	pullRequestID, err := getIntParam(args, "pullRequestId", true)
	if err != nil {
		return nil, err
	}
	project, err := getOptionalProjectParam(args, conn)
	if err != nil {
		return nil, err
	}

	pr, err := conn.Repos().GetPullRequest(ctx, project, repository, pullRequestID)
	if err != nil {
		return backendFailure("getting pull request", err), nil
	}
	if pr == nil {
		return domain.ErrorResult(fmt.Sprintf("Pull request %d not found", pullRequestID)), nil
	}

	return h.mapper.MapToToolResult(pr)
}

func (h *RepoHandler) handleListBranches(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	repository, err := getStringParam(args, "repositoryId", true)
	if err != nil {
		return nil, err
	}
	project, err := getOptionalProjectParam(args, conn)
	if err != nil {
		return nil, err
	}

	branches, err := conn.Repos().ListBranches(ctx, project, repository)
	if err != nil {
		return backendFailure("listing branches", err), nil
	}

	return h.mapper.MapToToolResult(branches)
}

func (h *RepoHandler) handleSearchCommits(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	repository, err := getStringParam(args, "repositoryId", true)
	if err != nil {
		return nil, err
	}
	project, err := getOptionalProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	author, err := getStringParam(args, "author", false)
	if err != nil {
		return nil, err
	}
	top, err := getIntParam(args, "top", false)
	if err != nil {
		return nil, err
	}

	commits, err := conn.Repos().ListCommits(ctx, project, repository, author, top)
	if err != nil {
		return backendFailure("searching commits", err), nil
	}
	if len(commits) == 0 {
		return domain.ErrorResult("No commits found"), nil
	}

	return h.mapper.MapToToolResult(commits)
}
