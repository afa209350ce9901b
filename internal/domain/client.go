package domain

import (
	"context"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/release"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/testplan"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/wiki"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"
)

// Connection is the shared, authenticated handle to one Azure DevOps
// organization. It is created once and only read afterwards.
type Connection interface {
	// OrganizationURL returns the organization root (e.g. https://dev.azure.com/contoso).
	OrganizationURL() string

	// DefaultProject returns the project used when a tool call omits one.
	DefaultProject() string

	Core() CoreAPI
	WorkItems() WorkItemAPI
	Builds() BuildAPI
	Repos() GitAPI
	Wikis() WikiAPI
	Releases() ReleaseAPI
	TestPlans() TestPlanAPI
	Search() SearchAPI
}

// Page is a slice of results plus the token to fetch the next one.
type Page struct {
	Value             interface{} `json:"value"`
	Count             int         `json:"count"`
	ContinuationToken string      `json:"continuationToken,omitempty"`
}

// CoreAPI covers projects and teams.
type CoreAPI interface {
	ListProjects(ctx context.Context, top, skip int) ([]core.TeamProjectReference, string, error)
	GetProject(ctx context.Context, project string) (*core.TeamProject, error)
	ListTeams(ctx context.Context, project string, mine bool, top int) ([]core.WebApiTeam, error)
}

// WorkItemAPI covers work item tracking.
type WorkItemAPI interface {
	GetWorkItem(ctx context.Context, project string, id int, expand string) (*workitemtracking.WorkItem, error)
	GetWorkItems(ctx context.Context, project string, ids []int, fields []string) ([]workitemtracking.WorkItem, error)
	QueryByWiql(ctx context.Context, project, query string, top int) (*workitemtracking.WorkItemQueryResult, error)
	CreateWorkItem(ctx context.Context, project, workItemType string, fields map[string]interface{}) (*workitemtracking.WorkItem, error)
	UpdateWorkItem(ctx context.Context, project string, id int, fields map[string]interface{}) (*workitemtracking.WorkItem, error)
	AddComment(ctx context.Context, project string, workItemID int, text string) (*workitemtracking.Comment, error)
	ListComments(ctx context.Context, project string, workItemID int, top int) (*workitemtracking.CommentList, error)
}

// BuildAPI covers build pipelines.
type BuildAPI interface {
	ListBuilds(ctx context.Context, project string, definitions []int, branch string, top int) ([]build.Build, string, error)
	GetBuild(ctx context.Context, project string, buildID int) (*build.Build, error)
	ListDefinitions(ctx context.Context, project, name string, top int) ([]build.BuildDefinitionReference, string, error)
	QueueBuild(ctx context.Context, project string, definitionID int, sourceBranch string) (*build.Build, error)
	GetBuildLogs(ctx context.Context, project string, buildID int) ([]build.BuildLog, error)
	GetBuildLogLines(ctx context.Context, project string, buildID, logID, startLine, endLine int) ([]string, error)
}

// GitAPI covers repositories, pull requests, branches and commits.
type GitAPI interface {
	ListRepositories(ctx context.Context, project string) ([]git.GitRepository, error)
	GetRepository(ctx context.Context, project, repository string) (*git.GitRepository, error)
	ListPullRequests(ctx context.Context, project, repository, status string, top int) ([]git.GitPullRequest, error)
	GetPullRequest(ctx context.Context, project, repository string, pullRequestID int) (*git.GitPullRequest, error)
	ListBranches(ctx context.Context, project, repository string) ([]git.GitBranchStats, error)
	ListCommits(ctx context.Context, project, repository, author string, top int) ([]git.GitCommitRef, error)
}

// WikiAPI covers wikis and wiki pages.
type WikiAPI interface {
	ListWikis(ctx context.Context, project string) ([]wiki.WikiV2, error)
	GetPage(ctx context.Context, project, wikiIdentifier, path string) (interface{}, error)
	CreateOrUpdatePage(ctx context.Context, project, wikiIdentifier, path, content, version, comment string) (interface{}, error)
}

// ReleaseAPI covers classic release pipelines.
type ReleaseAPI interface {
	ListDefinitions(ctx context.Context, project, searchText string, top int) ([]release.ReleaseDefinition, string, error)
	ListReleases(ctx context.Context, project string, definitionID, top int) ([]release.Release, string, error)
	GetRelease(ctx context.Context, project string, releaseID int) (*release.Release, error)
}

// TestPlanAPI covers test plans and suites.
type TestPlanAPI interface {
	ListTestPlans(ctx context.Context, project string, activeOnly bool) ([]testplan.TestPlan, string, error)
	ListTestSuites(ctx context.Context, project string, planID int) ([]testplan.TestSuite, string, error)
}

// SearchKind selects one of the Azure DevOps search indexes.
type SearchKind string

// Supported search indexes.
const (
	SearchCode     SearchKind = "code"
	SearchWiki     SearchKind = "wiki"
	SearchWorkItem SearchKind = "workitem"
)

// SearchRequest is the input to a search call.
type SearchRequest struct {
	Text    string
	Project string
	Top     int
	Skip    int
}

// SearchAPI covers the almsearch REST endpoints, which have no SDK package.
type SearchAPI interface {
	Search(ctx context.Context, kind SearchKind, req SearchRequest) (map[string]interface{}, error)
}
