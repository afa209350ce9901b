package application

import (
	"context"
	"io"
	"sync"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/release"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/testplan"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/wiki"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	"azure-devops-mcp-server/internal/domain"
)

// mockConnection is a hand-written domain.Connection whose area clients are
// driven by function fields. Unset functions return zero values.
type mockConnection struct {
	defaultProject string

	core      mockCore
	workItems mockWorkItems
	builds    mockBuilds
	repos     mockRepos
	wikis     mockWikis
	releases  mockReleases
	testPlans mockTestPlans
	search    mockSearch
}

func newMockConnection() *mockConnection {
	return &mockConnection{}
}

func (c *mockConnection) OrganizationURL() string       { return "https://dev.azure.com/contoso" }
func (c *mockConnection) DefaultProject() string        { return c.defaultProject }
func (c *mockConnection) Core() domain.CoreAPI          { return &c.core }
func (c *mockConnection) WorkItems() domain.WorkItemAPI { return &c.workItems }
func (c *mockConnection) Builds() domain.BuildAPI       { return &c.builds }
func (c *mockConnection) Repos() domain.GitAPI          { return &c.repos }
func (c *mockConnection) Wikis() domain.WikiAPI         { return &c.wikis }
func (c *mockConnection) Releases() domain.ReleaseAPI   { return &c.releases }
func (c *mockConnection) TestPlans() domain.TestPlanAPI { return &c.testPlans }
func (c *mockConnection) Search() domain.SearchAPI      { return &c.search }

// mockProvider hands out a fixed connection or error and counts calls.
type mockProvider struct {
	mu    sync.Mutex
	conn  domain.Connection
	err   error
	calls int
}

func (p *mockProvider) Connection(ctx context.Context) (domain.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.conn, nil
}

func (p *mockProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type mockCore struct {
	listProjects func(top, skip int) ([]core.TeamProjectReference, string, error)
	getProject   func(project string) (*core.TeamProject, error)
	listTeams    func(project string, mine bool, top int) ([]core.WebApiTeam, error)
}

func (m *mockCore) ListProjects(ctx context.Context, top, skip int) ([]core.TeamProjectReference, string, error) {
	if m.listProjects == nil {
		return nil, "", nil
	}
	return m.listProjects(top, skip)
}

func (m *mockCore) GetProject(ctx context.Context, project string) (*core.TeamProject, error) {
	if m.getProject == nil {
		return nil, nil
	}
	return m.getProject(project)
}

func (m *mockCore) ListTeams(ctx context.Context, project string, mine bool, top int) ([]core.WebApiTeam, error) {
	if m.listTeams == nil {
		return nil, nil
	}
	return m.listTeams(project, mine, top)
}

type mockWorkItems struct {
	getWorkItem    func(project string, id int, expand string) (*workitemtracking.WorkItem, error)
	getWorkItems   func(project string, ids []int, fields []string) ([]workitemtracking.WorkItem, error)
	queryByWiql    func(project, query string, top int) (*workitemtracking.WorkItemQueryResult, error)
	createWorkItem func(project, workItemType string, fields map[string]interface{}) (*workitemtracking.WorkItem, error)
	updateWorkItem func(project string, id int, fields map[string]interface{}) (*workitemtracking.WorkItem, error)
	addComment     func(project string, workItemID int, text string) (*workitemtracking.Comment, error)
	listComments   func(project string, workItemID int, top int) (*workitemtracking.CommentList, error)
}

func (m *mockWorkItems) GetWorkItem(ctx context.Context, project string, id int, expand string) (*workitemtracking.WorkItem, error) {
	if m.getWorkItem == nil {
		return nil, nil
	}
	return m.getWorkItem(project, id, expand)
}

func (m *mockWorkItems) GetWorkItems(ctx context.Context, project string, ids []int, fields []string) ([]workitemtracking.WorkItem, error) {
	if m.getWorkItems == nil {
		return nil, nil
	}
	return m.getWorkItems(project, ids, fields)
}

func (m *mockWorkItems) QueryByWiql(ctx context.Context, project, query string, top int) (*workitemtracking.WorkItemQueryResult, error) {
	if m.queryByWiql == nil {
		return nil, nil
	}
	return m.queryByWiql(project, query, top)
}

func (m *mockWorkItems) CreateWorkItem(ctx context.Context, project, workItemType string, fields map[string]interface{}) (*workitemtracking.WorkItem, error) {
	if m.createWorkItem == nil {
		return nil, nil
	}
	return m.createWorkItem(project, workItemType, fields)
}

func (m *mockWorkItems) UpdateWorkItem(ctx context.Context, project string, id int, fields map[string]interface{}) (*workitemtracking.WorkItem, error) {
	if m.updateWorkItem == nil {
		return nil, nil
	}
	return m.updateWorkItem(project, id, fields)
}

func (m *mockWorkItems) AddComment(ctx context.Context, project string, workItemID int, text string) (*workitemtracking.Comment, error) {
	if m.addComment == nil {
		return nil, nil
	}
	return m.addComment(project, workItemID, text)
}

func (m *mockWorkItems) ListComments(ctx context.Context, project string, workItemID int, top int) (*workitemtracking.CommentList, error) {
	if m.listComments == nil {
		return nil, nil
	}
	return m.listComments(project, workItemID, top)
}

type mockBuilds struct {
	listBuilds       func(project string, definitions []int, branch string, top int) ([]build.Build, string, error)
	getBuild         func(project string, buildID int) (*build.Build, error)
	listDefinitions  func(project, name string, top int) ([]build.BuildDefinitionReference, string, error)
	queueBuild       func(project string, definitionID int, sourceBranch string) (*build.Build, error)
	getBuildLogs     func(project string, buildID int) ([]build.BuildLog, error)
	getBuildLogLines func(project string, buildID, logID, startLine, endLine int) ([]string, error)
}

func (m *mockBuilds) ListBuilds(ctx context.Context, project string, definitions []int, branch string, top int) ([]build.Build, string, error) {
	if m.listBuilds == nil {
		return nil, "", nil
	}
	return m.listBuilds(project, definitions, branch, top)
}

func (m *mockBuilds) GetBuild(ctx context.Context, project string, buildID int) (*build.Build, error) {
	if m.getBuild == nil {
		return nil, nil
	}
	return m.getBuild(project, buildID)
}

func (m *mockBuilds) ListDefinitions(ctx context.Context, project, name string, top int) ([]build.BuildDefinitionReference, string, error) {
	if m.listDefinitions == nil {
		return nil, "", nil
	}
	return m.listDefinitions(project, name, top)
}

func (m *mockBuilds) QueueBuild(ctx context.Context, project string, definitionID int, sourceBranch string) (*build.Build, error) {
	if m.queueBuild == nil {
		return nil, nil
	}
	return m.queueBuild(project, definitionID, sourceBranch)
}

func (m *mockBuilds) GetBuildLogs(ctx context.Context, project string, buildID int) ([]build.BuildLog, error) {
	if m.getBuildLogs == nil {
		return nil, nil
	}
	return m.getBuildLogs(project, buildID)
}

func (m *mockBuilds) GetBuildLogLines(ctx context.Context, project string, buildID, logID, startLine, endLine int) ([]string, error) {
	if m.getBuildLogLines == nil {
		return nil, nil
	}
	return m.getBuildLogLines(project, buildID, logID, startLine, endLine)
}

type mockRepos struct {
	listRepositories func(project string) ([]git.GitRepository, error)
	getRepository    func(project, repository string) (*git.GitRepository, error)
	listPullRequests func(project, repository, status string, top int) ([]git.GitPullRequest, error)
	getPullRequest   func(project, repository string, pullRequestID int) (*git.GitPullRequest, error)
	listBranches     func(project, repository string) ([]git.GitBranchStats, error)
	listCommits      func(project, repository, author string, top int) ([]git.GitCommitRef, error)
}

func (m *mockRepos) ListRepositories(ctx context.Context, project string) ([]git.GitRepository, error) {
	if m.listRepositories == nil {
		return nil, nil
	}
	return m.listRepositories(project)
}

func (m *mockRepos) GetRepository(ctx context.Context, project, repository string) (*git.GitRepository, error) {
	if m.getRepository == nil {
		return nil, nil
	}
	return m.getRepository(project, repository)
}

func (m *mockRepos) ListPullRequests(ctx context.Context, project, repository, status string, top int) ([]git.GitPullRequest, error) {
	if m.listPullRequests == nil {
		return nil, nil
	}
	return m.listPullRequests(project, repository, status, top)
}

func (m *mockRepos) GetPullRequest(ctx context.Context, project, repository string, pullRequestID int) (*git.GitPullRequest, error) {
	if m.getPullRequest == nil {
		return nil, nil
	}
	return m.getPullRequest(project, repository, pullRequestID)
}

func (m *mockRepos) ListBranches(ctx context.Context, project, repository string) ([]git.GitBranchStats, error) {
	if m.listBranches == nil {
		return nil, nil
	}
	return m.listBranches(project, repository)
}

func (m *mockRepos) ListCommits(ctx context.Context, project, repository, author string, top int) ([]git.GitCommitRef, error) {
	if m.listCommits == nil {
		return nil, nil
	}
	return m.listCommits(project, repository, author, top)
}

type mockWikis struct {
	listWikis          func(project string) ([]wiki.WikiV2, error)
	getPage            func(project, wikiIdentifier, path string) (interface{}, error)
	createOrUpdatePage func(project, wikiIdentifier, path, content, version, comment string) (interface{}, error)
}

func (m *mockWikis) ListWikis(ctx context.Context, project string) ([]wiki.WikiV2, error) {
	if m.listWikis == nil {
		return nil, nil
	}
	return m.listWikis(project)
}

func (m *mockWikis) GetPage(ctx context.Context, project, wikiIdentifier, path string) (interface{}, error) {
	if m.getPage == nil {
		return nil, nil
	}
	return m.getPage(project, wikiIdentifier, path)
}

func (m *mockWikis) CreateOrUpdatePage(ctx context.Context, project, wikiIdentifier, path, content, version, comment string) (interface{}, error) {
	if m.createOrUpdatePage == nil {
		return nil, nil
	}
	return m.createOrUpdatePage(project, wikiIdentifier, path, content, version, comment)
}

type mockReleases struct {
	listDefinitions func(project, searchText string, top int) ([]release.ReleaseDefinition, string, error)
	listReleases    func(project string, definitionID, top int) ([]release.Release, string, error)
	getRelease      func(project string, releaseID int) (*release.Release, error)
}

func (m *mockReleases) ListDefinitions(ctx context.Context, project, searchText string, top int) ([]release.ReleaseDefinition, string, error) {
	if m.listDefinitions == nil {
		return nil, "", nil
	}
	return m.listDefinitions(project, searchText, top)
}

func (m *mockReleases) ListReleases(ctx context.Context, project string, definitionID, top int) ([]release.Release, string, error) {
	if m.listReleases == nil {
		return nil, "", nil
	}
	return m.listReleases(project, definitionID, top)
}

func (m *mockReleases) GetRelease(ctx context.Context, project string, releaseID int) (*release.Release, error) {
	if m.getRelease == nil {
		return nil, nil
	}
	return m.getRelease(project, releaseID)
}

type mockTestPlans struct {
	listTestPlans  func(project string, activeOnly bool) ([]testplan.TestPlan, string, error)
	listTestSuites func(project string, planID int) ([]testplan.TestSuite, string, error)
}

func (m *mockTestPlans) ListTestPlans(ctx context.Context, project string, activeOnly bool) ([]testplan.TestPlan, string, error) {
	if m.listTestPlans == nil {
		return nil, "", nil
	}
	return m.listTestPlans(project, activeOnly)
}

func (m *mockTestPlans) ListTestSuites(ctx context.Context, project string, planID int) ([]testplan.TestSuite, string, error) {
	if m.listTestSuites == nil {
		return nil, "", nil
	}
	return m.listTestSuites(project, planID)
}

type mockSearch struct {
	search func(kind domain.SearchKind, req domain.SearchRequest) (map[string]interface{}, error)
}

func (m *mockSearch) Search(ctx context.Context, kind domain.SearchKind, req domain.SearchRequest) (map[string]interface{}, error) {
	if m.search == nil {
		return map[string]interface{}{"count": 0, "results": []interface{}{}}, nil
	}
	return m.search(kind, req)
}

// staticHandler serves a fixed list of tools.
type staticHandler struct {
	name  string
	tools []domain.Tool
}

func (h *staticHandler) ToolName() string     { return h.name }
func (h *staticHandler) Tools() []domain.Tool { return h.tools }

// textTool returns a tool that answers with a fixed text.
func textTool(name, text string) domain.Tool {
	return domain.Tool{
		Definition: domain.ToolDefinition{
			Name:        name,
			Description: "Test tool " + name,
			InputSchema: objectSchema(map[string]interface{}{
				"value": stringProperty("A value"),
			}),
		},
		Handler: func(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
			return domain.TextResult(text), nil
		},
	}
}

// discardLogger is a logger that writes nowhere.
func discardLogger() *StructuredLogger {
	return NewStructuredLoggerWithWriter(io.Discard, "error")
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}
