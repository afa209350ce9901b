package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/release"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/testplan"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/wiki"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"
	"golang.org/x/sync/singleflight"

	"azure-devops-mcp-server/internal/domain"
)

// ConnectionFactory builds a new backend connection.
type ConnectionFactory func(ctx context.Context) (domain.Connection, error)

// ConnectionProvider owns at most one backend connection. The first caller
// constructs it; concurrent first callers share that single construction.
// Failed constructions are not cached.
type ConnectionProvider struct {
	factory     ConnectionFactory
	group       singleflight.Group
	mu          sync.RWMutex
	conn        domain.Connection
	constructed atomic.Int64
}

// NewConnectionProvider creates a provider around factory.
func NewConnectionProvider(factory ConnectionFactory) *ConnectionProvider {
	return &ConnectionProvider{
		factory: factory,
	}
}

// Connection returns the shared connection, constructing it on first use.
func (p *ConnectionProvider) Connection(ctx context.Context) (domain.Connection, error) {
	if conn := p.cached(); conn != nil {
		return conn, nil
	}

	value, err, _ := p.group.Do("connection", func() (interface{}, error) {
		if conn := p.cached(); conn != nil {
			return conn, nil
		}

		// Waiters share this construction, so it must outlive the first caller's request.
		conn, err := p.factory(context.WithoutCancel(ctx))
		if err != nil {
			return nil, &domain.Error{
				Code:    domain.AuthenticationError,
				Message: "failed to connect to Azure DevOps",
				Data:    err.Error(),
			}
		}
		if conn == nil {
			return nil, &domain.Error{
				Code:    domain.AuthenticationError,
				Message: "failed to connect to Azure DevOps",
				Data:    "connection factory returned no connection",
			}
		}

		p.mu.Lock()
		p.conn = conn
		p.mu.Unlock()
		p.constructed.Add(1)

		return conn, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(domain.Connection), nil
}

// Constructed reports how many connections the provider has built.
func (p *ConnectionProvider) Constructed() int {
	return int(p.constructed.Load())
}

func (p *ConnectionProvider) cached() domain.Connection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.conn
}

// AzureDevOpsConnection implements domain.Connection on top of the
// azure-devops-go-api SDK and the almsearch REST client.
type AzureDevOpsConnection struct {
	organizationURL string
	defaultProject  string
	core            *CoreClient
	workItems       *WorkItemClient
	builds          *BuildClient
	repos           *GitClient
	wikis           *WikiClient
	releases        *ReleaseClient
	testPlans       *TestPlanClient
	search          *SearchClient
}

// NewAzureDevOpsConnectionFactory returns a factory that connects with the
// configured organization URL and credential.
func NewAzureDevOpsConnectionFactory(config domain.AzureDevOpsConfig, authManager *domain.AuthenticationManager) ConnectionFactory {
	return func(ctx context.Context) (domain.Connection, error) {
		conn, err := Connect(ctx, config, authManager)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Connect builds an SDK connection and one client per Azure DevOps area.
func Connect(ctx context.Context, config domain.AzureDevOpsConfig, authManager *domain.AuthenticationManager) (*AzureDevOpsConnection, error) {
	httpClient, err := authManager.GetAuthenticatedClient()
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}

	sdk := azuredevops.NewAnonymousConnection(config.OrganizationURL)
	sdk.AuthorizationString = authManager.AuthorizationHeader()

	coreClient, err := core.NewClient(ctx, sdk)
	if err != nil {
		return nil, fmt.Errorf("failed to create core client: %w", err)
	}

	workItemClient, err := workitemtracking.NewClient(ctx, sdk)
	if err != nil {
		return nil, fmt.Errorf("failed to create work item client: %w", err)
	}

	buildClient, err := build.NewClient(ctx, sdk)
	if err != nil {
		return nil, fmt.Errorf("failed to create build client: %w", err)
	}

	gitClient, err := git.NewClient(ctx, sdk)
	if err != nil {
		return nil, fmt.Errorf("failed to create git client: %w", err)
	}

	wikiClient, err := wiki.NewClient(ctx, sdk)
	if err != nil {
		return nil, fmt.Errorf("failed to create wiki client: %w", err)
	}

	releaseClient, err := release.NewClient(ctx, sdk)
	if err != nil {
		return nil, fmt.Errorf("failed to create release client: %w", err)
	}

	testPlanClient := testplan.NewClient(ctx, sdk)

	return &AzureDevOpsConnection{
		organizationURL: config.OrganizationURL,
		defaultProject:  config.DefaultProject,
		core:            NewCoreClient(coreClient),
		workItems:       NewWorkItemClient(workItemClient),
		builds:          NewBuildClient(buildClient),
		repos:           NewGitClient(gitClient),
		wikis:           NewWikiClient(wikiClient),
		releases:        NewReleaseClient(releaseClient),
		testPlans:       NewTestPlanClient(testPlanClient),
		search:          NewSearchClient(config.SearchBaseURL(), httpClient),
	}, nil
}

// OrganizationURL returns the organization root URL.
func (c *AzureDevOpsConnection) OrganizationURL() string { return c.organizationURL }

// DefaultProject returns the configured default project.
func (c *AzureDevOpsConnection) DefaultProject() string { return c.defaultProject }

func (c *AzureDevOpsConnection) Core() domain.CoreAPI          { return c.core }
func (c *AzureDevOpsConnection) WorkItems() domain.WorkItemAPI { return c.workItems }
func (c *AzureDevOpsConnection) Builds() domain.BuildAPI       { return c.builds }
func (c *AzureDevOpsConnection) Repos() domain.GitAPI          { return c.repos }
func (c *AzureDevOpsConnection) Wikis() domain.WikiAPI         { return c.wikis }
func (c *AzureDevOpsConnection) Releases() domain.ReleaseAPI   { return c.releases }
func (c *AzureDevOpsConnection) TestPlans() domain.TestPlanAPI { return c.testPlans }
func (c *AzureDevOpsConnection) Search() domain.SearchAPI      { return c.search }

// optionalInt returns nil for non-positive values so the SDK omits them.
func optionalInt(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

// optionalString returns nil for empty strings so the SDK omits them.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}
