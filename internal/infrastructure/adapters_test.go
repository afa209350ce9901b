package infrastructure

import (
	"context"
	"errors"
	"testing"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"
)

// The fakes embed the SDK interfaces and override only what the tests call.

type fakeCoreClient struct {
	core.Client
	projectsArgs core.GetProjectsArgs
	projects     *core.GetProjectsResponseValue
	teamsArgs    core.GetTeamsArgs
	teams        *[]core.WebApiTeam
	err          error
}

func (f *fakeCoreClient) GetProjects(ctx context.Context, args core.GetProjectsArgs) (*core.GetProjectsResponseValue, error) {
	f.projectsArgs = args
	return f.projects, f.err
}

func (f *fakeCoreClient) GetTeams(ctx context.Context, args core.GetTeamsArgs) (*[]core.WebApiTeam, error) {
	f.teamsArgs = args
	return f.teams, f.err
}

type fakeWorkItemClient struct {
	workitemtracking.Client
	createArgs workitemtracking.CreateWorkItemArgs
}

func (f *fakeWorkItemClient) CreateWorkItem(ctx context.Context, args workitemtracking.CreateWorkItemArgs) (*workitemtracking.WorkItem, error) {
	f.createArgs = args
	id := 42
	return &workitemtracking.WorkItem{Id: &id}, nil
}

type fakeBuildClient struct {
	build.Client
	buildsArgs build.GetBuildsArgs
	linesArgs  build.GetBuildLogLinesArgs
}

func (f *fakeBuildClient) GetBuilds(ctx context.Context, args build.GetBuildsArgs) (*build.GetBuildsResponseValue, error) {
	f.buildsArgs = args
	return &build.GetBuildsResponseValue{ContinuationToken: "next"}, nil
}

func (f *fakeBuildClient) GetBuildLogLines(ctx context.Context, args build.GetBuildLogLinesArgs) (*[]string, error) {
	f.linesArgs = args
	return nil, nil
}

type fakeGitClient struct {
	git.Client
	prArgs git.GetPullRequestsArgs
}

func (f *fakeGitClient) GetPullRequests(ctx context.Context, args git.GetPullRequestsArgs) (*[]git.GitPullRequest, error) {
	f.prArgs = args
	return nil, nil
}

func strPtr(s string) *string {
	return &s
}

func TestCoreClient_ListProjects(t *testing.T) {
	fake := &fakeCoreClient{
		projects: &core.GetProjectsResponseValue{
			Value: []core.TeamProjectReference{
				{Name: strPtr("Fabrikam")},
				{Name: strPtr("Contoso")},
			},
			ContinuationToken: "2",
		},
	}
	client := NewCoreClient(fake)

	projects, token, err := client.ListProjects(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(projects) != 2 || *projects[0].Name != "Fabrikam" {
		t.Errorf("Unexpected projects: %+v", projects)
	}
	if token != "2" {
		t.Errorf("Expected continuation token 2, got %q", token)
	}
	if fake.projectsArgs.Top == nil || *fake.projectsArgs.Top != 2 {
		t.Errorf("Expected Top 2, got %v", fake.projectsArgs.Top)
	}
	if fake.projectsArgs.Skip != nil {
		t.Errorf("Expected Skip to be omitted, got %v", *fake.projectsArgs.Skip)
	}
}

func TestCoreClient_Errors(t *testing.T) {
	fake := &fakeCoreClient{err: errors.New("boom")}
	client := NewCoreClient(fake)

	if _, _, err := client.ListProjects(context.Background(), 0, 0); err == nil {
		t.Error("Expected ListProjects error")
	}
	if _, err := client.ListTeams(context.Background(), "Fabrikam", false, 0); err == nil {
		t.Error("Expected ListTeams error")
	}
}

func TestCoreClient_ListTeamsEmpty(t *testing.T) {
	fake := &fakeCoreClient{}
	client := NewCoreClient(fake)

	teams, err := client.ListTeams(context.Background(), "Fabrikam", true, 10)
	if err != nil {
		t.Fatalf("ListTeams failed: %v", err)
	}
	if teams == nil || len(teams) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", teams)
	}
	if *fake.teamsArgs.ProjectId != "Fabrikam" || !*fake.teamsArgs.Mine {
		t.Errorf("Unexpected args: %+v", fake.teamsArgs)
	}
}

func TestWorkItemClient_CreatePatchDocument(t *testing.T) {
	fake := &fakeWorkItemClient{}
	client := NewWorkItemClient(fake)

	_, err := client.CreateWorkItem(context.Background(), "Fabrikam", "Bug", map[string]interface{}{
		"System.Title":                   "Crash on start",
		"System.AssignedTo":              "dev@fabrikam.com",
		"Microsoft.VSTS.Common.Priority": 1,
	})
	if err != nil {
		t.Fatalf("CreateWorkItem failed: %v", err)
	}
	if *fake.createArgs.Type != "Bug" || *fake.createArgs.Project != "Fabrikam" {
		t.Errorf("Unexpected args: type=%s project=%s", *fake.createArgs.Type, *fake.createArgs.Project)
	}

	document := *fake.createArgs.Document
	wantPaths := []string{
		"/fields/Microsoft.VSTS.Common.Priority",
		"/fields/System.AssignedTo",
		"/fields/System.Title",
	}
	if len(document) != len(wantPaths) {
		t.Fatalf("Expected %d operations, got %d", len(wantPaths), len(document))
	}
	for i, op := range document {
		if *op.Path != wantPaths[i] {
			t.Errorf("Operation %d: expected path %s, got %s", i, wantPaths[i], *op.Path)
		}
		if *op.Op != webapi.OperationValues.Add {
			t.Errorf("Operation %d: expected add, got %s", i, *op.Op)
		}
	}
}

func TestBuildClient_ListBuildsArgs(t *testing.T) {
	fake := &fakeBuildClient{}
	client := NewBuildClient(fake)

	_, token, err := client.ListBuilds(context.Background(), "Fabrikam", []int{3, 4}, "refs/heads/main", 0)
	if err != nil {
		t.Fatalf("ListBuilds failed: %v", err)
	}
	if token != "next" {
		t.Errorf("Expected token next, got %q", token)
	}
	if fake.buildsArgs.Definitions == nil || len(*fake.buildsArgs.Definitions) != 2 {
		t.Errorf("Expected two definitions, got %v", fake.buildsArgs.Definitions)
	}
	if *fake.buildsArgs.BranchName != "refs/heads/main" {
		t.Errorf("Unexpected branch %s", *fake.buildsArgs.BranchName)
	}
	if fake.buildsArgs.Top != nil {
		t.Error("Expected Top to be omitted")
	}

	if _, _, err := client.ListBuilds(context.Background(), "Fabrikam", nil, "", 5); err != nil {
		t.Fatalf("ListBuilds failed: %v", err)
	}
	if fake.buildsArgs.Definitions != nil || fake.buildsArgs.BranchName != nil {
		t.Error("Expected optional filters to be omitted")
	}
}

func TestBuildClient_GetBuildLogLines(t *testing.T) {
	fake := &fakeBuildClient{}
	client := NewBuildClient(fake)

	lines, err := client.GetBuildLogLines(context.Background(), "Fabrikam", 10, 2, 5, 0)
	if err != nil {
		t.Fatalf("GetBuildLogLines failed: %v", err)
	}
	if lines == nil {
		t.Error("Expected empty non-nil slice")
	}
	if fake.linesArgs.StartLine == nil || *fake.linesArgs.StartLine != 5 {
		t.Errorf("Expected StartLine 5, got %v", fake.linesArgs.StartLine)
	}
	if fake.linesArgs.EndLine != nil {
		t.Error("Expected EndLine to be omitted")
	}
}

func TestGitClient_PullRequestStatusDefault(t *testing.T) {
	fake := &fakeGitClient{}
	client := NewGitClient(fake)

	tests := []struct {
		status string
		want   git.PullRequestStatus
	}{
		{"", git.PullRequestStatusValues.Active},
		{"completed", git.PullRequestStatusValues.Completed},
		{"all", git.PullRequestStatusValues.All},
	}

	for _, tt := range tests {
		prs, err := client.ListPullRequests(context.Background(), "Fabrikam", "web", tt.status, 0)
		if err != nil {
			t.Fatalf("ListPullRequests failed: %v", err)
		}
		if prs == nil {
			t.Error("Expected empty non-nil slice")
		}
		got := fake.prArgs.SearchCriteria.Status
		if got == nil || *got != tt.want {
			t.Errorf("status %q: expected %s, got %v", tt.status, tt.want, got)
		}
	}
}
