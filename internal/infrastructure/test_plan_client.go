package infrastructure

import (
	"context"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/testplan"
)

// TestPlanClient handles test plan operations.
type TestPlanClient struct {
	client testplan.Client
}

// NewTestPlanClient wraps an SDK test plan client.
func NewTestPlanClient(client testplan.Client) *TestPlanClient {
	return &TestPlanClient{client: client}
}

// ListTestPlans returns one page of test plans with their details.
func (c *TestPlanClient) ListTestPlans(ctx context.Context, project string, activeOnly bool) ([]testplan.TestPlan, string, error) {
	resp, err := c.client.GetTestPlans(ctx, testplan.GetTestPlansArgs{
		Project:            &project,
		IncludePlanDetails: boolPtr(true),
		FilterActivePlans:  boolPtr(activeOnly),
	})
	if err != nil {
		return nil, "", err
	}
	if resp == nil {
		return nil, "", nil
	}
	return resp.Value, resp.ContinuationToken, nil
}

// ListTestSuites returns one page of the suites of a test plan.
func (c *TestPlanClient) ListTestSuites(ctx context.Context, project string, planID int) ([]testplan.TestSuite, string, error) {
	resp, err := c.client.GetTestSuitesForPlan(ctx, testplan.GetTestSuitesForPlanArgs{
		Project: &project,
		PlanId:  &planID,
	})
	if err != nil {
		return nil, "", err
	}
	if resp == nil {
		return nil, "", nil
	}
	return resp.Value, resp.ContinuationToken, nil
}
