package application

import (
	"context"

	"azure-devops-mcp-server/internal/domain"
)

// TestPlanHandler implements ToolHandler for test plans and suites.
type TestPlanHandler struct {
	mapper domain.ResponseMapper
}

// NewTestPlanHandler creates a new TestPlanHandler instance.
func NewTestPlanHandler(mapper domain.ResponseMapper) *TestPlanHandler {
	return &TestPlanHandler{mapper: mapper}
}

// Tool name constants for test plan operations
const (
	ToolTestPlanListPlans  = "testplan_list_test_plans"
	ToolTestPlanListSuites = "testplan_list_test_suites"
)

// ToolName returns the identifier for this handler.
func (h *TestPlanHandler) ToolName() string {
	return "testplan"
}

// Tools returns the test plan tools.
func (h *TestPlanHandler) Tools() []domain.Tool {
	return []domain.Tool{
		{
			Definition: domain.ToolDefinition{
				Name:        ToolTestPlanListPlans,
				Description: "List the test plans of a project",
				InputSchema: objectSchema(map[string]interface{}{
					"project":    projectProperty(),
					"activeOnly": booleanProperty("Only return active plans"),
				}),
			},
			Handler: h.handleListPlans,
		},
		{
			Definition: domain.ToolDefinition{
				Name:        ToolTestPlanListSuites,
				Description: "List the test suites of a test plan",
				InputSchema: objectSchema(map[string]interface{}{
					"planId":  integerProperty("The test plan ID"),
					"project": projectProperty(),
				}, "planId"),
			},
			Handler: h.handleListSuites,
		},
	}
}

func (h *TestPlanHandler) handleListPlans(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}
	activeOnly, err := getBoolParam(args, "activeOnly")
	if err != nil {
		return nil, err
	}

	plans, token, err := conn.TestPlans().ListTestPlans(ctx, project, activeOnly)
	if err != nil {
		return backendFailure("listing test plans", err), nil
	}
	if len(plans) == 0 {
		return domain.ErrorResult("No test plans found in project " + project), nil
	}

	return h.mapper.MapToToolResult(newPage(plans, len(plans), token))
}

func (h *TestPlanHandler) handleListSuites(ctx context.Context, args map[string]interface{}, conn domain.Connection) (domain.ToolResult, error) {
	planID, err := getIntParam(args, "planId", true)
	if err != nil {
		return nil, err
	}
	project, err := getProjectParam(args, conn)
	if err != nil {
		return nil, err
	}

	suites, token, err := conn.TestPlans().ListTestSuites(ctx, project, planID)
	if err != nil {
		return backendFailure("listing test suites", err), nil
	}

	return h.mapper.MapToToolResult(newPage(suites, len(suites), token))
}
