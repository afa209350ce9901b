package application

import (
	"fmt"

	"azure-devops-mcp-server/internal/domain"
)

// Shared schema fragments for the tool catalog.

func objectSchema(properties map[string]interface{}, required ...string) domain.JSONSchema {
	return domain.JSONSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

func stringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func integerProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func booleanProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": description,
	}
}

func enumProperty(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        values,
		"description": description,
	}
}

func arrayProperty(itemType, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": itemType},
		"description": description,
	}
}

func objectProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
	}
}

func projectProperty() map[string]interface{} {
	return stringProperty("Project name or ID. Defaults to the configured default project.")
}

func topProperty(what string) map[string]interface{} {
	return integerProperty(fmt.Sprintf("Maximum number of %s to return", what))
}

// backendFailure reports a failed backend call in-band, passing the
// backend message through verbatim.
func backendFailure(action string, err error) domain.ToolResult {
	return domain.ErrorResult(fmt.Sprintf("Error %s: %s", action, err.Error()))
}

// newPage wraps one page of SDK results. Empty pages render as [] rather than null.
func newPage(value interface{}, count int, token string) domain.Page {
	if count == 0 {
		value = []interface{}{}
	}
	return domain.Page{
		Value:             value,
		Count:             count,
		ContinuationToken: token,
	}
}

// DefaultToolHandlers returns every Azure DevOps area handler in
// advertisement order.
func DefaultToolHandlers(mapper domain.ResponseMapper) []domain.ToolHandler {
	return []domain.ToolHandler{
		NewCoreHandler(mapper),
		NewWorkItemHandler(mapper),
		NewBuildHandler(mapper),
		NewRepoHandler(mapper),
		NewWikiHandler(mapper),
		NewReleaseHandler(mapper),
		NewTestPlanHandler(mapper),
		NewSearchHandler(mapper),
	}
}
