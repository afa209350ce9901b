package application

import (
	"fmt"

	"azure-devops-mcp-server/internal/domain"
)

// getStringParam extracts a string parameter from the arguments map.
// Returns an error if the parameter is required but missing or not a string.
func getStringParam(args map[string]interface{}, name string, required bool) (string, error) {
	value, exists := args[name]
	if !exists || value == nil {
		if required {
			return "", missingParam(name)
		}
		return "", nil
	}

	strValue, ok := value.(string)
	if !ok {
		return "", invalidParam(name, "a string")
	}
	if required && strValue == "" {
		return "", missingParam(name)
	}

	return strValue, nil
}

// getIntParam extracts an integer parameter from the arguments map.
// Returns an error if the parameter is required but missing or not a number.
// Also returns an error if the parameter exists but is not a valid number type.
func getIntParam(args map[string]interface{}, name string, required bool) (int, error) {
	value, exists := args[name]
	if !exists || value == nil {
		if required {
			return 0, missingParam(name)
		}
		return 0, nil
	}

	// Handle both float64 (from JSON) and int
	switch v := value.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, invalidParam(name, "an integer")
		}
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, invalidParam(name, "an integer")
	}
}

// getBoolParam extracts an optional boolean parameter.
func getBoolParam(args map[string]interface{}, name string) (bool, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return false, nil
	}

	boolValue, ok := value.(bool)
	if !ok {
		return false, invalidParam(name, "a boolean")
	}
	return boolValue, nil
}

// getIntSliceParam extracts an array of integers.
func getIntSliceParam(args map[string]interface{}, name string, required bool) ([]int, error) {
	value, exists := args[name]
	if !exists || value == nil {
		if required {
			return nil, missingParam(name)
		}
		return nil, nil
	}

	items, ok := value.([]interface{})
	if !ok {
		return nil, invalidParam(name, "an array of integers")
	}
	if required && len(items) == 0 {
		return nil, missingParam(name)
	}

	result := make([]int, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case float64:
			if v != float64(int(v)) {
				return nil, invalidParam(name, "an array of integers")
			}
			result = append(result, int(v))
		case int:
			result = append(result, v)
		default:
			return nil, invalidParam(name, "an array of integers")
		}
	}
	return result, nil
}

// getStringSliceParam extracts an optional array of strings.
func getStringSliceParam(args map[string]interface{}, name string) ([]string, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return nil, nil
	}

	items, ok := value.([]interface{})
	if !ok {
		return nil, invalidParam(name, "an array of strings")
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, invalidParam(name, "an array of strings")
		}
		result = append(result, s)
	}
	return result, nil
}

// getMapParam extracts a required, non-empty object parameter.
func getMapParam(args map[string]interface{}, name string) (map[string]interface{}, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return nil, missingParam(name)
	}

	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, invalidParam(name, "an object")
	}
	if len(m) == 0 {
		return nil, missingParam(name)
	}
	return m, nil
}

// getProjectParam returns the project argument, falling back to the
// connection's default project.
func getProjectParam(args map[string]interface{}, conn domain.Connection) (string, error) {
	project, err := getStringParam(args, "project", false)
	if err != nil {
		return "", err
	}
	if project == "" {
		project = conn.DefaultProject()
	}
	if project == "" {
		return "", &domain.Error{
			Code:    domain.InvalidParams,
			Message: "missing required parameter: project (no default project configured)",
		}
	}
	return project, nil
}

func missingParam(name string) *domain.Error {
	return &domain.Error{
		Code:    domain.InvalidParams,
		Message: fmt.Sprintf("missing required parameter: %s", name),
	}
}

func invalidParam(name, kind string) *domain.Error {
	return &domain.Error{
		Code:    domain.InvalidParams,
		Message: fmt.Sprintf("parameter %s must be %s", name, kind),
	}
}

// getOptionalProjectParam returns the project argument or the default
// project, which may be empty for organization-wide calls.
func getOptionalProjectParam(args map[string]interface{}, conn domain.Connection) (string, error) {
	project, err := getStringParam(args, "project", false)
	if err != nil {
		return "", err
	}
	if project == "" {
		project = conn.DefaultProject()
	}
	return project, nil
}
