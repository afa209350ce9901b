package application

import (
	"sync"

	"azure-devops-mcp-server/internal/domain"
)

// ToolRegistry maps tool names to their definitions and handlers.
// It is populated once at startup from the per-area ToolHandlers and only
// read afterwards.
type ToolRegistry struct {
	mu         sync.RWMutex
	tools      map[string]domain.Tool
	order      []string
	duplicates []string
	logger     *StructuredLogger
}

// NewToolRegistry creates a registry holding every tool of the given handlers,
// registered in handler order.
func NewToolRegistry(logger *StructuredLogger, handlers ...domain.ToolHandler) *ToolRegistry {
	registry := &ToolRegistry{
		tools:  make(map[string]domain.Tool),
		logger: logger,
	}

	for _, handler := range handlers {
		for _, tool := range handler.Tools() {
			registry.Register(tool)
		}
	}

	return registry
}

// Register adds a tool keyed by name. When the name is already taken the new
// tool replaces the old one but keeps its position in the listing, and the
// collision is logged and recorded.
func (r *ToolRegistry) Register(tool domain.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		r.duplicates = append(r.duplicates, name)
		if r.logger != nil {
			r.logger.LogWarn("duplicate tool registration, last one wins", map[string]interface{}{
				"tool": name,
			})
		}
	} else {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Lookup returns the tool registered under name.
func (r *ToolRegistry) Lookup(name string) (domain.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// List returns the definitions of all tools in registration order.
// In minimal mode descriptions are dropped and property schemas reduced.
func (r *ToolRegistry) List(minimal bool) []domain.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	definitions := make([]domain.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		definition := r.tools[name].Definition
		if minimal {
			definition = domain.MinimizeToolDefinition(definition)
		}
		definitions = append(definitions, definition)
	}
	return definitions
}

// Duplicates returns the names that were registered more than once,
// one entry per extra registration.
func (r *ToolRegistry) Duplicates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.duplicates...)
}

// Len returns the number of distinct tools.
func (r *ToolRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
