package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/google/jsonschema-go/jsonschema"
)

// ErrToolNotFound is returned for names the registry does not know.
var ErrToolNotFound = errors.New("tool not found")

// ToolPlugin defines the interface for plugins that provide tools
type ToolPlugin interface {
	RegisterTools(gk *genkit.Genkit, registry *Registry)
}

// ToolExecutor is the function signature for executing a tool
type ToolExecutor func(ctx context.Context, args map[string]any) (*Result, error)

// Manifest describes one registered tool.
type Manifest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"input_schema,omitempty"`
}

type entry struct {
	manifest Manifest
	executor ToolExecutor
}

// Registry holds every tool once. The router, the agent and the tool
// server all call tools through it.
type Registry struct {
	mu        sync.RWMutex
	tools     []ai.Tool
	executors map[string]entry
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]entry),
	}
}

// Register adds a tool with its executor. tool may be nil when no genkit
// instance is available; the executor is then reachable by name only.
func (r *Registry) Register(tool ai.Tool, m Manifest, executor ToolExecutor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tool != nil {
		r.tools = append(r.tools, tool)
	}
	r.executors[m.Name] = entry{manifest: m, executor: executor}
}

// GetTools returns all registered genkit tools
func (r *Registry) GetTools() []ai.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ai.Tool(nil), r.tools...)
}

// Manifests returns the tool descriptions sorted by name.
func (r *Registry) Manifests() []Manifest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Manifest, 0, len(r.executors))
	for _, e := range r.executors {
		out = append(out, e.manifest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.executors[name]
	return ok
}

// ExecuteTool runs a registered tool by name
func (r *Registry) ExecuteTool(ctx context.Context, name string, args map[string]any) (*Result, error) {
	r.mu.RLock()
	e, ok := r.executors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return e.executor(ctx, args)
}

// Invoke satisfies ToolInvoker for in-process execution.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (*Result, error) {
	return r.ExecuteTool(ctx, name, args)
}

// ToolInvoker calls a named tool with keyword arguments. The registry and
// the remote tool client both implement it.
type ToolInvoker interface {
	Invoke(ctx context.Context, name string, args map[string]any) (*Result, error)
}
