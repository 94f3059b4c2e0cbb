package callwire

import (
	"context"
	"fmt"
	"sync"
)

// Handler executes one validated call. The params map has already passed
// schema validation and had defaults filled in. Returning an error marks
// the call failed; the executor wraps it, it never propagates raw.
type Handler func(ctx context.Context, params map[string]any) (any, error)

// StreamHandler is a Handler that may additionally emit intermediate
// results before returning the final one. Each emit produces one
// in_progress chunk; the return value becomes the final chunk's content.
// emit returns an error when the consumer has gone away; the handler must
// stop and return it.
type StreamHandler func(ctx context.Context, params map[string]any, emit func(any) error) (any, error)

// RegisteredTool pairs a FunctionDefinition with its handler. Instances are
// immutable; re-registering a name installs a new RegisteredTool rather
// than mutating the old one.
type RegisteredTool struct {
	Definition FunctionDefinition
	run        StreamHandler
	streaming  bool
}

// Streaming reports whether the tool's handler emits intermediate chunks.
func (t *RegisteredTool) Streaming() bool { return t.streaming }

// Call invokes the handler. emit may be nil for non-streaming invocation;
// intermediate emissions are then discarded.
func (t *RegisteredTool) Call(ctx context.Context, params map[string]any, emit func(any) error) (any, error) {
	if emit == nil {
		emit = func(any) error { return nil }
	}
	return t.run(ctx, params, emit)
}

// Registry holds registered tools. Lookups and registrations are safe for
// concurrent use; List returns definitions in stable registration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*RegisteredTool
	order []string
}

// NewRegistry creates an empty Registry. Registries are independent;
// constructing several in one process is fine.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*RegisteredTool)}
}

// Register stores def with its handler. The definition is validated first.
// Registering a name twice replaces the earlier tool; the name keeps its
// original position in List order.
func (r *Registry) Register(def FunctionDefinition, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("function %q: handler must not be nil", def.Name)
	}
	return r.register(def, func(ctx context.Context, params map[string]any, _ func(any) error) (any, error) {
		return handler(ctx, params)
	}, false)
}

// RegisterStream stores def with a streaming-capable handler.
func (r *Registry) RegisterStream(def FunctionDefinition, handler StreamHandler) error {
	if handler == nil {
		return fmt.Errorf("function %q: handler must not be nil", def.Name)
	}
	return r.register(def, handler, true)
}

func (r *Registry) register(def FunctionDefinition, run StreamHandler, streaming bool) error {
	if err := ValidateDefinition(def); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.tools[def.Name] = &RegisteredTool{Definition: def, run: run, streaming: streaming}
	return nil
}

// Unregister removes a tool by name. Removing an unknown name is a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (*RegisteredTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Definition returns the FunctionDefinition registered under name.
func (r *Registry) Definition(name string) (FunctionDefinition, bool) {
	t, ok := r.Get(name)
	if !ok {
		return FunctionDefinition{}, false
	}
	return t.Definition, true
}

// List returns all definitions in registration order.
func (r *Registry) List() []FunctionDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FunctionDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Definition)
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
