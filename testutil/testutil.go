// Package testutil provides test helpers for callwire.
package testutil

import (
	"context"
	"sync"

	"github.com/callwire/callwire"
)

// RecordingHandler is a Handler that records every invocation. Use it to
// assert how many times (and with what parameters) the executor invoked a
// handler.
type RecordingHandler struct {
	// Result and Err are returned by every invocation.
	Result any
	Err    error

	mu    sync.Mutex
	calls []map[string]any
}

// Handle is the callwire.Handler to register.
func (h *RecordingHandler) Handle(_ context.Context, params map[string]any) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, params)
	return h.Result, h.Err
}

// Calls returns a copy of the recorded parameter maps, in invocation order.
func (h *RecordingHandler) Calls() []map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]map[string]any(nil), h.calls...)
}

// CallCount returns the number of invocations so far.
func (h *RecordingHandler) CallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

// SimpleDefinition builds a minimal object definition with a single
// optional string property, enough to satisfy definition validation in
// tests that do not care about schemas.
func SimpleDefinition(name string) callwire.FunctionDefinition {
	return callwire.FunctionDefinition{
		Name:        name,
		Description: "test tool " + name,
		Parameters: callwire.ParameterSchema{
			Type: callwire.TypeObject,
			Properties: map[string]callwire.PropertySchema{
				"input": {Type: callwire.TypeString, Description: "test input"},
			},
		},
	}
}
