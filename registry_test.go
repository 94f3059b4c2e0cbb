package callwire

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(_ context.Context, params map[string]any) (any, error) {
	return params, nil
}

func simpleDef(name string) FunctionDefinition {
	return FunctionDefinition{
		Name:        name,
		Description: "test tool " + name,
		Parameters: ParameterSchema{
			Type: TypeObject,
			Properties: map[string]PropertySchema{
				"input": {Type: TypeString, Description: "input"},
			},
		},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(simpleDef("echo"), echoHandler))

	tool, ok := reg.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", tool.Definition.Name)
	assert.False(t, tool.Streaming())

	_, ok = reg.Get("ghost")
	assert.False(t, ok)
}

func TestRegistry_RejectsInvalidDefinition(t *testing.T) {
	reg := NewRegistry()
	def := simpleDef("bad")
	def.Parameters.Type = TypeString
	require.Error(t, reg.Register(def, echoHandler))
	require.Error(t, reg.Register(simpleDef("nil_handler"), nil))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(simpleDef("echo"), func(context.Context, map[string]any) (any, error) {
		return "first", nil
	}))
	require.NoError(t, reg.Register(simpleDef("echo"), func(context.Context, map[string]any) (any, error) {
		return "second", nil
	}))
	assert.Equal(t, 1, reg.Len())

	tool, ok := reg.Get("echo")
	require.True(t, ok)
	result, err := tool.Call(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "second", result)
}

func TestRegistry_ListKeepsRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	names := []string{"zulu", "alpha", "mike"}
	for _, name := range names {
		require.NoError(t, reg.Register(simpleDef(name), echoHandler))
	}
	// Replacement keeps the original position.
	require.NoError(t, reg.Register(simpleDef("alpha"), echoHandler))

	defs := reg.List()
	require.Len(t, defs, 3)
	for i, name := range names {
		assert.Equal(t, name, defs[i].Name)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(simpleDef("echo"), echoHandler))
	reg.Unregister("echo")
	reg.Unregister("ghost") // no-op
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.List())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			name := fmt.Sprintf("tool-%d", i)
			_ = reg.Register(simpleDef(name), echoHandler)
		})
		wg.Go(func() {
			_, _ = reg.Get("tool-0")
			_ = reg.List()
		})
	}
	wg.Wait()
	assert.Equal(t, 20, reg.Len())
}
