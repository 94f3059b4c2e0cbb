package callwire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countdownDef() FunctionDefinition {
	return FunctionDefinition{
		Name:        "countdown",
		Description: "Count down from a starting value",
		Parameters: ParameterSchema{
			Type: TypeObject,
			Properties: map[string]PropertySchema{
				"from": {Type: TypeInteger, Description: "Starting value"},
			},
			Required: []string{"from"},
		},
	}
}

func countdownHandler(ctx context.Context, params map[string]any, emit func(any) error) (any, error) {
	from := int(params["from"].(float64))
	for i := from; i > 0; i-- {
		if err := emit(map[string]any{"remaining": i}); err != nil {
			return nil, err
		}
	}
	return map[string]any{"finished": true}, nil
}

func newStreamExecutor(t *testing.T) *Executor {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.RegisterStream(countdownDef(), countdownHandler))
	return NewExecutor(reg, WithLogger(quietLogger()))
}

func drain(t *testing.T, chunks <-chan StreamingChunk) []StreamingChunk {
	t.Helper()
	var all []StreamingChunk
	for chunk := range chunks {
		all = append(all, chunk)
	}
	return all
}

func TestExecuteStream_OrderedChunksWithSingleFinal(t *testing.T) {
	exec := newStreamExecutor(t)
	chunks := drain(t, exec.ExecuteStream(context.Background(), ToolCall{
		ID:       "call-7",
		Function: FunctionCall{Name: "countdown", Parameters: map[string]any{"from": float64(3)}},
	}))

	require.Len(t, chunks, 4)
	for i, chunk := range chunks[:3] {
		assert.False(t, chunk.IsFinal)
		assert.Equal(t, ChunkInProgress, chunk.Status)
		assert.Equal(t, "call-7", chunk.CallID)
		assert.Equal(t, map[string]any{"remaining": 3 - i}, chunk.Content)
	}
	last := chunks[3]
	assert.True(t, last.IsFinal)
	assert.Equal(t, ChunkComplete, last.Status)
	assert.Equal(t, map[string]any{"finished": true}, last.Content)
	assert.NotEmpty(t, last.ChunkID)
}

func TestExecuteStream_NonStreamingToolYieldsOneChunk(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(simpleDef("echo"), echoHandler))
	exec := NewExecutor(reg, WithLogger(quietLogger()))

	chunks := drain(t, exec.ExecuteStream(context.Background(), ToolCall{
		Function: FunctionCall{Name: "echo", Parameters: map[string]any{"input": "hi"}},
	}))
	require.Len(t, chunks, 1)
	assert.True(t, chunks[0].IsFinal)
	assert.Equal(t, ChunkComplete, chunks[0].Status)
	assert.NotEmpty(t, chunks[0].CallID, "a call ID must be assigned when the caller omits one")
}

func TestExecuteStream_HandlerErrorTerminatesStream(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterStream(simpleDef("flaky"), func(_ context.Context, _ map[string]any, emit func(any) error) (any, error) {
		if err := emit("partial"); err != nil {
			return nil, err
		}
		return nil, errors.New("backend gave up")
	}))
	exec := NewExecutor(reg, WithLogger(quietLogger()))

	chunks := drain(t, exec.ExecuteStream(context.Background(), ToolCall{
		Function: FunctionCall{Name: "flaky", Parameters: map[string]any{}},
	}))
	require.Len(t, chunks, 2)
	assert.False(t, chunks[0].IsFinal)
	last := chunks[1]
	require.True(t, last.IsFinal)
	assert.Equal(t, ChunkError, last.Status)
	require.NotNil(t, last.Error)
	assert.Equal(t, KindHandlerError, last.Error.Kind)
	assert.Equal(t, "backend gave up", last.Error.Message)
}

func TestExecuteStream_UnknownToolFinalErrorChunk(t *testing.T) {
	exec := newStreamExecutor(t)
	chunks := drain(t, exec.ExecuteStream(context.Background(), ToolCall{
		Function: FunctionCall{Name: "ghost"},
	}))
	require.Len(t, chunks, 1)
	require.True(t, chunks[0].IsFinal)
	assert.Equal(t, ChunkError, chunks[0].Status)
	assert.Equal(t, KindToolNotFound, chunks[0].Error.Kind)
}

func TestExecuteStream_ValidationFailureBeforeHandler(t *testing.T) {
	exec := newStreamExecutor(t)
	chunks := drain(t, exec.ExecuteStream(context.Background(), ToolCall{
		Function: FunctionCall{Name: "countdown", Parameters: map[string]any{}},
	}))
	require.Len(t, chunks, 1)
	require.True(t, chunks[0].IsFinal)
	assert.Equal(t, KindInvalidParameters, chunks[0].Error.Kind)
}

func TestExecuteStream_CancellationStopsEmission(t *testing.T) {
	reg := NewRegistry()
	started := make(chan struct{})
	require.NoError(t, reg.RegisterStream(simpleDef("forever"), func(ctx context.Context, _ map[string]any, emit func(any) error) (any, error) {
		close(started)
		for i := 0; ; i++ {
			if err := emit(i); err != nil {
				return nil, err
			}
		}
	}))
	exec := NewExecutor(reg, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	chunks := exec.ExecuteStream(ctx, ToolCall{
		Function: FunctionCall{Name: "forever", Parameters: map[string]any{}},
	})
	<-started
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-chunks:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("stream did not close after cancellation")
		}
	}
}

func TestExecuteStream_CancelledContextEmitsNothing(t *testing.T) {
	exec := newStreamExecutor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Even with buffer space available, no chunk may be delivered once
	// cancellation has been observed.
	chunks := drain(t, exec.ExecuteStream(ctx, ToolCall{
		Function: FunctionCall{Name: "countdown", Parameters: map[string]any{"from": float64(3)}},
	}))
	assert.Empty(t, chunks)
}

func TestCollectStream(t *testing.T) {
	exec := newStreamExecutor(t)
	resp, intermediate := CollectStream(exec.ExecuteStream(context.Background(), ToolCall{
		Function: FunctionCall{Name: "countdown", Parameters: map[string]any{"from": float64(2)}},
	}))
	require.True(t, resp.OK())
	assert.Equal(t, map[string]any{"finished": true}, resp.Result)
	assert.Len(t, intermediate, 2)
}

func TestCollectStream_TruncationIsAnError(t *testing.T) {
	chunks := make(chan StreamingChunk, 1)
	chunks <- StreamingChunk{ChunkID: "c1", CallID: "x", Content: "partial", Status: ChunkInProgress}
	close(chunks)

	resp, intermediate := CollectStream(chunks)
	require.False(t, resp.OK())
	assert.Equal(t, KindStreamTruncated, resp.Error.Kind)
	assert.Equal(t, []any{"partial"}, intermediate)
}
