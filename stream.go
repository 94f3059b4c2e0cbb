package callwire

import (
	"context"

	"github.com/google/uuid"
)

// streamBuffer bounds the per-call chunk channel. A slow consumer
// backpressures the handler through emit instead of buffering unboundedly.
const streamBuffer = 8

// ExecuteStream runs one call and delivers its result as an ordered chunk
// sequence on the returned channel. The sequence is zero or more
// in_progress chunks followed by exactly one final chunk (complete or
// error), after which the channel is closed. No chunk ever follows the
// final one. Cancelling ctx stops emission: the handler's emit starts
// failing, remaining chunks are dropped, and the channel closes.
//
// Handlers registered without streaming support degrade gracefully: their
// whole result arrives as the single final chunk.
func (e *Executor) ExecuteStream(ctx context.Context, call ToolCall) <-chan StreamingChunk {
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	out := make(chan StreamingChunk, streamBuffer)

	go func() {
		defer close(out)

		send := func(chunk StreamingChunk) error {
			// Checked first: a two-case select picks randomly when the
			// buffer has room, which could emit after cancellation.
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case out <- chunk:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		final := func(resp FunctionResponse) {
			chunk := StreamingChunk{
				ChunkID: uuid.NewString(),
				CallID:  call.ID,
				IsFinal: true,
			}
			if resp.OK() {
				chunk.Content = resp.Result
				chunk.Status = ChunkComplete
			} else {
				chunk.Error = resp.Error
				chunk.Status = ChunkError
			}
			_ = send(chunk)
		}

		tool, ok := e.registry.Get(call.Function.Name)
		if !ok {
			final(ErrorResponse(KindToolNotFound, "function '"+call.Function.Name+"' not found",
				map[string]any{"name": call.Function.Name}))
			return
		}
		params, err := ValidateCall(tool.Definition, call.Function.Parameters)
		if err != nil {
			if verr, ok := asValidationError(err); ok {
				final(FunctionResponse{Error: verr.ErrorDetail(), Status: StatusError})
			} else {
				final(ErrorResponse(KindInvalidParameters, err.Error(), nil))
			}
			return
		}

		if err := e.acquire(ctx); err != nil {
			final(e.failure(call.Function, err))
			return
		}
		defer e.release()

		runCtx := ctx
		if e.opts.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, e.opts.timeout)
			defer cancel()
		}

		emit := func(content any) error {
			return send(StreamingChunk{
				ChunkID: uuid.NewString(),
				CallID:  call.ID,
				Content: content,
				Status:  ChunkInProgress,
			})
		}
		final(e.invoke(runCtx, tool, call.Function, params, emit))
	}()

	return out
}

// CollectStream drains a chunk sequence and returns the final response,
// accumulating in_progress contents. A channel that closes without a final
// chunk is an implicit error and yields a stream_truncated response.
func CollectStream(chunks <-chan StreamingChunk) (FunctionResponse, []any) {
	var intermediate []any
	for chunk := range chunks {
		if !chunk.IsFinal {
			intermediate = append(intermediate, chunk.Content)
			continue
		}
		if chunk.Status == ChunkError {
			return FunctionResponse{Error: chunk.Error, Status: StatusError}, intermediate
		}
		return SuccessResponse(chunk.Content), intermediate
	}
	return ErrorResponse(KindStreamTruncated, "stream closed before a final chunk was received", nil), intermediate
}

func asValidationError(err error) (*ValidationError, bool) {
	verr, ok := err.(*ValidationError)
	return verr, ok
}
