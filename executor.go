package callwire

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Executor runs calls against a Registry: lookup, validation, handler
// invocation, outcome normalization. Every failure kind is reported as an
// error FunctionResponse; Execute never returns a Go error and a handler
// failure never escapes it.
type Executor struct {
	registry *Registry
	sem      chan struct{}
	opts     executorOptions
}

// NewExecutor creates an Executor over registry.
func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	o := executorOptions{
		timeout:        30 * time.Second,
		maxConcurrency: 0,
		recoverPanics:  true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	var sem chan struct{}
	if o.maxConcurrency > 0 {
		sem = make(chan struct{}, o.maxConcurrency)
	}
	return &Executor{registry: registry, sem: sem, opts: o}
}

// Registry returns the registry this executor runs against.
func (e *Executor) Registry() *Registry { return e.registry }

// Execute runs one call to completion. The handler runs at most once, with
// validated default-filled parameters, and only after lookup and validation
// succeed. A context deadline hit during handler execution is reported as a
// handler_error response with Detail{"timeout": true} so callers can tell
// it apart from a handler's own failure.
func (e *Executor) Execute(ctx context.Context, call FunctionCall) FunctionResponse {
	tool, ok := e.registry.Get(call.Name)
	if !ok {
		e.opts.logger.Warn("function not found", "function", call.Name)
		return ErrorResponse(KindToolNotFound, "function '"+call.Name+"' not found",
			map[string]any{"name": call.Name})
	}

	params, err := ValidateCall(tool.Definition, call.Parameters)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			e.opts.logger.Warn("invalid parameters", "function", call.Name, "error", err)
			return FunctionResponse{Error: verr.ErrorDetail(), Status: StatusError}
		}
		return ErrorResponse(KindInvalidParameters, err.Error(), nil)
	}

	if err := e.acquire(ctx); err != nil {
		return e.failure(call, err)
	}
	defer e.release()

	if e.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.timeout)
		defer cancel()
	}

	if e.opts.onBefore != nil {
		e.opts.onBefore(ctx, call)
	}
	start := time.Now()
	resp := e.invoke(ctx, tool, call, params, nil)
	if e.opts.onAfter != nil {
		e.opts.onAfter(ctx, call, resp, time.Since(start))
	}
	return resp
}

// invoke runs the handler and normalizes its outcome. emit is non-nil only
// for streamed execution.
func (e *Executor) invoke(ctx context.Context, tool *RegisteredTool, call FunctionCall, params map[string]any, emit func(any) error) (resp FunctionResponse) {
	if e.opts.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				perr := &panicError{p: p}
				e.opts.logger.Error("handler panic", "function", call.Name, "error", perr)
				resp = e.failure(call, perr)
			}
		}()
	}
	result, err := tool.Call(ctx, params, emit)
	if err != nil {
		return e.failure(call, err)
	}
	return SuccessResponse(result)
}

// failure maps a handler-side error to its response shape. A handler that
// returns an *ErrorDetail keeps its own kind (the proxy tool reports
// proxy_error/proxy_connection_error this way); anything else is an opaque
// handler_error.
func (e *Executor) failure(call FunctionCall, err error) FunctionResponse {
	var detail *ErrorDetail
	if errors.As(err, &detail) {
		e.opts.logger.Warn("handler reported failure", "function", call.Name, "kind", detail.Kind)
		return FunctionResponse{Error: detail, Status: StatusError}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		e.opts.logger.Warn("handler timed out", "function", call.Name)
		return ErrorResponse(KindHandlerError, "function '"+call.Name+"' timed out",
			map[string]any{"timeout": true})
	}
	if errors.Is(err, context.Canceled) {
		return ErrorResponse(KindHandlerError, "function '"+call.Name+"' was cancelled",
			map[string]any{"cancelled": true})
	}
	e.opts.logger.Error("handler failed", "function", call.Name, "error", err)
	return ErrorResponse(KindHandlerError, err.Error(), nil)
}

// ExecuteTool runs a ToolCall, generating a call ID when the caller did not
// supply one.
func (e *Executor) ExecuteTool(ctx context.Context, call ToolCall) ToolResponse {
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	return ToolResponse{ID: call.ID, Function: e.Execute(ctx, call.Function)}
}

// ExecuteBatch runs calls concurrently and returns responses in call order.
// One call's failure does not affect the others.
func (e *Executor) ExecuteBatch(ctx context.Context, calls []FunctionCall) []FunctionResponse {
	responses := make([]FunctionResponse, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Go(func() {
			responses[i] = e.Execute(ctx, call)
		})
	}
	wg.Wait()
	return responses
}

// ExecuteFromText extracts a function call from free-form text and executes
// it. Returns false when no call is present in the text.
func (e *Executor) ExecuteFromText(ctx context.Context, text string) (FunctionResponse, bool) {
	call, ok := ExtractFunctionCall(text)
	if !ok {
		return FunctionResponse{}, false
	}
	return e.Execute(ctx, call), true
}

func (e *Executor) acquire(ctx context.Context) error {
	if e.sem == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) release() {
	if e.sem != nil {
		<-e.sem
	}
}
