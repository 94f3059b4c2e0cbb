package callwire

import (
	"context"
	"log/slog"
	"time"
)

// ExecutorOption configures an Executor.
type ExecutorOption func(*executorOptions)

type executorOptions struct {
	timeout        time.Duration
	maxConcurrency int
	recoverPanics  bool
	logger         *slog.Logger
	onBefore       func(context.Context, FunctionCall)
	onAfter        func(context.Context, FunctionCall, FunctionResponse, time.Duration)
}

// WithTimeout sets the default per-call execution timeout. Pass 0 to
// disable the deadline.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(o *executorOptions) {
		o.timeout = d
	}
}

// WithMaxConcurrency limits concurrent handler executions (semaphore).
// Pass 0 or negative to disable the semaphore.
func WithMaxConcurrency(n int) ExecutorOption {
	return func(o *executorOptions) {
		o.maxConcurrency = n
	}
}

// WithRecoverPanics controls whether a panicking handler is reported as a
// handler_error response instead of crashing the process.
func WithRecoverPanics(enable bool) ExecutorOption {
	return func(o *executorOptions) {
		o.recoverPanics = enable
	}
}

// WithLogger sets the executor's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(o *executorOptions) {
		o.logger = logger
	}
}

// WithOnBeforeExecute sets a hook called before each call, after lookup and
// validation succeed.
func WithOnBeforeExecute(fn func(context.Context, FunctionCall)) ExecutorOption {
	return func(o *executorOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterExecute sets a hook called after each call with the final
// response, whether success or error.
func WithOnAfterExecute(fn func(context.Context, FunctionCall, FunctionResponse, time.Duration)) ExecutorOption {
	return func(o *executorOptions) {
		o.onAfter = fn
	}
}
