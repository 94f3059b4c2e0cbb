package client

import (
	"log/slog"
	"time"

	"github.com/callwire/callwire/cache"
)

type options struct {
	apiKey     string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	cache      *cache.ResultCache
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*options)

// WithAPIKey sets the X-API-Key header sent with every request.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRetries sets the retry budget for failed requests and the delay
// between attempts. Only connection failures and 5xx responses are retried.
func WithRetries(maxRetries int, delay time.Duration) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
		o.retryDelay = delay
	}
}

// WithCache attaches a result cache consulted before and populated after
// each CallFunction.
func WithCache(c *cache.ResultCache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithLogger sets the client's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func defaultLogger() *slog.Logger { return slog.Default() }

type callOptions struct {
	skipCache bool
}

// CallOption configures one call.
type CallOption func(*callOptions)

// WithoutCache skips consulting and populating the cache for this call only.
func WithoutCache() CallOption {
	return func(o *callOptions) {
		o.skipCache = true
	}
}
