package cache

import "time"

type options struct {
	maxSize int
	ttl     time.Duration
	enabled bool
}

// Option configures a ResultCache.
type Option func(*options)

// WithMaxSize sets the entry capacity. Insertion beyond capacity evicts the
// least-recently-used entry. Pass 0 or negative for an unbounded cache.
func WithMaxSize(n int) Option {
	return func(o *options) {
		o.maxSize = n
	}
}

// WithTTL sets the default time-to-live for entries stored via Put.
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		o.ttl = d
	}
}

// WithEnabled toggles the cache globally. When disabled, Get always misses
// and Put is a no-op.
func WithEnabled(enabled bool) Option {
	return func(o *options) {
		o.enabled = enabled
	}
}
