// Package cache provides a process-local LRU+TTL cache for function call
// results, keyed by function name and a canonical serialization of the
// call's parameters. The calling side consults it before issuing a remote
// call; only successful responses are ever stored.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/callwire/callwire"
)

// Defaults applied by New.
const (
	DefaultMaxSize = 100
	DefaultTTL     = 5 * time.Minute
)

type entry struct {
	key            string
	value          callwire.FunctionResponse
	createdAt      time.Time
	lastAccessedAt time.Time
	expiresAt      time.Time
}

// ResultCache is a bounded LRU cache with per-entry TTL. All operations are
// atomic with respect to each other; a Get never observes a half-written
// entry and eviction cannot corrupt size bookkeeping. It is process-local:
// TTL expiry is the only mechanism for reflecting remote state changes.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // front = most recently used
	opts    options
	now     func() time.Time
}

// New creates a ResultCache with the given options.
func New(opts ...Option) *ResultCache {
	o := options{
		maxSize: DefaultMaxSize,
		ttl:     DefaultTTL,
		enabled: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &ResultCache{
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		opts:    o,
		now:     time.Now,
	}
}

// Enabled reports whether caching is globally enabled. A disabled cache
// always misses and ignores Put.
func (c *ResultCache) Enabled() bool { return c.opts.enabled }

// Get returns the cached response for (name, parameters) if present and not
// expired. Parameter key order does not matter: {"a":1,"b":2} and
// {"b":2,"a":1} hit the same entry. An expired entry is evicted lazily and
// reported as a miss.
func (c *ResultCache) Get(name string, parameters map[string]any) (callwire.FunctionResponse, bool) {
	if !c.opts.enabled {
		return callwire.FunctionResponse{}, false
	}
	key := Key(name, parameters)

	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		return callwire.FunctionResponse{}, false
	}
	ent := elem.Value.(*entry)
	if !c.now().Before(ent.expiresAt) {
		c.removeLocked(elem)
		return callwire.FunctionResponse{}, false
	}
	ent.lastAccessedAt = c.now()
	c.lru.MoveToFront(elem)
	return ent.value, true
}

// Put stores a successful response under (name, parameters) with the
// cache's default TTL. Error responses are never cached: a failed call must
// be retried, not replayed.
func (c *ResultCache) Put(name string, parameters map[string]any, resp callwire.FunctionResponse) {
	c.PutTTL(name, parameters, resp, c.opts.ttl)
}

// PutTTL is Put with an explicit TTL for this entry.
func (c *ResultCache) PutTTL(name string, parameters map[string]any, resp callwire.FunctionResponse, ttl time.Duration) {
	if !c.opts.enabled || !resp.OK() {
		return
	}
	key := Key(name, parameters)

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if elem, ok := c.entries[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = resp
		ent.lastAccessedAt = now
		ent.expiresAt = now.Add(ttl)
		c.lru.MoveToFront(elem)
		return
	}
	if c.opts.maxSize > 0 && c.lru.Len() >= c.opts.maxSize {
		c.evictLocked()
	}
	ent := &entry{
		key:            key,
		value:          resp,
		createdAt:      now,
		lastAccessedAt: now,
		expiresAt:      now.Add(ttl),
	}
	c.entries[key] = c.lru.PushFront(ent)
}

// Invalidate removes the entry for (name, parameters). Returns true when an
// entry was removed.
func (c *ResultCache) Invalidate(name string, parameters map[string]any) bool {
	key := Key(name, parameters)
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeLocked(elem)
	return true
}

// Clear removes all entries.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

// Len returns the number of live entries, including any that have expired
// but not yet been evicted lazily.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// evictLocked removes the least-recently-used entry. The LRU list keeps the
// most recently accessed entry at the front, so the back element is the one
// with the oldest lastAccessedAt; insertion order breaks ties because a
// never-reaccessed older entry sits behind a newer one.
func (c *ResultCache) evictLocked() {
	if back := c.lru.Back(); back != nil {
		c.removeLocked(back)
	}
}

func (c *ResultCache) removeLocked(elem *list.Element) {
	ent := c.lru.Remove(elem).(*entry)
	delete(c.entries, ent.key)
}

// Key computes the cache key for a call: a digest of the function name and
// a canonical order-independent serialization of the parameters
// (encoding/json writes map keys in sorted order).
func Key(name string, parameters map[string]any) string {
	canonical, err := json.Marshal(parameters)
	if err != nil {
		// Unserializable parameters cannot come back from a remote call
		// anyway; fall back to the name so the entry is at least scoped.
		canonical = []byte("{}")
	}
	sum := sha256.Sum256([]byte(name + ":" + string(canonical)))
	return hex.EncodeToString(sum[:])
}
