// Package querycache is the request cache behind every list view: cached
// reads keyed by resource plus filter parameters, deduplication of
// identical in-flight queries, and optimistic mutations with exact
// snapshot rollback.
package querycache

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/psiclinic/clinic-cli/pkg/metrics"
)

// Key builds the composite cache key for a resource and its active
// filter parameters. url.Values.Encode sorts keys, so equal filters
// always produce equal keys.
func Key(resource string, params url.Values) string {
	if len(params) == 0 {
		return resource
	}
	return resource + "?" + params.Encode()
}

type inflightCall struct {
	done chan struct{}
	val  interface{}
	err  error
}

type Cache struct {
	store   *gocache.Cache
	metrics *metrics.Metrics

	mu       sync.Mutex
	inflight map[string]*inflightCall
}

func New(ttl, cleanupInterval time.Duration, m *metrics.Metrics) *Cache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	return &Cache{
		store:    gocache.New(ttl, cleanupInterval),
		metrics:  m,
		inflight: make(map[string]*inflightCall),
	}
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache) Get(key string) (interface{}, bool) {
	v, ok := c.store.Get(key)
	if c.metrics != nil {
		if ok {
			c.metrics.CacheHits.Inc()
		} else {
			c.metrics.CacheMisses.Inc()
		}
	}
	return v, ok
}

// Set stores a value under key with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.store.SetDefault(key, value)
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// GetOrFetch returns the cached value for key or runs fetch to produce
// it. Concurrent callers with the same key share one fetch; only the
// first issues the request, the rest wait for its outcome. Errors are
// not cached.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (interface{}, error)) (interface{}, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.val, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	call.val, call.err = fetch(ctx)
	if call.err == nil {
		c.store.SetDefault(key, call.val)
	}

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	close(call.done)

	return call.val, call.err
}

// InvalidatePrefix drops every cached entry whose key starts with
// prefix. Used by mutations whose side effects span many filter
// combinations, e.g. starting a session invalidates all cached
// appointment lists.
func (c *Cache) InvalidatePrefix(prefix string) {
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}
}
