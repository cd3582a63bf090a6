// Package cache holds the in-process layer in front of the persisted libraries.
package cache

import (
	"context"
	"sort"

	"github.com/hightail/wilson-sub000/telemetry"
	"github.com/puzpuzpuz/xsync/v3"
)

// Cache - generic concurrent cache keyed by string. Every access is counted under the cache name.
type Cache[V any] struct {
	Name    string
	entries *xsync.MapOf[string, V]
}

// NewCache - create new cache with generic type V
func NewCache[V any](name string) *Cache[V] {
	return &Cache[V]{
		Name:    name,
		entries: xsync.NewMapOf[string, V](),
	}
}

// Get - fetch value from cache by key
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool) {
	value, found := c.entries.Load(key)

	telemetry.Count(ctx, c.Name+"_cache_get", 1)

	if found {
		telemetry.Count(ctx, c.Name+"_cache_hit", 1)
	} else {
		telemetry.Count(ctx, c.Name+"_cache_miss", 1)
	}

	return value, found
}

// Put - put value into cache by key
func (c *Cache[V]) Put(ctx context.Context, key string, value V) {
	telemetry.Count(ctx, c.Name+"_cache_put", 1)
	c.entries.Store(key, value)
}

// Delete removes key from the cache.
func (c *Cache[V]) Delete(_ context.Context, key string) {
	c.entries.Delete(key)
}

// Clear drops every entry.
func (c *Cache[V]) Clear(_ context.Context) {
	c.entries.Clear()
}

// Has reports whether key is present without counting a lookup.
func (c *Cache[V]) Has(key string) bool {
	_, ok := c.entries.Load(key)
	return ok
}

// Keys returns the cached keys in sorted order.
func (c *Cache[V]) Keys() []string {
	keys := make([]string, 0, c.entries.Size())

	c.entries.Range(func(key string, _ V) bool {
		keys = append(keys, key)
		return true
	})

	sort.Strings(keys)

	return keys
}
