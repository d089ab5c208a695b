// Package cache provides a size-bounded, expiring in-process cache for
// upstream lookups.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a string-keyed LRU whose entries expire after a fixed TTL.
// A zero-value or nil *Cache is a valid, always-missing cache.
type Cache[V any] struct {
	lru *expirable.LRU[string, V]
}

// New creates a cache holding at most size entries for ttl each.
// A ttl <= 0 disables caching.
func New[V any](size int, ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		return &Cache[V]{}
	}
	if size <= 0 {
		size = 1
	}
	return &Cache[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	if c == nil || c.lru == nil {
		var zero V
		return zero, false
	}
	return c.lru.Get(key)
}

// Add stores value under key, evicting the least recently used entry when full.
func (c *Cache[V]) Add(key string, value V) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(key, value)
}

// Len reports the number of live entries.
func (c *Cache[V]) Len() int {
	if c == nil || c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Purge()
}
