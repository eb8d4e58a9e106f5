// Package cache provides the explicit TTL cache capability injected into the
// review service. Tests substitute the no-op implementation.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
	Invalidate(key string)
}

// LRU is a bounded TTL cache backed by hashicorp's expirable LRU.
type LRU[V any] struct {
	inner *expirable.LRU[string, V]
}

func NewLRU[V any](size int, ttl time.Duration) *LRU[V] {
	if size <= 0 {
		size = 512
	}
	return &LRU[V]{inner: expirable.NewLRU[string, V](size, nil, ttl)}
}

func (c *LRU[V]) Get(key string) (V, bool) {
	return c.inner.Get(key)
}

func (c *LRU[V]) Set(key string, value V) {
	c.inner.Add(key, value)
}

func (c *LRU[V]) Invalidate(key string) {
	c.inner.Remove(key)
}

// Noop caches nothing. Used in tests and when caching is disabled.
type Noop[V any] struct{}

func (Noop[V]) Get(string) (v V, ok bool) { return }
func (Noop[V]) Set(string, V)             {}
func (Noop[V]) Invalidate(string)         {}
