package cache

import (
	"context"
	"time"
)

// ScopedCache wraps a Cache with a key prefix for namespace isolation.
// Useful when one backend (a shared Redis instance, say) serves several
// deployments or tenants that must not see each other's entries.
type ScopedCache struct {
	inner  Cache
	prefix string
}

// NewScopedCache wraps inner so every key is prefixed.
func NewScopedCache(inner Cache, prefix string) Cache {
	return &ScopedCache{inner: inner, prefix: prefix}
}

// Get retrieves a value under the prefixed key.
func (c *ScopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores a value under the prefixed key.
func (c *ScopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes the value under the prefixed key.
func (c *ScopedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the wrapped cache.
func (c *ScopedCache) Close() error {
	return c.inner.Close()
}

// Ensure ScopedCache implements Cache.
var _ Cache = (*ScopedCache)(nil)
