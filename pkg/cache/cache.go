// Package cache provides pluggable byte caches for conversion results.
//
// The HTTP service caches encoded figure JSON keyed by a hash of the input
// payload and the encoding options, so repeated conversions of the same
// figure skip the codec entirely. Three backends are provided:
//
//   - FileCache: directory-backed, for single-host serving
//   - RedisCache: shared cache for multi-host serving
//   - NullCache: caching disabled
//
// A miss is reported as (nil, false, nil); errors are reserved for backend
// failures.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with optional expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
