package cache

import (
	"context"
	"time"
)

// Cache is the contract for the shared key/value cache. Implementations may
// be Redis or an in-memory fake in tests.
type Cache interface {
	// Get unmarshals the cached value into dest.
	// found=false means a miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with a TTL. ttl<=0 means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}
