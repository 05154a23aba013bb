package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a Backend when the key does not exist or has expired.
var ErrNotFound = errors.New("store: key not found")

// Backend is a byte-oriented key/value store.
//
// The key is an opaque string; callers decide the key schema.
// A ttl of 0 means no expiration.
type Backend interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
