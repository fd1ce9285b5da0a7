package cache

import (
	"context"
	"time"
)

// Cache stores values until an absolute deadline.
// A zero deadline means the value never expires.
type Cache[V any] interface {
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) (V, error)

	// Put stores value until expiresAt. A deadline that has already passed
	// removes the key instead.
	Put(ctx context.Context, key string, value V, expiresAt time.Time) error

	// Update atomically replaces a live entry. It returns ErrNotFound
	// instead of creating a missing key.
	Update(ctx context.Context, key string, fn func(V) (V, time.Time, error)) error

	Delete(ctx context.Context, key string) error

	// Len counts entries that have not expired.
	Len(ctx context.Context) (int, error)

	Clear(ctx context.Context) error

	// Close stops background cleanup. Later calls return ErrClosed.
	Close() error
}
