package kv

import (
	"context"
)

// Backend is a key/value store.
type Backend interface {
	// Get returns the value of key. A missing key is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every key starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Clear removes every key of the backend.
	Clear(ctx context.Context) error

	// Name identifies the backend in logs and metrics.
	Name() string

	Close() error
}
