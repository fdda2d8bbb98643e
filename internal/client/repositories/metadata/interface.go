// Package metadata is the client's local key-value table. It holds the
// small amount of state the CLI keeps between runs, such as the bearer
// credential.
package metadata

import (
	"context"
	"time"
)

// Entry is one stored key with its value and last write time.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

type Repository interface {
	// Get returns the value under key; found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set inserts or overwrites key.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Entry, error)
}
