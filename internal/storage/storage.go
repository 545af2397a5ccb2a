// Package storage provides the string key-value stores that hold persisted board state.
package storage

import (
	"context"
)

// KVStore is a string-keyed store of string values. Implementations must be safe for
// concurrent use.
type KVStore interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}
