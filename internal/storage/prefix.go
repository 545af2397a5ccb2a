package storage

import "context"

// PrefixedStore namespaces every key of an underlying store
type PrefixedStore struct {
	inner  KVStore
	prefix string
}

// WithPrefix returns a view of store whose keys are stored as prefix+key.
// An empty prefix returns store unchanged.
func WithPrefix(store KVStore, prefix string) KVStore {
	if prefix == "" {
		return store
	}
	return &PrefixedStore{inner: store, prefix: prefix}
}

// Get implements KVStore
func (s *PrefixedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set implements KVStore
func (s *PrefixedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}
