package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"feedbackboard/internal/observability"
	contextutils "feedbackboard/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// FileStore keeps all keys in one JSON object file. Every call reads the file again, so
// writes made by another process (the admin CLI next to a running server) are seen by the
// next Get and kept by the next Set. Set rewrites the file through a temporary file and a
// rename, so a crash never leaves a half-written document.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens the store at path, creating its directory. A missing file is an empty store.
func NewFileStore(path string) (result0 *FileStore, err error) {
	_, span := observability.TraceStorageFunction(context.Background(), "NewFileStore",
		attribute.String("storage.backend", "file"),
		attribute.String("storage.path", path),
	)
	defer observability.FinishSpan(span, &err)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrStorage, "failed to create storage directory: %w", err)
	}

	store := &FileStore{path: path}
	if _, err := store.read(); err != nil {
		return nil, err
	}
	return store, nil
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// read decodes the file as it is on disk now; callers hold s.mu or own s
func (s *FileStore) read() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrStorage, "failed to read storage file %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrStorage, "storage file %s is not a JSON object: %w", s.path, err)
	}
	return values, nil
}

// Get implements KVStore
func (s *FileStore) Get(ctx context.Context, key string) (value string, found bool, err error) {
	_, span := observability.TraceStorageFunction(ctx, "FileStore.Get", observability.AttributeStorageKey(key))
	defer observability.FinishSpan(span, &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", false, err
	}
	value, found = values[key]
	return value, found, nil
}

// Set implements KVStore. Keys written by other processes since the last call are kept.
func (s *FileStore) Set(ctx context.Context, key, value string) (err error) {
	_, span := observability.TraceStorageFunction(ctx, "FileStore.Set",
		observability.AttributeStorageKey(key),
		attribute.Int("storage.value_size", len(value)),
	)
	defer observability.FinishSpan(span, &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	return s.flush(values)
}

// flush writes the whole map; callers hold s.mu
func (s *FileStore) flush(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrStorage, "failed to encode storage file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrStorage, "failed to create temporary storage file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return contextutils.WrapErrorf(contextutils.ErrStorage, "failed to write storage file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return contextutils.WrapErrorf(contextutils.ErrStorage, "failed to sync storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return contextutils.WrapErrorf(contextutils.ErrStorage, "failed to close storage file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return contextutils.WrapErrorf(contextutils.ErrStorage, "failed to replace storage file: %w", err)
	}
	return nil
}
