package storage

import (
	"context"
	"database/sql"
	"errors"

	"feedbackboard/internal/observability"
	contextutils "feedbackboard/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

const (
	getValueQuery = `SELECT value FROM kv_store WHERE key = $1`
	setValueQuery = `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
)

// PostgresStore keeps values in the kv_store table
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open connection whose schema is already migrated
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get implements KVStore
func (s *PostgresStore) Get(ctx context.Context, key string) (value string, found bool, err error) {
	ctx, span := observability.TraceStorageFunction(ctx, "PostgresStore.Get",
		attribute.String("storage.backend", "postgres"),
		observability.AttributeStorageKey(key),
	)
	defer observability.FinishSpan(span, &err)

	err = s.db.QueryRowContext(ctx, getValueQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, contextutils.WrapErrorf(contextutils.ErrStorage, "failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements KVStore
func (s *PostgresStore) Set(ctx context.Context, key, value string) (err error) {
	ctx, span := observability.TraceStorageFunction(ctx, "PostgresStore.Set",
		attribute.String("storage.backend", "postgres"),
		observability.AttributeStorageKey(key),
		attribute.Int("storage.value_size", len(value)),
	)
	defer observability.FinishSpan(span, &err)

	if _, err := s.db.ExecContext(ctx, setValueQuery, key, value); err != nil {
		return contextutils.WrapErrorf(contextutils.ErrStorage, "failed to write key %s: %w", key, err)
	}
	return nil
}
