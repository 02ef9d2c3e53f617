package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/sealkeeper/internal/database"
	apperrors "github.com/allisson/sealkeeper/internal/errors"
)

// MySQLStore implements Store for MySQL databases.
type MySQLStore struct {
	db *sql.DB
}

// GetValue returns the value for (ownerID, namespace, key) or defaultValue.
func (m *MySQLStore) GetValue(
	ctx context.Context,
	ownerID, namespace, key, defaultValue string,
) (string, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT config_value FROM kv_entries
			  WHERE owner_id = ? AND namespace = ? AND config_key = ?`

	var value string
	err := querier.QueryRowContext(ctx, query, ownerID, namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return defaultValue, nil
		}
		return "", apperrors.Wrapf(err, "failed to get value %s/%s for owner %s", namespace, key, ownerID)
	}
	return value, nil
}

// SetValue upserts the entry.
func (m *MySQLStore) SetValue(ctx context.Context, ownerID, namespace, key, value string) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO kv_entries (owner_id, namespace, config_key, config_value, updated_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE config_value = VALUES(config_value), updated_at = VALUES(updated_at)`

	_, err := querier.ExecContext(ctx, query, ownerID, namespace, key, value, time.Now().UTC())
	if err != nil {
		return apperrors.Wrapf(err, "failed to set value %s/%s for owner %s", namespace, key, ownerID)
	}
	return nil
}

// DeleteValue removes the entry if present.
func (m *MySQLStore) DeleteValue(ctx context.Context, ownerID, namespace, key string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM kv_entries WHERE owner_id = ? AND namespace = ? AND config_key = ?`

	if _, err := querier.ExecContext(ctx, query, ownerID, namespace, key); err != nil {
		return apperrors.Wrapf(err, "failed to delete value %s/%s for owner %s", namespace, key, ownerID)
	}
	return nil
}

// ListKeys returns the owner's keys in namespace.
func (m *MySQLStore) ListKeys(ctx context.Context, ownerID, namespace string) ([]string, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT config_key FROM kv_entries
			  WHERE owner_id = ? AND namespace = ?
			  ORDER BY config_key ASC`

	rows, err := querier.QueryContext(ctx, query, ownerID, namespace)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to list keys in %s for owner %s", namespace, ownerID)
	}
	return scanStrings(rows)
}

// ListOwnersHavingKey returns the owners holding (namespace, key).
func (m *MySQLStore) ListOwnersHavingKey(ctx context.Context, namespace, key string) ([]string, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT DISTINCT owner_id FROM kv_entries
			  WHERE namespace = ? AND config_key = ?
			  ORDER BY owner_id ASC`

	rows, err := querier.QueryContext(ctx, query, namespace, key)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to list owners having %s/%s", namespace, key)
	}
	return scanStrings(rows)
}

// NewMySQLStore creates a new MySQL key/value store.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}
