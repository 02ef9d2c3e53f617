// Package repository implements the key/value Store for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/sealkeeper/internal/database"
	apperrors "github.com/allisson/sealkeeper/internal/errors"
)

// PostgreSQLStore implements Store for PostgreSQL databases.
type PostgreSQLStore struct {
	db *sql.DB
}

// GetValue returns the value for (ownerID, namespace, key) or defaultValue.
func (p *PostgreSQLStore) GetValue(
	ctx context.Context,
	ownerID, namespace, key, defaultValue string,
) (string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT config_value FROM kv_entries
			  WHERE owner_id = $1 AND namespace = $2 AND config_key = $3`

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
func (p *PostgreSQLStore) SetValue(ctx context.Context, ownerID, namespace, key, value string) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO kv_entries (owner_id, namespace, config_key, config_value, updated_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (owner_id, namespace, config_key)
			  DO UPDATE SET config_value = EXCLUDED.config_value, updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(ctx, query, ownerID, namespace, key, value, time.Now().UTC())
	if err != nil {
		return apperrors.Wrapf(err, "failed to set value %s/%s for owner %s", namespace, key, ownerID)
	}
	return nil
}

// DeleteValue removes the entry if present.
func (p *PostgreSQLStore) DeleteValue(ctx context.Context, ownerID, namespace, key string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM kv_entries WHERE owner_id = $1 AND namespace = $2 AND config_key = $3`

	if _, err := querier.ExecContext(ctx, query, ownerID, namespace, key); err != nil {
		return apperrors.Wrapf(err, "failed to delete value %s/%s for owner %s", namespace, key, ownerID)
	}
	return nil
}

// ListKeys returns the owner's keys in namespace.
func (p *PostgreSQLStore) ListKeys(ctx context.Context, ownerID, namespace string) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT config_key FROM kv_entries
			  WHERE owner_id = $1 AND namespace = $2
			  ORDER BY config_key ASC`

	rows, err := querier.QueryContext(ctx, query, ownerID, namespace)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to list keys in %s for owner %s", namespace, ownerID)
	}
	return scanStrings(rows)
}

// ListOwnersHavingKey returns the owners holding (namespace, key).
func (p *PostgreSQLStore) ListOwnersHavingKey(ctx context.Context, namespace, key string) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT DISTINCT owner_id FROM kv_entries
			  WHERE namespace = $1 AND config_key = $2
			  ORDER BY owner_id ASC`

	rows, err := querier.QueryContext(ctx, query, namespace, key)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to list owners having %s/%s", namespace, key)
	}
	return scanStrings(rows)
}

// NewPostgreSQLStore creates a new PostgreSQL key/value store.
func NewPostgreSQLStore(db *sql.DB) *PostgreSQLStore {
	return &PostgreSQLStore{db: db}
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer func() {
		_ = rows.Close()
	}()

	values := make([]string, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan row")
		}
		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate rows")
	}
	return values, nil
}
