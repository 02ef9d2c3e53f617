package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/sealkeeper/internal/database"
	kvDomain "github.com/allisson/sealkeeper/internal/keyvalue/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// storeFactories runs every test against both dialects.
var storeFactories = map[string]func(db *sql.DB) kvDomain.Store{
	"postgresql": func(db *sql.DB) kvDomain.Store { return NewPostgreSQLStore(db) },
	"mysql":      func(db *sql.DB) kvDomain.Store { return NewMySQLStore(db) },
}

func TestStore_GetValue(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name+"/found", func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectQuery("SELECT config_value FROM kv_entries").
				WithArgs("alice", "encryption", "public_key").
				WillReturnRows(sqlmock.NewRows([]string{"config_value"}).AddRow("sodium:AAAA"))

			value, err := newStore(db).GetValue(context.Background(), "alice", "encryption", "public_key", "")
			require.NoError(t, err)
			assert.Equal(t, "sodium:AAAA", value)
			assert.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run(name+"/missing returns default", func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectQuery("SELECT config_value FROM kv_entries").
				WithArgs("alice", "encryption", "public_key").
				WillReturnError(sql.ErrNoRows)

			value, err := newStore(db).GetValue(context.Background(), "alice", "encryption", "public_key", "fallback")
			require.NoError(t, err)
			assert.Equal(t, "fallback", value)
		})

		t.Run(name+"/database error", func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectQuery("SELECT config_value FROM kv_entries").
				WillReturnError(errors.New("connection refused"))

			_, err := newStore(db).GetValue(context.Background(), "alice", "encryption", "public_key", "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to get value encryption/public_key for owner alice")
		})
	}
}

func TestStore_SetValue(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectExec("INSERT INTO kv_entries").
				WithArgs("alice", "shared", "smtp_password", "ciphertext", sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, 1))

			err := newStore(db).SetValue(context.Background(), "alice", "shared", "smtp_password", "ciphertext")
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run(name+"/error", func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectExec("INSERT INTO kv_entries").WillReturnError(errors.New("disk full"))

			err := newStore(db).SetValue(context.Background(), "alice", "shared", "k", "v")
			assert.ErrorContains(t, err, "disk full")
		})
	}
}

func TestStore_DeleteValue(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectExec("DELETE FROM kv_entries").
				WithArgs("alice", "shared", "smtp_password").
				WillReturnResult(sqlmock.NewResult(0, 0))

			err := newStore(db).DeleteValue(context.Background(), "alice", "shared", "smtp_password")
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_ListKeys(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectQuery("SELECT config_key FROM kv_entries").
				WithArgs("alice", "shared").
				WillReturnRows(sqlmock.NewRows([]string{"config_key"}).AddRow("a").AddRow("b"))

			keys, err := newStore(db).ListKeys(context.Background(), "alice", "shared")
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, keys)
		})

		t.Run(name+"/empty", func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectQuery("SELECT config_key FROM kv_entries").
				WillReturnRows(sqlmock.NewRows([]string{"config_key"}))

			keys, err := newStore(db).ListKeys(context.Background(), "alice", "shared")
			require.NoError(t, err)
			assert.Empty(t, keys)
			assert.NotNil(t, keys)
		})

		t.Run(name+"/row error", func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectQuery("SELECT config_key FROM kv_entries").
				WillReturnRows(sqlmock.NewRows([]string{"config_key"}).AddRow("a").RowError(0, errors.New("bad row")))

			_, err := newStore(db).ListKeys(context.Background(), "alice", "shared")
			assert.ErrorContains(t, err, "failed to iterate rows")
		})
	}
}

func TestStore_ListOwnersHavingKey(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectQuery("SELECT DISTINCT owner_id FROM kv_entries").
				WithArgs("encryption", "public_key").
				WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow("admin1").AddRow("admin2"))

			owners, err := newStore(db).ListOwnersHavingKey(context.Background(), "encryption", "public_key")
			require.NoError(t, err)
			assert.Equal(t, []string{"admin1", "admin2"}, owners)
		})
	}
}

func TestStore_UsesTransactionFromContext(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO kv_entries").WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectRollback()

			store := newStore(db)
			err := database.NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
				if err := store.SetValue(ctx, "alice", "shared", "k", "v"); err != nil {
					return err
				}
				return errors.New("abort")
			})

			assert.EqualError(t, err, "abort")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
