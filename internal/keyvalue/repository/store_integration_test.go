package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/sealkeeper/internal/database"
	kvDomain "github.com/allisson/sealkeeper/internal/keyvalue/domain"
	"github.com/allisson/sealkeeper/internal/testutil"
)

func newStoreForDriver(driver string, db *sql.DB) kvDomain.Store {
	if driver == "mysql" {
		return NewMySQLStore(db)
	}
	return NewPostgreSQLStore(db)
}

func TestStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	for _, driver := range testutil.Drivers {
		t.Run(driver, func(t *testing.T) {
			db := testutil.SetupDB(t, driver)
			store := newStoreForDriver(driver, db)
			ctx := context.Background()

			value, err := store.GetValue(ctx, "alice", "encryption", "public_key", "missing")
			require.NoError(t, err)
			assert.Equal(t, "missing", value)

			require.NoError(t, store.SetValue(ctx, "alice", "encryption", "public_key", "v1"))
			require.NoError(t, store.SetValue(ctx, "alice", "encryption", "public_key", "v2"))
			require.NoError(t, store.SetValue(ctx, "bob", "encryption", "public_key", "b1"))
			require.NoError(t, store.SetValue(ctx, "alice", "shared", "smtp", "sealed"))

			value, err = store.GetValue(ctx, "alice", "encryption", "public_key", "")
			require.NoError(t, err)
			assert.Equal(t, "v2", value)

			keys, err := store.ListKeys(ctx, "alice", "shared")
			require.NoError(t, err)
			assert.Equal(t, []string{"smtp"}, keys)

			owners, err := store.ListOwnersHavingKey(ctx, "encryption", "public_key")
			require.NoError(t, err)
			assert.Equal(t, []string{"alice", "bob"}, owners)

			require.NoError(t, store.DeleteValue(ctx, "alice", "shared", "smtp"))
			require.NoError(t, store.DeleteValue(ctx, "alice", "shared", "smtp"))

			keys, err = store.ListKeys(ctx, "alice", "shared")
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestStore_Integration_Rollback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	for _, driver := range testutil.Drivers {
		t.Run(driver, func(t *testing.T) {
			db := testutil.SetupDB(t, driver)
			store := newStoreForDriver(driver, db)
			txManager := database.NewTxManager(db)
			ctx := context.Background()
			boom := errors.New("boom")

			err := txManager.WithTx(ctx, func(ctx context.Context) error {
				require.NoError(t, store.SetValue(ctx, "alice", "encryption", "public_key", "v1"))
				return boom
			})
			require.ErrorIs(t, err, boom)

			value, err := store.GetValue(ctx, "alice", "encryption", "public_key", "none")
			require.NoError(t, err)
			assert.Equal(t, "none", value)
		})
	}
}
