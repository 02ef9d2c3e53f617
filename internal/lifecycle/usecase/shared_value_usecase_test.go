package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	apperrors "github.com/allisson/sealkeeper/internal/errors"
	lifecycleDomain "github.com/allisson/sealkeeper/internal/lifecycle/domain"
)

func TestSharedValueUseCase(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t, nil)

	t.Run("Set without key pair", func(t *testing.T) {
		err := f.shared.Set(ctx, "alice", "a", []byte("x"))
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyPairNotFound)
	})

	f.initKeyPair(t, "alice", "P1")

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, f.shared.Set(ctx, "alice", "b", []byte("y")))
		require.NoError(t, f.shared.Set(ctx, "alice", "a", []byte("x")))

		value, err := f.shared.Get(ctx, "alice", "a", []byte("P1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("x"), value)

		stored, err := f.store.GetValue(ctx, "alice", lifecycleDomain.SharedNamespace, "a", "")
		require.NoError(t, err)
		assert.NotEqual(t, "x", stored)
	})

	t.Run("List keys", func(t *testing.T) {
		keys, err := f.shared.ListKeys(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, keys)
	})

	t.Run("Get missing value", func(t *testing.T) {
		_, err := f.shared.Get(ctx, "alice", "missing", []byte("P1"))
		assert.ErrorIs(t, err, lifecycleDomain.ErrSharedValueNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Get with wrong passphrase", func(t *testing.T) {
		_, err := f.shared.Get(ctx, "alice", "a", []byte("wrong"))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidPassphrase)
	})

	t.Run("Invalid key", func(t *testing.T) {
		err := f.shared.Set(ctx, "alice", "bad key", []byte("x"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		err = f.shared.Set(ctx, "", "a", []byte("x"))
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyMissingOrInvalid)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, f.shared.Delete(ctx, "alice", "a"))
		require.NoError(t, f.shared.Delete(ctx, "alice", "a"))

		keys, err := f.shared.ListKeys(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, keys)
	})
}
