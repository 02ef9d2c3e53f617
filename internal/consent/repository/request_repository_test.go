package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/sealkeeper/internal/consent/domain"
	"github.com/allisson/sealkeeper/internal/testutil"
)

func TestKeyValueRequestRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	repo := NewKeyValueRequestRepository(store)

	_, err := repo.Get(ctx, "bob")
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	now := time.Now().UTC().Truncate(time.Second)
	request := &domain.RecryptionRequest{
		OwnerID:     "bob",
		Status:      domain.RequestPending,
		RequestedAt: now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.Save(ctx, request))

	loaded, err := repo.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, request.OwnerID, loaded.OwnerID)
	assert.Equal(t, domain.RequestPending, loaded.Status)
	assert.True(t, now.Equal(loaded.RequestedAt))

	require.NoError(t, repo.Delete(ctx, "bob"))
	require.NoError(t, repo.Delete(ctx, "bob"))

	_, err = repo.Get(ctx, "bob")
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func TestKeyValueRequestRepository_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	require.NoError(t, store.SetValue(ctx, "bob", RequestNamespace, requestKey, "{"))

	_, err := NewKeyValueRequestRepository(store).Get(ctx, "bob")
	assert.ErrorContains(t, err, "failed to decode recryption request of bob")
}
