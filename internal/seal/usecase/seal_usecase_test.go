package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	cryptoService "github.com/allisson/sealkeeper/internal/crypto/service"
	apperrors "github.com/allisson/sealkeeper/internal/errors"
	"github.com/allisson/sealkeeper/internal/events"
	keypairUsecase "github.com/allisson/sealkeeper/internal/keypair/usecase"
	lifecycleDomain "github.com/allisson/sealkeeper/internal/lifecycle/domain"
	lifecycleService "github.com/allisson/sealkeeper/internal/lifecycle/service"
	lifecycleUsecase "github.com/allisson/sealkeeper/internal/lifecycle/usecase"
	sealDomain "github.com/allisson/sealkeeper/internal/seal/domain"
	sealService "github.com/allisson/sealkeeper/internal/seal/service"
	"github.com/allisson/sealkeeper/internal/testutil"
)

func newTestSealUseCase(t *testing.T, owners ...string) SealUseCase {
	t.Helper()
	ctx := context.Background()

	factory, err := cryptoService.NewCryptorFactory(
		cryptoDomain.Sodium,
		2048,
		cryptoDomain.AESGCM,
		cryptoService.KDFParams{Time: 1, MemoryKiB: 64, Threads: 1},
	)
	require.NoError(t, err)

	ownerCache, err := lifecycleService.NewOwnerCache(0)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := testutil.NewMemoryStore()
	keyPairs := keypairUsecase.NewKeyPairStore(store, factory, factory.Locker(), logger)
	lifecycle := lifecycleUsecase.NewKeyLifecycleUseCase(
		testutil.NewMemoryTxManager(store),
		store,
		keyPairs,
		factory,
		events.NewBus(logger),
		nil,
		ownerCache,
		lifecycleService.NewOwnerLocks(),
		logger,
	)

	for _, owner := range owners {
		_, err := lifecycle.InitOrRotate(ctx, lifecycleDomain.InitOrRotateInput{
			OwnerID:    owner,
			Passphrase: []byte(owner + "-passphrase"),
		})
		require.NoError(t, err)
	}

	service, err := sealService.NewSealService(cryptoService.NewAEADManager(), cryptoDomain.AESGCM)
	require.NoError(t, err)

	return NewSealUseCase(service, keyPairs, factory, lifecycle, logger)
}

func TestSealUseCase_SealForOwners(t *testing.T) {
	ctx := context.Background()
	useCase := newTestSealUseCase(t, "admin1", "admin2", "eve")

	output, err := useCase.SealForOwners(ctx, []byte("secret"), []string{"admin1", "admin2", "newcomer"})
	require.NoError(t, err)
	assert.Equal(t, []string{"newcomer"}, output.Skipped)
	assert.True(t, useCase.IsSealed(output.Sealed))
	assert.False(t, useCase.IsSealed([]byte("secret")))

	recipients, err := useCase.Recipients(output.Sealed)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin1", "admin2"}, recipients)

	for _, owner := range []string{"admin1", "admin2"} {
		plaintext, err := useCase.Unseal(ctx, output.Sealed, owner, []byte(owner+"-passphrase"))
		require.NoError(t, err, owner)
		assert.Equal(t, "secret", string(plaintext), owner)
	}

	_, err = useCase.Unseal(ctx, output.Sealed, "eve", []byte("eve-passphrase"))
	assert.ErrorIs(t, err, sealDomain.ErrNoValidCandidate)

	_, err = useCase.Unseal(ctx, output.Sealed, "admin1", []byte("wrong"))
	assert.ErrorIs(t, err, cryptoDomain.ErrInvalidPassphrase)
}

func TestSealUseCase_SealForOwners_Errors(t *testing.T) {
	ctx := context.Background()
	useCase := newTestSealUseCase(t, "admin1")

	_, err := useCase.SealForOwners(ctx, []byte("secret"), nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = useCase.SealForOwners(ctx, []byte("secret"), []string{"admin1", "not valid"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = useCase.SealForOwners(ctx, []byte("secret"), []string{"newcomer"})
	assert.ErrorIs(t, err, cryptoDomain.ErrCannotEncrypt)
}

func TestSealUseCase_Unseal_Malformed(t *testing.T) {
	useCase := newTestSealUseCase(t)

	_, err := useCase.Unseal(context.Background(), []byte("plain"), "admin1", []byte("x"))
	assert.ErrorIs(t, err, sealDomain.ErrMalformedEnvelope)

	_, err = useCase.Recipients([]byte("plain"))
	assert.ErrorIs(t, err, sealDomain.ErrMalformedEnvelope)
}
