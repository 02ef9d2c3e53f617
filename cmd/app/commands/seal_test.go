package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	sealUsecase "github.com/allisson/sealkeeper/internal/seal/usecase"
)

type mockSealUseCase struct {
	mock.Mock
}

func (m *mockSealUseCase) SealForOwners(
	ctx context.Context,
	plaintext []byte,
	ownerIDs []string,
) (*sealUsecase.SealOutput, error) {
	args := m.Called(ctx, plaintext, ownerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sealUsecase.SealOutput), args.Error(1)
}

func (m *mockSealUseCase) Unseal(ctx context.Context, sealed []byte, ownerID string, passphrase []byte) ([]byte, error) {
	args := m.Called(ctx, sealed, ownerID, passphrase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockSealUseCase) Recipients(sealed []byte) ([]string, error) {
	args := m.Called(sealed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockSealUseCase) IsSealed(data []byte) bool {
	return m.Called(data).Bool(0)
}

func TestRunSeal(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		seal := &mockSealUseCase{}
		seal.On("SealForOwners", ctx, []byte("top secret"), []string{"alice", "bob"}).
			Return(&sealUsecase.SealOutput{Sealed: []byte("seal:v1:abc"), Skipped: []string{"bob"}}, nil).Once()

		var out bytes.Buffer
		err := RunSeal(ctx, seal, discardLogger(), IOTuple{
			Reader: strings.NewReader("top secret"),
			Writer: &out,
		}, " alice, bob ,")

		require.NoError(t, err)
		assert.Equal(t, "seal:v1:abc\n", out.String())
		seal.AssertExpectations(t)
	})

	t.Run("Error_NoOwners", func(t *testing.T) {
		seal := &mockSealUseCase{}

		err := RunSeal(ctx, seal, discardLogger(), IOTuple{Reader: strings.NewReader("x"), Writer: &bytes.Buffer{}}, " , ")

		require.EqualError(t, err, "at least one owner is required")
	})

	t.Run("Error_NoRecipientCanEncrypt", func(t *testing.T) {
		seal := &mockSealUseCase{}
		seal.On("SealForOwners", ctx, mock.Anything, []string{"carol"}).
			Return(nil, cryptoDomain.ErrCannotEncrypt).Once()

		err := RunSeal(ctx, seal, discardLogger(), IOTuple{Reader: strings.NewReader("x"), Writer: &bytes.Buffer{}}, "carol")

		assert.ErrorIs(t, err, cryptoDomain.ErrCannotEncrypt)
	})
}

func TestRunUnseal(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_TrimsInput", func(t *testing.T) {
		seal := &mockSealUseCase{}
		seal.On("IsSealed", []byte("seal:v1:abc")).Return(true).Once()
		seal.On("Unseal", ctx, []byte("seal:v1:abc"), "alice", []byte("secret")).
			Return([]byte("top secret"), nil).Once()

		var out bytes.Buffer
		err := RunUnseal(ctx, seal, IOTuple{Reader: strings.NewReader("seal:v1:abc\n"), Writer: &out}, "alice", "secret")

		require.NoError(t, err)
		assert.Equal(t, "top secret", out.String())
	})

	t.Run("Error_NotSealed", func(t *testing.T) {
		seal := &mockSealUseCase{}
		seal.On("IsSealed", []byte("plain")).Return(false).Once()

		err := RunUnseal(ctx, seal, IOTuple{Reader: strings.NewReader("plain"), Writer: &bytes.Buffer{}}, "alice", "secret")

		require.EqualError(t, err, "input is not a sealed value")
		seal.AssertNotCalled(t, "Unseal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_NotARecipient", func(t *testing.T) {
		seal := &mockSealUseCase{}
		seal.On("IsSealed", mock.Anything).Return(true).Once()
		seal.On("Unseal", ctx, mock.Anything, "mallory", mock.Anything).
			Return(nil, cryptoDomain.ErrCannotDecrypt).Once()

		err := RunUnseal(ctx, seal, IOTuple{Reader: strings.NewReader("seal:v1:abc"), Writer: &bytes.Buffer{}}, "mallory", "x")

		assert.ErrorIs(t, err, cryptoDomain.ErrCannotDecrypt)
	})
}
