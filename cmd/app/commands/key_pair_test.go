package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	lifecycleDomain "github.com/allisson/sealkeeper/internal/lifecycle/domain"
	lifecycleMocks "github.com/allisson/sealkeeper/internal/lifecycle/usecase/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testKeyPair() *cryptoDomain.KeyPair {
	return &cryptoDomain.KeyPair{
		OwnerID:    "alice",
		Backend:    cryptoDomain.Sodium,
		PublicKey:  []byte("public-key-bytes"),
		PrivateKey: []byte("private-key-bytes"),
	}
}

func TestRunInitKeyPair(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_TextOutput", func(t *testing.T) {
		lifecycle := &lifecycleMocks.MockKeyLifecycleUseCase{}
		pair := testKeyPair()
		fingerprint := pair.Fingerprint()
		lifecycle.On("InitOrRotate", ctx, lifecycleDomain.InitOrRotateInput{
			OwnerID:    "alice",
			Passphrase: []byte("secret"),
		}).Return(pair, nil).Once()

		var out bytes.Buffer
		err := RunInitKeyPair(ctx, lifecycle, discardLogger(), &out, "alice", "secret", "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Key pair ready")
		assert.Contains(t, out.String(), "Owner: alice")
		assert.Contains(t, out.String(), "Fingerprint: "+fingerprint)
		assert.NotContains(t, out.String(), "private-key-bytes")
		assert.Equal(t, make([]byte, len("private-key-bytes")), pair.PrivateKey)
		lifecycle.AssertExpectations(t)
	})

	t.Run("Success_JSONOutput", func(t *testing.T) {
		lifecycle := &lifecycleMocks.MockKeyLifecycleUseCase{}
		lifecycle.On("InitOrRotate", ctx, mock.Anything).Return(testKeyPair(), nil).Once()

		var out bytes.Buffer
		err := RunInitKeyPair(ctx, lifecycle, discardLogger(), &out, "alice", "secret", "json")
		require.NoError(t, err)

		var decoded keyPairOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		assert.Equal(t, "alice", decoded.OwnerID)
		assert.Equal(t, string(cryptoDomain.Sodium), decoded.Backend)
		assert.NotEmpty(t, decoded.Fingerprint)
	})

	t.Run("Error_InvalidFormat", func(t *testing.T) {
		lifecycle := &lifecycleMocks.MockKeyLifecycleUseCase{}

		err := RunInitKeyPair(ctx, lifecycle, discardLogger(), io.Discard, "alice", "secret", "yaml")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
		lifecycle.AssertNotCalled(t, "InitOrRotate", mock.Anything, mock.Anything)
	})

	t.Run("Error_UseCase", func(t *testing.T) {
		lifecycle := &lifecycleMocks.MockKeyLifecycleUseCase{}
		lifecycle.On("InitOrRotate", ctx, mock.Anything).Return(nil, cryptoDomain.ErrInvalidPassphrase).Once()

		err := RunInitKeyPair(ctx, lifecycle, discardLogger(), io.Discard, "alice", "wrong", "text")

		require.Error(t, err)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidPassphrase)
	})
}

func TestRunRotateKeyPair(t *testing.T) {
	ctx := context.Background()
	lifecycle := &lifecycleMocks.MockKeyLifecycleUseCase{}
	lifecycle.On("InitOrRotate", ctx, lifecycleDomain.InitOrRotateInput{
		OwnerID:       "alice",
		Passphrase:    []byte("new"),
		OldPassphrase: []byte("old"),
		ForceNew:      true,
	}).Return(testKeyPair(), nil).Once()

	var out bytes.Buffer
	err := RunRotateKeyPair(ctx, lifecycle, discardLogger(), &out, "alice", "new", "old", "text")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Key pair rotated")
	lifecycle.AssertExpectations(t)
}

func TestRunChangePassphrase(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		lifecycle := &lifecycleMocks.MockKeyLifecycleUseCase{}
		lifecycle.On("ChangePassphrase", ctx, "alice", []byte("old"), []byte("new")).Return(nil).Once()

		require.NoError(t, RunChangePassphrase(ctx, lifecycle, discardLogger(), "alice", "old", "new"))
		lifecycle.AssertExpectations(t)
	})

	t.Run("Error_EmptyNewPassphrase", func(t *testing.T) {
		lifecycle := &lifecycleMocks.MockKeyLifecycleUseCase{}

		err := RunChangePassphrase(ctx, lifecycle, discardLogger(), "alice", "old", "")

		require.EqualError(t, err, "new passphrase is required")
	})
}

func TestRunRestoreKeyPair(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultTag", func(t *testing.T) {
		lifecycle := &lifecycleMocks.MockKeyLifecycleUseCase{}
		lifecycle.On("RestoreKeyPair", ctx, "alice", lifecycleDomain.BackupTag).Return(nil).Once()

		require.NoError(t, RunRestoreKeyPair(ctx, lifecycle, discardLogger(), "alice", ""))
		lifecycle.AssertExpectations(t)
	})

	t.Run("Error_NoBackup", func(t *testing.T) {
		lifecycle := &lifecycleMocks.MockKeyLifecycleUseCase{}
		lifecycle.On("RestoreKeyPair", ctx, "alice", "manual").
			Return(cryptoDomain.ErrKeyPairNotFound).Once()

		err := RunRestoreKeyPair(ctx, lifecycle, discardLogger(), "alice", "manual")

		assert.ErrorIs(t, err, cryptoDomain.ErrKeyPairNotFound)
	})
}

func TestRunWipeKeyPair(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_NotConfirmed", func(t *testing.T) {
		lifecycle := &lifecycleMocks.MockKeyLifecycleUseCase{}

		err := RunWipeKeyPair(ctx, lifecycle, discardLogger(), "alice", false)

		require.Error(t, err)
		lifecycle.AssertNotCalled(t, "DeleteEncryptionKeyPair", mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		lifecycle := &lifecycleMocks.MockKeyLifecycleUseCase{}
		lifecycle.On("DeleteEncryptionKeyPair", ctx, "alice").Return(nil).Once()

		require.NoError(t, RunWipeKeyPair(ctx, lifecycle, discardLogger(), "alice", true))
		lifecycle.AssertExpectations(t)
	})

	t.Run("Error_UseCase", func(t *testing.T) {
		lifecycle := &lifecycleMocks.MockKeyLifecycleUseCase{}
		lifecycle.On("DeleteEncryptionKeyPair", ctx, "alice").Return(errors.New("db down")).Once()

		err := RunWipeKeyPair(ctx, lifecycle, discardLogger(), "alice", true)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to wipe key pair")
	})
}
