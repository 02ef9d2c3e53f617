package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
)

// algorithmOf maps a cipher instance back to its algorithm identifier.
func algorithmOf(cipher AEAD) cryptoDomain.Algorithm {
	switch cipher.(type) {
	case *AESGCMCipher:
		return cryptoDomain.AESGCM
	case *ChaCha20Poly1305Cipher:
		return cryptoDomain.ChaCha20
	case *KeeperCipher:
		return cryptoDomain.LocalSecrets
	default:
		return ""
	}
}

func TestNewAEADManager(t *testing.T) {
	manager := NewAEADManager()
	assert.NotNil(t, manager)
}

func TestAEADManagerService_CreateCipher(t *testing.T) {
	manager := NewAEADManager()
	validKey := newTestKey(t)

	t.Run("create AES-GCM cipher", func(t *testing.T) {
		cipher, err := manager.CreateCipher(validKey, cryptoDomain.AESGCM)
		require.NoError(t, err)

		_, ok := cipher.(*AESGCMCipher)
		assert.True(t, ok, "cipher should be of type *AESGCMCipher")
	})

	t.Run("create ChaCha20-Poly1305 cipher", func(t *testing.T) {
		cipher, err := manager.CreateCipher(validKey, cryptoDomain.ChaCha20)
		require.NoError(t, err)

		_, ok := cipher.(*ChaCha20Poly1305Cipher)
		assert.True(t, ok, "cipher should be of type *ChaCha20Poly1305Cipher")
	})

	t.Run("create localsecrets keeper cipher", func(t *testing.T) {
		cipher, err := manager.CreateCipher(validKey, cryptoDomain.LocalSecrets)
		require.NoError(t, err)

		_, ok := cipher.(*KeeperCipher)
		assert.True(t, ok, "cipher should be of type *KeeperCipher")
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		cipher, err := manager.CreateCipher(validKey, cryptoDomain.Algorithm("des"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
		assert.Nil(t, cipher)
	})

	t.Run("invalid key size", func(t *testing.T) {
		cipher, err := manager.CreateCipher(make([]byte, 16), cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
		assert.Nil(t, cipher)
	})

	t.Run("ciphers with same key interoperate", func(t *testing.T) {
		first, err := manager.CreateCipher(validKey, cryptoDomain.ChaCha20)
		require.NoError(t, err)
		second, err := manager.CreateCipher(validKey, cryptoDomain.ChaCha20)
		require.NoError(t, err)

		frame, err := first.Seal([]byte("payload"), nil)
		require.NoError(t, err)

		plaintext, err := second.Open(frame, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), plaintext)
	})
}
