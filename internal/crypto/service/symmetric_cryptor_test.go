package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
)

func newTestSymmetricCryptor(t *testing.T, alg cryptoDomain.Algorithm) *SymmetricCryptorService {
	t.Helper()
	cryptor, err := NewSymmetricCryptor(NewAEADManager(), alg)
	require.NoError(t, err)
	return cryptor
}

func TestNewSymmetricCryptor(t *testing.T) {
	t.Run("unsupported algorithm", func(t *testing.T) {
		cryptor, err := NewSymmetricCryptor(NewAEADManager(), cryptoDomain.Algorithm("rot13"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
		assert.Nil(t, cryptor)
	})

	t.Run("starts without key", func(t *testing.T) {
		cryptor := newTestSymmetricCryptor(t, cryptoDomain.AESGCM)
		assert.Equal(t, cryptoDomain.AESGCM, cryptor.Algorithm())
		assert.False(t, cryptor.CanEncrypt())
		assert.False(t, cryptor.CanDecrypt())
	})
}

func TestSymmetricCryptorService_SetKey(t *testing.T) {
	cryptor := newTestSymmetricCryptor(t, cryptoDomain.AESGCM)

	t.Run("invalid size", func(t *testing.T) {
		_, err := cryptor.SetKey(make([]byte, 10))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
		assert.False(t, cryptor.CanEncrypt())
	})

	t.Run("returns previous key", func(t *testing.T) {
		first := newTestKey(t)
		second := newTestKey(t)

		previous, err := cryptor.SetKey(first)
		require.NoError(t, err)
		assert.Nil(t, previous)

		previous, err = cryptor.SetKey(second)
		require.NoError(t, err)
		assert.Equal(t, first, previous)

		previous, err = cryptor.SetKey(nil)
		require.NoError(t, err)
		assert.Equal(t, second, previous)
		assert.False(t, cryptor.CanEncrypt())
	})

	t.Run("copies the key", func(t *testing.T) {
		key := newTestKey(t)
		_, err := cryptor.SetKey(key)
		require.NoError(t, err)

		ciphertext, err := cryptor.Encrypt([]byte("data"))
		require.NoError(t, err)

		key[0] ^= 0xFF
		plaintext, err := cryptor.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, []byte("data"), plaintext)
	})
}

func TestSymmetricCryptorService_EncryptDecrypt(t *testing.T) {
	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20, cryptoDomain.LocalSecrets} {
		t.Run(string(alg), func(t *testing.T) {
			cryptor := newTestSymmetricCryptor(t, alg)
			_, err := cryptor.SetKey(newTestKey(t))
			require.NoError(t, err)

			ciphertext, err := cryptor.Encrypt([]byte("shared value"))
			require.NoError(t, err)
			assert.True(t, cryptor.IsEncrypted(ciphertext))

			plaintext, err := cryptor.Decrypt(ciphertext)
			require.NoError(t, err)
			assert.Equal(t, []byte("shared value"), plaintext)
		})
	}
}

func TestSymmetricCryptorService_PassThrough(t *testing.T) {
	t.Run("encrypt without key", func(t *testing.T) {
		cryptor := newTestSymmetricCryptor(t, cryptoDomain.AESGCM)

		out, err := cryptor.Encrypt([]byte("plain"))
		require.NoError(t, err)
		assert.Equal(t, []byte("plain"), out)
		assert.False(t, cryptor.IsEncrypted(out))
	})

	t.Run("decrypt unmarked input without key", func(t *testing.T) {
		cryptor := newTestSymmetricCryptor(t, cryptoDomain.AESGCM)

		out, err := cryptor.Decrypt([]byte("plain"))
		require.NoError(t, err)
		assert.Equal(t, []byte("plain"), out)
	})

	t.Run("decrypt unmarked input with key", func(t *testing.T) {
		cryptor := newTestSymmetricCryptor(t, cryptoDomain.AESGCM)
		_, err := cryptor.SetKey(newTestKey(t))
		require.NoError(t, err)

		out, err := cryptor.Decrypt([]byte("legacy value"))
		require.NoError(t, err)
		assert.Equal(t, []byte("legacy value"), out)
	})

	t.Run("decrypt marked input without key", func(t *testing.T) {
		cryptor := newTestSymmetricCryptor(t, cryptoDomain.AESGCM)
		_, err := cryptor.SetKey(newTestKey(t))
		require.NoError(t, err)

		ciphertext, err := cryptor.Encrypt([]byte("secret"))
		require.NoError(t, err)

		_, err = cryptor.SetKey(nil)
		require.NoError(t, err)

		_, err = cryptor.Decrypt(ciphertext)
		assert.ErrorIs(t, err, cryptoDomain.ErrCannotDecrypt)
	})
}

func TestSymmetricCryptorService_DecryptFailures(t *testing.T) {
	cryptor := newTestSymmetricCryptor(t, cryptoDomain.AESGCM)
	_, err := cryptor.SetKey(newTestKey(t))
	require.NoError(t, err)

	ciphertext, err := cryptor.Encrypt([]byte("secret"))
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		other := newTestSymmetricCryptor(t, cryptoDomain.AESGCM)
		_, err := other.SetKey(newTestKey(t))
		require.NoError(t, err)

		_, err = other.Decrypt(ciphertext)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		tampered := append([]byte(nil), ciphertext...)
		tampered[len(tampered)-1] ^= 0xFF

		_, err := cryptor.Decrypt(tampered)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("unknown algorithm code", func(t *testing.T) {
		tampered := append([]byte(nil), ciphertext...)
		tampered[5] = 0x7F

		_, err := cryptor.Decrypt(tampered)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}

func TestSymmetricCryptorService_ReadsOtherAlgorithm(t *testing.T) {
	key := newTestKey(t)

	writer := newTestSymmetricCryptor(t, cryptoDomain.ChaCha20)
	_, err := writer.SetKey(key)
	require.NoError(t, err)

	reader := newTestSymmetricCryptor(t, cryptoDomain.AESGCM)
	_, err = reader.SetKey(key)
	require.NoError(t, err)

	ciphertext, err := writer.Encrypt([]byte("migrated"))
	require.NoError(t, err)

	plaintext, err := reader.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("migrated"), plaintext)
}
