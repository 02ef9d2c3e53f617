package service

import (
	"crypto/rsa"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
)

// RSA key generation is slow, so each backend generates its pair once per test binary.
var (
	testPairsOnce sync.Once
	testPairs     map[cryptoDomain.Backend][2][]byte
)

func newTestAsymmetric(backend cryptoDomain.Backend) AsymmetricCryptor {
	locker := newTestKeyLocker()
	if backend == cryptoDomain.RSA {
		return NewRSACryptor(2048, locker)
	}
	return NewSodiumCryptor(locker)
}

func testKeyPair(t *testing.T, backend cryptoDomain.Backend) (publicKey, privateKey []byte) {
	t.Helper()
	testPairsOnce.Do(func() {
		testPairs = make(map[cryptoDomain.Backend][2][]byte)
		for _, b := range []cryptoDomain.Backend{cryptoDomain.RSA, cryptoDomain.Sodium} {
			pub, priv, err := newTestAsymmetric(b).GenerateKeyPair()
			if err != nil {
				panic(err)
			}
			testPairs[b] = [2][]byte{pub, priv}
		}
	})
	pair := testPairs[backend]
	return pair[0], pair[1]
}

var testBackends = []cryptoDomain.Backend{cryptoDomain.RSA, cryptoDomain.Sodium}

func TestAsymmetricCryptor_Capabilities(t *testing.T) {
	for _, backend := range testBackends {
		t.Run(string(backend), func(t *testing.T) {
			publicKey, privateKey := testKeyPair(t, backend)

			empty := newTestAsymmetric(backend)
			assert.Equal(t, backend, empty.Backend())
			assert.False(t, empty.CanEncrypt())
			assert.False(t, empty.CanDecrypt())
			assert.False(t, empty.CanSign())
			assert.False(t, empty.CanVerify())
			assert.Nil(t, empty.PublicKey())

			_, err := empty.Encrypt([]byte("x"))
			assert.ErrorIs(t, err, cryptoDomain.ErrCannotEncrypt)
			_, err = empty.Decrypt([]byte("x"))
			assert.ErrorIs(t, err, cryptoDomain.ErrCannotDecrypt)
			_, err = empty.Sign([]byte("x"))
			assert.ErrorIs(t, err, cryptoDomain.ErrCannotSign)
			assert.ErrorIs(t, empty.Verify([]byte("x"), []byte("y")), cryptoDomain.ErrCannotVerify)

			publicOnly := newTestAsymmetric(backend)
			require.NoError(t, publicOnly.SetPublicKey(publicKey))
			assert.True(t, publicOnly.CanEncrypt())
			assert.True(t, publicOnly.CanVerify())
			assert.False(t, publicOnly.CanDecrypt())
			assert.False(t, publicOnly.CanSign())
			assert.Equal(t, publicKey, publicOnly.PublicKey())

			full := newTestAsymmetric(backend)
			require.NoError(t, full.SetPrivateKey(privateKey, nil))
			assert.True(t, full.CanEncrypt())
			assert.True(t, full.CanDecrypt())
			assert.True(t, full.CanSign())
			assert.True(t, full.CanVerify())
			assert.Equal(t, publicKey, full.PublicKey())
		})
	}
}

func TestAsymmetricCryptor_EncryptDecrypt(t *testing.T) {
	for _, backend := range testBackends {
		t.Run(string(backend), func(t *testing.T) {
			publicKey, privateKey := testKeyPair(t, backend)

			sender := newTestAsymmetric(backend)
			require.NoError(t, sender.SetPublicKey(publicKey))

			receiver := newTestAsymmetric(backend)
			require.NoError(t, receiver.SetPrivateKey(privateKey, nil))

			plaintext := make([]byte, 4096)
			for i := range plaintext {
				plaintext[i] = byte(i)
			}

			ciphertext, err := sender.Encrypt(plaintext)
			require.NoError(t, err)
			assert.NotEqual(t, plaintext, ciphertext)

			decrypted, err := receiver.Decrypt(ciphertext)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)

			tampered := append([]byte(nil), ciphertext...)
			tampered[len(tampered)-1] ^= 0xFF
			_, err = receiver.Decrypt(tampered)
			assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)

			_, err = receiver.Decrypt([]byte{0x01})
			assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		})
	}
}

func TestAsymmetricCryptor_DecryptWithOtherKey(t *testing.T) {
	for _, backend := range testBackends {
		t.Run(string(backend), func(t *testing.T) {
			publicKey, _ := testKeyPair(t, backend)

			sender := newTestAsymmetric(backend)
			require.NoError(t, sender.SetPublicKey(publicKey))
			ciphertext, err := sender.Encrypt([]byte("for someone else"))
			require.NoError(t, err)

			_, otherPrivate, err := newTestAsymmetric(backend).GenerateKeyPair()
			require.NoError(t, err)
			other := newTestAsymmetric(backend)
			require.NoError(t, other.SetPrivateKey(otherPrivate, nil))

			_, err = other.Decrypt(ciphertext)
			assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		})
	}
}

func TestAsymmetricCryptor_SignVerify(t *testing.T) {
	for _, backend := range testBackends {
		t.Run(string(backend), func(t *testing.T) {
			publicKey, privateKey := testKeyPair(t, backend)

			signer := newTestAsymmetric(backend)
			require.NoError(t, signer.SetPrivateKey(privateKey, nil))

			verifier := newTestAsymmetric(backend)
			require.NoError(t, verifier.SetPublicKey(publicKey))

			signature, err := signer.Sign([]byte("document"))
			require.NoError(t, err)

			assert.NoError(t, verifier.Verify([]byte("document"), signature))

			err = verifier.Verify([]byte("tampered document"), signature)
			assert.ErrorIs(t, err, cryptoDomain.ErrSignatureInvalid)
			assert.ErrorIs(t, err, cryptoDomain.ErrVerificationFailed)

			err = verifier.Verify([]byte("document"), signature[:10])
			assert.ErrorIs(t, err, cryptoDomain.ErrSignatureMalformed)
			assert.ErrorIs(t, err, cryptoDomain.ErrVerificationFailed)
		})
	}
}

func TestRSACryptor_SignBackendFailure(t *testing.T) {
	// 3233 = 61 * 53: a valid but far too small key, rejected by the signer.
	privateKey := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: big.NewInt(3233), E: 17},
		D:         big.NewInt(2753),
		Primes:    []*big.Int{big.NewInt(61), big.NewInt(53)},
	}

	cryptor := NewRSACryptor(2048, newTestKeyLocker())
	cryptor.privateKey = privateKey
	cryptor.publicKey = &privateKey.PublicKey

	_, err := cryptor.Sign([]byte("document"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cryptoDomain.ErrSigningFailed)
	assert.NotErrorIs(t, err, cryptoDomain.ErrCannotSign)
}

func TestAsymmetricCryptor_PassphraseProtectedKey(t *testing.T) {
	for _, backend := range testBackends {
		t.Run(string(backend), func(t *testing.T) {
			publicKey, privateKey := testKeyPair(t, backend)
			locker := newTestKeyLocker()

			wrapped, err := locker.Lock(backend, privateKey, []byte("s3cret"))
			require.NoError(t, err)

			cryptor := newTestAsymmetric(backend)
			require.NoError(t, cryptor.SetPrivateKey([]byte(wrapped.String()), []byte("s3cret")))
			assert.Equal(t, publicKey, cryptor.PublicKey())

			err = newTestAsymmetric(backend).SetPrivateKey([]byte(wrapped.String()), []byte("wrong"))
			assert.ErrorIs(t, err, cryptoDomain.ErrInvalidPassphrase)
		})
	}

	t.Run("backend mismatch", func(t *testing.T) {
		_, privateKey := testKeyPair(t, cryptoDomain.Sodium)
		wrapped, err := newTestKeyLocker().Lock(cryptoDomain.Sodium, privateKey, []byte("s3cret"))
		require.NoError(t, err)

		err = newTestAsymmetric(cryptoDomain.RSA).SetPrivateKey([]byte(wrapped.String()), []byte("s3cret"))
		assert.ErrorIs(t, err, cryptoDomain.ErrBackendMismatch)
	})
}

func TestAsymmetricCryptor_InvalidKeys(t *testing.T) {
	for _, backend := range testBackends {
		t.Run(string(backend), func(t *testing.T) {
			cryptor := newTestAsymmetric(backend)

			assert.ErrorIs(t, cryptor.SetPrivateKey(nil, nil), cryptoDomain.ErrKeyMissingOrInvalid)
			assert.ErrorIs(t, cryptor.SetPrivateKey([]byte("garbage"), nil), cryptoDomain.ErrInvalidKeyFormat)
			assert.ErrorIs(t, cryptor.SetPublicKey([]byte("garbage")), cryptoDomain.ErrInvalidKeyFormat)
			assert.False(t, cryptor.CanEncrypt())
		})
	}
}

func TestSodiumCryptor_KeyLayout(t *testing.T) {
	publicKey, privateKey := testKeyPair(t, cryptoDomain.Sodium)
	assert.Len(t, publicKey, sodiumPublicKeySize)
	assert.Len(t, privateKey, sodiumPrivateKeySize)
}

func TestRSACryptor_DefaultBits(t *testing.T) {
	cryptor := NewRSACryptor(0, nil)
	assert.Equal(t, DefaultRSAKeyBits, cryptor.bits)
}
