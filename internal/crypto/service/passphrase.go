package service

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
)

const saltSize = 16

// KDFParams configures the Argon2id passphrase derivation.
type KDFParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultKDFParams returns the OWASP-recommended Argon2id parameters.
func DefaultKDFParams() KDFParams {
	return KDFParams{Time: 3, MemoryKiB: 64 * 1024, Threads: 4}
}

// DeriveKey derives a KeySize-byte key from passphrase and salt.
func (p KDFParams) DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, p.Time, p.MemoryKiB, p.Threads, cryptoDomain.KeySize)
}

// KeyLocker wraps and unwraps private keys under a passphrase.
//
// The passphrase is stretched with Argon2id using a random per-blob salt, and the
// resulting key is installed into a fresh SymmetricCryptor for the single
// operation. Derived keys are wiped as soon as the operation completes.
type KeyLocker struct {
	params      KDFParams
	aeadManager AEADManager
	alg         cryptoDomain.Algorithm
}

// NewKeyLocker creates a KeyLocker.
func NewKeyLocker(params KDFParams, aeadManager AEADManager, alg cryptoDomain.Algorithm) *KeyLocker {
	return &KeyLocker{params: params, aeadManager: aeadManager, alg: alg}
}

// Lock encrypts privateKey under passphrase.
func (l *KeyLocker) Lock(
	backend cryptoDomain.Backend,
	privateKey, passphrase []byte,
) (cryptoDomain.WrappedPrivateKey, error) {
	if len(passphrase) == 0 || len(privateKey) == 0 {
		return cryptoDomain.WrappedPrivateKey{}, cryptoDomain.ErrKeyMissingOrInvalid
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return cryptoDomain.WrappedPrivateKey{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	cryptor, err := l.cryptorFor(passphrase, salt)
	if err != nil {
		return cryptoDomain.WrappedPrivateKey{}, err
	}
	defer l.release(cryptor)

	ciphertext, err := cryptor.Encrypt(privateKey)
	if err != nil {
		return cryptoDomain.WrappedPrivateKey{}, err
	}

	return cryptoDomain.WrappedPrivateKey{Backend: backend, Salt: salt, Ciphertext: ciphertext}, nil
}

// Unlock decrypts a wrapped private key. A wrong passphrase yields ErrInvalidPassphrase.
func (l *KeyLocker) Unlock(wrapped cryptoDomain.WrappedPrivateKey, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, cryptoDomain.ErrKeyMissingOrInvalid
	}

	cryptor, err := l.cryptorFor(passphrase, wrapped.Salt)
	if err != nil {
		return nil, err
	}
	defer l.release(cryptor)

	if !cryptor.IsEncrypted(wrapped.Ciphertext) {
		return nil, fmt.Errorf("%w: private key is not encrypted", cryptoDomain.ErrInvalidKeyFormat)
	}

	privateKey, err := cryptor.Decrypt(wrapped.Ciphertext)
	if err != nil {
		if errors.Is(err, cryptoDomain.ErrDecryptionFailed) {
			return nil, cryptoDomain.ErrInvalidPassphrase
		}
		return nil, err
	}
	return privateKey, nil
}

func (l *KeyLocker) cryptorFor(passphrase, salt []byte) (*SymmetricCryptorService, error) {
	cryptor, err := NewSymmetricCryptor(l.aeadManager, l.alg)
	if err != nil {
		return nil, err
	}

	key := l.params.DeriveKey(passphrase, salt)
	defer memguard.WipeBytes(key)

	if _, err := cryptor.SetKey(key); err != nil {
		return nil, err
	}
	return cryptor, nil
}

// release uninstalls and wipes the derived key held by cryptor.
func (l *KeyLocker) release(cryptor *SymmetricCryptorService) {
	previous, _ := cryptor.SetKey(nil)
	memguard.WipeBytes(previous)
}
