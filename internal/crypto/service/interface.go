// Package service provides the cryptographic backends used for owner key custody.
//
// Two capability-checked contracts are exposed:
//   - SymmetricCryptor: encrypts byte strings under one shared key (AES-256-GCM,
//     ChaCha20-Poly1305 or a gocloud.dev localsecrets keeper)
//   - AsymmetricCryptor: holds a public/private key pair (RSA or sodium-style
//     X25519/Ed25519) and exposes encrypt, decrypt, sign and verify
//
// Backends are selected once, at construction, through a CryptorFactory.
package service

import (
	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
)

// AEAD is a keyed authenticated cipher producing self-contained nonce||ciphertext frames.
type AEAD interface {
	// Seal encrypts plaintext with optional AAD and returns nonce||ciphertext.
	Seal(plaintext, aad []byte) ([]byte, error)

	// Open decrypts a frame produced by Seal with the same AAD.
	Open(frame, aad []byte) ([]byte, error)
}

// AEADManager creates AEAD instances for a key and algorithm.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// SymmetricCryptor encrypts and decrypts byte strings with a single shared key.
//
// Without a key installed both Encrypt and Decrypt pass data through unchanged, so
// the same code path serves encrypted and legacy plaintext data. Decrypt also passes
// through any input that does not carry this cryptor's marker.
type SymmetricCryptor interface {
	// Algorithm returns the algorithm used for new ciphertexts.
	Algorithm() cryptoDomain.Algorithm

	// SetKey installs key (nil uninstalls) and returns the previously installed key.
	SetKey(key []byte) ([]byte, error)

	// Encrypt encrypts plaintext under the installed key.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext produced by Encrypt.
	Decrypt(ciphertext []byte) ([]byte, error)

	// IsEncrypted reports whether data carries the ciphertext marker.
	IsEncrypted(data []byte) bool

	// CanEncrypt reports whether a key is installed.
	CanEncrypt() bool

	// CanDecrypt reports whether a key is installed.
	CanDecrypt() bool
}

// AsymmetricCryptor holds one owner's key pair.
//
// Every operation checks its capability first and fails with ErrCannotEncrypt,
// ErrCannotDecrypt, ErrCannotSign or ErrCannotVerify before touching the backend.
// Backend failures surface as ErrEncryptionFailed, ErrDecryptionFailed or
// ErrSigningFailed.
type AsymmetricCryptor interface {
	// Backend identifies the implementation.
	Backend() cryptoDomain.Backend

	// GenerateKeyPair creates a fresh serialized key pair without installing it.
	GenerateKeyPair() (publicKey, privateKey []byte, err error)

	// SetPrivateKey installs a private key and the public key derived from it.
	// When passphrase is non-empty, key is a serialized WrappedPrivateKey that is
	// unlocked first.
	SetPrivateKey(key, passphrase []byte) error

	// SetPublicKey installs a public key only.
	SetPublicKey(key []byte) error

	// PublicKey returns the installed public key, or nil.
	PublicKey() []byte

	// Encrypt encrypts plaintext with the public key.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext with the private key.
	Decrypt(ciphertext []byte) ([]byte, error)

	// Sign signs data with the private key.
	Sign(data []byte) ([]byte, error)

	// Verify checks signature against data with the public key. Any failure
	// matches ErrVerificationFailed; ErrSignatureInvalid and ErrSignatureMalformed
	// tell "untrusted" apart from "corrupt".
	Verify(data, signature []byte) error

	CanEncrypt() bool
	CanDecrypt() bool
	CanSign() bool
	CanVerify() bool
}

// CryptorFactory builds cryptors for the configured backends.
type CryptorFactory interface {
	// Backend returns the asymmetric backend used for new key pairs.
	Backend() cryptoDomain.Backend

	// NewAsymmetric returns an empty cryptor for backend.
	NewAsymmetric(backend cryptoDomain.Backend) (AsymmetricCryptor, error)

	// NewSymmetric returns an empty symmetric cryptor for the configured algorithm.
	NewSymmetric() SymmetricCryptor

	// ForKeyPair returns a cryptor with both halves of pair installed.
	ForKeyPair(pair *cryptoDomain.KeyPair) (AsymmetricCryptor, error)

	// ForPublicKey returns an encrypt/verify-only cryptor.
	ForPublicKey(backend cryptoDomain.Backend, publicKey []byte) (AsymmetricCryptor, error)
}
