package service

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
)

const (
	sodiumKeySize        = 32
	sodiumPrivateKeySize = 2 * sodiumKeySize
	sodiumPublicKeySize  = 2 * sodiumKeySize
)

// SodiumCryptor implements AsymmetricCryptor with libsodium-compatible primitives.
//
// Encryption uses sealed boxes (X25519 + XSalsa20-Poly1305), signatures use
// Ed25519. Both key halves are the concatenation of the two sub-keys:
//
//	private: X25519 private key (32) | Ed25519 seed (32)
//	public:  X25519 public key (32)  | Ed25519 public key (32)
type SodiumCryptor struct {
	mu         sync.RWMutex
	locker     *KeyLocker
	boxPublic  *[sodiumKeySize]byte
	boxPrivate *[sodiumKeySize]byte
	signPublic ed25519.PublicKey
	signKey    ed25519.PrivateKey
}

// NewSodiumCryptor creates an empty sodium cryptor.
func NewSodiumCryptor(locker *KeyLocker) *SodiumCryptor {
	return &SodiumCryptor{locker: locker}
}

// Backend returns cryptoDomain.Sodium.
func (c *SodiumCryptor) Backend() cryptoDomain.Backend {
	return cryptoDomain.Sodium
}

// GenerateKeyPair creates a fresh concatenated X25519/Ed25519 key pair.
func (c *SodiumCryptor) GenerateKeyPair() ([]byte, []byte, error) {
	boxPublic, boxPrivate, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate box key: %w", err)
	}
	defer memguard.WipeBytes(boxPrivate[:])

	signPublic, signKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	defer memguard.WipeBytes(signKey)

	publicKey := make([]byte, 0, sodiumPublicKeySize)
	publicKey = append(publicKey, boxPublic[:]...)
	publicKey = append(publicKey, signPublic...)

	privateKey := make([]byte, 0, sodiumPrivateKeySize)
	privateKey = append(privateKey, boxPrivate[:]...)
	privateKey = append(privateKey, signKey.Seed()...)

	return publicKey, privateKey, nil
}

// SetPrivateKey installs a private key and derives both public halves from it.
func (c *SodiumCryptor) SetPrivateKey(key, passphrase []byte) error {
	raw, err := unlockPrivateKey(c.locker, cryptoDomain.Sodium, key, passphrase)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(raw)

	if len(raw) != sodiumPrivateKeySize {
		return fmt.Errorf("%w: sodium private key must be %d bytes", cryptoDomain.ErrInvalidKeyFormat, sodiumPrivateKeySize)
	}

	boxPrivate := new([sodiumKeySize]byte)
	copy(boxPrivate[:], raw[:sodiumKeySize])

	derived, err := curve25519.X25519(boxPrivate[:], curve25519.Basepoint)
	if err != nil {
		return fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidKeyFormat, err)
	}
	boxPublic := new([sodiumKeySize]byte)
	copy(boxPublic[:], derived)

	signKey := ed25519.NewKeyFromSeed(raw[sodiumKeySize:])

	c.mu.Lock()
	defer c.mu.Unlock()
	c.boxPrivate = boxPrivate
	c.boxPublic = boxPublic
	c.signKey = signKey
	c.signPublic = signKey.Public().(ed25519.PublicKey)
	return nil
}

// SetPublicKey installs a public key and drops any installed private key.
func (c *SodiumCryptor) SetPublicKey(key []byte) error {
	if len(key) != sodiumPublicKeySize {
		return fmt.Errorf("%w: sodium public key must be %d bytes", cryptoDomain.ErrInvalidKeyFormat, sodiumPublicKeySize)
	}

	boxPublic := new([sodiumKeySize]byte)
	copy(boxPublic[:], key[:sodiumKeySize])

	c.mu.Lock()
	defer c.mu.Unlock()
	c.boxPrivate = nil
	c.signKey = nil
	c.boxPublic = boxPublic
	c.signPublic = append(ed25519.PublicKey(nil), key[sodiumKeySize:]...)
	return nil
}

// PublicKey returns the installed concatenated public key.
func (c *SodiumCryptor) PublicKey() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.boxPublic == nil {
		return nil
	}
	out := make([]byte, 0, sodiumPublicKeySize)
	out = append(out, c.boxPublic[:]...)
	return append(out, c.signPublic...)
}

// Encrypt seals plaintext anonymously for the installed public key.
func (c *SodiumCryptor) Encrypt(plaintext []byte) ([]byte, error) {
	c.mu.RLock()
	boxPublic := c.boxPublic
	c.mu.RUnlock()

	if boxPublic == nil {
		return nil, cryptoDomain.ErrCannotEncrypt
	}

	ciphertext, err := box.SealAnonymous(nil, plaintext, boxPublic, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}
	return ciphertext, nil
}

// Decrypt opens a sealed box.
func (c *SodiumCryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	c.mu.RLock()
	boxPublic, boxPrivate := c.boxPublic, c.boxPrivate
	c.mu.RUnlock()

	if boxPrivate == nil {
		return nil, cryptoDomain.ErrCannotDecrypt
	}

	plaintext, ok := box.OpenAnonymous(nil, ciphertext, boxPublic, boxPrivate)
	if !ok {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

// Sign returns a detached Ed25519 signature.
func (c *SodiumCryptor) Sign(data []byte) ([]byte, error) {
	c.mu.RLock()
	signKey := c.signKey
	c.mu.RUnlock()

	if signKey == nil {
		return nil, cryptoDomain.ErrCannotSign
	}
	return ed25519.Sign(signKey, data), nil
}

// Verify checks a detached Ed25519 signature.
func (c *SodiumCryptor) Verify(data, signature []byte) error {
	c.mu.RLock()
	signPublic := c.signPublic
	c.mu.RUnlock()

	if signPublic == nil {
		return cryptoDomain.ErrCannotVerify
	}
	if len(signature) != ed25519.SignatureSize {
		return fmt.Errorf(
			"%w: expected %d bytes, got %d",
			cryptoDomain.ErrSignatureMalformed,
			ed25519.SignatureSize,
			len(signature),
		)
	}
	if !ed25519.Verify(signPublic, data, signature) {
		return cryptoDomain.ErrSignatureInvalid
	}
	return nil
}

// CanEncrypt reports whether a public key is installed.
func (c *SodiumCryptor) CanEncrypt() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.boxPublic != nil
}

// CanDecrypt reports whether a private key is installed.
func (c *SodiumCryptor) CanDecrypt() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.boxPrivate != nil
}

// CanSign reports whether a private key is installed.
func (c *SodiumCryptor) CanSign() bool {
	return c.CanDecrypt()
}

// CanVerify reports whether a public key is installed.
func (c *SodiumCryptor) CanVerify() bool {
	return c.CanEncrypt()
}
