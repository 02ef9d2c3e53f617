// Package domain defines the core models for owner key custody.
//
// Every owner holds one asymmetric key pair. The private half never leaves memory
// in cleartext: at rest it is a WrappedPrivateKey, encrypted by a SymmetricCryptor
// keyed from the owner's passphrase. Public keys are stored in the clear and tagged
// with the backend that produced them.
package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeyPair is an owner's asymmetric key pair with the private key unlocked.
//
// A KeyPair is either complete (both keys non-empty) or treated as missing.
type KeyPair struct {
	OwnerID    string
	Backend    Backend
	PublicKey  []byte
	PrivateKey []byte // Plaintext private key (never persisted in this form)
}

// IsComplete reports whether both halves of the pair are present.
func (k *KeyPair) IsComplete() bool {
	return k != nil && len(k.PublicKey) > 0 && len(k.PrivateKey) > 0
}

// Fingerprint returns a short, non-secret identifier of the public key.
func (k *KeyPair) Fingerprint() string {
	if k == nil {
		return ""
	}
	return Fingerprint(k.PublicKey)
}

// Clone returns a deep copy so callers can wipe their copy without affecting caches.
func (k *KeyPair) Clone() *KeyPair {
	if k == nil {
		return nil
	}
	return &KeyPair{
		OwnerID:    k.OwnerID,
		Backend:    k.Backend,
		PublicKey:  append([]byte(nil), k.PublicKey...),
		PrivateKey: append([]byte(nil), k.PrivateKey...),
	}
}

// Fingerprint returns the first 16 hex characters of the SHA-256 of a public key.
func Fingerprint(publicKey []byte) string {
	if len(publicKey) == 0 {
		return ""
	}
	sum := sha256.Sum256(publicKey)
	return hex.EncodeToString(sum[:8])
}

// EncodePublicKey serializes a public key as "backend:base64".
func EncodePublicKey(backend Backend, publicKey []byte) string {
	return fmt.Sprintf("%s:%s", backend, base64.StdEncoding.EncodeToString(publicKey))
}

// DecodePublicKey parses the output of EncodePublicKey.
func DecodePublicKey(content string) (Backend, []byte, error) {
	parts := strings.Split(content, ":")
	if len(parts) != 2 || parts[0] == "" {
		return "", nil, fmt.Errorf("%w: expected format 'backend:key'", ErrInvalidKeyFormat)
	}

	key, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	if len(key) == 0 {
		return "", nil, fmt.Errorf("%w: empty public key", ErrInvalidKeyFormat)
	}

	return Backend(parts[0]), key, nil
}

// WrappedPrivateKey is a private key encrypted under a passphrase-derived key.
//
// It serializes to "backend:salt-base64:ciphertext-base64". The salt makes the
// passphrase-derived key deterministic for this blob while differing between owners.
type WrappedPrivateKey struct {
	Backend    Backend
	Salt       []byte
	Ciphertext []byte
}

// ParseWrappedPrivateKey parses the output of WrappedPrivateKey.String.
func ParseWrappedPrivateKey(content string) (WrappedPrivateKey, error) {
	parts := strings.Split(content, ":")
	if len(parts) != 3 {
		return WrappedPrivateKey{}, fmt.Errorf(
			"%w: expected format 'backend:salt:ciphertext', got %d parts",
			ErrInvalidKeyFormat,
			len(parts),
		)
	}

	if parts[0] == "" {
		return WrappedPrivateKey{}, fmt.Errorf("%w: empty backend", ErrInvalidKeyFormat)
	}

	salt, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return WrappedPrivateKey{}, fmt.Errorf("%w: salt: %v", ErrInvalidKeyFormat, err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return WrappedPrivateKey{}, fmt.Errorf("%w: ciphertext: %v", ErrInvalidKeyFormat, err)
	}

	return WrappedPrivateKey{
		Backend:    Backend(parts[0]),
		Salt:       salt,
		Ciphertext: ciphertext,
	}, nil
}

// String serializes the wrapped key to "backend:salt-base64:ciphertext-base64".
func (w WrappedPrivateKey) String() string {
	return fmt.Sprintf(
		"%s:%s:%s",
		w.Backend,
		base64.StdEncoding.EncodeToString(w.Salt),
		base64.StdEncoding.EncodeToString(w.Ciphertext),
	)
}
