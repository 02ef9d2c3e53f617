// Package usecase implements per-owner key pair custody.
//
// An owner's pair lives in the key/value store under the "encryption" namespace.
// The public key is stored as "backend:base64"; the private key is stored as a
// WrappedPrivateKey locked under the owner's passphrase. Both halves carry the
// backend tag so a pair written by one backend is never read by another.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	cryptoService "github.com/allisson/sealkeeper/internal/crypto/service"
)

// KeyLocker wraps private keys under a passphrase.
type KeyLocker interface {
	Lock(backend cryptoDomain.Backend, privateKey, passphrase []byte) (cryptoDomain.WrappedPrivateKey, error)
	Unlock(wrapped cryptoDomain.WrappedPrivateKey, passphrase []byte) ([]byte, error)
}

// CryptorFactory is the subset of cryptoService.CryptorFactory used for key custody.
type CryptorFactory interface {
	Backend() cryptoDomain.Backend
	NewAsymmetric(backend cryptoDomain.Backend) (cryptoService.AsymmetricCryptor, error)
	ForKeyPair(pair *cryptoDomain.KeyPair) (cryptoService.AsymmetricCryptor, error)
}

// KeyPairStore persists and retrieves owner key pairs.
type KeyPairStore interface {
	// GetKeyPair loads and unlocks the owner's pair. It returns ErrKeyPairNotFound
	// when no complete pair is stored and ErrInvalidPassphrase when the stored
	// private key cannot be unlocked with passphrase.
	GetKeyPair(ctx context.Context, ownerID string, passphrase []byte) (*cryptoDomain.KeyPair, error)

	// GenerateKeyPair creates a fresh pair with the configured backend. Nothing is persisted.
	GenerateKeyPair(ctx context.Context, ownerID string) (*cryptoDomain.KeyPair, error)

	// SaveKeyPair persists pair, locking the private key under passphrase.
	SaveKeyPair(ctx context.Context, pair *cryptoDomain.KeyPair, passphrase []byte) error

	// GetPublicKey returns the owner's public key without requiring a passphrase.
	GetPublicKey(ctx context.Context, ownerID string) (cryptoDomain.Backend, []byte, error)

	// SetPrivateKeyPassphrase re-locks an already unlocked private key under newPassphrase.
	SetPrivateKeyPassphrase(ctx context.Context, pair *cryptoDomain.KeyPair, newPassphrase []byte) error

	// BackupKeyPair copies the stored (still locked) pair to the slot named tag,
	// overwriting any previous backup under the same tag.
	BackupKeyPair(ctx context.Context, ownerID, tag string) error

	// RestoreKeyPair copies the backup slot named tag over the current pair.
	RestoreKeyPair(ctx context.Context, ownerID, tag string) error

	// WipeKeyPair removes the pair and every backup of it.
	WipeKeyPair(ctx context.Context, ownerID string) error
}
