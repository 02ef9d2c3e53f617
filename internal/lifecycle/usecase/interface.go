// Package usecase implements the owner key lifecycle: lazy initialization,
// forced rotation with re-encryption of every shared value, passphrase changes,
// restore from backup and wipe. It also exposes the shared value use case that
// stores owner secrets under the owner's current public key.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	cryptoService "github.com/allisson/sealkeeper/internal/crypto/service"
	lifecycleDomain "github.com/allisson/sealkeeper/internal/lifecycle/domain"
)

// CredentialSource supplies the owner and passphrase when a caller omits them.
// Either method may return an empty value when nothing is known.
type CredentialSource interface {
	CurrentOwnerID(ctx context.Context) (string, error)
	LoginPassphrase(ctx context.Context, ownerID string) ([]byte, error)
}

// CryptorFactory is the subset of cryptoService.CryptorFactory used by the lifecycle.
type CryptorFactory interface {
	ForKeyPair(pair *cryptoDomain.KeyPair) (cryptoService.AsymmetricCryptor, error)
	ForPublicKey(backend cryptoDomain.Backend, publicKey []byte) (cryptoService.AsymmetricCryptor, error)
}

// KeyLifecycleUseCase coordinates key initialization, rotation and removal.
type KeyLifecycleUseCase interface {
	// InitOrRotate returns the owner's usable pair, creating it when none exists.
	// With ForceNew it always replaces the pair: the old one is backed up, the
	// lifecycle events fire and every shared value is re-encrypted, all in one
	// transaction.
	//
	// Security Note: the returned pair holds the private key in clear. Callers MUST
	// zero it after use by calling cryptoDomain.Zero(pair.PrivateKey).
	InitOrRotate(ctx context.Context, input lifecycleDomain.InitOrRotateInput) (*cryptoDomain.KeyPair, error)

	// RecryptSharedValues re-encrypts every shared value of ownerID from oldPair to
	// newPair atomically. On failure nothing is persisted and ErrRecryptionFailed is
	// returned.
	RecryptSharedValues(ctx context.Context, ownerID string, oldPair, newPair *cryptoDomain.KeyPair) error

	// DeleteEncryptionKeyPair wipes the owner's pair, backups and shared values. Irreversible.
	DeleteEncryptionKeyPair(ctx context.Context, ownerID string) error

	// ChangePassphrase re-locks the private key under newPassphrase without rotating the pair.
	ChangePassphrase(ctx context.Context, ownerID string, oldPassphrase, newPassphrase []byte) error

	// RestoreKeyPair copies the backup slot named tag over the current pair.
	RestoreKeyPair(ctx context.Context, ownerID, tag string) error

	// CryptorFor returns a cryptor holding the owner's unlocked pair.
	CryptorFor(ctx context.Context, ownerID string, passphrase []byte) (cryptoService.AsymmetricCryptor, error)
}

// SharedValueUseCase stores named owner secrets encrypted under the owner's public key.
type SharedValueUseCase interface {
	// Set encrypts value for ownerID. Only the public key is needed.
	Set(ctx context.Context, ownerID, key string, value []byte) error

	// Get decrypts the value stored under key.
	//
	// Security Note: callers MUST zero the returned plaintext after use.
	Get(ctx context.Context, ownerID, key string, passphrase []byte) ([]byte, error)

	Delete(ctx context.Context, ownerID, key string) error
	ListKeys(ctx context.Context, ownerID string) ([]string, error)
}
