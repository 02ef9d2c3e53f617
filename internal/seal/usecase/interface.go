// Package usecase seals values to sets of owners by owner id and opens them as
// one owner.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	cryptoService "github.com/allisson/sealkeeper/internal/crypto/service"
)

// PublicKeyStore returns owners' public keys.
type PublicKeyStore interface {
	GetPublicKey(ctx context.Context, ownerID string) (cryptoDomain.Backend, []byte, error)
}

// CryptorFactory builds encrypt-only cryptors from public keys.
type CryptorFactory interface {
	ForPublicKey(backend cryptoDomain.Backend, publicKey []byte) (cryptoService.AsymmetricCryptor, error)
}

// CryptorProvider returns an owner's unlocked cryptor.
type CryptorProvider interface {
	CryptorFor(ctx context.Context, ownerID string, passphrase []byte) (cryptoService.AsymmetricCryptor, error)
}

// SealOutput is a serialized envelope plus the owners it could not be sealed for.
type SealOutput struct {
	Sealed  []byte
	Skipped []string
}

// SealUseCase seals values to owner sets.
type SealUseCase interface {
	// SealForOwners seals plaintext to every listed owner that has a key pair.
	// Owners without one are returned in Skipped.
	SealForOwners(ctx context.Context, plaintext []byte, ownerIDs []string) (*SealOutput, error)

	// Unseal opens sealed as ownerID.
	//
	// Security Note: callers MUST zero the returned plaintext after use.
	Unseal(ctx context.Context, sealed []byte, ownerID string, passphrase []byte) ([]byte, error)

	// Recipients lists the owner ids an envelope was sealed for.
	Recipients(sealed []byte) ([]string, error)

	// IsSealed reports whether data is a sealed envelope.
	IsSealed(data []byte) bool
}
