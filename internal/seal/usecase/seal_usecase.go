package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	cryptoService "github.com/allisson/sealkeeper/internal/crypto/service"
	sealDomain "github.com/allisson/sealkeeper/internal/seal/domain"
	sealService "github.com/allisson/sealkeeper/internal/seal/service"
	customValidation "github.com/allisson/sealkeeper/internal/validation"
)

// sealUseCase implements SealUseCase.
type sealUseCase struct {
	service    *sealService.SealService
	publicKeys PublicKeyStore
	factory    CryptorFactory
	cryptors   CryptorProvider
	logger     *slog.Logger
}

// NewSealUseCase creates a SealUseCase.
func NewSealUseCase(
	service *sealService.SealService,
	publicKeys PublicKeyStore,
	factory CryptorFactory,
	cryptors CryptorProvider,
	logger *slog.Logger,
) SealUseCase {
	return &sealUseCase{
		service:    service,
		publicKeys: publicKeys,
		factory:    factory,
		cryptors:   cryptors,
		logger:     logger,
	}
}

// SealForOwners seals plaintext to the listed owners.
func (s *sealUseCase) SealForOwners(ctx context.Context, plaintext []byte, ownerIDs []string) (*SealOutput, error) {
	err := validation.Validate(
		ownerIDs,
		validation.Required,
		validation.Each(validation.Required, customValidation.OwnerID),
	)
	if err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	recipients := make(map[string]cryptoService.AsymmetricCryptor, len(ownerIDs))
	for _, ownerID := range ownerIDs {
		backend, publicKey, err := s.publicKeys.GetPublicKey(ctx, ownerID)
		if errors.Is(err, cryptoDomain.ErrKeyPairNotFound) {
			recipients[ownerID] = nil
			continue
		}
		if err != nil {
			return nil, err
		}

		cryptor, err := s.factory.ForPublicKey(backend, publicKey)
		if err != nil {
			return nil, fmt.Errorf("owner %s: %w", ownerID, err)
		}
		recipients[ownerID] = cryptor
	}

	result, err := s.service.Seal(plaintext, recipients)
	if err != nil {
		return nil, err
	}

	sealed, err := result.Envelope.Marshal()
	if err != nil {
		return nil, err
	}

	if len(result.Skipped) > 0 {
		s.logger.Warn("sealed value skipped owners without a key pair",
			slog.Any("skipped", result.Skipped),
			slog.Int("recipients", len(result.Envelope.Recipients)),
		)
	}

	return &SealOutput{Sealed: sealed, Skipped: result.Skipped}, nil
}

// Unseal opens sealed with ownerID's private key.
func (s *sealUseCase) Unseal(ctx context.Context, sealed []byte, ownerID string, passphrase []byte) ([]byte, error) {
	envelope, err := sealDomain.ParseSealedEnvelope(sealed)
	if err != nil {
		return nil, err
	}

	// Checked before unlocking anything so non-recipients never pay for the KDF.
	if !envelope.HasRecipient(ownerID) {
		return nil, fmt.Errorf("owner %s: %w", ownerID, sealDomain.ErrNoValidCandidate)
	}

	cryptor, err := s.cryptors.CryptorFor(ctx, ownerID, passphrase)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.service.Unseal(envelope, map[string]cryptoService.AsymmetricCryptor{ownerID: cryptor})
	if err != nil {
		return nil, fmt.Errorf("owner %s: %w", ownerID, err)
	}
	return plaintext, nil
}

// Recipients lists the owner ids holding a wrapped key in sealed.
func (s *sealUseCase) Recipients(sealed []byte) ([]string, error) {
	envelope, err := sealDomain.ParseSealedEnvelope(sealed)
	if err != nil {
		return nil, err
	}
	return envelope.RecipientIDs(), nil
}

// IsSealed reports whether data is a sealed envelope.
func (s *sealUseCase) IsSealed(data []byte) bool {
	return s.service.IsSealedData(data)
}
