package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	cryptoService "github.com/allisson/sealkeeper/internal/crypto/service"
	keyvalueDomain "github.com/allisson/sealkeeper/internal/keyvalue/domain"
	keypairUsecase "github.com/allisson/sealkeeper/internal/keypair/usecase"
	lifecycleDomain "github.com/allisson/sealkeeper/internal/lifecycle/domain"
	lifecycleService "github.com/allisson/sealkeeper/internal/lifecycle/service"
	customValidation "github.com/allisson/sealkeeper/internal/validation"
)

// sharedValueUseCase implements SharedValueUseCase.
type sharedValueUseCase struct {
	store     keyvalueDomain.Store
	keyPairs  keypairUsecase.KeyPairStore
	factory   CryptorFactory
	lifecycle KeyLifecycleUseCase
	locks     *lifecycleService.OwnerLocks
	logger    *slog.Logger
}

// NewSharedValueUseCase creates a SharedValueUseCase. locks must be the instance
// shared with the lifecycle use case so writes never interleave with a rotation.
func NewSharedValueUseCase(
	store keyvalueDomain.Store,
	keyPairs keypairUsecase.KeyPairStore,
	factory CryptorFactory,
	lifecycle KeyLifecycleUseCase,
	locks *lifecycleService.OwnerLocks,
	logger *slog.Logger,
) SharedValueUseCase {
	return &sharedValueUseCase{
		store:     store,
		keyPairs:  keyPairs,
		factory:   factory,
		lifecycle: lifecycle,
		locks:     locks,
		logger:    logger,
	}
}

// Set encrypts value under the owner's current public key.
func (s *sharedValueUseCase) Set(ctx context.Context, ownerID, key string, value []byte) error {
	if err := validateValueKey(ownerID, key); err != nil {
		return err
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	backend, publicKey, err := s.keyPairs.GetPublicKey(ctx, ownerID)
	if err != nil {
		return err
	}

	cryptor, err := s.factory.ForPublicKey(backend, publicKey)
	if err != nil {
		return fmt.Errorf("owner %s: %w", ownerID, err)
	}

	if err := writeSharedValue(ctx, s.store, cryptor, ownerID, key, value); err != nil {
		return fmt.Errorf("owner %s, value %q: %w", ownerID, key, err)
	}

	s.logger.Debug("shared value stored", slog.String("owner_id", ownerID), slog.String("key", key))
	return nil
}

// Get decrypts the value stored under key with the owner's private key.
func (s *sharedValueUseCase) Get(ctx context.Context, ownerID, key string, passphrase []byte) ([]byte, error) {
	if err := validateValueKey(ownerID, key); err != nil {
		return nil, err
	}

	cryptor, err := s.lifecycle.CryptorFor(ctx, ownerID, passphrase)
	if err != nil {
		return nil, err
	}

	plaintext, err := readSharedValue(ctx, s.store, cryptor, ownerID, key)
	if err != nil {
		return nil, fmt.Errorf("owner %s, value %q: %w", ownerID, key, err)
	}
	return plaintext, nil
}

// Delete removes the value stored under key. Missing values are not an error.
func (s *sharedValueUseCase) Delete(ctx context.Context, ownerID, key string) error {
	if err := validateValueKey(ownerID, key); err != nil {
		return err
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	if err := s.store.DeleteValue(ctx, ownerID, lifecycleDomain.SharedNamespace, key); err != nil {
		return err
	}

	s.logger.Debug("shared value deleted", slog.String("owner_id", ownerID), slog.String("key", key))
	return nil
}

// ListKeys returns the names of the owner's shared values.
func (s *sharedValueUseCase) ListKeys(ctx context.Context, ownerID string) ([]string, error) {
	if err := validateOwnerID(ownerID); err != nil {
		return nil, err
	}
	return s.store.ListKeys(ctx, ownerID, lifecycleDomain.SharedNamespace)
}

func readSharedValue(
	ctx context.Context,
	store keyvalueDomain.Store,
	cryptor cryptoService.AsymmetricCryptor,
	ownerID, key string,
) ([]byte, error) {
	encoded, err := store.GetValue(ctx, ownerID, lifecycleDomain.SharedNamespace, key, "")
	if err != nil {
		return nil, err
	}
	if encoded == "" {
		return nil, lifecycleDomain.ErrSharedValueNotFound
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}
	return cryptor.Decrypt(ciphertext)
}

func writeSharedValue(
	ctx context.Context,
	store keyvalueDomain.Store,
	cryptor cryptoService.AsymmetricCryptor,
	ownerID, key string,
	plaintext []byte,
) error {
	ciphertext, err := cryptor.Encrypt(plaintext)
	if err != nil {
		return err
	}
	return store.SetValue(
		ctx,
		ownerID,
		lifecycleDomain.SharedNamespace,
		key,
		base64.StdEncoding.EncodeToString(ciphertext),
	)
}

func validateValueKey(ownerID, key string) error {
	if err := validateOwnerID(ownerID); err != nil {
		return err
	}
	return customValidation.WrapValidationError(
		validation.Validate(key, validation.Required, customValidation.Key),
	)
}
