package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	cryptoService "github.com/allisson/sealkeeper/internal/crypto/service"
	"github.com/allisson/sealkeeper/internal/database"
	"github.com/allisson/sealkeeper/internal/events"
	keyvalueDomain "github.com/allisson/sealkeeper/internal/keyvalue/domain"
	keypairUsecase "github.com/allisson/sealkeeper/internal/keypair/usecase"
	lifecycleDomain "github.com/allisson/sealkeeper/internal/lifecycle/domain"
	lifecycleService "github.com/allisson/sealkeeper/internal/lifecycle/service"
	customValidation "github.com/allisson/sealkeeper/internal/validation"
)

// keyLifecycleUseCase implements KeyLifecycleUseCase.
type keyLifecycleUseCase struct {
	txManager   database.TxManager
	store       keyvalueDomain.Store
	keyPairs    keypairUsecase.KeyPairStore
	factory     CryptorFactory
	dispatcher  events.Dispatcher
	credentials CredentialSource
	cache       *lifecycleService.OwnerCache
	locks       *lifecycleService.OwnerLocks
	logger      *slog.Logger
}

// NewKeyLifecycleUseCase creates a KeyLifecycleUseCase. credentials may be nil, in
// which case every call must name the owner and passphrase explicitly.
func NewKeyLifecycleUseCase(
	txManager database.TxManager,
	store keyvalueDomain.Store,
	keyPairs keypairUsecase.KeyPairStore,
	factory CryptorFactory,
	dispatcher events.Dispatcher,
	credentials CredentialSource,
	cache *lifecycleService.OwnerCache,
	locks *lifecycleService.OwnerLocks,
	logger *slog.Logger,
) KeyLifecycleUseCase {
	return &keyLifecycleUseCase{
		txManager:   txManager,
		store:       store,
		keyPairs:    keyPairs,
		factory:     factory,
		dispatcher:  dispatcher,
		credentials: credentials,
		cache:       cache,
		locks:       locks,
		logger:      logger,
	}
}

// InitOrRotate returns the owner's pair, generating and persisting a new one when
// none exists or when input.ForceNew is set.
func (k *keyLifecycleUseCase) InitOrRotate(
	ctx context.Context,
	input lifecycleDomain.InitOrRotateInput,
) (*cryptoDomain.KeyPair, error) {
	ownerID, passphrase, err := k.resolveCredentials(ctx, input.OwnerID, input.Passphrase)
	if err != nil {
		return nil, err
	}

	unlock := k.locks.Lock(ownerID)
	defer unlock()

	if !input.ForceNew {
		if pair, _, found := k.cache.Get(ownerID, passphrase); found {
			return pair, nil
		}

		pair, err := k.keyPairs.GetKeyPair(ctx, ownerID, passphrase)
		switch {
		case err == nil:
			if _, err := k.cacheKeyPair(pair, passphrase); err != nil {
				cryptoDomain.Zero(pair.PrivateKey)
				return nil, err
			}
			return pair, nil
		case !errors.Is(err, cryptoDomain.ErrKeyPairNotFound):
			// A wrong passphrase must never lead to a fresh pair.
			return nil, err
		}
	}

	oldPassphrase := input.OldPassphrase
	if len(oldPassphrase) == 0 {
		oldPassphrase = passphrase
	}

	oldPair, err := k.findOldKeyPair(ctx, ownerID, oldPassphrase)
	if err != nil {
		return nil, err
	}
	if oldPair != nil {
		defer cryptoDomain.Zero(oldPair.PrivateKey)
	}

	var newPair *cryptoDomain.KeyPair
	err = k.txManager.WithTx(ctx, func(txCtx context.Context) error {
		err := k.dispatcher.Dispatch(txCtx, events.KeyPairChanged{
			Name:    events.KeyPairBeforeChanged,
			OwnerID: ownerID,
			OldPair: oldPair,
		})
		if err != nil {
			return err
		}

		if oldPair != nil {
			if err := k.keyPairs.BackupKeyPair(txCtx, ownerID, lifecycleDomain.BackupTag); err != nil {
				return err
			}
		}

		newPair, err = k.keyPairs.GenerateKeyPair(txCtx, ownerID)
		if err != nil {
			return err
		}
		if err := k.keyPairs.SaveKeyPair(txCtx, newPair, passphrase); err != nil {
			return err
		}

		err = k.dispatcher.Dispatch(txCtx, events.KeyPairChanged{
			Name:    events.KeyPairAfterChanged,
			OwnerID: ownerID,
			OldPair: oldPair,
			NewPair: newPair,
		})
		if err != nil {
			return err
		}

		if oldPair != nil {
			return k.recrypt(txCtx, ownerID, oldPair, newPair)
		}
		return nil
	})
	if err != nil {
		if newPair != nil {
			cryptoDomain.Zero(newPair.PrivateKey)
		}
		k.rewindCache(ownerID, oldPair, oldPassphrase)
		k.logger.Error("key pair change rolled back",
			slog.String("owner_id", ownerID),
			slog.Bool("rotation", oldPair != nil),
			slog.Any("error", err),
		)
		return nil, err
	}

	if _, err := k.cacheKeyPair(newPair, passphrase); err != nil {
		cryptoDomain.Zero(newPair.PrivateKey)
		return nil, err
	}

	k.logger.Info("key pair changed",
		slog.String("owner_id", ownerID),
		slog.String("backend", string(newPair.Backend)),
		slog.Bool("rotation", oldPair != nil),
	)
	return newPair, nil
}

// RecryptSharedValues re-encrypts the owner's shared values inside one transaction.
func (k *keyLifecycleUseCase) RecryptSharedValues(
	ctx context.Context,
	ownerID string,
	oldPair, newPair *cryptoDomain.KeyPair,
) error {
	if err := validateOwnerID(ownerID); err != nil {
		return err
	}

	unlock := k.locks.Lock(ownerID)
	defer unlock()

	err := k.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return k.recrypt(txCtx, ownerID, oldPair, newPair)
	})
	if err != nil {
		// The store still holds the old ciphertexts; drop anything cached for the new pair.
		k.cache.Invalidate(ownerID)
		return err
	}
	return nil
}

// recrypt decrypts every shared value with oldPair before writing any of them
// under newPair, so a decryption failure never leaves a partial write behind
// even without a transaction.
func (k *keyLifecycleUseCase) recrypt(
	ctx context.Context,
	ownerID string,
	oldPair, newPair *cryptoDomain.KeyPair,
) error {
	if !oldPair.IsComplete() || newPair == nil || len(newPair.PublicKey) == 0 {
		return fmt.Errorf("%w: owner %s: %w", lifecycleDomain.ErrRecryptionFailed, ownerID, cryptoDomain.ErrKeyMissingOrInvalid)
	}

	oldCryptor, err := k.factory.ForKeyPair(oldPair)
	if err != nil {
		return fmt.Errorf("%w: owner %s: %w", lifecycleDomain.ErrRecryptionFailed, ownerID, err)
	}
	newCryptor, err := k.factory.ForPublicKey(newPair.Backend, newPair.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: owner %s: %w", lifecycleDomain.ErrRecryptionFailed, ownerID, err)
	}

	keys, err := k.store.ListKeys(ctx, ownerID, lifecycleDomain.SharedNamespace)
	if err != nil {
		return fmt.Errorf("%w: owner %s: %w", lifecycleDomain.ErrRecryptionFailed, ownerID, err)
	}

	plaintexts := make([][]byte, 0, len(keys))
	defer func() {
		for _, plaintext := range plaintexts {
			cryptoDomain.Zero(plaintext)
		}
	}()

	for _, key := range keys {
		plaintext, err := readSharedValue(ctx, k.store, oldCryptor, ownerID, key)
		if err != nil {
			return fmt.Errorf("%w: owner %s, value %q: %w", lifecycleDomain.ErrRecryptionFailed, ownerID, key, err)
		}
		plaintexts = append(plaintexts, plaintext)
	}

	for i, key := range keys {
		if err := writeSharedValue(ctx, k.store, newCryptor, ownerID, key, plaintexts[i]); err != nil {
			return fmt.Errorf("%w: owner %s, value %q: %w", lifecycleDomain.ErrRecryptionFailed, ownerID, key, err)
		}
	}

	k.logger.Info("shared values recrypted", slog.String("owner_id", ownerID), slog.Int("count", len(keys)))
	return nil
}

// DeleteEncryptionKeyPair wipes the owner's pair, backups and shared values.
func (k *keyLifecycleUseCase) DeleteEncryptionKeyPair(ctx context.Context, ownerID string) error {
	if err := validateOwnerID(ownerID); err != nil {
		return err
	}

	unlock := k.locks.Lock(ownerID)
	defer unlock()

	err := k.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := k.keyPairs.WipeKeyPair(txCtx, ownerID); err != nil {
			return err
		}

		keys, err := k.store.ListKeys(txCtx, ownerID, lifecycleDomain.SharedNamespace)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := k.store.DeleteValue(txCtx, ownerID, lifecycleDomain.SharedNamespace, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	k.cache.Invalidate(ownerID)
	k.logger.Warn("encryption key pair deleted", slog.String("owner_id", ownerID))
	return nil
}

// ChangePassphrase re-locks the private key under newPassphrase.
func (k *keyLifecycleUseCase) ChangePassphrase(
	ctx context.Context,
	ownerID string,
	oldPassphrase, newPassphrase []byte,
) error {
	if len(newPassphrase) == 0 {
		return fmt.Errorf("%w: new passphrase required", cryptoDomain.ErrKeyMissingOrInvalid)
	}

	ownerID, oldPassphrase, err := k.resolveCredentials(ctx, ownerID, oldPassphrase)
	if err != nil {
		return err
	}

	unlock := k.locks.Lock(ownerID)
	defer unlock()

	pair, err := k.keyPairs.GetKeyPair(ctx, ownerID, oldPassphrase)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(pair.PrivateKey)

	if err := k.keyPairs.SetPrivateKeyPassphrase(ctx, pair, newPassphrase); err != nil {
		return err
	}

	k.cache.Invalidate(ownerID)
	return nil
}

// RestoreKeyPair restores the backup slot named tag.
func (k *keyLifecycleUseCase) RestoreKeyPair(ctx context.Context, ownerID, tag string) error {
	if err := validateOwnerID(ownerID); err != nil {
		return err
	}

	unlock := k.locks.Lock(ownerID)
	defer unlock()

	if err := k.keyPairs.RestoreKeyPair(ctx, ownerID, tag); err != nil {
		return err
	}

	k.cache.Invalidate(ownerID)
	return nil
}

// CryptorFor returns a cryptor with the owner's unlocked pair installed.
func (k *keyLifecycleUseCase) CryptorFor(
	ctx context.Context,
	ownerID string,
	passphrase []byte,
) (cryptoService.AsymmetricCryptor, error) {
	ownerID, passphrase, err := k.resolveCredentials(ctx, ownerID, passphrase)
	if err != nil {
		return nil, err
	}

	if cryptor, found := k.cachedCryptor(ownerID, passphrase); found {
		return cryptor, nil
	}

	// A load must not finish after a rotation and put the replaced pair back.
	unlock := k.locks.Lock(ownerID)
	defer unlock()

	if cryptor, found := k.cachedCryptor(ownerID, passphrase); found {
		return cryptor, nil
	}

	pair, err := k.keyPairs.GetKeyPair(ctx, ownerID, passphrase)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(pair.PrivateKey)

	return k.cacheKeyPair(pair, passphrase)
}

func (k *keyLifecycleUseCase) cachedCryptor(
	ownerID string,
	passphrase []byte,
) (cryptoService.AsymmetricCryptor, bool) {
	pair, cryptor, found := k.cache.Get(ownerID, passphrase)
	if !found {
		return nil, false
	}
	cryptoDomain.Zero(pair.PrivateKey)
	return cryptor, true
}

// findOldKeyPair returns the pair about to be replaced, or nil when the owner has none.
func (k *keyLifecycleUseCase) findOldKeyPair(
	ctx context.Context,
	ownerID string,
	passphrase []byte,
) (*cryptoDomain.KeyPair, error) {
	if pair, _, found := k.cache.Get(ownerID, passphrase); found {
		return pair, nil
	}

	pair, err := k.keyPairs.GetKeyPair(ctx, ownerID, passphrase)
	if errors.Is(err, cryptoDomain.ErrKeyPairNotFound) {
		return nil, nil
	}
	return pair, err
}

func (k *keyLifecycleUseCase) cacheKeyPair(
	pair *cryptoDomain.KeyPair,
	passphrase []byte,
) (cryptoService.AsymmetricCryptor, error) {
	cryptor, err := k.factory.ForKeyPair(pair)
	if err != nil {
		return nil, fmt.Errorf("owner %s: %w", pair.OwnerID, err)
	}
	k.cache.Put(pair, cryptor, passphrase)
	return cryptor, nil
}

// rewindCache points the cache back at the pair that is still stored.
func (k *keyLifecycleUseCase) rewindCache(ownerID string, oldPair *cryptoDomain.KeyPair, passphrase []byte) {
	if oldPair == nil {
		k.cache.Invalidate(ownerID)
		return
	}
	if _, err := k.cacheKeyPair(oldPair, passphrase); err != nil {
		k.cache.Invalidate(ownerID)
	}
}

func (k *keyLifecycleUseCase) resolveCredentials(
	ctx context.Context,
	ownerID string,
	passphrase []byte,
) (string, []byte, error) {
	if ownerID == "" && k.credentials != nil {
		current, err := k.credentials.CurrentOwnerID(ctx)
		if err != nil {
			return "", nil, err
		}
		ownerID = current
	}
	if err := validateOwnerID(ownerID); err != nil {
		return "", nil, err
	}

	if len(passphrase) == 0 && k.credentials != nil {
		login, err := k.credentials.LoginPassphrase(ctx, ownerID)
		if err != nil {
			return "", nil, err
		}
		passphrase = login
	}
	if len(passphrase) == 0 {
		return "", nil, fmt.Errorf("%w: no passphrase for owner %s", cryptoDomain.ErrKeyMissingOrInvalid, ownerID)
	}
	return ownerID, passphrase, nil
}

func validateOwnerID(ownerID string) error {
	err := validation.Validate(ownerID, validation.Required, customValidation.OwnerID)
	if err != nil {
		return fmt.Errorf("%w: owner id %v", cryptoDomain.ErrKeyMissingOrInvalid, err)
	}
	return nil
}
