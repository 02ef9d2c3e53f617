package usecase

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	kvDomain "github.com/allisson/sealkeeper/internal/keyvalue/domain"
	customValidation "github.com/allisson/sealkeeper/internal/validation"
)

const (
	// Namespace holds every owner's key material.
	Namespace = "encryption"

	publicKeyName  = "public_key"
	privateKeyName = "private_key"
	backupInfix    = ".backup."
)

// keyPairStore implements KeyPairStore on top of the key/value store.
type keyPairStore struct {
	store   kvDomain.Store
	factory CryptorFactory
	locker  KeyLocker
	logger  *slog.Logger
}

// NewKeyPairStore creates a KeyPairStore.
func NewKeyPairStore(
	store kvDomain.Store,
	factory CryptorFactory,
	locker KeyLocker,
	logger *slog.Logger,
) KeyPairStore {
	return &keyPairStore{store: store, factory: factory, locker: locker, logger: logger}
}

// GetKeyPair loads and unlocks the owner's pair.
func (k *keyPairStore) GetKeyPair(
	ctx context.Context,
	ownerID string,
	passphrase []byte,
) (*cryptoDomain.KeyPair, error) {
	if err := validateOwnerID(ownerID); err != nil {
		return nil, err
	}
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: passphrase required for owner %s", cryptoDomain.ErrKeyMissingOrInvalid, ownerID)
	}

	encodedPublic, encodedPrivate, err := k.readStored(ctx, ownerID, publicKeyName, privateKeyName)
	if err != nil {
		return nil, err
	}
	if encodedPublic == "" || encodedPrivate == "" {
		return nil, cryptoDomain.ErrKeyPairNotFound
	}

	backend, publicKey, err := cryptoDomain.DecodePublicKey(encodedPublic)
	if err != nil {
		return nil, fmt.Errorf("owner %s: %w", ownerID, err)
	}

	wrapped, err := cryptoDomain.ParseWrappedPrivateKey(encodedPrivate)
	if err != nil {
		return nil, fmt.Errorf("owner %s: %w", ownerID, err)
	}
	if wrapped.Backend != backend {
		return nil, fmt.Errorf(
			"%w: owner %s has a %s public key and a %s private key",
			cryptoDomain.ErrBackendMismatch,
			ownerID,
			backend,
			wrapped.Backend,
		)
	}

	privateKey, err := k.locker.Unlock(wrapped, passphrase)
	if err != nil {
		return nil, fmt.Errorf("owner %s: %w", ownerID, err)
	}

	pair := &cryptoDomain.KeyPair{
		OwnerID:    ownerID,
		Backend:    backend,
		PublicKey:  publicKey,
		PrivateKey: privateKey,
	}

	// Loading the pair into a cryptor checks that both halves belong together.
	if _, err := k.factory.ForKeyPair(pair); err != nil {
		cryptoDomain.Zero(pair.PrivateKey)
		return nil, fmt.Errorf("owner %s: %w", ownerID, err)
	}

	return pair, nil
}

// GenerateKeyPair creates a fresh pair without persisting it.
func (k *keyPairStore) GenerateKeyPair(_ context.Context, ownerID string) (*cryptoDomain.KeyPair, error) {
	if err := validateOwnerID(ownerID); err != nil {
		return nil, err
	}

	cryptor, err := k.factory.NewAsymmetric(k.factory.Backend())
	if err != nil {
		return nil, err
	}

	publicKey, privateKey, err := cryptor.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.KeyPair{
		OwnerID:    ownerID,
		Backend:    cryptor.Backend(),
		PublicKey:  publicKey,
		PrivateKey: privateKey,
	}, nil
}

// SaveKeyPair persists pair with the private key locked under passphrase.
func (k *keyPairStore) SaveKeyPair(
	ctx context.Context,
	pair *cryptoDomain.KeyPair,
	passphrase []byte,
) error {
	if !pair.IsComplete() {
		return cryptoDomain.ErrKeyMissingOrInvalid
	}
	if err := validateOwnerID(pair.OwnerID); err != nil {
		return err
	}

	wrapped, err := k.locker.Lock(pair.Backend, pair.PrivateKey, passphrase)
	if err != nil {
		return fmt.Errorf("owner %s: %w", pair.OwnerID, err)
	}

	encodedPublic := cryptoDomain.EncodePublicKey(pair.Backend, pair.PublicKey)
	if err := k.store.SetValue(ctx, pair.OwnerID, Namespace, publicKeyName, encodedPublic); err != nil {
		return err
	}
	if err := k.store.SetValue(ctx, pair.OwnerID, Namespace, privateKeyName, wrapped.String()); err != nil {
		return err
	}

	k.logger.Info("key pair saved",
		slog.String("owner_id", pair.OwnerID),
		slog.String("backend", string(pair.Backend)),
		slog.String("fingerprint", pair.Fingerprint()),
	)
	return nil
}

// GetPublicKey returns the owner's public key.
func (k *keyPairStore) GetPublicKey(ctx context.Context, ownerID string) (cryptoDomain.Backend, []byte, error) {
	if err := validateOwnerID(ownerID); err != nil {
		return "", nil, err
	}

	encoded, err := k.store.GetValue(ctx, ownerID, Namespace, publicKeyName, "")
	if err != nil {
		return "", nil, err
	}
	if encoded == "" {
		return "", nil, cryptoDomain.ErrKeyPairNotFound
	}

	backend, publicKey, err := cryptoDomain.DecodePublicKey(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("owner %s: %w", ownerID, err)
	}
	return backend, publicKey, nil
}

// SetPrivateKeyPassphrase re-locks pair's private key under newPassphrase.
func (k *keyPairStore) SetPrivateKeyPassphrase(
	ctx context.Context,
	pair *cryptoDomain.KeyPair,
	newPassphrase []byte,
) error {
	if !pair.IsComplete() {
		return cryptoDomain.ErrKeyMissingOrInvalid
	}

	wrapped, err := k.locker.Lock(pair.Backend, pair.PrivateKey, newPassphrase)
	if err != nil {
		return fmt.Errorf("owner %s: %w", pair.OwnerID, err)
	}

	if err := k.store.SetValue(ctx, pair.OwnerID, Namespace, privateKeyName, wrapped.String()); err != nil {
		return err
	}

	k.logger.Info("private key passphrase changed", slog.String("owner_id", pair.OwnerID))
	return nil
}

// BackupKeyPair copies the stored pair to the backup slot named tag.
func (k *keyPairStore) BackupKeyPair(ctx context.Context, ownerID, tag string) error {
	if err := validateTag(ownerID, tag); err != nil {
		return err
	}

	encodedPublic, encodedPrivate, err := k.readStored(ctx, ownerID, publicKeyName, privateKeyName)
	if err != nil {
		return err
	}
	if encodedPublic == "" || encodedPrivate == "" {
		return cryptoDomain.ErrKeyPairNotFound
	}

	err = k.writeStored(
		ctx,
		ownerID,
		backupName(publicKeyName, tag),
		backupName(privateKeyName, tag),
		encodedPublic,
		encodedPrivate,
	)
	if err != nil {
		return err
	}

	k.logger.Info("key pair backed up", slog.String("owner_id", ownerID), slog.String("tag", tag))
	return nil
}

// RestoreKeyPair copies the backup slot named tag over the current pair.
func (k *keyPairStore) RestoreKeyPair(ctx context.Context, ownerID, tag string) error {
	if err := validateTag(ownerID, tag); err != nil {
		return err
	}

	encodedPublic, encodedPrivate, err := k.readStored(
		ctx,
		ownerID,
		backupName(publicKeyName, tag),
		backupName(privateKeyName, tag),
	)
	if err != nil {
		return err
	}
	if encodedPublic == "" || encodedPrivate == "" {
		return cryptoDomain.ErrBackupNotFound
	}

	if err := k.writeStored(ctx, ownerID, publicKeyName, privateKeyName, encodedPublic, encodedPrivate); err != nil {
		return err
	}

	k.logger.Warn("key pair restored from backup", slog.String("owner_id", ownerID), slog.String("tag", tag))
	return nil
}

// WipeKeyPair removes every entry in the owner's key namespace.
func (k *keyPairStore) WipeKeyPair(ctx context.Context, ownerID string) error {
	if err := validateOwnerID(ownerID); err != nil {
		return err
	}

	keys, err := k.store.ListKeys(ctx, ownerID, Namespace)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := k.store.DeleteValue(ctx, ownerID, Namespace, key); err != nil {
			return err
		}
	}

	k.logger.Warn("key pair wiped", slog.String("owner_id", ownerID), slog.Int("count", len(keys)))
	return nil
}

func (k *keyPairStore) readStored(
	ctx context.Context,
	ownerID, publicName, privateName string,
) (string, string, error) {
	encodedPublic, err := k.store.GetValue(ctx, ownerID, Namespace, publicName, "")
	if err != nil {
		return "", "", err
	}
	encodedPrivate, err := k.store.GetValue(ctx, ownerID, Namespace, privateName, "")
	if err != nil {
		return "", "", err
	}
	return encodedPublic, encodedPrivate, nil
}

func (k *keyPairStore) writeStored(
	ctx context.Context,
	ownerID, publicName, privateName, encodedPublic, encodedPrivate string,
) error {
	if err := k.store.SetValue(ctx, ownerID, Namespace, publicName, encodedPublic); err != nil {
		return err
	}
	return k.store.SetValue(ctx, ownerID, Namespace, privateName, encodedPrivate)
}

func backupName(name, tag string) string {
	return name + backupInfix + tag
}

func validateOwnerID(ownerID string) error {
	err := validation.Validate(ownerID, validation.Required, customValidation.OwnerID)
	if err != nil {
		return fmt.Errorf("%w: owner id %v", cryptoDomain.ErrKeyMissingOrInvalid, err)
	}
	return nil
}

func validateTag(ownerID, tag string) error {
	if err := validateOwnerID(ownerID); err != nil {
		return err
	}
	return customValidation.WrapValidationError(
		validation.Validate(tag, validation.Required, customValidation.Key),
	)
}
