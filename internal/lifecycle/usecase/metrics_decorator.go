package usecase

import (
	"context"
	"time"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	cryptoService "github.com/allisson/sealkeeper/internal/crypto/service"
	lifecycleDomain "github.com/allisson/sealkeeper/internal/lifecycle/domain"
	"github.com/allisson/sealkeeper/internal/metrics"
)

// keyLifecycleUseCaseWithMetrics decorates KeyLifecycleUseCase with metrics instrumentation.
type keyLifecycleUseCaseWithMetrics struct {
	next    KeyLifecycleUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyLifecycleUseCaseWithMetrics wraps a KeyLifecycleUseCase with metrics recording.
func NewKeyLifecycleUseCaseWithMetrics(useCase KeyLifecycleUseCase, m metrics.BusinessMetrics) KeyLifecycleUseCase {
	return &keyLifecycleUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// InitOrRotate records metrics for key initialization and rotation.
func (k *keyLifecycleUseCaseWithMetrics) InitOrRotate(
	ctx context.Context,
	input lifecycleDomain.InitOrRotateInput,
) (*cryptoDomain.KeyPair, error) {
	start := time.Now()
	pair, err := k.next.InitOrRotate(ctx, input)

	operation := "keypair_init"
	if input.ForceNew {
		operation = "keypair_rotate"
	}
	k.record(ctx, operation, start, err)

	return pair, err
}

// RecryptSharedValues records metrics for bulk re-encryption.
func (k *keyLifecycleUseCaseWithMetrics) RecryptSharedValues(
	ctx context.Context,
	ownerID string,
	oldPair, newPair *cryptoDomain.KeyPair,
) error {
	start := time.Now()
	err := k.next.RecryptSharedValues(ctx, ownerID, oldPair, newPair)
	k.record(ctx, "keypair_recrypt", start, err)
	return err
}

// DeleteEncryptionKeyPair records metrics for key pair removal.
func (k *keyLifecycleUseCaseWithMetrics) DeleteEncryptionKeyPair(ctx context.Context, ownerID string) error {
	start := time.Now()
	err := k.next.DeleteEncryptionKeyPair(ctx, ownerID)
	k.record(ctx, "keypair_delete", start, err)
	return err
}

// ChangePassphrase records metrics for passphrase changes.
func (k *keyLifecycleUseCaseWithMetrics) ChangePassphrase(
	ctx context.Context,
	ownerID string,
	oldPassphrase, newPassphrase []byte,
) error {
	start := time.Now()
	err := k.next.ChangePassphrase(ctx, ownerID, oldPassphrase, newPassphrase)
	k.record(ctx, "keypair_change_passphrase", start, err)
	return err
}

// RestoreKeyPair records metrics for restores from backup.
func (k *keyLifecycleUseCaseWithMetrics) RestoreKeyPair(ctx context.Context, ownerID, tag string) error {
	start := time.Now()
	err := k.next.RestoreKeyPair(ctx, ownerID, tag)
	k.record(ctx, "keypair_restore", start, err)
	return err
}

// CryptorFor is not instrumented; it runs on every shared value read.
func (k *keyLifecycleUseCaseWithMetrics) CryptorFor(
	ctx context.Context,
	ownerID string,
	passphrase []byte,
) (cryptoService.AsymmetricCryptor, error) {
	return k.next.CryptorFor(ctx, ownerID, passphrase)
}

func (k *keyLifecycleUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}

	k.metrics.RecordOperation(ctx, "keypair", operation, status)
	k.metrics.RecordDuration(ctx, "keypair", operation, time.Since(start), status)
}

// sharedValueUseCaseWithMetrics decorates SharedValueUseCase with metrics instrumentation.
type sharedValueUseCaseWithMetrics struct {
	next    SharedValueUseCase
	metrics metrics.BusinessMetrics
}

// NewSharedValueUseCaseWithMetrics wraps a SharedValueUseCase with metrics recording.
func NewSharedValueUseCaseWithMetrics(useCase SharedValueUseCase, m metrics.BusinessMetrics) SharedValueUseCase {
	return &sharedValueUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Set records metrics for shared value writes.
func (s *sharedValueUseCaseWithMetrics) Set(ctx context.Context, ownerID, key string, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, ownerID, key, value)
	s.record(ctx, "shared_value_set", start, err)
	return err
}

// Get records metrics for shared value reads.
func (s *sharedValueUseCaseWithMetrics) Get(
	ctx context.Context,
	ownerID, key string,
	passphrase []byte,
) ([]byte, error) {
	start := time.Now()
	value, err := s.next.Get(ctx, ownerID, key, passphrase)
	s.record(ctx, "shared_value_get", start, err)
	return value, err
}

// Delete records metrics for shared value removal.
func (s *sharedValueUseCaseWithMetrics) Delete(ctx context.Context, ownerID, key string) error {
	start := time.Now()
	err := s.next.Delete(ctx, ownerID, key)
	s.record(ctx, "shared_value_delete", start, err)
	return err
}

// ListKeys records metrics for shared value listing.
func (s *sharedValueUseCaseWithMetrics) ListKeys(ctx context.Context, ownerID string) ([]string, error) {
	start := time.Now()
	keys, err := s.next.ListKeys(ctx, ownerID)
	s.record(ctx, "shared_value_list", start, err)
	return keys, err
}

func (s *sharedValueUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}

	s.metrics.RecordOperation(ctx, "shared_values", operation, status)
	s.metrics.RecordDuration(ctx, "shared_values", operation, time.Since(start), status)
}
