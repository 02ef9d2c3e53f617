// Package mocks provides mock implementations of the lifecycle use cases for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	cryptoService "github.com/allisson/sealkeeper/internal/crypto/service"
	lifecycleDomain "github.com/allisson/sealkeeper/internal/lifecycle/domain"
)

// MockKeyLifecycleUseCase is a mock implementation of KeyLifecycleUseCase.
type MockKeyLifecycleUseCase struct {
	mock.Mock
}

// InitOrRotate mocks the InitOrRotate method.
func (m *MockKeyLifecycleUseCase) InitOrRotate(
	ctx context.Context,
	input lifecycleDomain.InitOrRotateInput,
) (*cryptoDomain.KeyPair, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.KeyPair), args.Error(1)
}

// RecryptSharedValues mocks the RecryptSharedValues method.
func (m *MockKeyLifecycleUseCase) RecryptSharedValues(
	ctx context.Context,
	ownerID string,
	oldPair, newPair *cryptoDomain.KeyPair,
) error {
	args := m.Called(ctx, ownerID, oldPair, newPair)
	return args.Error(0)
}

// DeleteEncryptionKeyPair mocks the DeleteEncryptionKeyPair method.
func (m *MockKeyLifecycleUseCase) DeleteEncryptionKeyPair(ctx context.Context, ownerID string) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

// ChangePassphrase mocks the ChangePassphrase method.
func (m *MockKeyLifecycleUseCase) ChangePassphrase(
	ctx context.Context,
	ownerID string,
	oldPassphrase, newPassphrase []byte,
) error {
	args := m.Called(ctx, ownerID, oldPassphrase, newPassphrase)
	return args.Error(0)
}

// RestoreKeyPair mocks the RestoreKeyPair method.
func (m *MockKeyLifecycleUseCase) RestoreKeyPair(ctx context.Context, ownerID, tag string) error {
	args := m.Called(ctx, ownerID, tag)
	return args.Error(0)
}

// CryptorFor mocks the CryptorFor method.
func (m *MockKeyLifecycleUseCase) CryptorFor(
	ctx context.Context,
	ownerID string,
	passphrase []byte,
) (cryptoService.AsymmetricCryptor, error) {
	args := m.Called(ctx, ownerID, passphrase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cryptoService.AsymmetricCryptor), args.Error(1)
}

// MockSharedValueUseCase is a mock implementation of SharedValueUseCase.
type MockSharedValueUseCase struct {
	mock.Mock
}

// Set mocks the Set method.
func (m *MockSharedValueUseCase) Set(ctx context.Context, ownerID, key string, value []byte) error {
	args := m.Called(ctx, ownerID, key, value)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockSharedValueUseCase) Get(ctx context.Context, ownerID, key string, passphrase []byte) ([]byte, error) {
	args := m.Called(ctx, ownerID, key, passphrase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockSharedValueUseCase) Delete(ctx context.Context, ownerID, key string) error {
	args := m.Called(ctx, ownerID, key)
	return args.Error(0)
}

// ListKeys mocks the ListKeys method.
func (m *MockSharedValueUseCase) ListKeys(ctx context.Context, ownerID string) ([]string, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
