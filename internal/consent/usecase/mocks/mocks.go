// Package mocks provides a mock implementation of the recryption consent use case for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	consentDomain "github.com/allisson/sealkeeper/internal/consent/domain"
)

// MockRecryptionConsentUseCase is a mock implementation of RecryptionConsentUseCase.
type MockRecryptionConsentUseCase struct {
	mock.Mock
}

func (m *MockRecryptionConsentUseCase) request(args mock.Arguments) (*consentDomain.RecryptionRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consentDomain.RecryptionRequest), args.Error(1)
}

// PushRequest mocks the PushRequest method.
func (m *MockRecryptionConsentUseCase) PushRequest(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, error) {
	return m.request(m.Called(ctx, ownerID))
}

// Accept mocks the Accept method.
func (m *MockRecryptionConsentUseCase) Accept(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, error) {
	return m.request(m.Called(ctx, ownerID))
}

// Decline mocks the Decline method.
func (m *MockRecryptionConsentUseCase) Decline(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, error) {
	return m.request(m.Called(ctx, ownerID))
}

// RemoveRequestNotification mocks the RemoveRequestNotification method.
func (m *MockRecryptionConsentUseCase) RemoveRequestNotification(ctx context.Context, ownerID string) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

// PushDenied mocks the PushDenied method.
func (m *MockRecryptionConsentUseCase) PushDenied(ctx context.Context, ownerID string, allowProtest bool) error {
	args := m.Called(ctx, ownerID, allowProtest)
	return args.Error(0)
}

// Protest mocks the Protest method.
func (m *MockRecryptionConsentUseCase) Protest(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, error) {
	return m.request(m.Called(ctx, ownerID))
}

// PushHandled mocks the PushHandled method.
func (m *MockRecryptionConsentUseCase) PushHandled(ctx context.Context, ownerID string) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

// GetRequest mocks the GetRequest method.
func (m *MockRecryptionConsentUseCase) GetRequest(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, bool, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*consentDomain.RecryptionRequest), args.Bool(1), args.Error(2)
}

// ListNotifications mocks the ListNotifications method.
func (m *MockRecryptionConsentUseCase) ListNotifications(
	ctx context.Context,
	recipientID string,
) ([]*consentDomain.Notification, error) {
	args := m.Called(ctx, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*consentDomain.Notification), args.Error(1)
}
