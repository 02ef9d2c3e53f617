// Package usecase implements the recryption consent workflow: a per-owner
// request record that stakeholders are notified about and can accept,
// decline or, when allowed, see protested.
package usecase

import (
	"context"

	consentDomain "github.com/allisson/sealkeeper/internal/consent/domain"
)

// RequestRepository persists at most one RecryptionRequest per owner.
type RequestRepository interface {
	Get(ctx context.Context, ownerID string) (*consentDomain.RecryptionRequest, error)
	Save(ctx context.Context, request *consentDomain.RecryptionRequest) error
	Delete(ctx context.Context, ownerID string) error
}

// NotificationSink delivers notifications and tracks which were acted upon.
type NotificationSink interface {
	Notify(ctx context.Context, notification *consentDomain.Notification) error
	MarkProcessed(ctx context.Context, subject, targetID string) (int64, error)
	ListPending(ctx context.Context, recipientID string) ([]*consentDomain.Notification, error)
}

// StakeholderDirectory lists who must be told about a change to ownerID's key.
type StakeholderDirectory interface {
	Stakeholders(ctx context.Context, ownerID string) ([]string, error)
}

// RecryptionConsentUseCase drives the request state machine
// NoRequest -> Pending -> {Accepted, Declined, Protested} -> Handled -> NoRequest.
//
// Operations that change the state of a request fail with
// consentDomain.ErrRequestNotFound when the owner has no active request.
// Removing notifications is always a no-op when there is nothing to remove.
type RecryptionConsentUseCase interface {
	// PushRequest opens a Pending request and notifies every stakeholder except
	// the owner. Fails with ErrRequestAlreadyPending while another request is active.
	PushRequest(ctx context.Context, ownerID string) (*consentDomain.RecryptionRequest, error)

	// Accept moves a request awaiting a decision to Accepted.
	Accept(ctx context.Context, ownerID string) (*consentDomain.RecryptionRequest, error)

	// Decline moves a request awaiting a decision to Declined.
	Decline(ctx context.Context, ownerID string) (*consentDomain.RecryptionRequest, error)

	// RemoveRequestNotification clears the pending request notices about ownerID.
	RemoveRequestNotification(ctx context.Context, ownerID string) error

	// PushDenied marks the request Declined and tells the owner, offering a
	// protest action when allowProtest is set.
	PushDenied(ctx context.Context, ownerID string, allowProtest bool) error

	// Protest re-opens a declined request that allows it and notifies the
	// stakeholders again.
	Protest(ctx context.Context, ownerID string) (*consentDomain.RecryptionRequest, error)

	// PushHandled tells stakeholders the request is resolved, clears every
	// notice about it and removes the request.
	PushHandled(ctx context.Context, ownerID string) error

	// GetRequest returns the owner's active request. found is false when there is
	// none or it expired; an expired request is removed with its pending notices.
	GetRequest(ctx context.Context, ownerID string) (request *consentDomain.RecryptionRequest, found bool, err error)

	// ListNotifications returns recipientID's unprocessed notifications.
	ListNotifications(ctx context.Context, recipientID string) ([]*consentDomain.Notification, error)
}
