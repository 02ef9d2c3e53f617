package usecase

import (
	"context"
	"time"

	consentDomain "github.com/allisson/sealkeeper/internal/consent/domain"
	"github.com/allisson/sealkeeper/internal/metrics"
)

// recryptionConsentUseCaseWithMetrics decorates RecryptionConsentUseCase with metrics instrumentation.
type recryptionConsentUseCaseWithMetrics struct {
	next    RecryptionConsentUseCase
	metrics metrics.BusinessMetrics
}

// NewRecryptionConsentUseCaseWithMetrics wraps a RecryptionConsentUseCase with metrics recording.
// Read-only operations are passed through unrecorded.
func NewRecryptionConsentUseCaseWithMetrics(
	useCase RecryptionConsentUseCase,
	m metrics.BusinessMetrics,
) RecryptionConsentUseCase {
	return &recryptionConsentUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *recryptionConsentUseCaseWithMetrics) PushRequest(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, error) {
	start := time.Now()
	request, err := r.next.PushRequest(ctx, ownerID)
	r.record(ctx, "recryption_request_push", start, err)
	return request, err
}

func (r *recryptionConsentUseCaseWithMetrics) Accept(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, error) {
	start := time.Now()
	request, err := r.next.Accept(ctx, ownerID)
	r.record(ctx, "recryption_request_accept", start, err)
	return request, err
}

func (r *recryptionConsentUseCaseWithMetrics) Decline(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, error) {
	start := time.Now()
	request, err := r.next.Decline(ctx, ownerID)
	r.record(ctx, "recryption_request_decline", start, err)
	return request, err
}

func (r *recryptionConsentUseCaseWithMetrics) RemoveRequestNotification(ctx context.Context, ownerID string) error {
	start := time.Now()
	err := r.next.RemoveRequestNotification(ctx, ownerID)
	r.record(ctx, "recryption_request_remove_notification", start, err)
	return err
}

func (r *recryptionConsentUseCaseWithMetrics) PushDenied(
	ctx context.Context,
	ownerID string,
	allowProtest bool,
) error {
	start := time.Now()
	err := r.next.PushDenied(ctx, ownerID, allowProtest)
	r.record(ctx, "recryption_request_deny", start, err)
	return err
}

func (r *recryptionConsentUseCaseWithMetrics) Protest(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, error) {
	start := time.Now()
	request, err := r.next.Protest(ctx, ownerID)
	r.record(ctx, "recryption_request_protest", start, err)
	return request, err
}

func (r *recryptionConsentUseCaseWithMetrics) PushHandled(ctx context.Context, ownerID string) error {
	start := time.Now()
	err := r.next.PushHandled(ctx, ownerID)
	r.record(ctx, "recryption_request_handled", start, err)
	return err
}

func (r *recryptionConsentUseCaseWithMetrics) GetRequest(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, bool, error) {
	return r.next.GetRequest(ctx, ownerID)
}

func (r *recryptionConsentUseCaseWithMetrics) ListNotifications(
	ctx context.Context,
	recipientID string,
) ([]*consentDomain.Notification, error) {
	return r.next.ListNotifications(ctx, recipientID)
}

func (r *recryptionConsentUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}

	r.metrics.RecordOperation(ctx, "consent", operation, status)
	r.metrics.RecordDuration(ctx, "consent", operation, time.Since(start), status)
}
