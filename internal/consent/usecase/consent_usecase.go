package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/jellydator/validation"

	consentDomain "github.com/allisson/sealkeeper/internal/consent/domain"
	"github.com/allisson/sealkeeper/internal/database"
	customValidation "github.com/allisson/sealkeeper/internal/validation"
)

type recryptionConsentUseCase struct {
	txManager database.TxManager
	requests  RequestRepository
	sink      NotificationSink
	directory StakeholderDirectory
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewRecryptionConsentUseCase creates the consent workflow. Requests older
// than ttl that still await a decision are treated as absent; a zero ttl keeps
// them forever.
func NewRecryptionConsentUseCase(
	txManager database.TxManager,
	requests RequestRepository,
	sink NotificationSink,
	directory StakeholderDirectory,
	ttl time.Duration,
	logger *slog.Logger,
) RecryptionConsentUseCase {
	return &recryptionConsentUseCase{
		txManager: txManager,
		requests:  requests,
		sink:      sink,
		directory: directory,
		ttl:       ttl,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *recryptionConsentUseCase) PushRequest(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, error) {
	if err := validateOwnerID(ownerID); err != nil {
		return nil, err
	}

	var request *consentDomain.RecryptionRequest
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		_, found, err := r.active(ctx, ownerID)
		if err != nil {
			return err
		}
		if found {
			return consentDomain.ErrRequestAlreadyPending
		}

		now := r.now()
		request = &consentDomain.RecryptionRequest{
			OwnerID:     ownerID,
			Status:      consentDomain.RequestPending,
			RequestedAt: now,
			UpdatedAt:   now,
		}
		if err := r.requests.Save(ctx, request); err != nil {
			return err
		}
		return r.notifyStakeholders(ctx, ownerID, consentDomain.SubjectRecryptionRequest, true)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("recryption request pushed", slog.String("owner_id", ownerID))
	return request, nil
}

func (r *recryptionConsentUseCase) Accept(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, error) {
	return r.decide(ctx, ownerID, consentDomain.RequestAccepted)
}

func (r *recryptionConsentUseCase) Decline(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, error) {
	return r.decide(ctx, ownerID, consentDomain.RequestDeclined)
}

func (r *recryptionConsentUseCase) decide(
	ctx context.Context,
	ownerID string,
	status consentDomain.RequestStatus,
) (*consentDomain.RecryptionRequest, error) {
	if err := validateOwnerID(ownerID); err != nil {
		return nil, err
	}

	var request *consentDomain.RecryptionRequest
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		request, err = r.require(ctx, ownerID)
		if err != nil {
			return err
		}
		if !request.IsAwaitingDecision() {
			return fmt.Errorf("%w: request of %s is %s", consentDomain.ErrInvalidTransition, ownerID, request.Status)
		}

		request.Status = status
		request.UpdatedAt = r.now()
		if err := r.requests.Save(ctx, request); err != nil {
			return err
		}
		_, err = r.sink.MarkProcessed(ctx, consentDomain.SubjectRecryptionRequest, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("recryption request decided",
		slog.String("owner_id", ownerID),
		slog.String("status", string(status)),
	)
	return request, nil
}

func (r *recryptionConsentUseCase) RemoveRequestNotification(ctx context.Context, ownerID string) error {
	if err := validateOwnerID(ownerID); err != nil {
		return err
	}

	count, err := r.sink.MarkProcessed(ctx, consentDomain.SubjectRecryptionRequest, ownerID)
	if err != nil {
		return err
	}

	r.logger.Debug("recryption request notifications removed",
		slog.String("owner_id", ownerID),
		slog.Int64("count", count),
	)
	return nil
}

func (r *recryptionConsentUseCase) PushDenied(ctx context.Context, ownerID string, allowProtest bool) error {
	if err := validateOwnerID(ownerID); err != nil {
		return err
	}

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		request, err := r.require(ctx, ownerID)
		if err != nil {
			return err
		}

		request.Status = consentDomain.RequestDeclined
		request.AllowProtest = allowProtest
		request.UpdatedAt = r.now()
		if err := r.requests.Save(ctx, request); err != nil {
			return err
		}
		if _, err := r.sink.MarkProcessed(ctx, consentDomain.SubjectRecryptionRequest, ownerID); err != nil {
			return err
		}

		notification := consentDomain.NewNotification(ownerID, consentDomain.SubjectRecryptionDenied, ownerID)
		if allowProtest {
			notification.WithAction("Protest", consentDomain.ActionProtest)
		}
		return r.sink.Notify(ctx, notification)
	})
	if err != nil {
		return err
	}

	r.logger.Info("recryption request denied",
		slog.String("owner_id", ownerID),
		slog.Bool("allow_protest", allowProtest),
	)
	return nil
}

func (r *recryptionConsentUseCase) Protest(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, error) {
	if err := validateOwnerID(ownerID); err != nil {
		return nil, err
	}

	var request *consentDomain.RecryptionRequest
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		request, err = r.require(ctx, ownerID)
		if err != nil {
			return err
		}
		if request.Status != consentDomain.RequestDeclined || !request.AllowProtest {
			return fmt.Errorf("%w: request of %s cannot be protested", consentDomain.ErrInvalidTransition, ownerID)
		}

		now := r.now()
		request.Status = consentDomain.RequestProtested
		request.AllowProtest = false
		request.ReopenedAt = now
		request.UpdatedAt = now
		if err := r.requests.Save(ctx, request); err != nil {
			return err
		}
		if _, err := r.sink.MarkProcessed(ctx, consentDomain.SubjectRecryptionDenied, ownerID); err != nil {
			return err
		}
		return r.notifyStakeholders(ctx, ownerID, consentDomain.SubjectRecryptionRequest, true)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("recryption request protested", slog.String("owner_id", ownerID))
	return request, nil
}

func (r *recryptionConsentUseCase) PushHandled(ctx context.Context, ownerID string) error {
	if err := validateOwnerID(ownerID); err != nil {
		return err
	}

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.require(ctx, ownerID); err != nil {
			return err
		}

		for _, subject := range []string{
			consentDomain.SubjectRecryptionRequest,
			consentDomain.SubjectRecryptionDenied,
		} {
			if _, err := r.sink.MarkProcessed(ctx, subject, ownerID); err != nil {
				return err
			}
		}
		if err := r.notifyStakeholders(ctx, ownerID, consentDomain.SubjectRecryptionHandled, false); err != nil {
			return err
		}
		return r.requests.Delete(ctx, ownerID)
	})
	if err != nil {
		return err
	}

	r.logger.Info("recryption request handled", slog.String("owner_id", ownerID))
	return nil
}

func (r *recryptionConsentUseCase) GetRequest(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, bool, error) {
	if err := validateOwnerID(ownerID); err != nil {
		return nil, false, err
	}

	var (
		request *consentDomain.RecryptionRequest
		found   bool
	)
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		request, found, err = r.active(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return request, found, nil
}

func (r *recryptionConsentUseCase) ListNotifications(
	ctx context.Context,
	recipientID string,
) ([]*consentDomain.Notification, error) {
	if err := validateOwnerID(recipientID); err != nil {
		return nil, err
	}
	return r.sink.ListPending(ctx, recipientID)
}

// active loads the owner's request, hiding expired ones.
func (r *recryptionConsentUseCase) active(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, bool, error) {
	request, err := r.requests.Get(ctx, ownerID)
	if errors.Is(err, consentDomain.ErrRequestNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if request.IsExpired(r.ttl, r.now()) {
		if err := r.discard(ctx, ownerID); err != nil {
			return nil, false, err
		}
		r.logger.Info("recryption request expired",
			slog.String("owner_id", ownerID),
			slog.Time("awaiting_since", request.AwaitingSince()),
		)
		return nil, false, nil
	}
	return request, true, nil
}

// discard removes an expired request along with the decision notices still
// pending for it.
func (r *recryptionConsentUseCase) discard(ctx context.Context, ownerID string) error {
	if _, err := r.sink.MarkProcessed(ctx, consentDomain.SubjectRecryptionRequest, ownerID); err != nil {
		return err
	}
	return r.requests.Delete(ctx, ownerID)
}

func (r *recryptionConsentUseCase) require(
	ctx context.Context,
	ownerID string,
) (*consentDomain.RecryptionRequest, error) {
	request, found, err := r.active(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: owner %s", consentDomain.ErrRequestNotFound, ownerID)
	}
	return request, nil
}

func (r *recryptionConsentUseCase) notifyStakeholders(
	ctx context.Context,
	ownerID, subject string,
	withDecision bool,
) error {
	stakeholders, err := r.directory.Stakeholders(ctx, ownerID)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(stakeholders))
	for _, stakeholder := range stakeholders {
		if stakeholder == ownerID {
			continue
		}
		if _, ok := seen[stakeholder]; ok {
			continue
		}
		seen[stakeholder] = struct{}{}

		notification := consentDomain.NewNotification(stakeholder, subject, ownerID)
		if withDecision {
			notification.
				WithAction("Accept", consentDomain.ActionAccept).
				WithAction("Decline", consentDomain.ActionDecline)
		}
		if err := r.sink.Notify(ctx, notification); err != nil {
			return err
		}
	}
	return nil
}

func validateOwnerID(ownerID string) error {
	err := validation.Validate(ownerID, validation.Required, customValidation.OwnerID)
	return customValidation.WrapValidationError(err)
}
