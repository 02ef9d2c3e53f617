// Package usecase records key pair lifecycle events in the outbox and delivers
// them asynchronously.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/sealkeeper/internal/database"
	"github.com/allisson/sealkeeper/internal/events"
	"github.com/allisson/sealkeeper/internal/metrics"
	"github.com/allisson/sealkeeper/internal/outbox/domain"
)

// Config holds outbox use case configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// EventProcessor delivers a single outbox event.
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase defines the interface for outbox use cases
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// Recorder writes lifecycle events to the outbox. Subscribed to the event bus,
// it runs inside the rotation's transaction, so the record exists only if the
// rotation commits.
type Recorder struct {
	outboxRepo OutboxEventRepository
}

// NewRecorder creates a Recorder.
func NewRecorder(outboxRepo OutboxEventRepository) *Recorder {
	return &Recorder{outboxRepo: outboxRepo}
}

// Subscribe registers the recorder for both lifecycle events.
func (r *Recorder) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.KeyPairBeforeChanged, "outbox", r.Handle)
	bus.Subscribe(events.KeyPairAfterChanged, "outbox", r.Handle)
}

// Handle persists event as a pending outbox record.
func (r *Recorder) Handle(ctx context.Context, event events.KeyPairChanged) error {
	payload := domain.KeyPairChangedPayload{
		OwnerID:        event.OwnerID,
		OldFingerprint: event.OldPair.Fingerprint(),
		NewFingerprint: event.NewPair.Fingerprint(),
		OccurredAt:     time.Now().UTC(),
	}
	if event.NewPair != nil {
		payload.Backend = string(event.NewPair.Backend)
	} else if event.OldPair != nil {
		payload.Backend = string(event.OldPair.Backend)
	}

	record, err := domain.NewOutboxEvent(event.Name, payload)
	if err != nil {
		return err
	}
	return r.outboxRepo.Create(ctx, record)
}

// OutboxUseCase implements business logic for processing outbox events
type OutboxUseCase struct {
	config         Config
	txManager      database.TxManager
	outboxRepo     OutboxEventRepository
	eventProcessor EventProcessor
	logger         *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	logger *slog.Logger,
) *OutboxUseCase {
	return &OutboxUseCase{
		config:         config,
		txManager:      txManager,
		outboxRepo:     outboxRepo,
		eventProcessor: eventProcessor,
		logger:         logger,
	}
}

// Start runs the processing loop until ctx is cancelled.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox event processor",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox event processor")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				uc.logger.Error("failed to process events", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents delivers one batch of pending events in a transaction.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		pending, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		if len(pending) == 0 {
			return nil
		}

		uc.logger.Debug("processing events", slog.Int("count", len(pending)))

		for _, event := range pending {
			if err := uc.eventProcessor.Process(ctx, event); err != nil {
				uc.logger.Error("failed to process event",
					slog.String("event_id", event.ID.String()),
					slog.String("event_type", event.EventType),
					slog.Any("error", err),
				)

				event.Retries++
				errorMsg := err.Error()
				event.LastError = &errorMsg

				if event.Retries >= uc.config.MaxRetries {
					event.Status = domain.OutboxEventStatusFailed
				}

				if err := uc.outboxRepo.Update(ctx, event); err != nil {
					return err
				}
				continue
			}

			now := time.Now().UTC()
			event.Status = domain.OutboxEventStatusProcessed
			event.ProcessedAt = &now

			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
}

// AuditEventProcessor delivers lifecycle events to the audit log and business metrics.
type AuditEventProcessor struct {
	logger  *slog.Logger
	metrics metrics.BusinessMetrics
}

// NewAuditEventProcessor creates an AuditEventProcessor.
func NewAuditEventProcessor(logger *slog.Logger, businessMetrics metrics.BusinessMetrics) *AuditEventProcessor {
	return &AuditEventProcessor{logger: logger, metrics: businessMetrics}
}

// Process logs the event and records its delivery lag.
func (p *AuditEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := event.DecodePayload()
	if err != nil {
		return err
	}

	switch event.EventType {
	case events.KeyPairBeforeChanged, events.KeyPairAfterChanged:
		p.logger.Info("key pair lifecycle event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
			slog.String("owner_id", payload.OwnerID),
			slog.String("backend", payload.Backend),
			slog.String("old_fingerprint", payload.OldFingerprint),
			slog.String("new_fingerprint", payload.NewFingerprint),
			slog.Time("occurred_at", payload.OccurredAt),
		)
		p.metrics.RecordEventDelivery(ctx, event.EventType, time.Since(payload.OccurredAt))
	default:
		p.logger.Warn("unknown event type", slog.String("event_type", event.EventType))
	}

	return nil
}
