package usecase

import (
	"context"
	"time"

	"github.com/allisson/sealkeeper/internal/metrics"
)

// sealUseCaseWithMetrics decorates SealUseCase with metrics instrumentation.
type sealUseCaseWithMetrics struct {
	next    SealUseCase
	metrics metrics.BusinessMetrics
}

// NewSealUseCaseWithMetrics wraps a SealUseCase with metrics recording.
func NewSealUseCaseWithMetrics(useCase SealUseCase, m metrics.BusinessMetrics) SealUseCase {
	return &sealUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// SealForOwners records metrics for sealing operations.
func (s *sealUseCaseWithMetrics) SealForOwners(
	ctx context.Context,
	plaintext []byte,
	ownerIDs []string,
) (*SealOutput, error) {
	start := time.Now()
	output, err := s.next.SealForOwners(ctx, plaintext, ownerIDs)
	s.record(ctx, "seal", start, err)
	return output, err
}

// Unseal records metrics for unsealing operations.
func (s *sealUseCaseWithMetrics) Unseal(
	ctx context.Context,
	sealed []byte,
	ownerID string,
	passphrase []byte,
) ([]byte, error) {
	start := time.Now()
	plaintext, err := s.next.Unseal(ctx, sealed, ownerID, passphrase)
	s.record(ctx, "unseal", start, err)
	return plaintext, err
}

// Recipients is not instrumented.
func (s *sealUseCaseWithMetrics) Recipients(sealed []byte) ([]string, error) {
	return s.next.Recipients(sealed)
}

// IsSealed is not instrumented.
func (s *sealUseCaseWithMetrics) IsSealed(data []byte) bool {
	return s.next.IsSealed(data)
}

func (s *sealUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}

	s.metrics.RecordOperation(ctx, "seal", operation, status)
	s.metrics.RecordDuration(ctx, "seal", operation, time.Since(start), status)
}
