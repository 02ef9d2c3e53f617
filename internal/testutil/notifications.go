package testutil

import (
	"context"
	"sync"
	"time"

	consentDomain "github.com/allisson/sealkeeper/internal/consent/domain"
)

// MemoryNotificationSink keeps notifications in memory.
type MemoryNotificationSink struct {
	mu            sync.Mutex
	notifications []*consentDomain.Notification
}

// NewMemoryNotificationSink creates an empty sink.
func NewMemoryNotificationSink() *MemoryNotificationSink {
	return &MemoryNotificationSink{}
}

// Notify stores notification.
func (s *MemoryNotificationSink) Notify(_ context.Context, notification *consentDomain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, notification)
	return nil
}

// MarkProcessed marks pending notifications with subject about targetID.
func (s *MemoryNotificationSink) MarkProcessed(_ context.Context, subject, targetID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	var count int64
	for _, n := range s.notifications {
		if n.Subject == subject && n.TargetID == targetID && n.ProcessedAt == nil {
			n.ProcessedAt = &now
			count++
		}
	}
	return count, nil
}

// ListPending returns recipientID's unprocessed notifications in creation order.
func (s *MemoryNotificationSink) ListPending(
	_ context.Context,
	recipientID string,
) ([]*consentDomain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]*consentDomain.Notification, 0)
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && n.ProcessedAt == nil {
			pending = append(pending, n)
		}
	}
	return pending, nil
}

// All returns every notification ever sent.
func (s *MemoryNotificationSink) All() []*consentDomain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*consentDomain.Notification(nil), s.notifications...)
}
