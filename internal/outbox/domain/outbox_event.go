// Package domain defines the durable record of key pair lifecycle events.
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// OutboxEvent is a lifecycle event written in the same transaction as the key
// change it describes, then delivered asynchronously by the processor.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// KeyPairChangedPayload is the JSON payload of a key pair event. It carries
// fingerprints only; key material never reaches the outbox.
type KeyPairChangedPayload struct {
	OwnerID        string    `json:"owner_id"`
	Backend        string    `json:"backend,omitempty"`
	OldFingerprint string    `json:"old_fingerprint,omitempty"`
	NewFingerprint string    `json:"new_fingerprint,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewOutboxEvent creates a pending event with a JSON-encoded payload.
func NewOutboxEvent(eventType string, payload KeyPairChangedPayload) (*OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	now := time.Now().UTC()
	return &OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   string(data),
		Status:    OutboxEventStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DecodePayload parses the event's payload.
func (e *OutboxEvent) DecodePayload() (KeyPairChangedPayload, error) {
	var payload KeyPairChangedPayload
	if err := json.Unmarshal([]byte(e.Payload), &payload); err != nil {
		return KeyPairChangedPayload{}, fmt.Errorf("failed to decode outbox payload: %w", err)
	}
	return payload, nil
}
