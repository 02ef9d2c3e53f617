// Package domain defines the recryption consent workflow state and the
// notifications it sends to owners and stakeholders.
package domain

import (
	"time"

	"github.com/allisson/sealkeeper/internal/errors"
)

// RequestStatus is the state of a RecryptionRequest.
type RequestStatus string

// Request states. A request starts Pending, moves to Accepted, Declined or
// Protested, and is removed once handled.
const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestDeclined  RequestStatus = "declined"
	RequestProtested RequestStatus = "protested"
	RequestHandled   RequestStatus = "handled"
)

// RecryptionRequest records that an owner's key change awaits acknowledgement
// from the other stakeholders. At most one request exists per owner.
type RecryptionRequest struct {
	OwnerID      string        `json:"owner_id"`
	Status       RequestStatus `json:"status"`
	AllowProtest bool          `json:"allow_protest,omitempty"`
	RequestedAt  time.Time     `json:"requested_at"`
	ReopenedAt   time.Time     `json:"reopened_at,omitzero"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// AwaitingSince returns when the current decision round started: the protest
// time for a re-opened request, the request time otherwise.
func (r *RecryptionRequest) AwaitingSince() time.Time {
	if r.ReopenedAt.After(r.RequestedAt) {
		return r.ReopenedAt
	}
	return r.RequestedAt
}

// IsExpired reports whether a request still waiting for a decision has waited
// longer than ttl. A zero ttl never expires.
func (r *RecryptionRequest) IsExpired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	if r.Status != RequestPending && r.Status != RequestProtested {
		return false
	}
	return now.Sub(r.AwaitingSince()) > ttl
}

// IsAwaitingDecision reports whether stakeholders can still accept or decline.
func (r *RecryptionRequest) IsAwaitingDecision() bool {
	return r.Status == RequestPending || r.Status == RequestProtested
}

var (
	// ErrRequestNotFound indicates a transition was attempted with no active request.
	ErrRequestNotFound = errors.Wrap(errors.ErrNotFound, "recryption request not found")

	// ErrRequestAlreadyPending indicates the owner already has an active request.
	ErrRequestAlreadyPending = errors.Wrap(errors.ErrConflict, "recryption request already pending")

	// ErrInvalidTransition indicates the request is not in a state allowing the transition.
	ErrInvalidTransition = errors.Wrap(errors.ErrConflict, "invalid recryption request transition")
)
