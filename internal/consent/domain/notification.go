package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification subjects.
const (
	SubjectRecryptionRequest = "recryption_request"
	SubjectRecryptionDenied  = "recryption_denied"
	SubjectRecryptionHandled = "recryption_handled"
)

// Action verbs offered on notifications.
const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
	ActionProtest = "protest"
)

// NotificationAction is a named action the recipient can take.
type NotificationAction struct {
	Label string `json:"label"`
	Verb  string `json:"verb"`
}

// Notification is a message to RecipientID about the request of TargetID.
type Notification struct {
	ID          uuid.UUID
	RecipientID string
	Subject     string
	TargetID    string
	Actions     []NotificationAction
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewNotification creates an unsent notification with a UUIDv7 id.
func NewNotification(recipientID, subject, targetID string) *Notification {
	return &Notification{
		ID:          uuid.Must(uuid.NewV7()),
		RecipientID: recipientID,
		Subject:     subject,
		TargetID:    targetID,
		Actions:     make([]NotificationAction, 0),
		CreatedAt:   time.Now().UTC(),
	}
}

// WithAction appends an action and returns n.
func (n *Notification) WithAction(label, verb string) *Notification {
	n.Actions = append(n.Actions, NotificationAction{Label: label, Verb: verb})
	return n
}

// HasAction reports whether the notification offers verb.
func (n *Notification) HasAction(verb string) bool {
	for _, action := range n.Actions {
		if action.Verb == verb {
			return true
		}
	}
	return false
}
