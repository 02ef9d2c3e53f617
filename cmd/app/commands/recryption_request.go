package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	consentDomain "github.com/allisson/sealkeeper/internal/consent/domain"
	consentUsecase "github.com/allisson/sealkeeper/internal/consent/usecase"
)

// Recryption request actions accepted by RunRecryptionRequest.
const (
	RequestActionPush    = "push"
	RequestActionAccept  = "accept"
	RequestActionDecline = "decline"
	RequestActionDeny    = "deny"
	RequestActionProtest = "protest"
	RequestActionHandled = "handled"
	RequestActionStatus  = "status"
)

type requestOutput struct {
	OwnerID      string    `json:"owner_id"`
	Status       string    `json:"status"`
	AllowProtest bool      `json:"allow_protest"`
	RequestedAt  time.Time `json:"requested_at,omitzero"`
}

type notificationOutput struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	TargetID  string    `json:"target_id"`
	Actions   []string  `json:"actions"`
	CreatedAt time.Time `json:"created_at"`
}

// RunRecryptionRequest applies action to ownerID's recryption request and prints
// the resulting state. allowProtest only applies to "deny".
func RunRecryptionRequest(
	ctx context.Context,
	consent consentUsecase.RecryptionConsentUseCase,
	logger *slog.Logger,
	writer io.Writer,
	action, ownerID string,
	allowProtest bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	var err error
	switch action {
	case RequestActionPush:
		_, err = consent.PushRequest(ctx, ownerID)
	case RequestActionAccept:
		_, err = consent.Accept(ctx, ownerID)
	case RequestActionDecline:
		_, err = consent.Decline(ctx, ownerID)
	case RequestActionDeny:
		err = consent.PushDenied(ctx, ownerID, allowProtest)
	case RequestActionProtest:
		_, err = consent.Protest(ctx, ownerID)
	case RequestActionHandled:
		err = consent.PushHandled(ctx, ownerID)
	case RequestActionStatus:
	default:
		return fmt.Errorf("invalid recryption request action: %s", action)
	}
	if err != nil {
		return fmt.Errorf("failed to %s recryption request: %w", action, err)
	}

	request, found, err := consent.GetRequest(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to load recryption request: %w", err)
	}

	output := requestOutput{OwnerID: ownerID, Status: "none"}
	if found {
		output.Status = string(request.Status)
		output.AllowProtest = request.AllowProtest
		output.RequestedAt = request.RequestedAt
	}

	logger.Info("recryption request",
		slog.String("action", action),
		slog.String("owner_id", ownerID),
		slog.String("status", output.Status),
	)

	if format == "json" {
		return outputJSON(writer, output)
	}
	_, _ = fmt.Fprintf(writer, "Owner: %s\n", output.OwnerID)
	_, _ = fmt.Fprintf(writer, "Status: %s\n", output.Status)
	if output.AllowProtest {
		_, _ = fmt.Fprintln(writer, "Protest allowed")
	}
	return nil
}

// RunListNotifications prints recipientID's unprocessed notifications.
func RunListNotifications(
	ctx context.Context,
	consent consentUsecase.RecryptionConsentUseCase,
	writer io.Writer,
	recipientID, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	notifications, err := consent.ListNotifications(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("failed to list notifications: %w", err)
	}

	outputs := make([]notificationOutput, 0, len(notifications))
	for _, n := range notifications {
		outputs = append(outputs, describeNotification(n))
	}

	if format == "json" {
		return outputJSON(writer, outputs)
	}
	if len(outputs) == 0 {
		_, _ = fmt.Fprintln(writer, "No pending notifications")
		return nil
	}
	for _, n := range outputs {
		_, _ = fmt.Fprintf(writer, "%s  %s about %s  %v\n", n.CreatedAt.Format(time.RFC3339), n.Subject, n.TargetID, n.Actions)
	}
	return nil
}

func describeNotification(n *consentDomain.Notification) notificationOutput {
	actions := make([]string, 0, len(n.Actions))
	for _, action := range n.Actions {
		actions = append(actions, action.Verb)
	}
	return notificationOutput{
		ID:        n.ID.String(),
		Subject:   n.Subject,
		TargetID:  n.TargetID,
		Actions:   actions,
		CreatedAt: n.CreatedAt,
	}
}
