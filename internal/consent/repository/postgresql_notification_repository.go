package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/allisson/sealkeeper/internal/consent/domain"
	"github.com/allisson/sealkeeper/internal/database"
	apperrors "github.com/allisson/sealkeeper/internal/errors"
)

// PostgreSQLNotificationRepository handles notification persistence for PostgreSQL.
type PostgreSQLNotificationRepository struct {
	db *sql.DB
}

// NewPostgreSQLNotificationRepository creates a new PostgreSQLNotificationRepository.
func NewPostgreSQLNotificationRepository(db *sql.DB) *PostgreSQLNotificationRepository {
	return &PostgreSQLNotificationRepository{db: db}
}

// Notify stores a new notification.
func (r *PostgreSQLNotificationRepository) Notify(ctx context.Context, notification *domain.Notification) error {
	querier := database.GetTx(ctx, r.db)

	actions, err := json.Marshal(notification.Actions)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode notification actions")
	}

	query := `INSERT INTO notifications (id, recipient_id, subject, target_id, actions, created_at, processed_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(ctx, query, notification.ID, notification.RecipientID, notification.Subject,
		notification.TargetID, string(actions), notification.CreatedAt, notification.ProcessedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create notification")
	}
	return nil
}

// MarkProcessed marks every unprocessed notification with subject about targetID
// as processed and returns how many were updated.
func (r *PostgreSQLNotificationRepository) MarkProcessed(
	ctx context.Context,
	subject, targetID string,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE notifications SET processed_at = $1
			  WHERE subject = $2 AND target_id = $3 AND processed_at IS NULL`

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), subject, targetID)
	if err != nil {
		return 0, apperrors.Wrapf(err, "failed to mark %s notifications of %s processed", subject, targetID)
	}
	return result.RowsAffected()
}

// ListPending returns the recipient's unprocessed notifications, oldest first.
func (r *PostgreSQLNotificationRepository) ListPending(
	ctx context.Context,
	recipientID string,
) ([]*domain.Notification, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, recipient_id, subject, target_id, actions, created_at, processed_at
			  FROM notifications
			  WHERE recipient_id = $1 AND processed_at IS NULL
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list notifications")
	}
	defer rows.Close() //nolint:errcheck

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		var notification domain.Notification
		var actions string

		err := rows.Scan(&notification.ID, &notification.RecipientID, &notification.Subject,
			&notification.TargetID, &actions, &notification.CreatedAt, &notification.ProcessedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan notification")
		}
		if err := decodeActions(&notification, actions); err != nil {
			return nil, err
		}
		notifications = append(notifications, &notification)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate notifications")
	}
	return notifications, nil
}

func decodeActions(notification *domain.Notification, actions string) error {
	notification.Actions = make([]domain.NotificationAction, 0)
	if actions == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(actions), &notification.Actions); err != nil {
		return apperrors.Wrap(err, "failed to decode notification actions")
	}
	return nil
}
