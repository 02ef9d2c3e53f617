package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/sealkeeper/internal/outbox/domain"
)

var eventColumns = []string{
	"id", "event_type", "payload", "status", "retries", "last_error", "processed_at", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newTestEvent(t *testing.T) *domain.OutboxEvent {
	t.Helper()
	event, err := domain.NewOutboxEvent("keypair.after_changed", domain.KeyPairChangedPayload{OwnerID: "alice"})
	require.NoError(t, err)
	return event
}

func TestPostgreSQLOutboxEventRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	event := newTestEvent(t)

	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(event.ID, event.EventType, event.Payload, event.Status, 0, nil, nil, event.CreatedAt, event.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgreSQLOutboxEventRepository(db).Create(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLOutboxEventRepository_GetPendingEvents(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM outbox_events").
		WithArgs(domain.OutboxEventStatusPending, 10).
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow(id.String(), "keypair.after_changed", `{"owner_id":"alice"}`, "pending", 1, nil, nil, now, now))

	events, err := NewPostgreSQLOutboxEventRepository(db).GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.Equal(t, 1, events[0].Retries)
	assert.Nil(t, events[0].LastError)
}

func TestPostgreSQLOutboxEventRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	event := newTestEvent(t)
	event.Status = domain.OutboxEventStatusFailed

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs(domain.OutboxEventStatusFailed, 0, nil, nil, event.ID).
		WillReturnError(errors.New("deadlock"))

	err := NewPostgreSQLOutboxEventRepository(db).Update(context.Background(), event)
	assert.ErrorContains(t, err, "deadlock")
	assert.ErrorContains(t, err, event.ID.String())
}

func TestMySQLOutboxEventRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	event := newTestEvent(t)
	idBytes, err := event.ID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(idBytes, event.EventType, event.Payload, event.Status, 0, nil, nil, event.CreatedAt, event.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewMySQLOutboxEventRepository(db).Create(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOutboxEventRepository_GetPendingEvents(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.Must(uuid.NewV7())
	idBytes, err := id.MarshalBinary()
	require.NoError(t, err)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM outbox_events").
		WithArgs(domain.OutboxEventStatusPending, 5).
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow(idBytes, "keypair.before_changed", `{}`, "pending", 0, nil, nil, now, now))

	events, err := NewMySQLOutboxEventRepository(db).GetPendingEvents(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.Equal(t, "keypair.before_changed", events[0].EventType)
}

func TestMySQLOutboxEventRepository_GetPendingEventsInvalidID(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM outbox_events").
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow([]byte{1, 2}, "keypair.before_changed", `{}`, "pending", 0, nil, nil, now, now))

	_, err := NewMySQLOutboxEventRepository(db).GetPendingEvents(context.Background(), 5)
	assert.ErrorContains(t, err, "failed to unmarshal outbox event id")
}
