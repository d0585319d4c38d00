package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gft-fund-ledger/internal/domain/notification"
)

func testOutboxMessage() *notification.Message {
	payload, _ := json.Marshal(&notification.Notice{
		Channel:               notification.ChannelEmail,
		Addressee:             "juan.perez@example.com",
		Subject:               "Fund Subscription Confirmation",
		Body:                  "body",
		ClientID:              "CLIENTE001",
		BusinessTransactionID: "btx-1",
	})
	return &notification.Message{
		BusinessTransactionID: "btx-1",
		ClientID:              "CLIENTE001",
		Payload:               payload,
		Status:                notification.OutboxStatusPending,
		Attempts:              0,
		CreatedAt:             time.Now(),
	}
}

func TestOutboxRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: logger}
	message := testOutboxMessage()

	query := `
		INSERT INTO notification_outbox \(business_transaction_id, client_id, payload, status, attempts, created_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)
		RETURNING id
	`

	t.Run("success assigns the generated id", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id"}).AddRow(int64(42))
		mock.ExpectQuery(query).
			WithArgs(message.BusinessTransactionID, message.ClientID, message.Payload, message.Status, message.Attempts, message.CreatedAt).
			WillReturnRows(rows)

		err := repo.Create(ctx, message)
		assert.NoError(t, err)
		assert.Equal(t, int64(42), message.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectQuery(query).
			WithArgs(message.BusinessTransactionID, message.ClientID, message.Payload, message.Status, message.Attempts, message.CreatedAt).
			WillReturnError(dbErr)

		err := repo.Create(ctx, message)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create outbox message")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_GetPending(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: logger}

	query := `
		SELECT id, business_transaction_id, client_id, payload, status, attempts, created_at, last_attempt_at
		FROM notification_outbox
		WHERE status = \$1
		ORDER BY created_at ASC
		LIMIT \$2
	`

	t.Run("success", func(t *testing.T) {
		now := time.Now()
		rows := pgxmock.NewRows([]string{"id", "business_transaction_id", "client_id", "payload", "status", "attempts", "created_at", "last_attempt_at"}).
			AddRow(int64(1), "btx-1", "CLIENTE001", json.RawMessage(`{}`), notification.OutboxStatusPending, 0, now, (*time.Time)(nil)).
			AddRow(int64(2), "btx-2", "CLIENTE002", json.RawMessage(`{}`), notification.OutboxStatusPending, 1, now, &now)
		mock.ExpectQuery(query).WithArgs(notification.OutboxStatusPending, 100).WillReturnRows(rows)

		messages, err := repo.GetPending(ctx, 100)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, int64(1), messages[0].ID)
		assert.Nil(t, messages[0].LastAttemptAt)
		assert.Equal(t, "btx-2", messages[1].BusinessTransactionID)
		assert.Equal(t, 1, messages[1].Attempts)
		assert.NotNil(t, messages[1].LastAttemptAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "business_transaction_id", "client_id", "payload", "status", "attempts", "created_at", "last_attempt_at"})
		mock.ExpectQuery(query).WithArgs(notification.OutboxStatusPending, 100).WillReturnRows(rows)

		messages, err := repo.GetPending(ctx, 100)
		assert.NoError(t, err)
		assert.Empty(t, messages)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectQuery(query).WithArgs(notification.OutboxStatusPending, 100).WillReturnError(dbErr)

		messages, err := repo.GetPending(ctx, 100)
		assert.Nil(t, messages)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: logger}

	query := `
		UPDATE notification_outbox
		SET status = \$1, last_attempt_at = \$2
		WHERE id = \$3
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(notification.OutboxStatusProcessed, pgxmock.AnyArg(), int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateStatus(ctx, 1, notification.OutboxStatusProcessed)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(notification.OutboxStatusProcessed, pgxmock.AnyArg(), int64(99)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(ctx, 99, notification.OutboxStatusProcessed)
		var notFound notification.ErrMessageNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, int64(99), notFound.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_IncrementAttempts(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: logger}

	query := `
		UPDATE notification_outbox
		SET attempts = attempts \+ 1, last_attempt_at = \$1
		WHERE id = \$2
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(pgxmock.AnyArg(), int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.IncrementAttempts(ctx, 1)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(pgxmock.AnyArg(), int64(99)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.IncrementAttempts(ctx, 99)
		assert.ErrorIs(t, err, notification.ErrMessageNotFound{ID: 99})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
