package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gft-fund-ledger/internal/domain/notification"
	"github.com/gft-fund-ledger/internal/platform/messaging/producers"
)

// NoticeEventHandler handles incoming notification events from Kafka
type NoticeEventHandler struct {
	dispatcher Dispatcher
	producer   producers.DeadLetterPublisher
	logger     *slog.Logger
}

// NewNoticeEventHandler creates a new handler
func NewNoticeEventHandler(
	logger *slog.Logger,
	dispatcher Dispatcher,
	producer producers.DeadLetterPublisher,
) *NoticeEventHandler {
	return &NoticeEventHandler{
		dispatcher: dispatcher,
		producer:   producer,
		logger:     logger,
	}
}

// HandleMessage processes Kafka messages. Delivery is best-effort: a notice
// the gateway cannot deliver goes to the DLQ and the offset is committed,
// so one bad recipient never blocks the partition.
func (h *NoticeEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var notice notification.Notice
	if err := json.Unmarshal(value, &notice); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal notice from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger.With(
		"business_transaction_id", notice.BusinessTransactionID,
		"client_id", notice.ClientID,
	)

	logger.Info("Received notice for delivery",
		"channel", string(notice.Channel),
		"subject", notice.Subject,
	)

	if err := h.dispatcher.Dispatch(ctx, &notice); err != nil {
		logger.Error("Failed to deliver notice", "error", err)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("delivery failed: %s", err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				logger.Error("Failed to publish undeliverable notice to DLQ",
					"dlq_error", dlqErr,
					"original_error", err,
				)
			}
		}
		// Best-effort delivery, commit the offset either way
		return nil
	}

	logger.Info("Successfully delivered notice")
	return nil // Success, commit offset
}
