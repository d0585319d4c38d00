package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gft-fund-ledger/internal/domain/notification"
	"github.com/gft-fund-ledger/internal/platform/messaging/producers"
)

// NoticePublisher pushes a stored outbox message onto the notification topic
type NoticePublisher interface {
	PublishNotice(ctx context.Context, message *notification.Message) error
}

// NoticePublisherImpl implements NoticePublisher
type NoticePublisherImpl struct {
	outboxRepo notification.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewNoticePublisher creates a new publisher
func NewNoticePublisher(
	outboxRepo notification.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) NoticePublisher {
	return &NoticePublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishNotice publishes the message payload to Kafka and marks the row
// PROCESSED. A payload that no longer unmarshals is dead on arrival and is
// marked FAILED_TO_PUBLISH immediately rather than retried.
func (p *NoticePublisherImpl) PublishNotice(ctx context.Context, message *notification.Message) error {
	notice, err := message.Notice()
	if err != nil {
		p.logger.Error("Failed to unmarshal notice from outbox payload",
			"outbox_id", message.ID, "business_transaction_id", message.BusinessTransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, notification.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger.With("business_transaction_id", message.BusinessTransactionID)
	logger.Info("Attempting to publish outbox notice", "outbox_id", message.ID, "channel", string(notice.Channel))

	// Key by client so a client's notices stay ordered within a partition
	if err := p.producer.Publish(ctx, message.ClientID, json.RawMessage(message.Payload)); err != nil {
		return fmt.Errorf("failed to publish notice for outbox %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, notification.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "error", err,
		)
		return fmt.Errorf("notice for %s published, but failed to mark outbox %d as PROCESSED: %w", message.BusinessTransactionID, message.ID, err)
	}

	logger.Info("Outbox notice successfully published and marked as PROCESSED", "outbox_id", message.ID)
	return nil
}
