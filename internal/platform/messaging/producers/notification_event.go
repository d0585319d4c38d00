package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/gft-fund-ledger/internal/config"
)

// NotificationEventProducer publishes committed notification events from the
// outbox to the notification topic. Writes are synchronous so the poller
// only marks rows the broker has acknowledged.
type NotificationEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

func NewNotificationEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*NotificationEventProducer, error) {
	if cfg.NotificationTopic == "" {
		return nil, fmt.Errorf("kafka notification topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("dial kafka for notification producer: %w", err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, cfg.NotificationTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("ensure notification topic %s: %w", cfg.NotificationTopic, err)
	}

	return &NotificationEventProducer{
		logger: logger,
		topic:  cfg.NotificationTopic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers),
			Topic:        cfg.NotificationTopic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			WriteTimeout: cfg.MaxWait,
		},
	}, nil
}

// Publish writes the value as JSON under the given key. Keying by client id
// keeps one client's notices in order on a single partition.
func (p *NotificationEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish notification event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("publish notification event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published notification event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *NotificationEventProducer) Close() error {
	p.logger.Info("Closing notification Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close notification kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
