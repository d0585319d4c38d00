package producers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/gft-fund-ledger/internal/config"
)

// ErrDLQDisabled is returned when a publish is attempted without a
// configured dead letter topic.
var ErrDLQDisabled = errors.New("dead letter queue is disabled")

// deadLetterEnvelope carries the original message alongside the failure
// reason so undeliverable notices can be inspected or replayed later.
type deadLetterEnvelope struct {
	OriginalKey   string `json:"original_key"`
	OriginalValue string `json:"original_value"`
	DLQReason     string `json:"dlq_reason"`
	Timestamp     string `json:"timestamp"`
}

type DLQProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewDLQProducer returns (nil, nil) when no DLQ topic is configured; callers
// treat a nil producer as "DLQ disabled" rather than an error.
func NewDLQProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("No DLQ topic configured, dead letter publishing disabled")
		return nil, nil
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("dial kafka for dlq producer: %w", err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, cfg.DLQTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("ensure dlq topic %s: %w", cfg.DLQTopic, err)
	}

	return &DLQProducer{
		logger: logger,
		topic:  cfg.DLQTopic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers),
			Topic:        cfg.DLQTopic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			WriteTimeout: cfg.MaxWait,
		},
	}, nil
}

// PublishToDLQ wraps the undeliverable message in an envelope and writes it
// to the dead letter topic under the original key.
func (p *DLQProducer) PublishToDLQ(ctx context.Context, key string, originalValue []byte, reason string) error {
	if p == nil || p.writer == nil {
		return ErrDLQDisabled
	}

	value, err := json.Marshal(deadLetterEnvelope{
		OriginalKey:   key,
		OriginalValue: string(originalValue),
		DLQReason:     reason,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal dead letter envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "dlq-reason", Value: []byte(reason)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish to DLQ",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("publish to dlq %s: %w", p.topic, err)
	}

	p.logger.Info("Message published to DLQ",
		"topic", p.topic,
		"key", key,
		"reason", reason,
	)
	return nil
}

func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close dlq writer for topic %s: %w", p.topic, err)
	}
	return nil
}
