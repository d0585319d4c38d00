package producers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockKafkaWriter is shared across package test files - defined in notification_event_test.go

func newDLQForTest(writer KafkaWriter) *DLQProducer {
	return &DLQProducer{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		writer: writer,
		topic:  "test-dlq-topic",
	}
}

func TestDLQProducer_PublishToDLQ(t *testing.T) {
	ctx := context.Background()

	t.Run("wraps the original message in an envelope", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := newDLQForTest(mockWriter)

		key := "CLIENTE001"
		original := []byte(`{"channel":"EMAIL"}`)
		reason := "delivery failed"

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 || string(msgs[0].Key) != key {
				return false
			}
			var envelope deadLetterEnvelope
			if err := json.Unmarshal(msgs[0].Value, &envelope); err != nil {
				return false
			}
			return envelope.OriginalKey == key &&
				envelope.OriginalValue == string(original) &&
				envelope.DLQReason == reason &&
				envelope.Timestamp != ""
		})).Return(nil).Once()

		err := producer.PublishToDLQ(ctx, key, original, reason)
		require.NoError(t, err)
		mockWriter.AssertExpectations(t)
	})

	t.Run("propagates writer errors", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := newDLQForTest(mockWriter)

		writerErr := errors.New("kafka unavailable")
		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writerErr).Once()

		err := producer.PublishToDLQ(ctx, "k", []byte("v"), "r")
		require.ErrorIs(t, err, writerErr)
		mockWriter.AssertExpectations(t)
	})

	t.Run("nil producer reports DLQ disabled", func(t *testing.T) {
		var producer *DLQProducer

		err := producer.PublishToDLQ(ctx, "k", []byte("v"), "r")
		assert.ErrorIs(t, err, ErrDLQDisabled)
	})

	t.Run("nil writer reports DLQ disabled", func(t *testing.T) {
		producer := newDLQForTest(nil)

		err := producer.PublishToDLQ(ctx, "k", []byte("v"), "r")
		assert.ErrorIs(t, err, ErrDLQDisabled)
	})
}

func TestDLQProducer_Close(t *testing.T) {
	t.Run("closes the writer", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := newDLQForTest(mockWriter)

		mockWriter.On("Close").Return(nil).Once()

		require.NoError(t, producer.Close())
		mockWriter.AssertExpectations(t)
	})

	t.Run("propagates close errors", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := newDLQForTest(mockWriter)

		closeErr := errors.New("close failed")
		mockWriter.On("Close").Return(closeErr).Once()

		require.ErrorIs(t, producer.Close(), closeErr)
		mockWriter.AssertExpectations(t)
	})

	t.Run("nil producer closes cleanly", func(t *testing.T) {
		var producer *DLQProducer
		require.NoError(t, producer.Close())
	})
}

var _ DeadLetterPublisher = (*DLQProducer)(nil)
