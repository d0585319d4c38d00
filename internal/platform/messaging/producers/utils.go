package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// ensureTopic creates the topic when the broker does not already have it.
// Partition reads are retried because a freshly started broker can briefly
// report no metadata.
func ensureTopic(conn *kafka.Conn, topic string, partitions, replicationFactor int, log *slog.Logger) error {
	var existing []kafka.Partition
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		existing, err = conn.ReadPartitions(topic)
		if err == nil {
			break
		}
		log.Warn("Failed to read partitions",
			"topic", topic,
			"attempt", attempt,
			"error", err,
		)
		time.Sleep(2 * time.Second)
	}

	if len(existing) > 0 {
		log.Debug("Kafka topic already exists", "topic", topic)
		return nil
	}

	if partitions <= 0 {
		partitions = 1
	}
	if replicationFactor <= 0 {
		replicationFactor = 1
	}
	if err := conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: replicationFactor,
	}); err != nil {
		return fmt.Errorf("create kafka topic %s: %w", topic, err)
	}

	log.Info("Created Kafka topic",
		"topic", topic,
		"partitions", partitions,
		"replication_factor", replicationFactor,
	)
	return nil
}
