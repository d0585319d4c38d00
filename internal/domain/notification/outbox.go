package notification

import (
	"encoding/json"
	"time"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// Message stores a committed notice for reliable post-commit publishing.
// Rows are inserted in the same database transaction that commits the
// client mutation, so a notice can never exist for an uncommitted operation.
type Message struct {
	ID                    int64           `json:"id"`
	BusinessTransactionID string          `json:"business_transaction_id"`
	ClientID              string          `json:"client_id"`
	Payload               json.RawMessage `json:"payload"`
	Status                OutboxStatus    `json:"status"`
	Attempts              int             `json:"attempts"`
	CreatedAt             time.Time       `json:"created_at"`
	LastAttemptAt         *time.Time      `json:"last_attempt_at,omitempty"`
}

func NewMessage(notice *Notice) (*Message, error) {
	payload, err := json.Marshal(notice)
	if err != nil {
		return nil, err
	}

	return &Message{
		BusinessTransactionID: notice.BusinessTransactionID,
		ClientID:              notice.ClientID,
		Payload:               payload,
		Status:                OutboxStatusPending,
		Attempts:              0,
		CreatedAt:             time.Now(),
	}, nil
}

// Notice extracts the notice from the payload
func (m *Message) Notice() (*Notice, error) {
	var notice Notice
	if err := json.Unmarshal(m.Payload, &notice); err != nil {
		return nil, err
	}
	return &notice, nil
}
