package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type defines the fund operations recorded in the log
type Type string

const (
	TypeSubscription Type = "SUBSCRIPTION"
	TypeCancellation Type = "CANCELLATION"
)

// Status defines terminal outcomes of one engine invocation
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusRejected  Status = "REJECTED"
)

// Transaction is the immutable audit record of one subscription or
// cancellation. Records are append-only: never updated, never deleted.
// Balance snapshots before and after the operation are both kept so the
// balance history can be reconstructed from the log alone.
type Transaction struct {
	ID                    string          `json:"id,omitempty"`
	BusinessTransactionID string          `json:"business_transaction_id"`
	ClientID              string          `json:"client_id"`
	FundID                string          `json:"fund_id"`
	FundName              string          `json:"fund_name"`
	Type                  Type            `json:"type"`
	Amount                decimal.Decimal `json:"amount"`
	Date                  time.Time       `json:"date"`
	ClientBalanceBefore   decimal.Decimal `json:"client_balance_before"`
	ClientBalanceAfter    decimal.Decimal `json:"client_balance_after"`
	Status                Status          `json:"status"`
	ErrorMessage          string          `json:"error_message,omitempty"`
}
