package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/gft-fund-ledger/internal/domain/transaction"
)

// TransactionService is the fund transaction engine surface exposed to the
// HTTP layer
type TransactionService interface {
	// Subscribe validates and commits a subscription, returning the
	// committed transaction record
	Subscribe(ctx context.Context, clientID, fundID string, amount decimal.Decimal) (*transaction.Transaction, error)

	// Cancel validates and commits a cancellation of the client's entire
	// position in the fund
	Cancel(ctx context.Context, clientID, fundID string) (*transaction.Transaction, error)

	// History returns the client's transaction records, newest first
	History(ctx context.Context, clientID string) ([]*transaction.Transaction, error)
}

// RejectionRecorder records an audit trail for rejected operations
type RejectionRecorder interface {
	RecordRejection(ctx context.Context, rejected *transaction.Transaction)
}

// ErrTooManyConflicts indicates the optimistic-locking retry bound was
// exhausted without a successful commit
type ErrTooManyConflicts struct {
	ClientID string
}

func (e ErrTooManyConflicts) Error() string {
	return "too many concurrent modifications for client: " + e.ClientID
}

// Is matches any ErrTooManyConflicts when the target carries no id
func (e ErrTooManyConflicts) Is(target error) bool {
	t, ok := target.(ErrTooManyConflicts)
	if !ok {
		return false
	}
	return t.ClientID == "" || t.ClientID == e.ClientID
}
