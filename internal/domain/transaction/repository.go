package transaction

import (
	"context"
)

// Repository is the append-only transaction log
type Repository interface {
	// Append persists an immutable record. Storage failure aborts the
	// enclosing operation.
	Append(ctx context.Context, tx *Transaction) error

	// GetByBusinessID retrieves a record by its business transaction id.
	// Returns ErrTransactionNotFound when absent.
	GetByBusinessID(ctx context.Context, businessTxID string) (*Transaction, error)

	// ListByClient returns all records for a client, newest first. The
	// sequence is recomputed on every call; there is no caching layer.
	ListByClient(ctx context.Context, clientID string) ([]*Transaction, error)
}

// ErrTransactionNotFound indicates missing transaction record
type ErrTransactionNotFound struct {
	BusinessTransactionID string
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.BusinessTransactionID
}

// Is matches any ErrTransactionNotFound when the target carries no id
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	return t.BusinessTransactionID == "" || t.BusinessTransactionID == e.BusinessTransactionID
}
