package client

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines client persistence operations
type Repository interface {
	Create(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, id string) (*Client, error)

	// Update persists a new snapshot using optimistic locking: the write only
	// succeeds when the stored version matches the version the snapshot was
	// derived from
	Update(ctx context.Context, client *Client) error

	// LockForUpdate acquires a pessimistic row lock for the duration of the
	// enclosing transaction
	LockForUpdate(ctx context.Context, id string) (*Client, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrClientNotFound indicates missing client
type ErrClientNotFound struct {
	ClientID string
}

func (e ErrClientNotFound) Error() string {
	return "client not found: " + e.ClientID
}

// Is matches any ErrClientNotFound when the target carries no id
func (e ErrClientNotFound) Is(target error) bool {
	t, ok := target.(ErrClientNotFound)
	if !ok {
		return false
	}
	return t.ClientID == "" || t.ClientID == e.ClientID
}

// ErrConcurrentModification indicates a lost optimistic-locking race
type ErrConcurrentModification struct {
	ClientID string
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for client: " + e.ClientID
}

// Is matches any ErrConcurrentModification when the target carries no id
func (e ErrConcurrentModification) Is(target error) bool {
	t, ok := target.(ErrConcurrentModification)
	if !ok {
		return false
	}
	return t.ClientID == "" || t.ClientID == e.ClientID
}
