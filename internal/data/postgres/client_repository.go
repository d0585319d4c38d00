// Package postgres provides PostgreSQL implementations of the domain
// repositories. Client snapshots live here as the system of record; money
// columns are NUMERIC and cross the wire as text so amounts never pass
// through binary floats.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gft-fund-ledger/internal/domain/client"
	"github.com/gft-fund-ledger/internal/domain/notification"
	"github.com/gft-fund-ledger/internal/platform/persistence"
)

// ClientRepository implements the client.Repository interface for PostgreSQL
type ClientRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewClientRepository creates a new PostgreSQL client repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewClientRepository(logger *slog.Logger, db *persistence.PostgresDB) client.Repository {
	return &ClientRepository{
		querier: db.Pool(), // Initialize with the pool
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls. The returned repository will
// use the provided transaction for all database operations.
func (r *ClientRepository) WithTx(tx pgx.Tx) client.Repository {
	return &ClientRepository{
		querier: tx, // Use the transaction
		logger:  r.logger,
	}
}

// Create stores a new client in the database
func (r *ClientRepository) Create(ctx context.Context, cl *client.Client) error {
	investments, err := json.Marshal(cl.Investments)
	if err != nil {
		return fmt.Errorf("failed to marshal investments for client %s: %w", cl.ID, err)
	}

	query := `
		INSERT INTO clients (id, first_name, last_name, city, balance, notification_preference, investments, phone_number, email, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.querier.Exec(ctx, query,
		cl.ID,
		cl.FirstName,
		cl.LastName,
		cl.City,
		cl.Balance.String(),
		string(cl.NotificationPreference),
		investments,
		cl.PhoneNumber,
		cl.Email,
		cl.Version,
		cl.CreatedAt,
		cl.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create client", "error", err)
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

// GetByID retrieves a client by its ID
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*client.Client, error) {
	query := `
		SELECT id, first_name, last_name, city, balance::text, notification_preference, investments, phone_number, email, version, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	return r.scanClient(r.querier.QueryRow(ctx, query, id), id, "get client")
}

// Update persists a new client snapshot using optimistic locking: the write
// only succeeds when the stored version is the one the snapshot was derived
// from. Returns ErrConcurrentModification when another writer got there first.
func (r *ClientRepository) Update(ctx context.Context, cl *client.Client) error {
	investments, err := json.Marshal(cl.Investments)
	if err != nil {
		return fmt.Errorf("failed to marshal investments for client %s: %w", cl.ID, err)
	}

	query := `
		UPDATE clients
		SET balance = $1, notification_preference = $2, investments = $3, phone_number = $4, email = $5, version = $6, updated_at = $7
		WHERE id = $8 AND version = $9
	`

	result, err := r.querier.Exec(ctx, query,
		cl.Balance.String(),
		string(cl.NotificationPreference),
		investments,
		cl.PhoneNumber,
		cl.Email,
		cl.Version,
		cl.UpdatedAt,
		cl.ID,
		cl.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update client", "id", cl.ID, "error", err)
		return fmt.Errorf("failed to update client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return client.ErrConcurrentModification{ClientID: cl.ID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the client row and returns its
// current state. This must be used within a transaction; the lock is held
// until the transaction ends.
func (r *ClientRepository) LockForUpdate(ctx context.Context, id string) (*client.Client, error) {
	query := `
		SELECT id, first_name, last_name, city, balance::text, notification_preference, investments, phone_number, email, version, created_at, updated_at
		FROM clients
		WHERE id = $1
		FOR UPDATE
	`

	return r.scanClient(r.querier.QueryRow(ctx, query, id), id, "lock client for update")
}

func (r *ClientRepository) scanClient(row pgx.Row, id, op string) (*client.Client, error) {
	var (
		cl          client.Client
		balance     string
		preference  string
		investments []byte
	)

	err := row.Scan(
		&cl.ID,
		&cl.FirstName,
		&cl.LastName,
		&cl.City,
		&balance,
		&preference,
		&investments,
		&cl.PhoneNumber,
		&cl.Email,
		&cl.Version,
		&cl.CreatedAt,
		&cl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, client.ErrClientNotFound{ClientID: id}
		}
		r.logger.Error("Failed to "+op, "id", id, "error", err)
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	cl.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance for client %s: %w", id, err)
	}
	cl.NotificationPreference, err = notification.ParseChannel(preference)
	if err != nil {
		return nil, fmt.Errorf("client %s: %w", id, err)
	}
	if err := json.Unmarshal(investments, &cl.Investments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal investments for client %s: %w", id, err)
	}

	return &cl, nil
}
