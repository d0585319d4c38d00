package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gft-fund-ledger/internal/domain/fund"
	"github.com/gft-fund-ledger/internal/platform/persistence"
)

// FundRepository implements the fund.Repository interface for PostgreSQL.
// The fund catalog is seeded by migration and read-only at runtime, so no
// transactional variant is needed.
type FundRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewFundRepository creates a new PostgreSQL fund repository
func NewFundRepository(logger *slog.Logger, db *persistence.PostgresDB) fund.Repository {
	return &FundRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// GetByID retrieves a fund by its ID
func (r *FundRepository) GetByID(ctx context.Context, id string) (*fund.Fund, error) {
	query := `
		SELECT id, name, product_type, minimum_subscription_amount::text
		FROM funds
		WHERE id = $1
	`

	var (
		f       fund.Fund
		minimum string
	)
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&f.ID,
		&f.Name,
		&f.ProductType,
		&minimum,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fund.ErrFundNotFound{FundID: id}
		}
		r.logger.Error("Failed to get fund", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}

	f.MinimumSubscriptionAmount, err = decimal.NewFromString(minimum)
	if err != nil {
		return nil, fmt.Errorf("failed to parse minimum subscription amount for fund %s: %w", id, err)
	}

	return &f, nil
}
