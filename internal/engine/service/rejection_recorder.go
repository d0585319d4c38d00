package service

import (
	"context"
	"log/slog"

	"github.com/gft-fund-ledger/internal/domain/transaction"
)

// RejectionRecorderImpl appends REJECTED records to the transaction log so
// failed attempts leave an audit trail. Recording is best-effort: a storage
// failure here must never mask the rejection itself.
type RejectionRecorderImpl struct {
	transactions transaction.Repository
	logger       *slog.Logger
}

func NewRejectionRecorder(transactions transaction.Repository, logger *slog.Logger) RejectionRecorder {
	return &RejectionRecorderImpl{
		transactions: transactions,
		logger:       logger,
	}
}

// RecordRejection appends the rejected record
func (r *RejectionRecorderImpl) RecordRejection(ctx context.Context, rejected *transaction.Transaction) {
	r.logger.Info("Recording rejected operation",
		"business_transaction_id", rejected.BusinessTransactionID,
		"client_id", rejected.ClientID,
		"type", string(rejected.Type),
		"reason", rejected.ErrorMessage,
	)

	if err := r.transactions.Append(ctx, rejected); err != nil {
		r.logger.Error("Failed to record rejected operation",
			"business_transaction_id", rejected.BusinessTransactionID,
			"client_id", rejected.ClientID,
			"error", err,
		)
	}
}
