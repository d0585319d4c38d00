package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gft-fund-ledger/internal/domain/client"
	"github.com/gft-fund-ledger/internal/domain/fund"
	"github.com/gft-fund-ledger/internal/domain/notification"
	"github.com/gft-fund-ledger/internal/domain/transaction"
	"github.com/gft-fund-ledger/internal/engine/ledger"
	"github.com/gft-fund-ledger/internal/engine/validation"
)

// TxBeginner starts database transactions. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Engine orchestrates one fund operation per call: load and lock the client
// snapshot, validate, apply the ledger transition, persist the new snapshot
// together with the notification outbox event, then append the transaction
// record. The load-validate-apply-save cycle is retried on a lost
// optimistic-locking race, bounded by maxAttempts.
type Engine struct {
	db           TxBeginner
	clients      client.Repository
	funds        fund.Repository
	transactions transaction.Repository
	outbox       notification.Repository
	recorder     RejectionRecorder
	maxAttempts  int
	logger       *slog.Logger

	// Overridable for tests
	now     func() time.Time
	newTxID func() string
}

func NewEngine(
	db TxBeginner,
	clients client.Repository,
	funds fund.Repository,
	transactions transaction.Repository,
	outbox notification.Repository,
	recorder RejectionRecorder,
	maxAttempts int,
	logger *slog.Logger,
) *Engine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Engine{
		db:           db,
		clients:      clients,
		funds:        funds,
		transactions: transactions,
		outbox:       outbox,
		recorder:     recorder,
		maxAttempts:  maxAttempts,
		logger:       logger,
		now:          time.Now,
		newTxID:      uuid.NewString,
	}
}

// Subscribe validates and commits a subscription to a fund
func (e *Engine) Subscribe(ctx context.Context, clientID, fundID string, amount decimal.Decimal) (*transaction.Transaction, error) {
	logger := e.logger.With("client_id", clientID, "fund_id", fundID)
	logger.Info("Initiating subscription", "amount", amount.StringFixed(2))

	f, err := e.funds.GetByID(ctx, fundID)
	if err != nil {
		if errors.Is(err, fund.ErrFundNotFound{}) {
			logger.Warn("Fund not found for subscription")
			return nil, err
		}
		return nil, fmt.Errorf("failed to load fund %s: %w", fundID, err)
	}

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		committed, err := e.subscribeOnce(ctx, logger, clientID, f, amount)
		if err != nil {
			if errors.Is(err, client.ErrConcurrentModification{}) {
				logger.Warn("Lost optimistic-locking race, retrying subscription", "attempt", attempt)
				continue
			}
			return nil, err
		}
		logger.Info("Subscription committed",
			"business_transaction_id", committed.BusinessTransactionID,
			"new_balance", committed.ClientBalanceAfter.StringFixed(2),
		)
		return committed, nil
	}

	logger.Error("Subscription conflict retries exhausted", "attempts", e.maxAttempts)
	return nil, ErrTooManyConflicts{ClientID: clientID}
}

func (e *Engine) subscribeOnce(ctx context.Context, logger *slog.Logger, clientID string, f *fund.Fund, amount decimal.Decimal) (committed *transaction.Transaction, err error) {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin database transaction: %w", err)
	}
	defer e.finishTx(ctx, tx, logger, &err)

	c, err := e.clients.WithTx(tx).LockForUpdate(ctx, clientID)
	if err != nil {
		if errors.Is(err, client.ErrClientNotFound{}) {
			logger.Warn("Client not found for subscription")
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock client %s: %w", clientID, err)
	}

	if verr := validation.ValidateSubscription(c, f, amount); verr != nil {
		logger.Warn("Subscription rejected", "reason", verr.Message, "kind", string(verr.Kind))
		e.recorder.RecordRejection(ctx, rejectedRecord(c, f.ID, f.Name, transaction.TypeSubscription, amount, verr, e.now(), e.newTxID()))
		return nil, verr
	}

	next, draft := ledger.ApplySubscription(c, f, amount, e.now(), e.newTxID())

	if err = e.enqueueNotice(ctx, tx, logger, next, draft); err != nil {
		return nil, err
	}

	if err = e.clients.WithTx(tx).Update(ctx, next); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit subscription for client %s: %w", clientID, err)
	}

	return draft, e.appendCommitted(ctx, logger, draft)
}

// Cancel validates and commits the cancellation of the client's entire
// position in a fund
func (e *Engine) Cancel(ctx context.Context, clientID, fundID string) (*transaction.Transaction, error) {
	logger := e.logger.With("client_id", clientID, "fund_id", fundID)
	logger.Info("Initiating cancellation")

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		committed, err := e.cancelOnce(ctx, logger, clientID, fundID)
		if err != nil {
			if errors.Is(err, client.ErrConcurrentModification{}) {
				logger.Warn("Lost optimistic-locking race, retrying cancellation", "attempt", attempt)
				continue
			}
			return nil, err
		}
		logger.Info("Cancellation committed",
			"business_transaction_id", committed.BusinessTransactionID,
			"new_balance", committed.ClientBalanceAfter.StringFixed(2),
		)
		return committed, nil
	}

	logger.Error("Cancellation conflict retries exhausted", "attempts", e.maxAttempts)
	return nil, ErrTooManyConflicts{ClientID: clientID}
}

func (e *Engine) cancelOnce(ctx context.Context, logger *slog.Logger, clientID, fundID string) (committed *transaction.Transaction, err error) {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin database transaction: %w", err)
	}
	defer e.finishTx(ctx, tx, logger, &err)

	c, err := e.clients.WithTx(tx).LockForUpdate(ctx, clientID)
	if err != nil {
		if errors.Is(err, client.ErrClientNotFound{}) {
			logger.Warn("Client not found for cancellation")
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock client %s: %w", clientID, err)
	}

	inv, verr := validation.ValidateCancellation(c, fundID)
	if verr != nil {
		logger.Warn("Cancellation rejected", "reason", verr.Message, "kind", string(verr.Kind))
		e.recorder.RecordRejection(ctx, rejectedRecord(c, fundID, "", transaction.TypeCancellation, decimal.Zero, verr, e.now(), e.newTxID()))
		return nil, verr
	}

	next, draft := ledger.ApplyCancellation(c, inv, e.now(), e.newTxID())

	if err = e.enqueueNotice(ctx, tx, logger, next, draft); err != nil {
		return nil, err
	}

	if err = e.clients.WithTx(tx).Update(ctx, next); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation for client %s: %w", clientID, err)
	}

	return draft, e.appendCommitted(ctx, logger, draft)
}

// History returns the client's transaction records, newest first
func (e *Engine) History(ctx context.Context, clientID string) ([]*transaction.Transaction, error) {
	return e.transactions.ListByClient(ctx, clientID)
}

// appendCommitted writes the committed record to the transaction log. The
// client snapshot is already durable at this point; an append failure leaves
// a detectable inconsistency which is logged and surfaced rather than
// silently hidden.
func (e *Engine) appendCommitted(ctx context.Context, logger *slog.Logger, draft *transaction.Transaction) error {
	if err := e.transactions.Append(ctx, draft); err != nil {
		logger.Error("Client snapshot committed but transaction log append failed; log is missing a committed operation",
			"business_transaction_id", draft.BusinessTransactionID,
			"error", err,
		)
		return fmt.Errorf("transaction log append failed after commit for %s: %w", draft.BusinessTransactionID, err)
	}
	return nil
}

// enqueueNotice composes the confirmation for the committed draft and stores
// it in the outbox within the same database transaction. A client who opted
// out, or whose preferred channel has no contact registered, is skipped with
// a log line; neither outcome fails the operation.
func (e *Engine) enqueueNotice(ctx context.Context, tx pgx.Tx, logger *slog.Logger, next *client.Client, draft *transaction.Transaction) error {
	var (
		notice *notification.Notice
		err    error
	)
	switch draft.Type {
	case transaction.TypeSubscription:
		notice, err = notification.NewSubscriptionNotice(next.Recipient(), draft.FundName, draft.Amount, draft.ClientBalanceAfter, draft.BusinessTransactionID)
	case transaction.TypeCancellation:
		notice, err = notification.NewCancellationNotice(next.Recipient(), draft.FundName, draft.Amount, draft.ClientBalanceAfter, draft.BusinessTransactionID)
	default:
		return fmt.Errorf("unknown transaction type: %s", draft.Type)
	}

	if err != nil {
		var none notification.ErrChannelNone
		var missing notification.ErrMissingContact
		switch {
		case errors.As(err, &none):
			logger.Info("Client does not wish to receive notifications")
			return nil
		case errors.As(err, &missing):
			logger.Warn("Client has no contact registered for preferred channel, no notification will be sent",
				"channel", string(missing.Channel))
			return nil
		default:
			return fmt.Errorf("failed to compose notification: %w", err)
		}
	}

	msg, err := notification.NewMessage(notice)
	if err != nil {
		return fmt.Errorf("failed to build notification outbox payload: %w", err)
	}

	if err := e.outbox.WithTx(tx).Create(ctx, msg); err != nil {
		return fmt.Errorf("failed to enqueue notification for %s: %w", draft.BusinessTransactionID, err)
	}

	logger.Info("Notification enqueued", "channel", string(notice.Channel))
	return nil
}

// finishTx rolls the transaction back when the operation failed or panicked.
// Rollback after a successful commit is a no-op error that is ignored.
func (e *Engine) finishTx(ctx context.Context, tx pgx.Tx, logger *slog.Logger, opErr *error) {
	if p := recover(); p != nil {
		_ = tx.Rollback(ctx)
		panic(p)
	}
	if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		logger.Error("Failed to rollback transaction", "rollback_error", rbErr, "original_error", *opErr)
	}
}

func rejectedRecord(c *client.Client, fundID, fundName string, txType transaction.Type, amount decimal.Decimal, verr *validation.Error, now time.Time, businessTxID string) *transaction.Transaction {
	return &transaction.Transaction{
		BusinessTransactionID: businessTxID,
		ClientID:              c.ID,
		FundID:                fundID,
		FundName:              fundName,
		Type:                  txType,
		Amount:                amount,
		Date:                  now,
		ClientBalanceBefore:   c.Balance,
		ClientBalanceAfter:    c.Balance,
		Status:                transaction.StatusRejected,
		ErrorMessage:          verr.Message,
	}
}
