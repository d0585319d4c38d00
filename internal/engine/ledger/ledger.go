// Package ledger computes the state transitions of the fund transaction
// engine. Both transitions are pure: they take an immutable client snapshot
// and return a new snapshot plus a draft transaction record. They never
// validate; the orchestrator only calls them after validation succeeds,
// which keeps them total.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gft-fund-ledger/internal/domain/client"
	"github.com/gft-fund-ledger/internal/domain/fund"
	"github.com/gft-fund-ledger/internal/domain/transaction"
)

// ApplySubscription produces the client state after subscribing the given
// amount to the fund: balance reduced, investment appended with current
// amount equal to the initial amount.
func ApplySubscription(c *client.Client, f *fund.Fund, amount decimal.Decimal, now time.Time, businessTxID string) (*client.Client, *transaction.Transaction) {
	next := c.Clone()
	next.Balance = c.Balance.Sub(amount)
	next.Investments = append(next.Investments, client.Investment{
		FundID:                f.ID,
		FundName:              f.Name,
		InitialAmountInvested: amount,
		CurrentAmount:         amount,
		SubscriptionDate:      now,
		TransactionID:         businessTxID,
	})
	next.Version++
	next.UpdatedAt = now

	draft := &transaction.Transaction{
		BusinessTransactionID: businessTxID,
		ClientID:              c.ID,
		FundID:                f.ID,
		FundName:              f.Name,
		Type:                  transaction.TypeSubscription,
		Amount:                amount,
		Date:                  now,
		ClientBalanceBefore:   c.Balance,
		ClientBalanceAfter:    next.Balance,
		Status:                transaction.StatusCompleted,
	}

	return next, draft
}

// ApplyCancellation produces the client state after cancelling the given
// investment: the initial amount invested is returned to the balance and
// the investment is removed.
func ApplyCancellation(c *client.Client, inv client.Investment, now time.Time, businessTxID string) (*client.Client, *transaction.Transaction) {
	refund := inv.InitialAmountInvested

	next := c.Clone()
	next.Balance = c.Balance.Add(refund)
	kept := next.Investments[:0]
	for _, held := range next.Investments {
		if held.FundID != inv.FundID {
			kept = append(kept, held)
		}
	}
	next.Investments = kept
	next.Version++
	next.UpdatedAt = now

	draft := &transaction.Transaction{
		BusinessTransactionID: businessTxID,
		ClientID:              c.ID,
		FundID:                inv.FundID,
		FundName:              inv.FundName,
		Type:                  transaction.TypeCancellation,
		Amount:                refund,
		Date:                  now,
		ClientBalanceBefore:   c.Balance,
		ClientBalanceAfter:    next.Balance,
		Status:                transaction.StatusCompleted,
	}

	return next, draft
}
