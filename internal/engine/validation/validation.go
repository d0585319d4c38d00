// Package validation checks the business preconditions for fund
// subscriptions and cancellations. All checks are side-effect-free and
// report failures as closed error kinds rather than free-form errors, so
// callers can switch on them exhaustively.
package validation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gft-fund-ledger/internal/domain/client"
	"github.com/gft-fund-ledger/internal/domain/fund"
)

// Kind identifies which business rule a request violated
type Kind string

const (
	KindBelowMinimum          Kind = "BELOW_MINIMUM"
	KindInsufficientBalance   Kind = "INSUFFICIENT_BALANCE"
	KindDuplicateSubscription Kind = "DUPLICATE_SUBSCRIPTION"
	KindNoActiveInvestment    Kind = "NO_ACTIVE_INVESTMENT"
)

// Error is a business rule violation. The request must be rejected with no
// mutation performed.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// ValidateSubscription checks a subscription request against the client and
// fund snapshots. An amount exactly equal to the fund minimum or to the
// client balance is accepted.
func ValidateSubscription(c *client.Client, f *fund.Fund, amount decimal.Decimal) *Error {
	if amount.LessThan(f.MinimumSubscriptionAmount) {
		return &Error{
			Kind: KindBelowMinimum,
			Message: fmt.Sprintf("the subscription amount (%s) is less than the fund's minimum amount (%s)",
				amount.StringFixed(2), f.MinimumSubscriptionAmount.StringFixed(2)),
		}
	}

	if amount.GreaterThan(c.Balance) {
		return &Error{
			Kind: KindInsufficientBalance,
			Message: fmt.Sprintf("insufficient balance: current balance %s, subscription amount %s",
				c.Balance.StringFixed(2), amount.StringFixed(2)),
		}
	}

	if _, exists := c.InvestmentIn(f.ID); exists {
		return &Error{
			Kind:    KindDuplicateSubscription,
			Message: fmt.Sprintf("the client already has an active investment in fund %s", f.Name),
		}
	}

	return nil
}

// ValidateCancellation returns the investment a cancellation request targets
func ValidateCancellation(c *client.Client, fundID string) (client.Investment, *Error) {
	inv, exists := c.InvestmentIn(fundID)
	if !exists {
		return client.Investment{}, &Error{
			Kind:    KindNoActiveInvestment,
			Message: fmt.Sprintf("client does not have an active investment in fund with ID: %s", fundID),
		}
	}
	return inv, nil
}
