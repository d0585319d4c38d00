package client

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gft-fund-ledger/internal/domain/notification"
)

// DefaultInitialBalance is the cash balance assigned to every new client
var DefaultInitialBalance = decimal.RequireFromString("500000.00")

// Investment is a client's active holding in one fund, embedded in the
// client document. At most one investment exists per fund.
type Investment struct {
	FundID                string          `json:"fund_id"`
	FundName              string          `json:"fund_name"`
	InitialAmountInvested decimal.Decimal `json:"initial_amount_invested"`
	CurrentAmount         decimal.Decimal `json:"current_amount"`
	SubscriptionDate      time.Time       `json:"subscription_date"`
	TransactionID         string          `json:"transaction_id"`
}

// Client represents an account holder with a cash balance and fund holdings
type Client struct {
	ID                     string               `json:"id"`
	FirstName              string               `json:"first_name"`
	LastName               string               `json:"last_name"`
	City                   string               `json:"city"`
	Balance                decimal.Decimal      `json:"balance"`
	NotificationPreference notification.Channel `json:"notification_preference"`
	Investments            []Investment         `json:"investments"`
	PhoneNumber            string               `json:"phone_number"`
	Email                  string               `json:"email"`
	Version                int                  `json:"version"` // For optimistic locking
	CreatedAt              time.Time            `json:"created_at"`
	UpdatedAt              time.Time            `json:"updated_at"`
}

// New creates a client with the default initial balance and no holdings
func New(id, firstName, lastName, city string, preference notification.Channel, phoneNumber, email string) *Client {
	now := time.Now()
	return &Client{
		ID:                     id,
		FirstName:              firstName,
		LastName:               lastName,
		City:                   city,
		Balance:                DefaultInitialBalance,
		NotificationPreference: preference,
		Investments:            []Investment{},
		PhoneNumber:            phoneNumber,
		Email:                  email,
		Version:                1,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

// InvestmentIn returns the client's active investment in the given fund
func (c *Client) InvestmentIn(fundID string) (Investment, bool) {
	for _, inv := range c.Investments {
		if inv.FundID == fundID {
			return inv, true
		}
	}
	return Investment{}, false
}

// Clone returns a deep copy so ledger transitions can produce a new snapshot
// without touching the loaded one
func (c *Client) Clone() *Client {
	next := *c
	next.Investments = make([]Investment, len(c.Investments))
	copy(next.Investments, c.Investments)
	return &next
}

// Recipient projects the fields the notification composer needs
func (c *Client) Recipient() notification.Recipient {
	return notification.Recipient{
		ClientID:    c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		Preference:  c.NotificationPreference,
	}
}
