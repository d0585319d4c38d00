// Package fund holds the immutable fund reference data consumed by the
// transaction engine. The catalog is owned externally and seeded by
// migration; this core never mutates it.
package fund

import (
	"github.com/shopspring/decimal"
)

// Fund represents an investable product
type Fund struct {
	ID                        string          `json:"id"`
	Name                      string          `json:"name"`
	ProductType               string          `json:"product_type"`
	MinimumSubscriptionAmount decimal.Decimal `json:"minimum_subscription_amount"`
}
