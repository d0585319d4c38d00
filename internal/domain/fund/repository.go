package fund

import (
	"context"
)

// Repository provides read access to the fund catalog
type Repository interface {
	GetByID(ctx context.Context, id string) (*Fund, error)
}

// ErrFundNotFound indicates missing fund
type ErrFundNotFound struct {
	FundID string
}

func (e ErrFundNotFound) Error() string {
	return "fund not found: " + e.FundID
}

// Is matches any ErrFundNotFound when the target carries no id
func (e ErrFundNotFound) Is(target error) bool {
	t, ok := target.(ErrFundNotFound)
	if !ok {
		return false
	}
	return t.FundID == "" || t.FundID == e.FundID
}
