package client

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gft-fund-ledger/internal/domain/notification"
)

func TestNew(t *testing.T) {
	c := New("CLIENTE001", "Juan", "Perez", "Bogotá", notification.ChannelEmail, "573001234567", "juan.perez@example.com")

	assert.Equal(t, "CLIENTE001", c.ID)
	assert.True(t, c.Balance.Equal(DefaultInitialBalance))
	assert.Equal(t, notification.ChannelEmail, c.NotificationPreference)
	assert.Empty(t, c.Investments)
	assert.Equal(t, 1, c.Version)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestClient_InvestmentIn(t *testing.T) {
	c := New("CLIENTE001", "Juan", "Perez", "Bogotá", notification.ChannelEmail, "", "juan.perez@example.com")
	inv := Investment{
		FundID:                "1",
		FundName:              "Fondo BTG Liquidez",
		InitialAmountInvested: decimal.RequireFromString("150000.00"),
		CurrentAmount:         decimal.RequireFromString("150000.00"),
	}
	c.Investments = append(c.Investments, inv)

	t.Run("found", func(t *testing.T) {
		got, ok := c.InvestmentIn("1")
		assert.True(t, ok)
		assert.Equal(t, inv, got)
	})

	t.Run("not found", func(t *testing.T) {
		_, ok := c.InvestmentIn("2")
		assert.False(t, ok)
	})
}

func TestClient_Clone(t *testing.T) {
	c := New("CLIENTE001", "Juan", "Perez", "Bogotá", notification.ChannelSMS, "573001234567", "")
	c.Investments = append(c.Investments, Investment{
		FundID:                "1",
		InitialAmountInvested: decimal.RequireFromString("150000.00"),
		CurrentAmount:         decimal.RequireFromString("150000.00"),
	})

	clone := c.Clone()
	require.Equal(t, c, clone)

	// Mutating the clone's investments must not leak into the original
	clone.Investments[0].FundID = "9"
	clone.Investments = append(clone.Investments, Investment{FundID: "2"})
	clone.Balance = decimal.Zero

	assert.Equal(t, "1", c.Investments[0].FundID)
	assert.Len(t, c.Investments, 1)
	assert.True(t, c.Balance.Equal(DefaultInitialBalance))
}

func TestClient_Recipient(t *testing.T) {
	c := New("CLIENTE002", "Maria", "Gomez", "Medellín", notification.ChannelSMS, "573109876543", "maria.gomez@example.com")

	r := c.Recipient()
	assert.Equal(t, "CLIENTE002", r.ClientID)
	assert.Equal(t, "Maria", r.FirstName)
	assert.Equal(t, "Gomez", r.LastName)
	assert.Equal(t, "573109876543", r.PhoneNumber)
	assert.Equal(t, "maria.gomez@example.com", r.Email)
	assert.Equal(t, notification.ChannelSMS, r.Preference)
}
