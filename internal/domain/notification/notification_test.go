package notification

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emailRecipient() Recipient {
	return Recipient{
		ClientID:    "CLIENTE001",
		FirstName:   "Juan",
		LastName:    "Perez",
		Email:       "juan.perez@example.com",
		PhoneNumber: "573001234567",
		Preference:  ChannelEmail,
	}
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		input    string
		expected Channel
		wantErr  bool
	}{
		{input: "EMAIL", expected: ChannelEmail},
		{input: "SMS", expected: ChannelSMS},
		{input: "NONE", expected: ChannelNone},
		{input: "email", wantErr: true},
		{input: "", wantErr: true},
		{input: "CARRIER_PIGEON", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseChannel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNewSubscriptionNotice(t *testing.T) {
	amount := decimal.RequireFromString("150000.00")
	balance := decimal.RequireFromString("350000.00")

	t.Run("email preference", func(t *testing.T) {
		notice, err := NewSubscriptionNotice(emailRecipient(), "Fondo BTG Liquidez", amount, balance, "btx-1")
		require.NoError(t, err)

		assert.Equal(t, ChannelEmail, notice.Channel)
		assert.Equal(t, "juan.perez@example.com", notice.Addressee)
		assert.Equal(t, "Fund Subscription Confirmation", notice.Subject)
		assert.Equal(t, "CLIENTE001", notice.ClientID)
		assert.Equal(t, "btx-1", notice.BusinessTransactionID)
		assert.Contains(t, notice.Body, "Juan Perez")
		assert.Contains(t, notice.Body, "Fondo BTG Liquidez")
		assert.Contains(t, notice.Body, "COP 150000.00")
		assert.Contains(t, notice.Body, "COP 350000.00")
	})

	t.Run("sms preference uses the phone number", func(t *testing.T) {
		r := emailRecipient()
		r.Preference = ChannelSMS

		notice, err := NewSubscriptionNotice(r, "Fondo BTG Liquidez", amount, balance, "btx-1")
		require.NoError(t, err)
		assert.Equal(t, ChannelSMS, notice.Channel)
		assert.Equal(t, "573001234567", notice.Addressee)
	})

	t.Run("none preference", func(t *testing.T) {
		r := emailRecipient()
		r.Preference = ChannelNone

		_, err := NewSubscriptionNotice(r, "Fondo BTG Liquidez", amount, balance, "btx-1")
		var optedOut ErrChannelNone
		require.ErrorAs(t, err, &optedOut)
		assert.Equal(t, "CLIENTE001", optedOut.ClientID)
	})

	t.Run("email preference without an email", func(t *testing.T) {
		r := emailRecipient()
		r.Email = ""

		_, err := NewSubscriptionNotice(r, "Fondo BTG Liquidez", amount, balance, "btx-1")
		var missing ErrMissingContact
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, ChannelEmail, missing.Channel)
	})

	t.Run("sms preference without a phone number", func(t *testing.T) {
		r := emailRecipient()
		r.Preference = ChannelSMS
		r.PhoneNumber = ""

		_, err := NewSubscriptionNotice(r, "Fondo BTG Liquidez", amount, balance, "btx-1")
		var missing ErrMissingContact
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, ChannelSMS, missing.Channel)
	})
}

func TestNewCancellationNotice(t *testing.T) {
	refunded := decimal.RequireFromString("150000.00")
	balance := decimal.RequireFromString("500000.00")

	notice, err := NewCancellationNotice(emailRecipient(), "Fondo BTG Liquidez", refunded, balance, "btx-2")
	require.NoError(t, err)

	assert.Equal(t, "Subscription Cancellation Confirmation", notice.Subject)
	assert.Contains(t, notice.Body, "cancellation of your subscription to fund Fondo BTG Liquidez")
	assert.Contains(t, notice.Body, "COP 150000.00 has been returned")
	assert.Contains(t, notice.Body, "COP 500000.00")
}

func TestMessage_Notice(t *testing.T) {
	notice, err := NewSubscriptionNotice(emailRecipient(), "Fondo BTG Liquidez",
		decimal.RequireFromString("150000.00"), decimal.RequireFromString("350000.00"), "btx-1")
	require.NoError(t, err)

	msg, err := NewMessage(notice)
	require.NoError(t, err)
	assert.Equal(t, OutboxStatusPending, msg.Status)
	assert.Equal(t, "btx-1", msg.BusinessTransactionID)
	assert.Equal(t, "CLIENTE001", msg.ClientID)
	assert.Zero(t, msg.Attempts)

	got, err := msg.Notice()
	require.NoError(t, err)
	assert.Equal(t, notice, got)

	t.Run("corrupt payload", func(t *testing.T) {
		bad := &Message{Payload: []byte("{not json")}
		_, err := bad.Notice()
		assert.Error(t, err)
	})
}

func TestChannelErrors(t *testing.T) {
	assert.EqualError(t, ErrChannelNone{ClientID: "c1"}, "client opted out of notifications: c1")
	assert.EqualError(t,
		ErrMissingContact{ClientID: "c1", Channel: ChannelSMS},
		"client c1 prefers SMS but has no contact registered")
	assert.False(t, errors.Is(ErrChannelNone{ClientID: "c1"}, ErrMissingContact{ClientID: "c1"}))
}
