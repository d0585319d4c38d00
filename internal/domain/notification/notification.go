// Package notification holds the notification value objects exchanged between
// the fund transaction engine, the outbox, and the dispatcher.
package notification

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Channel defines the delivery channels a client can prefer
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
	ChannelNone  Channel = "NONE"
)

// ParseChannel maps a stored preference onto a known Channel
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelEmail, ChannelSMS, ChannelNone:
		return Channel(s), nil
	default:
		return "", fmt.Errorf("unknown notification channel: %q", s)
	}
}

const (
	subscriptionSubject = "Fund Subscription Confirmation"
	cancellationSubject = "Subscription Cancellation Confirmation"
)

// Notice is a fully resolved notification ready for dispatch: the channel and
// addressee are already derived from the client's preference
type Notice struct {
	Channel               Channel `json:"channel"`
	Addressee             string  `json:"addressee"`
	Subject               string  `json:"subject"`
	Body                  string  `json:"body"`
	ClientID              string  `json:"client_id"`
	BusinessTransactionID string  `json:"business_transaction_id"`
}

// Gateway delivers a notice over its channel. Implementations must never be
// called with ChannelNone
type Gateway interface {
	Send(ctx context.Context, notice *Notice) error
}

// ErrChannelNone indicates the client opted out of notifications
type ErrChannelNone struct {
	ClientID string
}

func (e ErrChannelNone) Error() string {
	return "client opted out of notifications: " + e.ClientID
}

// ErrMissingContact indicates the preferred channel has no contact field
type ErrMissingContact struct {
	ClientID string
	Channel  Channel
}

func (e ErrMissingContact) Error() string {
	return fmt.Sprintf("client %s prefers %s but has no contact registered", e.ClientID, e.Channel)
}

// Recipient carries the client fields needed to address a notice
type Recipient struct {
	ClientID    string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Preference  Channel
}

func (r Recipient) addressee() (string, error) {
	switch r.Preference {
	case ChannelEmail:
		if r.Email == "" {
			return "", ErrMissingContact{ClientID: r.ClientID, Channel: ChannelEmail}
		}
		return r.Email, nil
	case ChannelSMS:
		if r.PhoneNumber == "" {
			return "", ErrMissingContact{ClientID: r.ClientID, Channel: ChannelSMS}
		}
		return r.PhoneNumber, nil
	default:
		return "", ErrChannelNone{ClientID: r.ClientID}
	}
}

// NewSubscriptionNotice builds the confirmation for a committed subscription.
// Returns ErrChannelNone or ErrMissingContact when nothing should be sent.
func NewSubscriptionNotice(r Recipient, fundName string, amount, newBalance decimal.Decimal, businessTxID string) (*Notice, error) {
	addressee, err := r.addressee()
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf(
		"Dear %s %s, your subscription to fund %s has been successful for an amount of COP %s. "+
			"Your new available balance is COP %s.",
		r.FirstName, r.LastName, fundName, amount.StringFixed(2), newBalance.StringFixed(2),
	)

	return &Notice{
		Channel:               r.Preference,
		Addressee:             addressee,
		Subject:               subscriptionSubject,
		Body:                  body,
		ClientID:              r.ClientID,
		BusinessTransactionID: businessTxID,
	}, nil
}

// NewCancellationNotice builds the confirmation for a committed cancellation
func NewCancellationNotice(r Recipient, fundName string, refunded, newBalance decimal.Decimal, businessTxID string) (*Notice, error) {
	addressee, err := r.addressee()
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf(
		"Dear %s %s, the cancellation of your subscription to fund %s has been successful. "+
			"COP %s has been returned to your account. Your new available balance is COP %s.",
		r.FirstName, r.LastName, fundName, refunded.StringFixed(2), newBalance.StringFixed(2),
	)

	return &Notice{
		Channel:               r.Preference,
		Addressee:             addressee,
		Subject:               cancellationSubject,
		Body:                  body,
		ClientID:              r.ClientID,
		BusinessTransactionID: businessTxID,
	}, nil
}
