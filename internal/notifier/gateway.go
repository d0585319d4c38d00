package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gft-fund-ledger/internal/domain/notification"
)

// LogGateway delivers notices by writing them to the structured log. It
// stands in for a real email or SMS provider behind the same
// notification.Gateway interface.
type LogGateway struct {
	logger *slog.Logger
}

func NewLogGateway(logger *slog.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

// Send delivers the notice over the channel it was composed for
func (g *LogGateway) Send(_ context.Context, notice *notification.Notice) error {
	switch notice.Channel {
	case notification.ChannelEmail:
		g.logger.Info("Sending email notification",
			"to", notice.Addressee,
			"subject", notice.Subject,
			"body", notice.Body,
			"client_id", notice.ClientID,
			"business_transaction_id", notice.BusinessTransactionID,
		)
		return nil
	case notification.ChannelSMS:
		g.logger.Info("Sending SMS notification",
			"to", notice.Addressee,
			"body", notice.Body,
			"client_id", notice.ClientID,
			"business_transaction_id", notice.BusinessTransactionID,
		)
		return nil
	case notification.ChannelNone:
		return fmt.Errorf("notice for client %s carries channel NONE, nothing to deliver", notice.ClientID)
	default:
		return fmt.Errorf("unknown notification channel: %s", notice.Channel)
	}
}
