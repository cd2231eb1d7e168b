package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gosettle/internal/domain"
)

// LogNotifier implements usecase.NotificationGateway by writing each
// notification to the log.
type LogNotifier struct {
	logger  zerolog.Logger
	latency time.Duration
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger zerolog.Logger, latency time.Duration) *LogNotifier {
	return &LogNotifier{
		logger:  logger.With().Str("component", "notifier").Logger(),
		latency: latency,
	}
}

// Send logs n after the configured delivery latency.
func (n *LogNotifier) Send(ctx context.Context, notification domain.Notification) error {
	if err := wait(ctx, n.latency); err != nil {
		return err
	}

	n.logger.Info().
		Str("transaction_id", notification.TransactionID).
		Str("account_id", notification.AccountID).
		Str("recipient", notification.Recipient).
		Str("subject", notification.Subject).
		Msg(notification.Body)

	return nil
}
