package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iho/gosettle/internal/domain"
)

const notificationChannelPrefix = "gosettle:notifications:"

type notificationMessage struct {
	TransactionID string `json:"transaction_id"`
	AccountID     string `json:"account_id"`
	Recipient     string `json:"recipient"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
}

// Notifier implements usecase.NotificationGateway by publishing each
// notification on the channel of the notified account.
type Notifier struct {
	client redis.Cmdable
}

// NewNotifier creates a new Notifier.
func NewNotifier(client redis.Cmdable) *Notifier {
	return &Notifier{client: client}
}

// NotificationChannel returns the pub/sub channel for an account.
func NotificationChannel(accountID string) string {
	return notificationChannelPrefix + accountID
}

// Send publishes n. Having no subscriber is not an error.
func (n *Notifier) Send(ctx context.Context, notification domain.Notification) error {
	payload, err := json.Marshal(notificationMessage{
		TransactionID: notification.TransactionID,
		AccountID:     notification.AccountID,
		Recipient:     notification.Recipient,
		Subject:       notification.Subject,
		Body:          notification.Body,
	})
	if err != nil {
		return err
	}

	if err := n.client.Publish(ctx, NotificationChannel(notification.AccountID), payload).Err(); err != nil {
		return fmt.Errorf("publish notification for %s: %w", notification.TransactionID, err)
	}

	return nil
}
