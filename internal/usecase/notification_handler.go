package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/gosettle/internal/domain"
)

// NotificationHandler tells both parties about a requested payment.
type NotificationHandler struct {
	gateway NotificationGateway
	logger  zerolog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(gateway NotificationGateway, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{gateway: gateway, logger: logger}
}

// Handle sends one notification per party. Delivery failures are joined
// and reported as best-effort errors.
func (h *NotificationHandler) Handle(ctx context.Context, _ Transaction, event domain.Event) error {
	req, ok := event.(*domain.PaymentRequested)
	if !ok {
		return nil
	}

	amount := req.Amount.StringFixed(2) + " " + req.Currency
	notifications := []domain.Notification{
		{
			TransactionID: req.TransactionID,
			AccountID:     req.SenderAccountID,
			Recipient:     req.SenderName,
			Subject:       "Payment sent",
			Body:          fmt.Sprintf("Your payment of %s to %s is being settled.", amount, req.ReceiverName),
		},
		{
			TransactionID: req.TransactionID,
			AccountID:     req.ReceiverAccountID,
			Recipient:     req.ReceiverName,
			Subject:       "Payment incoming",
			Body:          fmt.Sprintf("A payment of %s from %s is being settled.", amount, req.SenderName),
		},
	}

	var errs []error
	for _, n := range notifications {
		if err := h.gateway.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", n.AccountID, err))
			continue
		}
		h.logger.Debug().Str("transaction_id", n.TransactionID).Str("account_id", n.AccountID).Msg("notification sent")
	}

	if err := errors.Join(errs...); err != nil {
		return &domain.BestEffortError{Handler: "notification", Err: err}
	}
	return nil
}
