package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypePaymentRequested = "payment.requested"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
)

// Event is a fact raised by the domain and dispatched inside a unit of work.
type Event interface {
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// PaymentRequested is raised when a pending transaction is created.
type PaymentRequested struct {
	TransactionID     string          `json:"transaction_id"`
	SenderAccountID   string          `json:"sender_account_id"`
	SenderName        string          `json:"sender_name"`
	ReceiverAccountID string          `json:"receiver_account_id"`
	ReceiverName      string          `json:"receiver_name"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	OccurredOn        time.Time       `json:"occurred_at"`
}

func (e *PaymentRequested) EventType() string     { return EventTypePaymentRequested }
func (e *PaymentRequested) AggregateID() string   { return e.TransactionID }
func (e *PaymentRequested) OccurredAt() time.Time { return e.OccurredOn }

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewOutboxEvent wraps a dispatched event for later publication.
func NewOutboxEvent(id string, event Event, now time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   event.AggregateID(),
		AggregateType: AggregateTypeTransaction,
		EventType:     event.EventType(),
		Payload:       MarshalState(event),
		CreatedAt:     now.UTC(),
	}
}
