package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the settlement state of a ledger transaction.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// CanTransitionTo reports whether s may move to next.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch s {
	case TransactionStatusPending:
		return next == TransactionStatusProcessing || next == TransactionStatusFailed
	case TransactionStatusProcessing:
		return next == TransactionStatusCompleted || next == TransactionStatusFailed
	default:
		return false
	}
}

// Transaction is a single funds movement between two accounts.
type Transaction struct {
	ID                string
	SenderAccountID   string
	ReceiverAccountID string
	Amount            decimal.Decimal
	Currency          string
	Status            TransactionStatus
	FailureReason     string
	Reference         string
	SettlementXML     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewTransactionParams carries what a pending transaction is built from.
type NewTransactionParams struct {
	ID            string
	Sender        *Account
	Receiver      *Account
	Amount        decimal.Decimal
	Currency      string
	Reference     string
	SettlementXML string
	Now           time.Time
}

// NewPendingTransaction builds a pending transaction and the events it raises.
// The events are returned to the caller instead of being kept on the entity.
func NewPendingTransaction(p NewTransactionParams) (*Transaction, []Event, error) {
	if p.Sender == nil || p.Receiver == nil {
		return nil, nil, ErrAccountNotFound
	}
	if !p.Amount.IsPositive() {
		return nil, nil, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if p.Sender.ID == p.Receiver.ID {
		return nil, nil, &ValidationError{Field: "receiver_account_id", Err: ErrSameAccount}
	}

	now := p.Now.UTC()
	txn := &Transaction{
		ID:                p.ID,
		SenderAccountID:   p.Sender.ID,
		ReceiverAccountID: p.Receiver.ID,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            TransactionStatusPending,
		Reference:         p.Reference,
		SettlementXML:     p.SettlementXML,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	events := []Event{
		&PaymentRequested{
			TransactionID:     txn.ID,
			SenderAccountID:   p.Sender.ID,
			SenderName:        p.Sender.Name,
			ReceiverAccountID: p.Receiver.ID,
			ReceiverName:      p.Receiver.Name,
			Amount:            p.Amount,
			Currency:          p.Currency,
			OccurredOn:        now,
		},
	}

	return txn, events, nil
}

func (t *Transaction) transition(next TransactionStatus, now time.Time) error {
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, next)
	}
	t.Status = next
	t.UpdatedAt = now.UTC()
	return nil
}

// MarkProcessing moves a pending transaction into settlement.
func (t *Transaction) MarkProcessing(now time.Time) error {
	return t.transition(TransactionStatusProcessing, now)
}

// MarkCompleted finishes a transaction that is being settled.
func (t *Transaction) MarkCompleted(now time.Time) error {
	return t.transition(TransactionStatusCompleted, now)
}

// MarkFailed records reason and moves the transaction to failed.
func (t *Transaction) MarkFailed(reason string, now time.Time) error {
	if err := t.transition(TransactionStatusFailed, now); err != nil {
		return err
	}
	t.FailureReason = reason
	return nil
}

// Clone returns a copy safe to mutate.
func (t *Transaction) Clone() *Transaction {
	c := *t
	return &c
}
