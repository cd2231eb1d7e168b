package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newParams() NewTransactionParams {
	return NewTransactionParams{
		ID:            "txn-1",
		Sender:        &Account{ID: "acc-a", Name: "Alice", Balance: decimal.NewFromInt(1000)},
		Receiver:      &Account{ID: "acc-b", Name: "Bob"},
		Amount:        decimal.NewFromInt(500),
		Currency:      "USD",
		Reference:     "REF1",
		SettlementXML: "<Document/>",
		Now:           time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewPendingTransaction(t *testing.T) {
	txn, events, err := NewPendingTransaction(newParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Status != TransactionStatusPending {
		t.Errorf("expected pending, got %s", txn.Status)
	}
	if txn.SettlementXML != "<Document/>" {
		t.Errorf("settlement xml not carried over")
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}

	ev, ok := events[0].(*PaymentRequested)
	if !ok {
		t.Fatalf("expected *PaymentRequested, got %T", events[0])
	}
	if ev.EventType() != EventTypePaymentRequested {
		t.Errorf("unexpected event type %s", ev.EventType())
	}
	if ev.AggregateID() != "txn-1" {
		t.Errorf("unexpected aggregate id %s", ev.AggregateID())
	}
	if ev.SenderName != "Alice" || ev.ReceiverName != "Bob" {
		t.Errorf("party names not copied: %+v", ev)
	}
	if !ev.OccurredAt().Equal(txn.CreatedAt) {
		t.Errorf("event time %v differs from creation %v", ev.OccurredAt(), txn.CreatedAt)
	}
}

func TestNewPendingTransaction_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *NewTransactionParams)
		want   error
	}{
		{"zero amount", func(p *NewTransactionParams) { p.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(p *NewTransactionParams) { p.Amount = decimal.NewFromInt(-1) }, ErrInvalidAmount},
		{"same account", func(p *NewTransactionParams) { p.Receiver.ID = p.Sender.ID }, ErrSameAccount},
		{"missing receiver", func(p *NewTransactionParams) { p.Receiver = nil }, ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParams()
			tt.mutate(&p)

			txn, events, err := NewPendingTransaction(p)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if txn != nil || events != nil {
				t.Fatalf("expected no transaction or events on error")
			}
		})
	}
}

func TestTransaction_Transitions(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		from    TransactionStatus
		apply   func(*Transaction) error
		want    TransactionStatus
		wantErr bool
	}{
		{"pending to processing", TransactionStatusPending, func(t *Transaction) error { return t.MarkProcessing(now) }, TransactionStatusProcessing, false},
		{"pending to failed", TransactionStatusPending, func(t *Transaction) error { return t.MarkFailed("aborted", now) }, TransactionStatusFailed, false},
		{"processing to completed", TransactionStatusProcessing, func(t *Transaction) error { return t.MarkCompleted(now) }, TransactionStatusCompleted, false},
		{"processing to failed", TransactionStatusProcessing, func(t *Transaction) error { return t.MarkFailed("boom", now) }, TransactionStatusFailed, false},
		{"pending to completed", TransactionStatusPending, func(t *Transaction) error { return t.MarkCompleted(now) }, TransactionStatusPending, true},
		{"completed to failed", TransactionStatusCompleted, func(t *Transaction) error { return t.MarkFailed("late", now) }, TransactionStatusCompleted, true},
		{"failed to processing", TransactionStatusFailed, func(t *Transaction) error { return t.MarkProcessing(now) }, TransactionStatusFailed, true},
		{"processing to processing", TransactionStatusProcessing, func(t *Transaction) error { return t.MarkProcessing(now) }, TransactionStatusProcessing, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := &Transaction{Status: tt.from}
			err := tt.apply(txn)

			if tt.wantErr && !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if txn.Status != tt.want {
				t.Fatalf("expected status %s, got %s", tt.want, txn.Status)
			}
		})
	}
}

func TestTransaction_MarkFailedKeepsReason(t *testing.T) {
	txn := &Transaction{Status: TransactionStatusProcessing}
	if err := txn.MarkFailed("insufficient funds", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.FailureReason != "insufficient funds" {
		t.Fatalf("unexpected reason %q", txn.FailureReason)
	}
	if !txn.Status.IsTerminal() {
		t.Fatalf("failed must be terminal")
	}
}

func TestTransaction_Clone(t *testing.T) {
	txn := &Transaction{ID: "a", Status: TransactionStatusPending}
	c := txn.Clone()
	c.Status = TransactionStatusFailed
	if txn.Status != TransactionStatusPending {
		t.Fatalf("clone shares state with original")
	}
}
