package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByIDsForUpdate locks the accounts in ascending ID order.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	Update(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	// ListByAccount returns transactions touching accountID, newest first.
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

// EntryRepository defines data access for entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByTransaction(ctx context.Context, transactionID string) ([]*domain.Entry, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	// CheckConsistency returns the sum of all entry amounts and the number
	// of completed transactions whose entries do not net to zero.
	CheckConsistency(ctx context.Context) (totalAmount decimal.Decimal, unbalanced int64, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditSink persists audit records. Implementations must not write
// through the caller's unit of work.
type AuditSink interface {
	Record(ctx context.Context, log *domain.AuditLog) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier reruns op while it fails with a retryable storage error.
type Retrier interface {
	Retry(ctx context.Context, op func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// FraudCheck is what a fraud scorer sees of a payment.
type FraudCheck struct {
	SenderAccountID   string
	ReceiverAccountID string
	Amount            decimal.Decimal
	Currency          string
}

// FraudScorer rates a payment between 0 (clean) and 1 (fraudulent).
type FraudScorer interface {
	Score(ctx context.Context, check FraudCheck) (float64, error)
}

// NotificationGateway delivers a message to one party.
type NotificationGateway interface {
	Send(ctx context.Context, n domain.Notification) error
}

// MessageGenerator renders a settlement message for a canonical payment.
type MessageGenerator interface {
	Generate(p *domain.CanonicalPayment) (string, error)
}

// EventHandler reacts to a dispatched event inside the unit of work tx.
// Only fatal handlers may write through tx.
type EventHandler interface {
	Handle(ctx context.Context, tx Transaction, event domain.Event) error
}

// EventDispatcher delivers events to their registered handlers and
// reports the first fatal handler failure.
type EventDispatcher interface {
	Dispatch(ctx context.Context, tx Transaction, events []domain.Event) error
}

// Metrics records payment pipeline outcomes.
type Metrics interface {
	PaymentProcessed(status string, amount decimal.Decimal)
	ObservePayment(d time.Duration)
	LegacyConverted(ok bool)
}

type nopMetrics struct{}

func (nopMetrics) PaymentProcessed(string, decimal.Decimal) {}
func (nopMetrics) ObservePayment(time.Duration)             {}
func (nopMetrics) LegacyConverted(bool)                     {}
