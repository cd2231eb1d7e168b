package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/usecase"
)

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }

func beginMockTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	pool.ExpectBegin()
	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	require.NoError(t, err)
	return tx
}

func TestAccountRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM accounts").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	repo := NewAccountRepository(pool)
	_, err := repo.GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assertExpectations(t, pool)
}

func TestAccountRepositoryCreateDuplicate(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectExec("INSERT INTO accounts").
		WithArgs("acc-1", "Alice", "USD", pgxmock.AnyArg(), int64(1), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := NewAccountRepository(pool)
	now := time.Now()
	err := repo.Create(context.Background(), &domain.Account{
		ID: "acc-1", Name: "Alice", Currency: "USD", Balance: decimal.NewFromInt(10),
		Version: 1, CreatedAt: now, UpdatedAt: now,
	})

	assert.ErrorIs(t, err, ErrDuplicated)
	assertExpectations(t, pool)
}

func TestAccountRepositoryUpdateBalance(t *testing.T) {
	t.Run("updates row", func(t *testing.T) {
		pool := newMockPool(t)
		tx := beginMockTx(t, pool)
		pool.ExpectExec("UPDATE accounts").
			WithArgs("acc-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewAccountRepository(pool)
		err := repo.UpdateBalance(context.Background(), tx, "acc-1", decimal.NewFromInt(5), time.Now())

		require.NoError(t, err)
		assertExpectations(t, pool)
	})

	t.Run("unknown account", func(t *testing.T) {
		pool := newMockPool(t)
		tx := beginMockTx(t, pool)
		pool.ExpectExec("UPDATE accounts").
			WithArgs("missing", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewAccountRepository(pool)
		err := repo.UpdateBalance(context.Background(), tx, "missing", decimal.NewFromInt(5), time.Now())

		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
		assertExpectations(t, pool)
	})

	t.Run("foreign transaction", func(t *testing.T) {
		pool := newMockPool(t)

		repo := NewAccountRepository(pool)
		err := repo.UpdateBalance(context.Background(), foreignTx{}, "acc-1", decimal.NewFromInt(5), time.Now())

		assert.ErrorIs(t, err, ErrForeignTx)
	})
}

func TestTransactionRepositoryCreate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	pool.ExpectExec("INSERT INTO transactions").
		WithArgs("txn-1", "acc-1", "acc-2", pgxmock.AnyArg(), "USD", "pending",
			"", "ref", "<Document/>", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewTransactionRepository(pool)
	now := time.Now()
	err := repo.Create(context.Background(), tx, &domain.Transaction{
		ID:                "txn-1",
		SenderAccountID:   "acc-1",
		ReceiverAccountID: "acc-2",
		Amount:            decimal.NewFromInt(10),
		Currency:          "USD",
		Status:            domain.TransactionStatusPending,
		Reference:         "ref",
		SettlementXML:     "<Document/>",
		CreatedAt:         now,
		UpdatedAt:         now,
	})

	require.NoError(t, err)
	assertExpectations(t, pool)
}

func TestTransactionRepositoryNotFound(t *testing.T) {
	t.Run("get by id", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectQuery("FROM transactions").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

		_, err := NewTransactionRepository(pool).GetByID(context.Background(), "missing")

		assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
	})

	t.Run("get for update", func(t *testing.T) {
		pool := newMockPool(t)
		tx := beginMockTx(t, pool)
		pool.ExpectQuery("FOR UPDATE").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

		_, err := NewTransactionRepository(pool).GetByIDForUpdate(context.Background(), tx, "missing")

		assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
		assertExpectations(t, pool)
	})

	t.Run("update", func(t *testing.T) {
		pool := newMockPool(t)
		tx := beginMockTx(t, pool)
		pool.ExpectExec("UPDATE transactions").
			WithArgs("missing", "completed", "", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewTransactionRepository(pool).Update(context.Background(), tx, &domain.Transaction{
			ID:        "missing",
			Status:    domain.TransactionStatusCompleted,
			UpdatedAt: time.Now(),
		})

		assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
		assertExpectations(t, pool)
	})
}

func TestOutboxRepository(t *testing.T) {
	t.Run("create marshals payload", func(t *testing.T) {
		pool := newMockPool(t)
		tx := beginMockTx(t, pool)
		pool.ExpectExec("INSERT INTO outbox_events").
			WithArgs("evt-1", "txn-1", "transaction", "payment.created",
				[]byte(`{"amount":"10"}`), pgxmock.AnyArg(), false).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := NewOutboxRepository(pool).Create(context.Background(), tx, &domain.OutboxEvent{
			ID:            "evt-1",
			AggregateID:   "txn-1",
			AggregateType: "transaction",
			EventType:     "payment.created",
			Payload:       map[string]any{"amount": "10"},
			CreatedAt:     time.Now(),
		})

		require.NoError(t, err)
		assertExpectations(t, pool)
	})

	t.Run("no unpublished events", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectQuery("FROM outbox_events").WithArgs(int32(50)).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published",
			}))

		events, err := NewOutboxRepository(pool).GetUnpublished(context.Background(), 50)

		require.NoError(t, err)
		assert.Empty(t, events)
		assertExpectations(t, pool)
	})

	t.Run("delete published propagates errors", func(t *testing.T) {
		pool := newMockPool(t)
		dbErr := errors.New("connection reset")
		pool.ExpectExec("DELETE FROM outbox_events").WithArgs(pgxmock.AnyArg()).WillReturnError(dbErr)

		err := NewOutboxRepository(pool).DeletePublished(context.Background(), time.Now())

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestAuditRepositoryRecordAssignsID(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectExec("INSERT INTO audit_logs").
		WithArgs(pgxmock.AnyArg(), "system", "payment.create", "transaction", "txn-1", "req-1",
			[]byte(nil), []byte(`{"status":"completed"}`), "success", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	log := &domain.AuditLog{
		Actor:        "system",
		Action:       "payment.create",
		ResourceType: "transaction",
		ResourceID:   "txn-1",
		RequestID:    "req-1",
		AfterState:   domain.JSON{"status": "completed"},
		Status:       "success",
		CreatedAt:    time.Now(),
	}
	err := NewAuditRepository(pool).Record(context.Background(), log)

	require.NoError(t, err)
	assert.NotEmpty(t, log.ID)
	assertExpectations(t, pool)
}
