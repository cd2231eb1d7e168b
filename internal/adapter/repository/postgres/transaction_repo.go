package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/infrastructure/postgres/queries"
	"github.com/iho/gosettle/internal/usecase"
)

// ErrDuplicated is returned when a row with the same ID already exists.
var ErrDuplicated = errors.New("record already exists")

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *queries.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db queries.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: queries.New(db)}
}

// Create inserts a transaction within tx.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	err = r.queries.WithTx(ptx).CreateTransaction(ctx, queries.CreateTransactionParams{
		ID:                txn.ID,
		SenderAccountID:   txn.SenderAccountID,
		ReceiverAccountID: txn.ReceiverAccountID,
		Amount:            decimalToNumeric(txn.Amount),
		Currency:          txn.Currency,
		Status:            string(txn.Status),
		FailureReason:     txn.FailureReason,
		Reference:         txn.Reference,
		SettlementXML:     txn.SettlementXML,
		CreatedAt:         timeToPgTimestamptz(txn.CreatedAt),
		UpdatedAt:         timeToPgTimestamptz(txn.UpdatedAt),
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("transaction %s: %w", txn.ID, ErrDuplicated)
	}

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// GetByIDForUpdate retrieves a transaction with a FOR UPDATE lock.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	row, err := r.queries.WithTx(ptx).GetTransactionByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// Update stores the status and failure reason of a transaction.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	affected, err := r.queries.WithTx(ptx).UpdateTransaction(ctx, queries.UpdateTransactionParams{
		ID:            txn.ID,
		Status:        string(txn.Status),
		FailureReason: txn.FailureReason,
		UpdatedAt:     timeToPgTimestamptz(txn.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListByAccount lists the transactions of an account, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByAccount(ctx, queries.ListTransactionsByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	transactions := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, rowToTransaction(row))
	}

	return transactions, nil
}

func rowToTransaction(row queries.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:                row.ID,
		SenderAccountID:   row.SenderAccountID,
		ReceiverAccountID: row.ReceiverAccountID,
		Amount:            numericToDecimal(row.Amount),
		Currency:          row.Currency,
		Status:            domain.TransactionStatus(row.Status),
		FailureReason:     row.FailureReason,
		Reference:         row.Reference,
		SettlementXML:     row.SettlementXML,
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
	}
}
