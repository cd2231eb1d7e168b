package postgres

import (
	"context"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/infrastructure/postgres/queries"
	"github.com/iho/gosettle/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *queries.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db queries.DBTX) *EntryRepository {
	return &EntryRepository{queries: queries.New(db)}
}

// Create creates a new entry.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(ptx).CreateEntry(ctx, queries.CreateEntryParams{
		ID:                     entry.ID,
		AccountID:              entry.AccountID,
		TransactionID:          entry.TransactionID,
		Amount:                 decimalToNumeric(entry.Amount),
		AccountPreviousBalance: decimalToNumeric(entry.AccountPreviousBalance),
		AccountCurrentBalance:  decimalToNumeric(entry.AccountCurrentBalance),
		AccountVersion:         entry.AccountVersion,
		CreatedAt:              timeToPgTimestamptz(entry.CreatedAt),
	})
}

// GetByTransaction retrieves the entries written by a transaction.
func (r *EntryRepository) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.Entry, error) {
	rows, err := r.queries.GetEntriesByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

func rowToEntry(row queries.Entry) *domain.Entry {
	return &domain.Entry{
		ID:                     row.ID,
		AccountID:              row.AccountID,
		TransactionID:          row.TransactionID,
		Amount:                 numericToDecimal(row.Amount),
		AccountPreviousBalance: numericToDecimal(row.AccountPreviousBalance),
		AccountCurrentBalance:  numericToDecimal(row.AccountCurrentBalance),
		AccountVersion:         row.AccountVersion,
		CreatedAt:              row.CreatedAt.Time,
	}
}
