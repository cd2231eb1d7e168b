package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/infrastructure/postgres/queries"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *queries.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db queries.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: queries.New(db)}
}

// CheckConsistency returns the sum of all entries and the number of
// completed transactions whose entries do not net to zero.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, int64, error) {
	result, err := r.queries.CheckLedgerConsistency(ctx)
	if err != nil {
		return decimal.Zero, 0, err
	}

	return numericToDecimal(result.TotalEntryAmount), result.UnbalancedTransactions, nil
}
