package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInconsistentLedger is returned when the ledger is not balanced.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// ConsistencyReport describes the outcome of a ledger check.
type ConsistencyReport struct {
	Consistent             bool
	TotalEntryAmount       decimal.Decimal
	UnbalancedTransactions int64
}

// CheckConsistency verifies that every settlement moved as much out of one
// account as it moved into the other.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	totalAmount, unbalanced, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		Consistent:             totalAmount.IsZero() && unbalanced == 0,
		TotalEntryAmount:       totalAmount,
		UnbalancedTransactions: unbalanced,
	}

	if !report.Consistent {
		return report, ErrInconsistentLedger
	}
	return report, nil
}
