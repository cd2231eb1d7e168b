package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry represents a single ledger entry (debit or credit).
// Debits carry a negative amount so entries of one transaction sum to zero.
type Entry struct {
	CreatedAt              time.Time
	ID                     string
	AccountID              string
	TransactionID          string
	Amount                 decimal.Decimal
	AccountPreviousBalance decimal.Decimal
	AccountCurrentBalance  decimal.Decimal
	AccountVersion         int64
}
