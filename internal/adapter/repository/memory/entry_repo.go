package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// Create stages an entry.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return err
	}

	t.entries = append(t.entries, *entry)
	return nil
}

// GetByTransaction returns the committed entries of a transaction.
func (r *EntryRepository) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var entries []*domain.Entry
	for _, e := range r.store.entries {
		if e.TransactionID == transactionID {
			e := e
			entries = append(entries, &e)
		}
	}
	return entries, nil
}

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// CheckConsistency sums all entries and counts completed transactions
// whose entries do not net to zero.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	total := decimal.Zero
	perTxn := make(map[string]decimal.Decimal)
	for _, e := range r.store.entries {
		total = total.Add(e.Amount)
		perTxn[e.TransactionID] = perTxn[e.TransactionID].Add(e.Amount)
	}

	var unbalanced int64
	for id, txn := range r.store.transactions {
		if txn.Status != domain.TransactionStatusCompleted {
			continue
		}
		sum, ok := perTxn[id]
		if !ok || !sum.IsZero() {
			unbalanced++
		}
	}

	return total, unbalanced, nil
}
