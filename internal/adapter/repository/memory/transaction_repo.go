package memory

import (
	"context"
	"sort"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/usecase"
)

const transactionLockPrefix = "transaction/"

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create stages a new transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return err
	}

	r.store.mu.RLock()
	_, committed := r.store.transactions[txn.ID]
	r.store.mu.RUnlock()
	if _, staged := t.transactions[txn.ID]; committed || staged {
		return ErrDuplicated
	}

	t.transactions[txn.ID] = *txn
	t.created[txn.ID] = true
	return nil
}

// GetByID returns the committed transaction.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	txn, ok := r.store.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return &txn, nil
}

// GetByIDForUpdate locks the transaction for tx and returns it as seen by
// tx, including staged changes.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if err := t.lock(ctx, []string{transactionLockPrefix + id}); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return nil, err
	}

	if txn, ok := t.transactions[id]; ok {
		return &txn, nil
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	txn, ok := r.store.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return &txn, nil
}

// Update stages the new state of an existing transaction.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return err
	}

	if _, staged := t.transactions[txn.ID]; !staged {
		r.store.mu.RLock()
		_, committed := r.store.transactions[txn.ID]
		r.store.mu.RUnlock()
		if !committed {
			return domain.ErrTransactionNotFound
		}
	}

	t.transactions[txn.ID] = *txn
	return nil
}

// ListByAccount returns committed transactions touching accountID, newest
// first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*domain.Transaction
	for _, txn := range r.store.transactions {
		if txn.SenderAccountID == accountID || txn.ReceiverAccountID == accountID {
			txn := txn
			result = append(result, &txn)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return page(result, limit, offset), nil
}
