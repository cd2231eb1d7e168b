// Package memory is a process-local ledger store. Writes made through a
// unit of work are staged and applied to the committed state only on
// Commit.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/usecase"
)

var (
	ErrTxDone     = errors.New("transaction already committed or rolled back")
	ErrForeignTx  = errors.New("transaction does not belong to the memory store")
	ErrDuplicated = errors.New("record already exists")
)

// Store holds the committed state shared by all memory repositories.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction
	entries      []domain.Entry
	outbox       map[string]domain.OutboxEvent
	audit        []domain.AuditLog

	locks *lockTable
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string]domain.Transaction),
		outbox:       make(map[string]domain.OutboxEvent),
		locks:        newLockTable(),
	}
}

// Begin starts a unit of work. It implements usecase.TransactionManager.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{
		store:        s,
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string]domain.Transaction),
		created:      make(map[string]bool),
	}, nil
}

// Tx is a staging buffer over a Store.
type Tx struct {
	store *Store

	mu           sync.Mutex
	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction
	created      map[string]bool
	entries      []domain.Entry
	outbox       []domain.OutboxEvent
	held         []string
	done         bool
}

// Commit applies every staged write at once and releases row locks.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTxDone
	}
	t.done = true
	defer t.release()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range t.created {
		if _, exists := s.transactions[id]; exists {
			return ErrDuplicated
		}
	}

	for id, acc := range t.accounts {
		s.accounts[id] = acc
	}
	for id, txn := range t.transactions {
		s.transactions[id] = txn
	}
	s.entries = append(s.entries, t.entries...)
	for _, ev := range t.outbox {
		s.outbox[ev.ID] = ev
	}

	return nil
}

// Rollback discards staged writes. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return nil
	}
	t.done = true
	t.release()
	return nil
}

func (t *Tx) release() {
	t.store.locks.release(t.held)
	t.held = nil
}

// lock acquires row locks in ascending order. Locks already held
// by t are skipped.
func (t *Tx) lock(ctx context.Context, ids []string) error {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	for _, id := range sorted {
		if t.holds(id) {
			continue
		}
		if err := t.store.locks.acquire(ctx, id); err != nil {
			return err
		}
		t.mu.Lock()
		t.held = append(t.held, id)
		t.mu.Unlock()
	}
	return nil
}

func (t *Tx) holds(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, h := range t.held {
		if h == id {
			return true
		}
	}
	return false
}

func (t *Tx) checkOpen() error {
	if t.done {
		return ErrTxDone
	}
	return nil
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, ErrForeignTx
	}
	return t, nil
}

// lockTable serializes units of work per locked row.
type lockTable struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{slots: make(map[string]chan struct{})}
}

func (l *lockTable) slot(id string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[id]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[id] = ch
	}
	return ch
}

func (l *lockTable) acquire(ctx context.Context, id string) error {
	select {
	case l.slot(id) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *lockTable) release(ids []string) {
	for _, id := range ids {
		<-l.slot(id)
	}
}
