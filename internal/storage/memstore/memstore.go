// Package memstore is an in-memory storage.Storage. Each Write works on a
// private copy of the committed state and Commit swaps it in, so readers
// never observe a partial transaction. Writers are serialized.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/account"
	"github.com/carson-networks/budget-engine/internal/storage/bill"
	"github.com/carson-networks/budget-engine/internal/storage/item"
	"github.com/carson-networks/budget-engine/internal/storage/payment"
	"github.com/carson-networks/budget-engine/internal/storage/summary"
	"github.com/carson-networks/budget-engine/internal/storage/transaction"
)

var ErrTxDone = errors.New("memstore: transaction already committed or rolled back")

type state struct {
	summaries    map[string]summary.Summary
	categories   map[string]map[string]decimal.Decimal
	bills        map[uuid.UUID]bill.Bill
	payments     map[uuid.UUID]payment.Payment
	transactions map[string]transaction.Transaction
	accounts     map[string]account.Account
	items        map[string]item.Item
}

func newState() *state {
	return &state{
		summaries:    map[string]summary.Summary{},
		categories:   map[string]map[string]decimal.Decimal{},
		bills:        map[uuid.UUID]bill.Bill{},
		payments:     map[uuid.UUID]payment.Payment{},
		transactions: map[string]transaction.Transaction{},
		accounts:     map[string]account.Account{},
		items:        map[string]item.Item{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	categories := make(map[string]map[string]decimal.Decimal, len(s.categories))
	for k, v := range s.categories {
		categories[k] = copyMap(v)
	}
	return &state{
		summaries:    copyMap(s.summaries),
		categories:   categories,
		bills:        copyMap(s.bills),
		payments:     copyMap(s.payments),
		transactions: copyMap(s.transactions),
		accounts:     copyMap(s.accounts),
		items:        copyMap(s.items),
	}
}

// Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	current *state
	writeMu sync.Mutex
	now     func() time.Time
}

var _ storage.Storage = (*Store)(nil)

func New() *Store {
	return &Store{current: newState(), now: time.Now}
}

// WithClock overrides the timestamps written to CreatedAt/UpdatedAt columns.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Read() *storage.Reader {
	return readerFor(s.snapshot(), s.now)
}

func (s *Store) Write(ctx context.Context) (*storage.Writer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.writeMu.Lock()
	t := &tx{store: s, st: s.snapshot().clone()}

	tables := &tables{st: t.st, now: s.now}
	return &storage.Writer{
		Tx:           t,
		Summaries:    &summaryTable{tables},
		Bills:        &billTable{tables},
		Payments:     &paymentTable{tables},
		Transactions: &transactionTable{tables},
		Accounts:     &accountTable{tables},
		Items:        &itemTable{tables},
	}, nil
}

func readerFor(st *state, now func() time.Time) *storage.Reader {
	tables := &tables{st: st, now: now}
	return &storage.Reader{
		Summaries:    &summaryTable{tables},
		Bills:        &billTable{tables},
		Payments:     &paymentTable{tables},
		Transactions: &transactionTable{tables},
		Accounts:     &accountTable{tables},
		Items:        &itemTable{tables},
	}
}

type tables struct {
	st  *state
	now func() time.Time
}

type tx struct {
	store *Store
	st    *state
	once  sync.Once
}

func (t *tx) finish(commit bool) error {
	finished := false
	t.once.Do(func() {
		finished = true
		if commit {
			t.store.mu.Lock()
			t.store.current = t.st
			t.store.mu.Unlock()
		}
		t.store.writeMu.Unlock()
	})
	if !finished {
		return ErrTxDone
	}
	return nil
}

func (t *tx) Commit(ctx context.Context) error {
	return t.finish(true)
}

func (t *tx) Rollback(ctx context.Context) error {
	return t.finish(false)
}
