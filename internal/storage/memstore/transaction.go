package memstore

import (
	"bytes"
	"context"
	"sort"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
	"github.com/carson-networks/budget-engine/internal/storage/transaction"
)

type transactionTable struct {
	*tables
}

func (t *transactionTable) FindByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	txn, ok := t.st.transactions[id]
	if !ok {
		return nil, sqlconfig.ErrNotFound
	}
	return &txn, nil
}

func (t *transactionTable) filter(keep func(*transaction.Transaction) bool) []*transaction.Transaction {
	var rows []*transaction.Transaction
	for _, txn := range t.st.transactions {
		txn := txn
		if keep(&txn) {
			rows = append(rows, &txn)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

func (t *transactionTable) ListByUser(ctx context.Context, userID uuid.UUID, after string, limit int) ([]*transaction.Transaction, error) {
	if limit <= 0 {
		limit = transaction.DefaultLimit
	}
	rows := t.filter(func(txn *transaction.Transaction) bool {
		return txn.UserID == userID && txn.ID > after
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (t *transactionTable) ListByAccount(ctx context.Context, accountID string) ([]*transaction.Transaction, error) {
	return t.filter(func(txn *transaction.Transaction) bool {
		return txn.AccountID == accountID
	}), nil
}

func (t *transactionTable) ListUserIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = transaction.DefaultLimit
	}
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, txn := range t.st.transactions {
		if seen[txn.UserID] || bytes.Compare(txn.UserID[:], after[:]) <= 0 {
			continue
		}
		seen[txn.UserID] = true
		ids = append(ids, txn.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (t *transactionTable) Upsert(ctx context.Context, txn *transaction.Transaction) error {
	row := *txn
	row.UpdatedAt = t.now()
	t.st.transactions[txn.ID] = row
	return nil
}

func (t *transactionTable) Delete(ctx context.Context, id string) error {
	if _, ok := t.st.transactions[id]; !ok {
		return sqlconfig.ErrNotFound
	}
	delete(t.st.transactions, id)
	return nil
}
