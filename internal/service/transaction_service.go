package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/transaction"
)

// TransactionService exposes the synced transactions of a user.
type TransactionService struct {
	storage storage.Storage
}

func NewTransactionService(store storage.Storage) *TransactionService {
	return &TransactionService{storage: store}
}

// ListTransactions returns a page of the user's transactions using keyset
// pagination on the provider transaction ID.
func (s *TransactionService) ListTransactions(ctx context.Context, userID uuid.UUID, cursor *TransactionCursor) ([]*transaction.Transaction, *TransactionCursor, error) {
	limit := defaultTransactionLimit
	after := ""
	if cursor != nil {
		if cursor.Limit > 0 {
			limit = cursor.Limit
		}
		after = cursor.After
	}

	rows, err := s.storage.Read().Transactions.ListByUser(ctx, userID, after, limit+1)
	if err != nil {
		return nil, nil, err
	}

	if len(rows) == 0 {
		return nil, nil, nil
	}

	var next *TransactionCursor
	if len(rows) > limit {
		rows = rows[:limit]
		next = &TransactionCursor{After: rows[limit-1].ID, Limit: limit}
	}
	return rows, next, nil
}
