package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/account"
)

// AccountService exposes the provider accounts of a user's items.
type AccountService struct {
	storage storage.Storage
}

func NewAccountService(store storage.Storage) *AccountService {
	return &AccountService{storage: store}
}

// ListAccounts returns the accounts of one item the user owns.
func (s *AccountService) ListAccounts(ctx context.Context, userID uuid.UUID, itemID string) ([]*account.Account, error) {
	reader := s.storage.Read()
	it, err := reader.Items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return reader.Accounts.ListByItem(ctx, itemID)
}

// GetAccount returns one account, or storage.ErrNotFound for another user's.
func (s *AccountService) GetAccount(ctx context.Context, userID uuid.UUID, id string) (*account.Account, error) {
	acct, err := s.storage.Read().Accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return acct, nil
}
