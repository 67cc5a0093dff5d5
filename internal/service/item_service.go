package service

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/operator/actions"
	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/item"
	"github.com/carson-networks/budget-engine/internal/txsync"
)

// ItemSyncer pulls provider changes for one item. *txsync.Driver implements it.
type ItemSyncer interface {
	SyncItem(ctx context.Context, itemID string) (txsync.Result, error)
}

// TokenSealer encrypts access tokens before they are stored.
type TokenSealer interface {
	Seal(plaintext []byte) ([]byte, error)
}

type ItemService struct {
	storage  storage.Storage
	operator Processor
	syncer   ItemSyncer
	tokens   TokenSealer
}

func NewItemService(store storage.Storage, op Processor, syncer ItemSyncer, tokens TokenSealer) *ItemService {
	return &ItemService{storage: store, operator: op, syncer: syncer, tokens: tokens}
}

// AddItem registers a linked login with its access token sealed.
func (s *ItemService) AddItem(ctx context.Context, userID uuid.UUID, itemID, accessToken, institution string) error {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return validationError("itemID", "is required")
	}
	if accessToken == "" {
		return validationError("accessToken", "is required")
	}
	if userID == uuid.Nil {
		return validationError("userID", "is required")
	}

	sealed, err := s.tokens.Seal([]byte(accessToken))
	if err != nil {
		return err
	}
	return s.operator.Process(ctx, &actions.AddItem{Item: item.Item{
		ID:              itemID,
		UserID:          userID,
		AccessToken:     sealed,
		InstitutionName: institution,
	}})
}

func (s *ItemService) ListItems(ctx context.Context, userID uuid.UUID) ([]*item.Item, error) {
	return s.storage.Read().Items.ListByUser(ctx, userID)
}

// SyncItem runs the sync driver now for an item the user owns.
func (s *ItemService) SyncItem(ctx context.Context, userID uuid.UUID, itemID string) (txsync.Result, error) {
	it, err := s.storage.Read().Items.FindByID(ctx, itemID)
	if err != nil {
		return txsync.Result{}, err
	}
	if it.UserID != userID {
		return txsync.Result{}, storage.ErrNotFound
	}
	return s.syncer.SyncItem(ctx, itemID)
}
