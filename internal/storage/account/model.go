package account

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/classify"
)

// Account is a provider account. Type selects the classification branch.
type Account struct {
	ID        string
	ItemID    string
	UserID    uuid.UUID
	Name      string
	Type      classify.AccountType
	Subtype   string
	Currency  string
	UpdatedAt time.Time
}

//go:generate mockery --name IReader --output mock_IReader.go
type IReader interface {
	FindByID(ctx context.Context, id string) (*Account, error)
	ListByItem(ctx context.Context, itemID string) ([]*Account, error)
}

type IWriter interface {
	IReader
	Upsert(ctx context.Context, acct *Account) error
}
