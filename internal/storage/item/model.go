package item

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Item is one linked provider login. AccessToken is stored encrypted and
// Cursor is the last durably applied sync position.
type Item struct {
	ID              string
	UserID          uuid.UUID
	AccessToken     []byte
	Cursor          string
	InstitutionName string
	LastSyncedAt    *time.Time
	CreatedAt       time.Time
}

//go:generate mockery --name IReader --output mock_IReader.go
type IReader interface {
	FindByID(ctx context.Context, id string) (*Item, error)
	// List pages through every item ordered by ID.
	List(ctx context.Context, after string, limit int) ([]*Item, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Item, error)
}

type IWriter interface {
	IReader
	Insert(ctx context.Context, it *Item) error
	UpdateCursor(ctx context.Context, id string, cursor string, syncedAt time.Time) error
}

const DefaultLimit = 100
