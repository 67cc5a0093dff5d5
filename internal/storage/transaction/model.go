package transaction

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-engine/internal/classify"
)

// Transaction is a provider transaction as last applied to the summaries.
// AccountType is the account type at the time it was applied, so that a
// later reversal subtracts exactly what was added.
type Transaction struct {
	ID               string
	AccountID        string
	ItemID           string
	UserID           uuid.UUID
	AccountType      classify.AccountType
	Amount           decimal.Decimal
	Currency         string
	Date             civil.Date
	AuthorizedDate   civil.Date
	Name             string
	MerchantName     string
	CategoryPrimary  string
	CategoryDetailed string
	PaymentChannel   string
	Pending          bool
	UpdatedAt        time.Time
}

// Classifiable returns the fields the classifier looks at.
func (t *Transaction) Classifiable() classify.Transaction {
	return classify.Transaction{
		Amount:           t.Amount,
		Name:             t.Name,
		CategoryPrimary:  t.CategoryPrimary,
		CategoryDetailed: t.CategoryDetailed,
		PaymentChannel:   t.PaymentChannel,
		Currency:         t.Currency,
		Date:             t.Date,
		AuthorizedDate:   t.AuthorizedDate,
	}
}

//go:generate mockery --name IReader --output mock_IReader.go
type IReader interface {
	FindByID(ctx context.Context, id string) (*Transaction, error)
	// ListByUser pages through a user's transactions ordered by ID.
	ListByUser(ctx context.Context, userID uuid.UUID, after string, limit int) ([]*Transaction, error)
	ListByAccount(ctx context.Context, accountID string) ([]*Transaction, error)
	// ListUserIDs pages through every user that owns at least one transaction.
	ListUserIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
}

type IWriter interface {
	IReader
	// Upsert inserts or replaces the row keyed by the provider transaction ID.
	Upsert(ctx context.Context, txn *Transaction) error
	Delete(ctx context.Context, id string) error
}

const DefaultLimit = 500
