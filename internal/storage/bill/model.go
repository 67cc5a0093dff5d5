package bill

import (
	"context"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-engine/internal/billing"
)

// Bill is a user-configured recurring obligation.
type Bill struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Amount    decimal.Decimal
	DueType   billing.DueType
	DayDue    *int
	IsAutoPay bool
	CreatedAt time.Time
}

func (b *Bill) Schedule() billing.Schedule {
	return billing.Schedule{DueType: b.DueType, DayDue: b.DayDue}
}

// BillCreate is the input for creating a new bill.
type BillCreate struct {
	UserID    uuid.UUID
	Name      string
	Amount    decimal.Decimal
	DueType   billing.DueType
	DayDue    *int
	IsAutoPay bool
}

// BillUpdate patches only the fields that are set. DayDue may be set to null.
type BillUpdate struct {
	Name      omit.Val[string]
	Amount    omit.Val[decimal.Decimal]
	DueType   omit.Val[billing.DueType]
	DayDue    omitnull.Val[int]
	IsAutoPay omit.Val[bool]
}

// Apply returns a copy of b with the update's set fields written over it.
func (u *BillUpdate) Apply(b Bill) Bill {
	if v, ok := u.Name.Get(); ok {
		b.Name = v
	}
	if v, ok := u.Amount.Get(); ok {
		b.Amount = v
	}
	if v, ok := u.DueType.Get(); ok {
		b.DueType = v
	}
	if !u.DayDue.IsUnset() {
		b.DayDue = u.DayDue.MustPtr()
	}
	if v, ok := u.IsAutoPay.Get(); ok {
		b.IsAutoPay = v
	}
	return b
}

// BillFilter specifies filters for listing a user's bills.
type BillFilter struct {
	UserID uuid.UUID
	Limit  int
	Offset int
}

// BillCursor identifies a position in a paginated result set.
type BillCursor struct {
	Position int
	Limit    int
}

// BillListResult contains a page of bills and an optional next cursor.
type BillListResult struct {
	Bills      []*Bill
	NextCursor *BillCursor
}

// IReader defines read access to bills.
//
//go:generate mockery --name IReader --output mock_IReader.go
type IReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	List(ctx context.Context, filter *BillFilter) (*BillListResult, error)
	// Scan pages through every bill of every user ordered by ID.
	Scan(ctx context.Context, after uuid.UUID, limit int) ([]*Bill, error)
}

type IWriter interface {
	IReader
	Insert(ctx context.Context, create *BillCreate) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, update *BillUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const DefaultLimit = 20
