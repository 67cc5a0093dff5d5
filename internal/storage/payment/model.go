package payment

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
)

// Payment is one expected occurrence of a bill. At most one exists per
// (bill, due date).
type Payment struct {
	ID        uuid.UUID
	BillID    uuid.UUID
	UserID    uuid.UUID
	DueDate   civil.Date
	PaidDate  *time.Time
	CreatedAt time.Time
}

func (p *Payment) IsPaid() bool {
	return p.PaidDate != nil
}

type PaymentCreate struct {
	BillID  uuid.UUID
	UserID  uuid.UUID
	DueDate civil.Date
}

// PaymentFilter specifies filters for listing a user's payments.
type PaymentFilter struct {
	UserID     uuid.UUID
	UnpaidOnly bool
	Limit      int
	Offset     int
}

type PaymentCursor struct {
	Position int
	Limit    int
}

type PaymentListResult struct {
	Payments   []*Payment
	NextCursor *PaymentCursor
}

//go:generate mockery --name IReader --output mock_IReader.go
type IReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindByBillAndDueDate matches the due date exactly.
	FindByBillAndDueDate(ctx context.Context, billID uuid.UUID, due civil.Date) (*Payment, error)
	ListByBill(ctx context.Context, billID uuid.UUID) ([]*Payment, error)
	List(ctx context.Context, filter *PaymentFilter) (*PaymentListResult, error)
}

type IWriter interface {
	IReader
	Insert(ctx context.Context, create *PaymentCreate) (uuid.UUID, error)
	// SetPaidDate marks the payment paid at paid, or unpaid when paid is nil.
	SetPaidDate(ctx context.Context, id uuid.UUID, paid *time.Time) error
}

const DefaultLimit = 20
