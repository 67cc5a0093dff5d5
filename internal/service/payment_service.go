package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/operator/actions"
	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/payment"
)

// PaymentCursor identifies a position in a paginated result set.
type PaymentCursor struct {
	Position int
	Limit    int
}

type PaymentService struct {
	storage  storage.Storage
	operator Processor

	Now func() time.Time
}

func NewPaymentService(store storage.Storage, op Processor) *PaymentService {
	return &PaymentService{storage: store, operator: op, Now: time.Now}
}

// ListPayments returns a page of the user's payments, soonest due first.
func (s *PaymentService) ListPayments(ctx context.Context, userID uuid.UUID, unpaidOnly bool, cursor *PaymentCursor) ([]*payment.Payment, *PaymentCursor, error) {
	filter := &payment.PaymentFilter{UserID: userID, UnpaidOnly: unpaidOnly, Limit: payment.DefaultLimit}
	if cursor != nil {
		filter.Limit = cursor.Limit
		filter.Offset = cursor.Position
	}

	result, err := s.storage.Read().Payments.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	var next *PaymentCursor
	if result.NextCursor != nil {
		next = &PaymentCursor{Position: result.NextCursor.Position, Limit: result.NextCursor.Limit}
	}
	return result.Payments, next, nil
}

// SetPaid marks the payment paid now, or clears its paid date.
func (s *PaymentService) SetPaid(ctx context.Context, userID, id uuid.UUID, paid bool) (*payment.Payment, error) {
	action := &actions.SetPaymentPaid{
		ID:     id,
		UserID: userID,
		Paid:   paid,
		PaidAt: s.Now().UTC(),
	}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Payment, nil
}
