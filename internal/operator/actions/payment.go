package actions

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/payment"
)

// SetPaymentPaid marks a payment paid at PaidAt, or unpaid when Paid is false.
type SetPaymentPaid struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Paid   bool
	PaidAt time.Time

	Payment *payment.Payment
}

func (s *SetPaymentPaid) Key() string {
	return s.UserID.String()
}

func (s *SetPaymentPaid) Perform(ctx context.Context, writer *storage.Writer) error {
	p, err := writer.Payments.FindByID(ctx, s.ID)
	if err != nil {
		return err
	}
	if p.UserID != s.UserID {
		return storage.ErrNotFound
	}

	var paid *time.Time
	if s.Paid {
		paid = &s.PaidAt
	}
	if err := writer.Payments.SetPaidDate(ctx, s.ID, paid); err != nil {
		return err
	}

	s.Payment, err = writer.Payments.FindByID(ctx, s.ID)
	return err
}
