package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/billing"
	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/payment"
)

type ReconcileOutcome string

const (
	OutcomeCreated ReconcileOutcome = "created"
	OutcomeSettled ReconcileOutcome = "settled"
	// OutcomeUnchanged means a payment for the due date already exists.
	OutcomeUnchanged     ReconcileOutcome = "unchanged"
	OutcomeOutsideWindow ReconcileOutcome = "outside_horizon"
	OutcomeUndetermined  ReconcileOutcome = "undetermined_due_date"
)

// ReconcileBill makes sure the bill's next due date within the horizon has
// exactly one payment, and settles it when the bill is auto-pay and due
// today. The lookup and insert run in the same transaction.
type ReconcileBill struct {
	BillID      uuid.UUID
	UserID      uuid.UUID
	Today       civil.Date
	Now         time.Time
	HorizonDays int

	Outcome   ReconcileOutcome
	DueDate   civil.Date
	PaymentID uuid.UUID
}

func (r *ReconcileBill) Key() string {
	return r.UserID.String()
}

func (r *ReconcileBill) Perform(ctx context.Context, writer *storage.Writer) error {
	b, err := writer.Bills.FindByID(ctx, r.BillID)
	if err != nil {
		return fmt.Errorf("bill %s: %w", r.BillID, err)
	}

	due, err := billing.NextDueDate(b.Schedule(), r.Today)
	if errors.Is(err, billing.ErrUndeterminedDueDate) {
		r.Outcome = OutcomeUndetermined
		return nil
	}
	if err != nil {
		return err
	}
	r.DueDate = due

	if due.DaysSince(r.Today) > r.HorizonDays {
		r.Outcome = OutcomeOutsideWindow
		return nil
	}

	existing, err := writer.Payments.FindByBillAndDueDate(ctx, b.ID, due)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		id, err := writer.Payments.Insert(ctx, &payment.PaymentCreate{
			BillID:  b.ID,
			UserID:  b.UserID,
			DueDate: due,
		})
		if err != nil {
			return err
		}
		r.PaymentID = id
		r.Outcome = OutcomeCreated
		return nil
	case err != nil:
		return err
	}

	r.PaymentID = existing.ID
	if b.IsAutoPay && due == r.Today && !existing.IsPaid() {
		now := r.Now
		if err := writer.Payments.SetPaidDate(ctx, existing.ID, &now); err != nil {
			return err
		}
		r.Outcome = OutcomeSettled
		return nil
	}

	r.Outcome = OutcomeUnchanged
	return nil
}
