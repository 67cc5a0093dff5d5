package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/bill"
)

type CreateBill struct {
	Create bill.BillCreate

	// ID is set once the action has been performed.
	ID uuid.UUID
}

func (c *CreateBill) Key() string {
	return c.Create.UserID.String()
}

func (c *CreateBill) Perform(ctx context.Context, writer *storage.Writer) error {
	id, err := writer.Bills.Insert(ctx, &c.Create)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

type UpdateBill struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Update bill.BillUpdate
	// Check, when set, vets the bill as it will look after the update.
	Check func(bill.Bill) error

	// Bill is the stored row after the update.
	Bill *bill.Bill
}

func (u *UpdateBill) Key() string {
	return u.UserID.String()
}

func (u *UpdateBill) Perform(ctx context.Context, writer *storage.Writer) error {
	current, err := findOwnedBill(ctx, writer, u.ID, u.UserID)
	if err != nil {
		return err
	}
	if u.Check != nil {
		if err := u.Check(u.Update.Apply(*current)); err != nil {
			return err
		}
	}
	if err := writer.Bills.Update(ctx, u.ID, &u.Update); err != nil {
		return err
	}
	updated, err := writer.Bills.FindByID(ctx, u.ID)
	if err != nil {
		return err
	}
	u.Bill = updated
	return nil
}

// DeleteBill removes the bill. Its payments are kept as history.
type DeleteBill struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (d *DeleteBill) Key() string {
	return d.UserID.String()
}

func (d *DeleteBill) Perform(ctx context.Context, writer *storage.Writer) error {
	if _, err := findOwnedBill(ctx, writer, d.ID, d.UserID); err != nil {
		return err
	}
	return writer.Bills.Delete(ctx, d.ID)
}

// findOwnedBill hides other users' bills behind ErrNotFound.
func findOwnedBill(ctx context.Context, writer *storage.Writer, id, userID uuid.UUID) (*bill.Bill, error) {
	b, err := writer.Bills.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return b, nil
}
