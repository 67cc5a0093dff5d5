package service

import (
	"context"
	"strings"

	"github.com/aarondl/opt/omitnull"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/billing"
	"github.com/carson-networks/budget-engine/internal/operator/actions"
	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/bill"
)

// BillService handles bill business logic. Mutations never reconcile
// payments; that is left to the scheduled reconciler.
type BillService struct {
	storage  storage.Storage
	operator Processor
}

func NewBillService(store storage.Storage, op Processor) *BillService {
	return &BillService{storage: store, operator: op}
}

// CreateBill validates and stores a new bill, returning its ID.
func (s *BillService) CreateBill(ctx context.Context, create bill.BillCreate) (uuid.UUID, error) {
	create.Name = strings.TrimSpace(create.Name)
	if err := ValidateBill(bill.Bill{
		Name:    create.Name,
		Amount:  create.Amount,
		DueType: create.DueType,
		DayDue:  create.DayDue,
	}); err != nil {
		return uuid.Nil, err
	}

	action := &actions.CreateBill{Create: create}
	if err := s.operator.Process(ctx, action); err != nil {
		return uuid.Nil, err
	}
	return action.ID, nil
}

// GetBill returns the user's bill, or storage.ErrNotFound for another user's.
func (s *BillService) GetBill(ctx context.Context, userID, id uuid.UUID) (*bill.Bill, error) {
	b, err := s.storage.Read().Bills.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return b, nil
}

// ListBills returns a page of the user's bills.
func (s *BillService) ListBills(ctx context.Context, userID uuid.UUID, cursor *BillCursor) ([]*bill.Bill, *BillCursor, error) {
	filter := &bill.BillFilter{UserID: userID, Limit: bill.DefaultLimit}
	if cursor != nil {
		filter.Limit = cursor.Limit
		filter.Offset = cursor.Position
	}

	result, err := s.storage.Read().Bills.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	var next *BillCursor
	if result.NextCursor != nil {
		next = &BillCursor{Position: result.NextCursor.Position, Limit: result.NextCursor.Limit}
	}
	return result.Bills, next, nil
}

// UpdateBill patches the bill. Switching to EndOfMonth without naming a
// day clears the stored day.
func (s *BillService) UpdateBill(ctx context.Context, userID, id uuid.UUID, update bill.BillUpdate) (*bill.Bill, error) {
	if name, ok := update.Name.Get(); ok {
		update.Name.Set(strings.TrimSpace(name))
	}
	if dueType, ok := update.DueType.Get(); ok && dueType == billing.DueTypeEndOfMonth && update.DayDue.IsUnset() {
		update.DayDue = omitnull.FromPtr[int](nil)
	}

	action := &actions.UpdateBill{
		ID:     id,
		UserID: userID,
		Update: update,
		Check:  ValidateBill,
	}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Bill, nil
}

func (s *BillService) DeleteBill(ctx context.Context, userID, id uuid.UUID) error {
	return s.operator.Process(ctx, &actions.DeleteBill{ID: id, UserID: userID})
}
