package memstore

import (
	"bytes"
	"context"
	"sort"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/storage/bill"
	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

type billTable struct {
	*tables
}

func (t *billTable) FindByID(ctx context.Context, id uuid.UUID) (*bill.Bill, error) {
	b, ok := t.st.bills[id]
	if !ok {
		return nil, sqlconfig.ErrNotFound
	}
	return &b, nil
}

func (t *billTable) List(ctx context.Context, filter *bill.BillFilter) (*bill.BillListResult, error) {
	limit := bill.DefaultLimit
	if filter.Limit > 0 {
		limit = filter.Limit
	}

	var rows []*bill.Bill
	for _, b := range t.st.bills {
		if b.UserID == filter.UserID {
			b := b
			rows = append(rows, &b)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return bytes.Compare(rows[i].ID[:], rows[j].ID[:]) < 0
	})

	if filter.Offset >= len(rows) {
		return &bill.BillListResult{}, nil
	}
	rows = rows[filter.Offset:]

	var next *bill.BillCursor
	if len(rows) > limit {
		rows = rows[:limit]
		next = &bill.BillCursor{Position: filter.Offset + limit, Limit: limit}
	}
	return &bill.BillListResult{Bills: rows, NextCursor: next}, nil
}

func (t *billTable) Scan(ctx context.Context, after uuid.UUID, limit int) ([]*bill.Bill, error) {
	if limit <= 0 {
		limit = bill.DefaultLimit
	}
	var rows []*bill.Bill
	for _, b := range t.st.bills {
		if bytes.Compare(b.ID[:], after[:]) > 0 {
			b := b
			rows = append(rows, &b)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return bytes.Compare(rows[i].ID[:], rows[j].ID[:]) < 0
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (t *billTable) Insert(ctx context.Context, create *bill.BillCreate) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	t.st.bills[id] = bill.Bill{
		ID:        id,
		UserID:    create.UserID,
		Name:      create.Name,
		Amount:    create.Amount,
		DueType:   create.DueType,
		DayDue:    copyInt(create.DayDue),
		IsAutoPay: create.IsAutoPay,
		CreatedAt: t.now(),
	}
	return id, nil
}

func (t *billTable) Update(ctx context.Context, id uuid.UUID, update *bill.BillUpdate) error {
	b, ok := t.st.bills[id]
	if !ok {
		return sqlconfig.ErrNotFound
	}
	b = update.Apply(b)
	b.DayDue = copyInt(b.DayDue)
	t.st.bills[id] = b
	return nil
}

func (t *billTable) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.st.bills[id]; !ok {
		return sqlconfig.ErrNotFound
	}
	delete(t.st.bills, id)
	return nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
