package memstore

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/storage/payment"
	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

type paymentTable struct {
	*tables
}

func sortPayments(rows []*payment.Payment) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DueDate != rows[j].DueDate {
			return rows[i].DueDate.Before(rows[j].DueDate)
		}
		return bytes.Compare(rows[i].ID[:], rows[j].ID[:]) < 0
	})
}

func (t *paymentTable) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	p, ok := t.st.payments[id]
	if !ok {
		return nil, sqlconfig.ErrNotFound
	}
	return &p, nil
}

func (t *paymentTable) FindByBillAndDueDate(ctx context.Context, billID uuid.UUID, due civil.Date) (*payment.Payment, error) {
	for _, p := range t.st.payments {
		if p.BillID == billID && p.DueDate.String() == due.String() {
			return &p, nil
		}
	}
	return nil, sqlconfig.ErrNotFound
}

func (t *paymentTable) ListByBill(ctx context.Context, billID uuid.UUID) ([]*payment.Payment, error) {
	var rows []*payment.Payment
	for _, p := range t.st.payments {
		if p.BillID == billID {
			p := p
			rows = append(rows, &p)
		}
	}
	sortPayments(rows)
	return rows, nil
}

func (t *paymentTable) List(ctx context.Context, filter *payment.PaymentFilter) (*payment.PaymentListResult, error) {
	limit := payment.DefaultLimit
	if filter.Limit > 0 {
		limit = filter.Limit
	}

	var rows []*payment.Payment
	for _, p := range t.st.payments {
		if p.UserID != filter.UserID || (filter.UnpaidOnly && p.IsPaid()) {
			continue
		}
		p := p
		rows = append(rows, &p)
	}
	sortPayments(rows)

	if filter.Offset >= len(rows) {
		return &payment.PaymentListResult{}, nil
	}
	rows = rows[filter.Offset:]

	var next *payment.PaymentCursor
	if len(rows) > limit {
		rows = rows[:limit]
		next = &payment.PaymentCursor{Position: filter.Offset + limit, Limit: limit}
	}
	return &payment.PaymentListResult{Payments: rows, NextCursor: next}, nil
}

// Insert enforces the same (bill_id, due_date) uniqueness as the Postgres index.
func (t *paymentTable) Insert(ctx context.Context, create *payment.PaymentCreate) (uuid.UUID, error) {
	if _, err := t.FindByBillAndDueDate(ctx, create.BillID, create.DueDate); err == nil {
		return uuid.Nil, fmt.Errorf("payment for bill %s due %s already exists", create.BillID, create.DueDate)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	t.st.payments[id] = payment.Payment{
		ID:        id,
		BillID:    create.BillID,
		UserID:    create.UserID,
		DueDate:   create.DueDate,
		CreatedAt: t.now(),
	}
	return id, nil
}

func (t *paymentTable) SetPaidDate(ctx context.Context, id uuid.UUID, paid *time.Time) error {
	p, ok := t.st.payments[id]
	if !ok {
		return sqlconfig.ErrNotFound
	}
	p.PaidDate = nil
	if paid != nil {
		v := paid.UTC()
		p.PaidDate = &v
	}
	t.st.payments[id] = p
	return nil
}
