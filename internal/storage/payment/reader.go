package payment

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

var columns = []any{"id", "bill_id", "user_id", "due_date", "paid_date", "created_at"}

type row struct {
	ID        uuid.UUID  `db:"id"`
	BillID    uuid.UUID  `db:"bill_id"`
	UserID    uuid.UUID  `db:"user_id"`
	DueDate   string     `db:"due_date"`
	PaidDate  *time.Time `db:"paid_date"`
	CreatedAt time.Time  `db:"created_at"`
}

func rowToPayment(r row) (*Payment, error) {
	due, err := sqlconfig.DateFromString(&r.DueDate)
	if err != nil {
		return nil, err
	}
	return &Payment{
		ID:        r.ID,
		BillID:    r.BillID,
		UserID:    r.UserID,
		DueDate:   due,
		PaidDate:  r.PaidDate,
		CreatedAt: r.CreatedAt,
	}, nil
}

func rowsToPayments(rows []row) ([]*Payment, error) {
	result := make([]*Payment, len(rows))
	for i, r := range rows {
		p, err := rowToPayment(r)
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

type Reader struct {
	exec bob.Executor
}

var _ IReader = (*Reader)(nil)

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) findOne(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) (*Payment, error) {
	queryMods := append([]bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(sqlconfig.TableBillPayments),
	}, mods...)
	found, err := bob.One(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[row]())
	if err != nil {
		return nil, sqlconfig.NotFound(err)
	}
	return rowToPayment(found)
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return r.findOne(ctx, sm.Where(psql.Quote("id").EQ(psql.Arg(id))))
}

func (r *Reader) FindByBillAndDueDate(ctx context.Context, billID uuid.UUID, due civil.Date) (*Payment, error) {
	return r.findOne(ctx,
		sm.Where(psql.Quote("bill_id").EQ(psql.Arg(billID))),
		sm.Where(psql.Quote("due_date").EQ(psql.Arg(due.String()))),
	)
}

func (r *Reader) ListByBill(ctx context.Context, billID uuid.UUID) ([]*Payment, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableBillPayments),
		sm.Where(psql.Quote("bill_id").EQ(psql.Arg(billID))),
		sm.OrderBy(psql.Quote("due_date")).Asc(),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	return rowsToPayments(rows)
}

func (r *Reader) List(ctx context.Context, filter *PaymentFilter) (*PaymentListResult, error) {
	limit := DefaultLimit
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	offset := filter.Offset

	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(sqlconfig.TableBillPayments),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(filter.UserID))),
	}
	if filter.UnpaidOnly {
		queryMods = append(queryMods, sm.Where(psql.Quote("paid_date").IsNull()))
	}
	queryMods = append(queryMods,
		sm.Limit(limit+1),
		sm.Offset(offset),
		sm.OrderBy(psql.Quote("due_date")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &PaymentListResult{}, nil
	}

	var nextCursor *PaymentCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &PaymentCursor{Position: offset + limit, Limit: limit}
	}

	payments, err := rowsToPayments(rows)
	if err != nil {
		return nil, err
	}
	return &PaymentListResult{Payments: payments, NextCursor: nextCursor}, nil
}
