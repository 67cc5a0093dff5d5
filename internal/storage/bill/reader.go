package bill

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-engine/internal/billing"
	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

var columns = []any{"id", "user_id", "name", "amount", "due_type", "day_due", "is_auto_pay", "created_at"}

type row struct {
	ID        uuid.UUID       `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Name      string          `db:"name"`
	Amount    decimal.Decimal `db:"amount"`
	DueType   string          `db:"due_type"`
	DayDue    *int            `db:"day_due"`
	IsAutoPay bool            `db:"is_auto_pay"`
	CreatedAt time.Time       `db:"created_at"`
}

func rowToBill(r row) *Bill {
	return &Bill{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Amount:    r.Amount,
		DueType:   billing.DueType(r.DueType),
		DayDue:    r.DayDue,
		IsAutoPay: r.IsAutoPay,
		CreatedAt: r.CreatedAt,
	}
}

type Reader struct {
	exec bob.Executor
}

var _ IReader = (*Reader)(nil)

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Bill, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableBills),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	found, err := bob.One(ctx, r.exec, q, scan.StructMapper[row]())
	if err != nil {
		return nil, sqlconfig.NotFound(err)
	}
	return rowToBill(found), nil
}

func (r *Reader) List(ctx context.Context, filter *BillFilter) (*BillListResult, error) {
	limit := DefaultLimit
	offset := 0
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	offset = filter.Offset

	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(sqlconfig.TableBills),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(filter.UserID))),
		sm.Limit(limit + 1),
		sm.Offset(offset),
		sm.OrderBy(psql.Quote("name")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	}
	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return &BillListResult{}, nil
	}

	var nextCursor *BillCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &BillCursor{
			Position: offset + limit,
			Limit:    limit,
		}
	}

	result := make([]*Bill, len(rows))
	for i, r := range rows {
		result[i] = rowToBill(r)
	}
	return &BillListResult{Bills: result, NextCursor: nextCursor}, nil
}

func (r *Reader) Scan(ctx context.Context, after uuid.UUID, limit int) ([]*Bill, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableBills),
		sm.Where(psql.Quote("id").GT(psql.Arg(after))),
		sm.OrderBy(psql.Quote("id")).Asc(),
		sm.Limit(limit),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}

	result := make([]*Bill, len(rows))
	for i, r := range rows {
		result[i] = rowToBill(r)
	}
	return result, nil
}
