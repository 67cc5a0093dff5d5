package account

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-engine/internal/classify"
	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

var columns = []any{"id", "item_id", "user_id", "name", "type", "subtype", "currency", "updated_at"}

type row struct {
	ID        string    `db:"id"`
	ItemID    string    `db:"item_id"`
	UserID    uuid.UUID `db:"user_id"`
	Name      string    `db:"name"`
	Type      string    `db:"type"`
	Subtype   string    `db:"subtype"`
	Currency  string    `db:"currency"`
	UpdatedAt time.Time `db:"updated_at"`
}

func rowToAccount(r row) *Account {
	return &Account{
		ID:        r.ID,
		ItemID:    r.ItemID,
		UserID:    r.UserID,
		Name:      r.Name,
		Type:      classify.AccountType(r.Type),
		Subtype:   r.Subtype,
		Currency:  r.Currency,
		UpdatedAt: r.UpdatedAt,
	}
}

type Reader struct {
	exec bob.Executor
}

var _ IReader = (*Reader)(nil)

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, id string) (*Account, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableAccounts),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	found, err := bob.One(ctx, r.exec, q, scan.StructMapper[row]())
	if err != nil {
		return nil, sqlconfig.NotFound(err)
	}
	return rowToAccount(found), nil
}

func (r *Reader) ListByItem(ctx context.Context, itemID string) ([]*Account, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableAccounts),
		sm.Where(psql.Quote("item_id").EQ(psql.Arg(itemID))),
		sm.OrderBy(psql.Quote("name")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}

	result := make([]*Account, len(rows))
	for i, r := range rows {
		result[i] = rowToAccount(r)
	}
	return result, nil
}
