package item

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

var columns = []any{"id", "user_id", "access_token", "cursor", "institution_name", "last_synced_at", "created_at"}

type row struct {
	ID              string     `db:"id"`
	UserID          uuid.UUID  `db:"user_id"`
	AccessToken     []byte     `db:"access_token"`
	Cursor          string     `db:"cursor"`
	InstitutionName string     `db:"institution_name"`
	LastSyncedAt    *time.Time `db:"last_synced_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

func rowToItem(r row) *Item {
	return &Item{
		ID:              r.ID,
		UserID:          r.UserID,
		AccessToken:     r.AccessToken,
		Cursor:          r.Cursor,
		InstitutionName: r.InstitutionName,
		LastSyncedAt:    r.LastSyncedAt,
		CreatedAt:       r.CreatedAt,
	}
}

type Reader struct {
	exec bob.Executor
}

var _ IReader = (*Reader)(nil)

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, id string) (*Item, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableItems),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	found, err := bob.One(ctx, r.exec, q, scan.StructMapper[row]())
	if err != nil {
		return nil, sqlconfig.NotFound(err)
	}
	return rowToItem(found), nil
}

func (r *Reader) List(ctx context.Context, after string, limit int) ([]*Item, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return r.all(ctx,
		sm.Where(psql.Quote("id").GT(psql.Arg(after))),
		sm.OrderBy(psql.Quote("id")).Asc(),
		sm.Limit(limit),
	)
}

func (r *Reader) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Item, error) {
	return r.all(ctx,
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)
}

func (r *Reader) all(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) ([]*Item, error) {
	queryMods := append([]bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(sqlconfig.TableItems),
	}, mods...)
	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}

	result := make([]*Item, len(rows))
	for i, r := range rows {
		result[i] = rowToItem(r)
	}
	return result, nil
}
