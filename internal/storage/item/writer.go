package item

import (
	"context"
	"time"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

type Writer struct {
	tx bob.Tx
	Reader
}

var _ IWriter = (*Writer)(nil)

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx:     tx,
		Reader: Reader{exec: tx},
	}
}

func (w *Writer) Insert(ctx context.Context, it *Item) error {
	q := psql.Insert(
		im.Into(sqlconfig.TableItems, "id", "user_id", "access_token", "cursor", "institution_name"),
		im.Values(sqlconfig.Args(it.ID, it.UserID, it.AccessToken, it.Cursor, it.InstitutionName)...),
	)
	_, err := bob.Exec(ctx, w.tx, q)
	return err
}

func (w *Writer) UpdateCursor(ctx context.Context, id string, cursor string, syncedAt time.Time) error {
	q := psql.Update(
		um.Table(sqlconfig.TableItems),
		um.SetCol("cursor").ToArg(cursor),
		um.SetCol("last_synced_at").ToArg(sqlconfig.UTC(syncedAt)),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	return sqlconfig.RequireAffected(bob.Exec(ctx, w.tx, q))
}
