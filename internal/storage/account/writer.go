package account

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
)

const upsertSQL = `INSERT INTO accounts (id, item_id, user_id, name, type, subtype, currency, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, now())
ON CONFLICT (id) DO UPDATE SET
	item_id = EXCLUDED.item_id,
	user_id = EXCLUDED.user_id,
	name = EXCLUDED.name,
	type = EXCLUDED.type,
	subtype = EXCLUDED.subtype,
	currency = EXCLUDED.currency,
	updated_at = now()`

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

func (w *Writer) Upsert(ctx context.Context, a *Account) error {
	_, err := bob.Exec(ctx, w.tx, psql.RawQuery(upsertSQL,
		a.ID, a.ItemID, a.UserID, a.Name, string(a.Type), a.Subtype, a.Currency,
	))
	return err
}
