package transaction

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"

	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

const upsertSQL = `INSERT INTO transactions (
	id, account_id, item_id, user_id, account_type, amount, currency,
	date, authorized_date, name, merchant_name, category_primary, category_detailed,
	payment_channel, pending, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, now())
ON CONFLICT (id) DO UPDATE SET
	account_id = EXCLUDED.account_id,
	item_id = EXCLUDED.item_id,
	user_id = EXCLUDED.user_id,
	account_type = EXCLUDED.account_type,
	amount = EXCLUDED.amount,
	currency = EXCLUDED.currency,
	date = EXCLUDED.date,
	authorized_date = EXCLUDED.authorized_date,
	name = EXCLUDED.name,
	merchant_name = EXCLUDED.merchant_name,
	category_primary = EXCLUDED.category_primary,
	category_detailed = EXCLUDED.category_detailed,
	payment_channel = EXCLUDED.payment_channel,
	pending = EXCLUDED.pending,
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

func (w *Writer) Upsert(ctx context.Context, t *Transaction) error {
	_, err := bob.Exec(ctx, w.tx, psql.RawQuery(upsertSQL,
		t.ID, t.AccountID, t.ItemID, t.UserID, string(t.AccountType), t.Amount, t.Currency,
		sqlconfig.DateToString(t.Date), sqlconfig.DateToString(t.AuthorizedDate),
		t.Name, t.MerchantName, t.CategoryPrimary, t.CategoryDetailed,
		t.PaymentChannel, t.Pending,
	))
	return err
}

func (w *Writer) Delete(ctx context.Context, id string) error {
	q := psql.Delete(
		dm.From(sqlconfig.TableTransactions),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	return sqlconfig.RequireAffected(bob.Exec(ctx, w.tx, q))
}
