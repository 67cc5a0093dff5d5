package bill

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
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

func (w *Writer) Insert(ctx context.Context, create *BillCreate) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}

	q := psql.Insert(
		im.Into(sqlconfig.TableBills, "id", "user_id", "name", "amount", "due_type", "day_due", "is_auto_pay"),
		im.Values(sqlconfig.Args(id, create.UserID, create.Name, create.Amount, string(create.DueType), create.DayDue, create.IsAutoPay)...),
	)
	if _, err := bob.Exec(ctx, w.tx, q); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (w *Writer) Update(ctx context.Context, id uuid.UUID, update *BillUpdate) error {
	var setMods []bob.Mod[*dialect.UpdateQuery]
	if v, ok := update.Name.Get(); ok {
		setMods = append(setMods, um.SetCol("name").ToArg(v))
	}
	if v, ok := update.Amount.Get(); ok {
		setMods = append(setMods, um.SetCol("amount").ToArg(v))
	}
	if v, ok := update.DueType.Get(); ok {
		setMods = append(setMods, um.SetCol("due_type").ToArg(string(v)))
	}
	if !update.DayDue.IsUnset() {
		setMods = append(setMods, um.SetCol("day_due").ToArg(update.DayDue.MustPtr()))
	}
	if v, ok := update.IsAutoPay.Get(); ok {
		setMods = append(setMods, um.SetCol("is_auto_pay").ToArg(v))
	}
	if len(setMods) == 0 {
		_, err := w.FindByID(ctx, id)
		return err
	}

	queryMods := append([]bob.Mod[*dialect.UpdateQuery]{um.Table(sqlconfig.TableBills)}, setMods...)
	queryMods = append(queryMods, um.Where(psql.Quote("id").EQ(psql.Arg(id))))
	return sqlconfig.RequireAffected(bob.Exec(ctx, w.tx, psql.Update(queryMods...)))
}

func (w *Writer) Delete(ctx context.Context, id uuid.UUID) error {
	q := psql.Delete(
		dm.From(sqlconfig.TableBills),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	return sqlconfig.RequireAffected(bob.Exec(ctx, w.tx, q))
}
