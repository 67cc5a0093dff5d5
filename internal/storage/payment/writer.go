package payment

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
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

func (w *Writer) Insert(ctx context.Context, create *PaymentCreate) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}

	q := psql.Insert(
		im.Into(sqlconfig.TableBillPayments, "id", "bill_id", "user_id", "due_date"),
		im.Values(sqlconfig.Args(id, create.BillID, create.UserID, create.DueDate.String())...),
	)
	if _, err := bob.Exec(ctx, w.tx, q); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (w *Writer) SetPaidDate(ctx context.Context, id uuid.UUID, paid *time.Time) error {
	var value *time.Time
	if paid != nil {
		t := sqlconfig.UTC(*paid)
		value = &t
	}
	q := psql.Update(
		um.Table(sqlconfig.TableBillPayments),
		um.SetCol("paid_date").ToArg(value),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	return sqlconfig.RequireAffected(bob.Exec(ctx, w.tx, q))
}
