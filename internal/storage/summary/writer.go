package summary

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"

	"github.com/carson-networks/budget-engine/internal/classify"
	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

// The increment happens inside the conflict clause, so Postgres serializes
// concurrent writers on the (user_id, period, bucket_start) unique index.
// The first non-empty currency wins.
const addSQL = `INSERT INTO summaries (
	id, user_id, period, bucket_start, bucket_end, currency,
	cash_income_external, cash_spending, cash_savings_contributions,
	cc_purchases, cc_payments, cc_interest_fees, cc_refunds, cc_principal_delta,
	updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, now())
ON CONFLICT (user_id, period, bucket_start) DO UPDATE SET
	currency = COALESCE(NULLIF(summaries.currency, ''), EXCLUDED.currency),
	cash_income_external = summaries.cash_income_external + EXCLUDED.cash_income_external,
	cash_spending = summaries.cash_spending + EXCLUDED.cash_spending,
	cash_savings_contributions = summaries.cash_savings_contributions + EXCLUDED.cash_savings_contributions,
	cc_purchases = summaries.cc_purchases + EXCLUDED.cc_purchases,
	cc_payments = summaries.cc_payments + EXCLUDED.cc_payments,
	cc_interest_fees = summaries.cc_interest_fees + EXCLUDED.cc_interest_fees,
	cc_refunds = summaries.cc_refunds + EXCLUDED.cc_refunds,
	cc_principal_delta = summaries.cc_principal_delta + EXCLUDED.cc_principal_delta,
	updated_at = now()`

const addCategorySQL = `INSERT INTO category_summaries (user_id, period, bucket_start, category, amount)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id, period, bucket_start, category) DO UPDATE SET
	amount = category_summaries.amount + EXCLUDED.amount`

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

func (w *Writer) Add(ctx context.Context, key Key, bucketEnd time.Time, deltas classify.Deltas, currency string) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}

	_, err = bob.Exec(ctx, w.tx, psql.RawQuery(addSQL,
		id, key.UserID, string(key.Period), sqlconfig.UTC(key.BucketStart), sqlconfig.UTC(bucketEnd), currency,
		deltas.CashIncomeExternal, deltas.CashSpending, deltas.CashSavingsContributions,
		deltas.CCPurchases, deltas.CCPayments, deltas.CCInterestFees, deltas.CCRefunds, deltas.CCPrincipalDelta,
	))
	return err
}

func (w *Writer) AddCategory(ctx context.Context, key Key, category string, amount decimal.Decimal) error {
	_, err := bob.Exec(ctx, w.tx, psql.RawQuery(addCategorySQL,
		key.UserID, string(key.Period), sqlconfig.UTC(key.BucketStart), category, amount,
	))
	return err
}

func (w *Writer) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	for _, table := range []string{sqlconfig.TableSummaries, sqlconfig.TableCategorySummaries} {
		_, err := bob.Exec(ctx, w.tx, psql.Delete(
			dm.From(table),
			dm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		))
		if err != nil {
			return err
		}
	}
	return nil
}
