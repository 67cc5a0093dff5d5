package summary

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

	"github.com/carson-networks/budget-engine/internal/classify"
	"github.com/carson-networks/budget-engine/internal/period"
	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

var columns = []any{
	"id", "user_id", "period", "bucket_start", "bucket_end", "currency",
	"cash_income_external", "cash_spending", "cash_savings_contributions",
	"cc_purchases", "cc_payments", "cc_interest_fees", "cc_refunds", "cc_principal_delta",
	"updated_at",
}

type row struct {
	ID                       uuid.UUID       `db:"id"`
	UserID                   uuid.UUID       `db:"user_id"`
	Period                   string          `db:"period"`
	BucketStart              time.Time       `db:"bucket_start"`
	BucketEnd                time.Time       `db:"bucket_end"`
	Currency                 string          `db:"currency"`
	CashIncomeExternal       decimal.Decimal `db:"cash_income_external"`
	CashSpending             decimal.Decimal `db:"cash_spending"`
	CashSavingsContributions decimal.Decimal `db:"cash_savings_contributions"`
	CCPurchases              decimal.Decimal `db:"cc_purchases"`
	CCPayments               decimal.Decimal `db:"cc_payments"`
	CCInterestFees           decimal.Decimal `db:"cc_interest_fees"`
	CCRefunds                decimal.Decimal `db:"cc_refunds"`
	CCPrincipalDelta         decimal.Decimal `db:"cc_principal_delta"`
	UpdatedAt                time.Time       `db:"updated_at"`
}

type categoryRow struct {
	Category string          `db:"category"`
	Amount   decimal.Decimal `db:"amount"`
}

func rowToSummary(r row) *Summary {
	return &Summary{
		ID:          r.ID,
		UserID:      r.UserID,
		Period:      period.Granularity(r.Period),
		BucketStart: r.BucketStart,
		BucketEnd:   r.BucketEnd,
		Currency:    r.Currency,
		Totals: classify.Deltas{
			CashIncomeExternal:       r.CashIncomeExternal,
			CashSpending:             r.CashSpending,
			CashSavingsContributions: r.CashSavingsContributions,
			CCPurchases:              r.CCPurchases,
			CCPayments:               r.CCPayments,
			CCInterestFees:           r.CCInterestFees,
			CCRefunds:                r.CCRefunds,
			CCPrincipalDelta:         r.CCPrincipalDelta,
		},
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

func keyWhere(key Key) []bob.Mod[*dialect.SelectQuery] {
	return []bob.Mod[*dialect.SelectQuery]{
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(key.UserID))),
		sm.Where(psql.Quote("period").EQ(psql.Arg(string(key.Period)))),
		sm.Where(psql.Quote("bucket_start").EQ(psql.Arg(sqlconfig.UTC(key.BucketStart)))),
	}
}

func (r *Reader) Find(ctx context.Context, key Key) (*Summary, error) {
	queryMods := append([]bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(sqlconfig.TableSummaries),
	}, keyWhere(key)...)

	found, err := bob.One(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[row]())
	if err != nil {
		return nil, sqlconfig.NotFound(err)
	}
	return rowToSummary(found), nil
}

func (r *Reader) ListByPeriod(ctx context.Context, filter *ListFilter) (*ListResult, error) {
	limit := PageLimit(filter.Limit)

	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(sqlconfig.TableSummaries),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(filter.UserID))),
		sm.Where(psql.Quote("period").EQ(psql.Arg(string(filter.Period)))),
	}
	if filter.Before != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("bucket_start").LT(psql.Arg(sqlconfig.UTC(*filter.Before)))))
	}
	queryMods = append(queryMods,
		sm.OrderBy(psql.Quote("bucket_start")).Desc(),
		sm.Limit(limit+1),
	)

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	return pageResult(rows, limit), nil
}

func pageResult(rows []row, limit int) *ListResult {
	if len(rows) == 0 {
		return &ListResult{}
	}

	var nextCursor *ListCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &ListCursor{Before: rows[limit-1].BucketStart, Limit: limit}
	}

	result := make([]*Summary, len(rows))
	for i, r := range rows {
		result[i] = rowToSummary(r)
	}
	return &ListResult{Summaries: result, NextCursor: nextCursor}
}

func (r *Reader) ListCategories(ctx context.Context, key Key) ([]CategorySpend, error) {
	queryMods := append([]bob.Mod[*dialect.SelectQuery]{
		sm.Columns("category", "amount"),
		sm.From(sqlconfig.TableCategorySummaries),
	}, keyWhere(key)...)
	queryMods = append(queryMods,
		sm.Where(psql.Quote("amount").NE(psql.Arg(decimal.Zero))),
		sm.OrderBy(psql.Quote("amount")).Desc(),
		sm.OrderBy(psql.Quote("category")).Asc(),
	)

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[categoryRow]())
	if err != nil {
		return nil, err
	}

	result := make([]CategorySpend, len(rows))
	for i, r := range rows {
		result[i] = CategorySpend{Category: r.Category, Amount: r.Amount}
	}
	return result, nil
}

func (r *Reader) Scan(ctx context.Context, after uuid.UUID, limit int) ([]*Summary, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(sqlconfig.TableSummaries),
		sm.Where(psql.Quote("id").GT(psql.Arg(after))),
		sm.OrderBy(psql.Quote("id")).Asc(),
		sm.Limit(PageLimit(limit)),
	}

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}

	result := make([]*Summary, len(rows))
	for i, r := range rows {
		result[i] = rowToSummary(r)
	}
	return result, nil
}
