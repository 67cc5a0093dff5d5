package sqlconfig

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
)

const (
	TableSummaries         = "summaries"
	TableCategorySummaries = "category_summaries"
	TableBills             = "bills"
	TableBillPayments      = "bill_payments"
	TableTransactions      = "transactions"
	TableAccounts          = "accounts"
	TableItems             = "items"
)

// ErrNotFound is returned by every reader when the requested row is absent.
var ErrNotFound = errors.New("record not found")

// NotFound maps sql.ErrNoRows onto ErrNotFound and passes other errors through.
func NotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// RequireAffected turns a zero-row update or delete into ErrNotFound.
func RequireAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Dates are stored as ISO strings so equality lookups are exact string matches.

func DateToString(d civil.Date) *string {
	if d == (civil.Date{}) {
		return nil
	}
	s := d.String()
	return &s
}

func DateFromString(s *string) (civil.Date, error) {
	if s == nil || *s == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(*s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("stored date %q: %w", *s, err)
	}
	return d, nil
}

// UTC normalizes timestamps before they are compared or stored.
func UTC(t time.Time) time.Time {
	return t.UTC()
}

// Args binds each value as its own placeholder, for use in im.Values.
func Args(vs ...any) []bob.Expression {
	exprs := make([]bob.Expression, len(vs))
	for i, v := range vs {
		exprs[i] = psql.Arg(v)
	}
	return exprs
}
