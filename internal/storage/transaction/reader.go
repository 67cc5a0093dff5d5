package transaction

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-engine/internal/classify"
	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

var columns = []any{
	"id", "account_id", "item_id", "user_id", "account_type", "amount", "currency",
	"date", "authorized_date", "name", "merchant_name", "category_primary", "category_detailed",
	"payment_channel", "pending", "updated_at",
}

type row struct {
	ID               string          `db:"id"`
	AccountID        string          `db:"account_id"`
	ItemID           string          `db:"item_id"`
	UserID           uuid.UUID       `db:"user_id"`
	AccountType      string          `db:"account_type"`
	Amount           decimal.Decimal `db:"amount"`
	Currency         string          `db:"currency"`
	Date             *string         `db:"date"`
	AuthorizedDate   *string         `db:"authorized_date"`
	Name             string          `db:"name"`
	MerchantName     string          `db:"merchant_name"`
	CategoryPrimary  string          `db:"category_primary"`
	CategoryDetailed string          `db:"category_detailed"`
	PaymentChannel   string          `db:"payment_channel"`
	Pending          bool            `db:"pending"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func rowToTransaction(r row) (*Transaction, error) {
	date, err := sqlconfig.DateFromString(r.Date)
	if err != nil {
		return nil, err
	}
	authorized, err := sqlconfig.DateFromString(r.AuthorizedDate)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		ID:               r.ID,
		AccountID:        r.AccountID,
		ItemID:           r.ItemID,
		UserID:           r.UserID,
		AccountType:      classify.AccountType(r.AccountType),
		Amount:           r.Amount,
		Currency:         r.Currency,
		Date:             date,
		AuthorizedDate:   authorized,
		Name:             r.Name,
		MerchantName:     r.MerchantName,
		CategoryPrimary:  r.CategoryPrimary,
		CategoryDetailed: r.CategoryDetailed,
		PaymentChannel:   r.PaymentChannel,
		Pending:          r.Pending,
		UpdatedAt:        r.UpdatedAt,
	}, nil
}

func rowsToTransactions(rows []row) ([]*Transaction, error) {
	result := make([]*Transaction, len(rows))
	for i, r := range rows {
		t, err := rowToTransaction(r)
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}

type Reader struct {
	exec bob.Executor
}

var _ IReader = (*Reader)(nil)

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, id string) (*Transaction, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableTransactions),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	found, err := bob.One(ctx, r.exec, q, scan.StructMapper[row]())
	if err != nil {
		return nil, sqlconfig.NotFound(err)
	}
	return rowToTransaction(found)
}

func (r *Reader) ListByUser(ctx context.Context, userID uuid.UUID, after string, limit int) ([]*Transaction, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableTransactions),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		sm.Where(psql.Quote("id").GT(psql.Arg(after))),
		sm.OrderBy(psql.Quote("id")).Asc(),
		sm.Limit(limit),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	return rowsToTransactions(rows)
}

func (r *Reader) ListByAccount(ctx context.Context, accountID string) ([]*Transaction, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableTransactions),
		sm.Where(psql.Quote("account_id").EQ(psql.Arg(accountID))),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	return rowsToTransactions(rows)
}

func (r *Reader) ListUserIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := psql.Select(
		sm.Distinct(),
		sm.Columns("user_id"),
		sm.From(sqlconfig.TableTransactions),
		sm.Where(psql.Quote("user_id").GT(psql.Arg(after))),
		sm.OrderBy(psql.Quote("user_id")).Asc(),
		sm.Limit(limit),
	)
	return bob.All(ctx, r.exec, q, scan.SingleColumnMapper[uuid.UUID])
}
