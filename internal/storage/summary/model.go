package summary

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-engine/internal/classify"
	"github.com/carson-networks/budget-engine/internal/period"
)

// Key identifies exactly one Summary row.
type Key struct {
	UserID      uuid.UUID
	Period      period.Granularity
	BucketStart time.Time
}

// Summary is the accumulated effect of every transaction whose effective
// date falls in [BucketStart, BucketEnd).
type Summary struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Period      period.Granularity
	BucketStart time.Time
	BucketEnd   time.Time
	Currency    string
	Totals      classify.Deltas
	UpdatedAt   time.Time
}

func (s *Summary) Key() Key {
	return Key{UserID: s.UserID, Period: s.Period, BucketStart: s.BucketStart}
}

// CategorySpend is the spending total of one category within a bucket.
type CategorySpend struct {
	Category string
	Amount   decimal.Decimal
}

// ListFilter selects summaries of one period, newest bucket first.
type ListFilter struct {
	UserID uuid.UUID
	Period period.Granularity
	Limit  int
	// Before restricts the page to buckets starting strictly earlier.
	Before *time.Time
}

// ListCursor identifies the next page of a ListByPeriod query.
type ListCursor struct {
	Before time.Time
	Limit  int
}

type ListResult struct {
	Summaries  []*Summary
	NextCursor *ListCursor
}

// IReader defines read access to summaries.
//
//go:generate mockery --name IReader --output mock_IReader.go
type IReader interface {
	Find(ctx context.Context, key Key) (*Summary, error)
	ListByPeriod(ctx context.Context, filter *ListFilter) (*ListResult, error)
	ListCategories(ctx context.Context, key Key) ([]CategorySpend, error)
	// Scan pages through every summary ordered by ID.
	Scan(ctx context.Context, after uuid.UUID, limit int) ([]*Summary, error)
}

// IWriter adds the atomic accumulator updates. Add must behave as a single
// read-modify-write per key: concurrent callers on one key never lose updates.
type IWriter interface {
	IReader
	Add(ctx context.Context, key Key, bucketEnd time.Time, deltas classify.Deltas, currency string) error
	AddCategory(ctx context.Context, key Key, category string, amount decimal.Decimal) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

const defaultLimit = 20

// PageLimit applies the default page size to non-positive limits.
func PageLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}
