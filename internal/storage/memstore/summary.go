package memstore

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-engine/internal/classify"
	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
	"github.com/carson-networks/budget-engine/internal/storage/summary"
)

type summaryTable struct {
	*tables
}

func keyString(k summary.Key) string {
	return k.UserID.String() + "|" + string(k.Period) + "|" + k.BucketStart.UTC().Format(time.RFC3339Nano)
}

func (t *summaryTable) Find(ctx context.Context, key summary.Key) (*summary.Summary, error) {
	s, ok := t.st.summaries[keyString(key)]
	if !ok {
		return nil, sqlconfig.ErrNotFound
	}
	return &s, nil
}

func (t *summaryTable) ListByPeriod(ctx context.Context, filter *summary.ListFilter) (*summary.ListResult, error) {
	limit := summary.PageLimit(filter.Limit)

	var rows []*summary.Summary
	for _, s := range t.st.summaries {
		if s.UserID != filter.UserID || s.Period != filter.Period {
			continue
		}
		if filter.Before != nil && !s.BucketStart.Before(*filter.Before) {
			continue
		}
		s := s
		rows = append(rows, &s)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].BucketStart.After(rows[j].BucketStart)
	})

	if len(rows) == 0 {
		return &summary.ListResult{}, nil
	}
	var next *summary.ListCursor
	if len(rows) > limit {
		rows = rows[:limit]
		next = &summary.ListCursor{Before: rows[limit-1].BucketStart, Limit: limit}
	}
	return &summary.ListResult{Summaries: rows, NextCursor: next}, nil
}

func (t *summaryTable) ListCategories(ctx context.Context, key summary.Key) ([]summary.CategorySpend, error) {
	var result []summary.CategorySpend
	for category, amount := range t.st.categories[keyString(key)] {
		if amount.IsZero() {
			continue
		}
		result = append(result, summary.CategorySpend{Category: category, Amount: amount})
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Amount.Cmp(result[j].Amount); c != 0 {
			return c > 0
		}
		return result[i].Category < result[j].Category
	})
	return result, nil
}

func (t *summaryTable) Scan(ctx context.Context, after uuid.UUID, limit int) ([]*summary.Summary, error) {
	var rows []*summary.Summary
	for _, s := range t.st.summaries {
		if bytes.Compare(s.ID[:], after[:]) <= 0 {
			continue
		}
		s := s
		rows = append(rows, &s)
	}
	sort.Slice(rows, func(i, j int) bool {
		return bytes.Compare(rows[i].ID[:], rows[j].ID[:]) < 0
	})
	if limit = summary.PageLimit(limit); len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (t *summaryTable) Add(ctx context.Context, key summary.Key, bucketEnd time.Time, deltas classify.Deltas, currency string) error {
	k := keyString(key)
	s, ok := t.st.summaries[k]
	if !ok {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		s = summary.Summary{
			ID:          id,
			UserID:      key.UserID,
			Period:      key.Period,
			BucketStart: key.BucketStart.UTC(),
			BucketEnd:   bucketEnd.UTC(),
		}
	}
	if s.Currency == "" {
		s.Currency = currency
	}
	s.Totals = s.Totals.Add(deltas)
	s.UpdatedAt = t.now()
	t.st.summaries[k] = s
	return nil
}

func (t *summaryTable) AddCategory(ctx context.Context, key summary.Key, category string, amount decimal.Decimal) error {
	k := keyString(key)
	byCategory, ok := t.st.categories[k]
	if !ok {
		byCategory = map[string]decimal.Decimal{}
		t.st.categories[k] = byCategory
	}
	byCategory[category] = byCategory[category].Add(amount)
	return nil
}

func (t *summaryTable) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	for k, s := range t.st.summaries {
		if s.UserID == userID {
			delete(t.st.summaries, k)
		}
	}
	prefix := userID.String() + "|"
	for k := range t.st.categories {
		if strings.HasPrefix(k, prefix) {
			delete(t.st.categories, k)
		}
	}
	return nil
}
