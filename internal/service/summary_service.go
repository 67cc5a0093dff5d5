package service

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/aggregate"
	"github.com/carson-networks/budget-engine/internal/backfill"
	"github.com/carson-networks/budget-engine/internal/operator/actions"
	"github.com/carson-networks/budget-engine/internal/period"
	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/summary"
)

// SummaryCursor continues a listing with buckets older than Before. A zero
// Before starts from the newest bucket.
type SummaryCursor struct {
	Before time.Time
	Limit  int
}

type SummaryService struct {
	storage    storage.Storage
	operator   Processor
	aggregator *aggregate.Aggregator
}

func NewSummaryService(store storage.Storage, op Processor, agg *aggregate.Aggregator) *SummaryService {
	return &SummaryService{storage: store, operator: op, aggregator: agg}
}

// ListByPeriod returns the user's summaries of one granularity, newest first.
func (s *SummaryService) ListByPeriod(ctx context.Context, userID uuid.UUID, g period.Granularity, cursor *SummaryCursor) ([]*summary.Summary, *SummaryCursor, error) {
	filter := &summary.ListFilter{UserID: userID, Period: g}
	if cursor != nil {
		if !cursor.Before.IsZero() {
			before := cursor.Before
			filter.Before = &before
		}
		filter.Limit = cursor.Limit
	}

	result, err := s.storage.Read().Summaries.ListByPeriod(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	var next *SummaryCursor
	if result.NextCursor != nil {
		next = &SummaryCursor{Before: result.NextCursor.Before, Limit: result.NextCursor.Limit}
	}
	return result.Summaries, next, nil
}

// ListCategories returns per-category spending for the bucket containing date.
func (s *SummaryService) ListCategories(ctx context.Context, userID uuid.UUID, g period.Granularity, date civil.Date) (period.Bucket, []summary.CategorySpend, error) {
	bucket, err := s.aggregator.Indexer().Bucket(date, g)
	if err != nil {
		return period.Bucket{}, nil, validationError("date", err.Error())
	}

	spend, err := s.storage.Read().Summaries.ListCategories(ctx, summary.Key{
		UserID:      userID,
		Period:      g,
		BucketStart: bucket.Start,
	})
	if err != nil {
		return period.Bucket{}, nil, err
	}
	return bucket, spend, nil
}

// Rebuild wipes and replays the user's summaries in one transaction.
func (s *SummaryService) Rebuild(ctx context.Context, userID uuid.UUID, pageSize int) (backfill.Stats, error) {
	action := &actions.RebuildUserSummaries{
		Aggregator: s.aggregator,
		UserID:     userID,
		PageSize:   pageSize,
	}
	if err := s.operator.Process(ctx, action); err != nil {
		return action.Stats, err
	}
	return action.Stats, nil
}
