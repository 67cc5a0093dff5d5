package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/aggregate"
	"github.com/carson-networks/budget-engine/internal/backfill"
	"github.com/carson-networks/budget-engine/internal/storage"
)

// RebuildUserSummaries wipes and replays one user's summaries atomically.
type RebuildUserSummaries struct {
	Aggregator *aggregate.Aggregator
	UserID     uuid.UUID
	PageSize   int

	Stats backfill.Stats
}

func (r *RebuildUserSummaries) Key() string {
	return r.UserID.String()
}

func (r *RebuildUserSummaries) Perform(ctx context.Context, writer *storage.Writer) error {
	stats, err := r.Aggregator.Rebuild(ctx, writer.Summaries, writer.Transactions, r.UserID, r.PageSize)
	r.Stats = stats
	return err
}
