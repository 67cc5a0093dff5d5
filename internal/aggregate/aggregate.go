// Package aggregate folds classified transactions into the day, week and
// month summaries of their owner.
package aggregate

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-engine/internal/backfill"
	"github.com/carson-networks/budget-engine/internal/classify"
	"github.com/carson-networks/budget-engine/internal/period"
	"github.com/carson-networks/budget-engine/internal/storage/summary"
	"github.com/carson-networks/budget-engine/internal/storage/transaction"
)

const (
	Apply   int64 = 1
	Reverse int64 = -1
)

type Aggregator struct {
	indexer *period.Indexer
	log     *logrus.Logger
}

func New(indexer *period.Indexer, log *logrus.Logger) *Aggregator {
	return &Aggregator{indexer: indexer, log: log}
}

func (a *Aggregator) Indexer() *period.Indexer {
	return a.indexer
}

// ApplyDelta adds deltas*multiplier to the user's bucket of every
// granularity containing date. A zero date is a no-op.
func (a *Aggregator) ApplyDelta(ctx context.Context, w summary.IWriter, userID uuid.UUID, date civil.Date, deltas classify.Deltas, multiplier int64, currency string) error {
	if date == (civil.Date{}) {
		return nil
	}
	if !date.IsValid() {
		return fmt.Errorf("invalid effective date %s", date)
	}

	scaled := deltas.Scale(multiplier)
	for _, b := range a.indexer.Buckets(date) {
		key := summary.Key{UserID: userID, Period: b.Granularity, BucketStart: b.Start}
		if err := w.Add(ctx, key, b.End, scaled, currency); err != nil {
			return fmt.Errorf("add %s bucket %s: %w", b.Granularity, b.Start.Format("2006-01-02"), err)
		}
	}
	return nil
}

// ApplyTransaction classifies txn against the account type it was stored
// with and applies or reverses its effect, including its category spend.
// Transactions with no economic effect or no effective date touch nothing.
func (a *Aggregator) ApplyTransaction(ctx context.Context, w summary.IWriter, txn *transaction.Transaction, multiplier int64) error {
	c := classify.Classify(txn.Classifiable(), txn.AccountType)
	if !c.HasEffectiveDate {
		a.log.WithField("transactionID", txn.ID).Warn("Aggregator.ApplyTransaction.NoEffectiveDate")
		return nil
	}
	if c.Deltas.IsZero() {
		return nil
	}

	if err := a.ApplyDelta(ctx, w, txn.UserID, c.EffectiveDate, c.Deltas, multiplier, c.Currency); err != nil {
		return fmt.Errorf("transaction %s: %w", txn.ID, err)
	}

	spend := c.Deltas.CategorySpend()
	if spend.IsZero() {
		return nil
	}
	scaled := spend.Mul(decimal.NewFromInt(multiplier))
	for _, b := range a.indexer.Buckets(c.EffectiveDate) {
		key := summary.Key{UserID: txn.UserID, Period: b.Granularity, BucketStart: b.Start}
		if err := w.AddCategory(ctx, key, c.Category, scaled); err != nil {
			return fmt.Errorf("transaction %s: add category %s: %w", txn.ID, c.Category, err)
		}
	}
	return nil
}

// Replace reverses old (if any) and applies new (if any). Either may be nil.
func (a *Aggregator) Replace(ctx context.Context, w summary.IWriter, old, new *transaction.Transaction) error {
	if old != nil {
		if err := a.ApplyTransaction(ctx, w, old, Reverse); err != nil {
			return err
		}
	}
	if new != nil {
		return a.ApplyTransaction(ctx, w, new, Apply)
	}
	return nil
}

// Rebuild deletes every summary of userID and replays the user's stored
// transactions. The result equals the net effect of incremental application.
func (a *Aggregator) Rebuild(ctx context.Context, w summary.IWriter, txns transaction.IReader, userID uuid.UUID, pageSize int) (backfill.Stats, error) {
	if err := w.DeleteByUser(ctx, userID); err != nil {
		return backfill.Stats{}, fmt.Errorf("delete summaries: %w", err)
	}

	return backfill.Run(ctx, a.log, backfill.Job[*transaction.Transaction, string]{
		Name: "rebuild-summaries",
		Fetch: func(ctx context.Context, after string, limit int) ([]*transaction.Transaction, error) {
			return txns.ListByUser(ctx, userID, after, limit)
		},
		Cursor: func(txn *transaction.Transaction) string { return txn.ID },
		Apply: func(ctx context.Context, txn *transaction.Transaction) error {
			return a.ApplyTransaction(ctx, w, txn, Apply)
		},
		PageSize: pageSize,
		// One storage transaction is not safe for concurrent use.
		Concurrency: 1,
	})
}
