// Package scheduler creates and settles scheduled bill payments.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-engine/internal/backfill"
	"github.com/carson-networks/budget-engine/internal/operator/actions"
	"github.com/carson-networks/budget-engine/internal/period"
	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/bill"
)

const (
	DefaultHorizonDays = 15
	pageSize           = 100
)

// Processor runs an action in its own storage transaction.
type Processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

type Report struct {
	Bills          int
	Created        int
	Settled        int
	Unchanged      int
	OutsideHorizon int
	Undetermined   int
	Failed         int
}

// Reconciler is one pass over every bill. It keeps no state between runs.
type Reconciler struct {
	storage     storage.Storage
	operator    Processor
	indexer     *period.Indexer
	log         *logrus.Logger
	HorizonDays int
	Concurrency int
	Now         func() time.Time
}

func NewReconciler(s storage.Storage, op Processor, indexer *period.Indexer, log *logrus.Logger) *Reconciler {
	return &Reconciler{
		storage:     s,
		operator:    op,
		indexer:     indexer,
		log:         log,
		HorizonDays: DefaultHorizonDays,
		Concurrency: 4,
		Now:         time.Now,
	}
}

// Run reconciles every bill. A bill that fails is counted and logged; it
// never stops the others.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	now := r.Now()
	today := r.indexer.Today(now)

	var (
		mu     sync.Mutex
		report Report
	)
	count := func(outcome actions.ReconcileOutcome) {
		mu.Lock()
		defer mu.Unlock()
		switch outcome {
		case actions.OutcomeCreated:
			report.Created++
		case actions.OutcomeSettled:
			report.Settled++
		case actions.OutcomeUnchanged:
			report.Unchanged++
		case actions.OutcomeOutsideWindow:
			report.OutsideHorizon++
		case actions.OutcomeUndetermined:
			report.Undetermined++
		}
	}

	stats, err := backfill.Run(ctx, r.log, backfill.Job[*bill.Bill, uuid.UUID]{
		Name: "reconcile-bills",
		Fetch: func(ctx context.Context, after uuid.UUID, limit int) ([]*bill.Bill, error) {
			return r.storage.Read().Bills.Scan(ctx, after, limit)
		},
		Cursor: func(b *bill.Bill) uuid.UUID { return b.ID },
		Apply: func(ctx context.Context, b *bill.Bill) error {
			action := &actions.ReconcileBill{
				BillID:      b.ID,
				UserID:      b.UserID,
				Today:       today,
				Now:         now,
				HorizonDays: r.HorizonDays,
			}
			if err := r.operator.Process(ctx, action); err != nil {
				return err
			}
			if action.Outcome == actions.OutcomeUndetermined {
				r.log.WithFields(logrus.Fields{
					"billID":  b.ID,
					"dueType": b.DueType,
				}).Warn("Reconciler.Bill.UndeterminedDueDate")
			}
			count(action.Outcome)
			return nil
		},
		PageSize:        pageSize,
		Concurrency:     r.Concurrency,
		ContinueOnError: true,
	})
	report.Bills = stats.Scanned
	report.Failed = stats.Failed

	r.log.WithFields(logrus.Fields{
		"today":          today.String(),
		"bills":          report.Bills,
		"created":        report.Created,
		"settled":        report.Settled,
		"unchanged":      report.Unchanged,
		"outsideHorizon": report.OutsideHorizon,
		"undetermined":   report.Undetermined,
		"failed":         report.Failed,
	}).Info("Reconciler.Run.Complete")
	return report, err
}
