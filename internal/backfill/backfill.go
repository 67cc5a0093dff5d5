// Package backfill walks a paginated record source and applies a change to
// every record that matches, with a bounded number of records in flight.
package backfill

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize    = 100
	DefaultConcurrency = 1
)

// Job describes one pass. C is the keyset cursor type; its zero value
// starts the scan.
type Job[T any, C any] struct {
	Name string
	// Fetch returns up to limit records strictly after the cursor, in cursor order.
	Fetch  func(ctx context.Context, after C, limit int) ([]T, error)
	Cursor func(record T) C
	// Match selects the records Apply runs on. nil matches everything.
	Match func(record T) bool
	Apply func(ctx context.Context, record T) error

	PageSize    int
	Concurrency int
	// ContinueOnError counts failed records instead of stopping at the first.
	ContinueOnError bool
}

type Stats struct {
	Pages   int
	Scanned int
	Matched int
	Applied int
	Failed  int
	Elapsed time.Duration
}

// Run processes pages strictly in order. Records inside a page are applied
// concurrently up to Concurrency; the next page is not fetched until the
// current one is done.
func Run[T any, C any](ctx context.Context, log *logrus.Logger, job Job[T, C]) (Stats, error) {
	start := time.Now()
	pageSize := job.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	concurrency := job.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		stats  Stats
		mu     sync.Mutex
		cursor C
	)
	for {
		page, err := job.Fetch(ctx, cursor, pageSize)
		if err != nil {
			return stats, fmt.Errorf("%s: fetch page %d: %w", job.Name, stats.Pages+1, err)
		}
		if len(page) == 0 {
			break
		}
		stats.Pages++
		stats.Scanned += len(page)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, record := range page {
			if gctx.Err() != nil {
				break
			}
			if job.Match != nil && !job.Match(record) {
				continue
			}
			stats.Matched++
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				err := job.Apply(gctx, record)
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					stats.Applied++
					return nil
				}
				stats.Failed++
				if job.ContinueOnError {
					log.WithFields(logrus.Fields{
						"job":    job.Name,
						"cursor": fmt.Sprint(job.Cursor(record)),
					}).WithError(err).Warn("Backfill.Apply.Failed")
					return nil
				}
				return err
			})
		}
		if err := g.Wait(); err != nil {
			stats.Elapsed = time.Since(start)
			return stats, fmt.Errorf("%s: %w", job.Name, err)
		}

		cursor = job.Cursor(page[len(page)-1])
		if len(page) < pageSize {
			break
		}
	}

	stats.Elapsed = time.Since(start)
	log.WithFields(logrus.Fields{
		"job":     job.Name,
		"pages":   stats.Pages,
		"scanned": stats.Scanned,
		"matched": stats.Matched,
		"applied": stats.Applied,
		"failed":  stats.Failed,
		"elapsed": stats.Elapsed.Milliseconds(),
	}).Info("Backfill.Run.Complete")
	return stats, nil
}
