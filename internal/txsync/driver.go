// Package txsync pulls transaction changes from the provider and folds
// them into storage one page at a time.
package txsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-engine/internal/aggregate"
	"github.com/carson-networks/budget-engine/internal/backfill"
	"github.com/carson-networks/budget-engine/internal/operator/actions"
	"github.com/carson-networks/budget-engine/internal/provider"
	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/account"
	"github.com/carson-networks/budget-engine/internal/storage/item"
	"github.com/carson-networks/budget-engine/internal/storage/transaction"
)

const (
	DefaultMaxRetries = 5
	DefaultPageSize   = 500
)

// ErrRetriesExhausted wraps the last provider error once every attempt at a
// page fetch has failed. The item cursor is left where it was.
var ErrRetriesExhausted = errors.New("provider retries exhausted")

type Processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

type TokenOpener interface {
	Open(sealed []byte) ([]byte, error)
}

type Driver struct {
	storage    storage.Storage
	operator   Processor
	feed       provider.Feed
	tokens     TokenOpener
	aggregator *aggregate.Aggregator
	log        *logrus.Logger

	MaxRetries  int
	PageSize    int
	Concurrency int
	NewBackOff  func() backoff.BackOff
	Now         func() time.Time
}

func NewDriver(s storage.Storage, op Processor, feed provider.Feed, tokens TokenOpener, agg *aggregate.Aggregator, log *logrus.Logger) *Driver {
	return &Driver{
		storage:     s,
		operator:    op,
		feed:        feed,
		tokens:      tokens,
		aggregator:  agg,
		log:         log,
		MaxRetries:  DefaultMaxRetries,
		PageSize:    DefaultPageSize,
		Concurrency: 2,
		NewBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxElapsedTime = 0
			return b
		},
		Now: time.Now,
	}
}

type Result struct {
	ItemID   string
	Pages    int
	Accounts int
	Added    int
	Modified int
	Removed  int
	Retries  int
	Cursor   string
}

// SyncItem pages through everything the provider has after the item's
// stored cursor. Each page, including its cursor, is committed atomically,
// so a failed run resumes from the last committed page.
func (d *Driver) SyncItem(ctx context.Context, itemID string) (Result, error) {
	result := Result{ItemID: itemID}

	it, err := d.storage.Read().Items.FindByID(ctx, itemID)
	if err != nil {
		return result, fmt.Errorf("item %s: %w", itemID, err)
	}
	token, err := d.tokens.Open(it.AccessToken)
	if err != nil {
		return result, fmt.Errorf("item %s: open access token: %w", itemID, err)
	}

	cursor := it.Cursor
	result.Cursor = cursor
	for {
		page, err := d.fetch(ctx, it, string(token), cursor, &result)
		if err != nil {
			return result, err
		}

		apply := d.toAction(it, page)
		if err := d.operator.Process(ctx, apply); err != nil {
			return result, fmt.Errorf("item %s: apply page %d: %w", itemID, result.Pages+1, err)
		}

		result.Pages++
		result.Accounts += apply.Result.Accounts
		result.Added += apply.Result.Added
		result.Modified += apply.Result.Modified
		result.Removed += apply.Result.Removed
		cursor = page.NextCursor
		result.Cursor = cursor

		if !page.HasMore {
			break
		}
	}

	d.log.WithFields(logrus.Fields{
		"itemID":   itemID,
		"pages":    result.Pages,
		"added":    result.Added,
		"modified": result.Modified,
		"removed":  result.Removed,
		"retries":  result.Retries,
	}).Info("SyncDriver.SyncItem.Complete")
	return result, nil
}

// fetch retries the whole page request on transient failures, up to MaxRetries.
func (d *Driver) fetch(ctx context.Context, it *item.Item, token, cursor string, result *Result) (*provider.Page, error) {
	var page *provider.Page
	operation := func() error {
		p, err := d.feed.Sync(ctx, token, cursor, d.PageSize)
		if err != nil {
			if !provider.IsTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		page = p
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(d.NewBackOff(), uint64(d.MaxRetries)), ctx)
	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		result.Retries++
		d.log.WithFields(logrus.Fields{
			"itemID":  it.ID,
			"attempt": result.Retries,
			"wait":    wait.Milliseconds(),
		}).WithError(err).Warn("SyncDriver.Fetch.Retry")
	})
	if err == nil {
		return page, nil
	}
	if provider.IsTransient(err) {
		err = fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
	}
	return nil, fmt.Errorf("item %s: fetch after cursor %q: %w", it.ID, cursor, err)
}

func (d *Driver) toAction(it *item.Item, page *provider.Page) *actions.ApplySyncPage {
	apply := &actions.ApplySyncPage{
		Aggregator: d.aggregator,
		ItemID:     it.ID,
		UserID:     it.UserID,
		Removed:    page.Removed,
		NextCursor: page.NextCursor,
		SyncedAt:   d.Now(),
	}
	for _, a := range page.Accounts {
		apply.Accounts = append(apply.Accounts, &account.Account{
			ID:       a.ID,
			Name:     a.Name,
			Type:     a.AccountType(),
			Subtype:  a.Subtype,
			Currency: a.Currency,
		})
	}
	for _, group := range [][]provider.Transaction{page.Added, page.Modified} {
		for _, t := range group {
			apply.Upserts = append(apply.Upserts, toStored(t))
		}
	}
	return apply
}

func toStored(t provider.Transaction) *transaction.Transaction {
	return &transaction.Transaction{
		ID:               t.ID,
		AccountID:        t.AccountID,
		Amount:           t.Amount,
		Currency:         t.Currency,
		Date:             t.Date,
		AuthorizedDate:   t.AuthorizedDate,
		Name:             t.Name,
		MerchantName:     t.MerchantName,
		CategoryPrimary:  t.CategoryPrimary,
		CategoryDetailed: t.CategoryDetailed,
		PaymentChannel:   t.PaymentChannel,
		Pending:          t.Pending,
	}
}

type Report struct {
	Items    int
	Synced   int
	Failed   int
	Pages    int
	Added    int
	Modified int
	Removed  int
}

// SyncAll syncs every item. Items are independent: one failing item is
// logged and counted, and the rest still run.
func (d *Driver) SyncAll(ctx context.Context) (Report, error) {
	var (
		mu     sync.Mutex
		report Report
	)
	stats, err := backfill.Run(ctx, d.log, backfill.Job[*item.Item, string]{
		Name: "sync-items",
		Fetch: func(ctx context.Context, after string, limit int) ([]*item.Item, error) {
			return d.storage.Read().Items.List(ctx, after, limit)
		},
		Cursor: func(it *item.Item) string { return it.ID },
		Apply: func(ctx context.Context, it *item.Item) error {
			res, err := d.SyncItem(ctx, it.ID)
			mu.Lock()
			defer mu.Unlock()
			report.Pages += res.Pages
			report.Added += res.Added
			report.Modified += res.Modified
			report.Removed += res.Removed
			if err != nil {
				return err
			}
			report.Synced++
			return nil
		},
		Concurrency:     d.Concurrency,
		ContinueOnError: true,
	})
	report.Items = stats.Scanned
	report.Failed = stats.Failed

	d.log.WithFields(logrus.Fields{
		"items":  report.Items,
		"synced": report.Synced,
		"failed": report.Failed,
		"pages":  report.Pages,
	}).Info("SyncDriver.SyncAll.Complete")
	return report, err
}
