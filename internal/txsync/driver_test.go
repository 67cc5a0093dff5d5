package txsync

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "time/tzdata"

	"github.com/carson-networks/budget-engine/internal/aggregate"
	"github.com/carson-networks/budget-engine/internal/classify"
	"github.com/carson-networks/budget-engine/internal/operator"
	"github.com/carson-networks/budget-engine/internal/period"
	"github.com/carson-networks/budget-engine/internal/provider"
	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/item"
	"github.com/carson-networks/budget-engine/internal/storage/memstore"
	"github.com/carson-networks/budget-engine/internal/storage/summary"
)

// fakeFeed serves pages keyed by the cursor they follow. failures[cursor]
// errors are returned, in order, before the page itself.
type fakeFeed struct {
	mu       sync.Mutex
	pages    map[string]*provider.Page
	failures map[string][]error
	calls    map[string]int
	tokens   []string
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		pages:    map[string]*provider.Page{},
		failures: map[string][]error{},
		calls:    map[string]int{},
	}
}

func (f *fakeFeed) Sync(ctx context.Context, accessToken, cursor string, count int) (*provider.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[cursor]++
	f.tokens = append(f.tokens, accessToken)
	if errs := f.failures[cursor]; len(errs) > 0 {
		f.failures[cursor] = errs[1:]
		return nil, errs[0]
	}
	page, ok := f.pages[cursor]
	if !ok {
		return &provider.Page{NextCursor: cursor}, nil
	}
	return page, nil
}

type plainTokens struct{}

func (plainTokens) Open(sealed []byte) ([]byte, error) { return sealed, nil }

type fixture struct {
	store  *memstore.Store
	feed   *fakeFeed
	driver *Driver
	agg    *aggregate.Aggregator
	user   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memstore.New()
	op := operator.NewOperatorDelegator(store, 2, log)
	op.Start()
	t.Cleanup(op.Stop)

	agg := aggregate.New(period.NewIndexer(loc), log)
	feed := newFakeFeed()
	driver := NewDriver(store, op, feed, plainTokens{}, agg, log)
	driver.NewBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	driver.MaxRetries = 3

	f := &fixture{store: store, feed: feed, driver: driver, agg: agg, user: uuid.Must(uuid.NewV4())}
	f.addItem(t, "item-1", "")
	return f
}

func (f *fixture) addItem(t *testing.T, id, cursor string) {
	t.Helper()
	ctx := context.Background()
	w, err := f.store.Write(ctx)
	require.NoError(t, err)
	require.NoError(t, w.Items.Insert(ctx, &item.Item{ID: id, UserID: f.user, AccessToken: []byte("token-" + id), Cursor: cursor}))
	require.NoError(t, w.Commit(ctx))
}

func (f *fixture) monthTotals(t *testing.T, date civil.Date) classify.Deltas {
	t.Helper()
	b, err := f.agg.Indexer().Bucket(date, period.Month)
	require.NoError(t, err)
	s, err := f.store.Read().Summaries.Find(context.Background(), summary.Key{UserID: f.user, Period: period.Month, BucketStart: b.Start})
	if errors.Is(err, storage.ErrNotFound) {
		return classify.Deltas{}
	}
	require.NoError(t, err)
	return s.Totals
}

func (f *fixture) cursor(t *testing.T, id string) string {
	t.Helper()
	it, err := f.store.Read().Items.FindByID(context.Background(), id)
	require.NoError(t, err)
	return it.Cursor
}

var march = civil.Date{Year: 2024, Month: time.March, Day: 5}

var accounts = []provider.Account{
	{ID: "chk", Name: "Checking", Type: "depository", Subtype: "checking", Currency: "USD"},
	{ID: "cc", Name: "Card", Type: "credit", Subtype: "credit card", Currency: "USD"},
}

func purchase(id, amount string) provider.Transaction {
	return provider.Transaction{
		ID:              id,
		AccountID:       "cc",
		Amount:          decimal.RequireFromString(amount),
		Currency:        "USD",
		Date:            march,
		Name:            "Corner Store",
		CategoryPrimary: "GENERAL_MERCHANDISE",
	}
}

func TestSyncItem_AppliesEveryPageAndAdvancesCursor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.feed.pages[""] = &provider.Page{
		Accounts:   accounts,
		Added:      []provider.Transaction{purchase("t1", "45.00")},
		NextCursor: "c1",
		HasMore:    true,
	}
	f.feed.pages["c1"] = &provider.Page{
		Added: []provider.Transaction{{
			ID: "t2", AccountID: "chk", Amount: decimal.NewFromInt(-2000), Currency: "USD", Date: march, Name: "Payroll",
		}},
		NextCursor: "c2",
	}

	res, err := f.driver.SyncItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, "c2", res.Cursor)
	assert.Equal(t, "c2", f.cursor(t, "item-1"))
	assert.Equal(t, []string{"token-item-1", "token-item-1"}, f.feed.tokens)

	totals := f.monthTotals(t, march)
	assert.True(t, totals.CCPurchases.Equal(decimal.NewFromInt(45)))
	assert.True(t, totals.CCPrincipalDelta.Equal(decimal.NewFromInt(45)))
	assert.True(t, totals.CashIncomeExternal.Equal(decimal.NewFromInt(2000)))

	acct, err := f.store.Read().Accounts.FindByID(ctx, "cc")
	require.NoError(t, err)
	assert.Equal(t, classify.AccountTypeCredit, acct.Type)
	assert.Equal(t, f.user, acct.UserID)
}

func TestSyncItem_ModifyReversesOldAndRemoveReverses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.feed.pages[""] = &provider.Page{
		Accounts:   accounts,
		Added:      []provider.Transaction{purchase("t1", "45.00"), purchase("t2", "10.00")},
		NextCursor: "c1",
	}
	_, err := f.driver.SyncItem(ctx, "item-1")
	require.NoError(t, err)

	moved := purchase("t1", "50.00")
	moved.Date = civil.Date{Year: 2024, Month: time.April, Day: 1}
	f.feed.pages["c1"] = &provider.Page{
		Modified:   []provider.Transaction{moved},
		Removed:    []string{"t2", "never-seen"},
		NextCursor: "c2",
	}
	res, err := f.driver.SyncItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Modified)
	assert.Equal(t, 1, res.Removed)

	assert.True(t, f.monthTotals(t, march).IsZero())
	april := f.monthTotals(t, moved.Date)
	assert.True(t, april.CCPurchases.Equal(decimal.NewFromInt(50)))

	_, err = f.store.Read().Transactions.FindByID(ctx, "t2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSyncItem_RedeliveredPageIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	page := &provider.Page{
		Accounts:   accounts,
		Added:      []provider.Transaction{purchase("t1", "45.00")},
		NextCursor: "c1",
	}
	f.feed.pages[""] = page
	_, err := f.driver.SyncItem(ctx, "item-1")
	require.NoError(t, err)
	before := f.monthTotals(t, march)

	// the provider hands the same page out again after cursor c1
	f.feed.pages["c1"] = &provider.Page{Accounts: accounts, Added: page.Added, NextCursor: "c1"}
	res, err := f.driver.SyncItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 1, res.Modified)

	assert.True(t, before.Equal(f.monthTotals(t, march)))
}

func TestSyncItem_RetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.feed.pages[""] = &provider.Page{Accounts: accounts, Added: []provider.Transaction{purchase("t1", "1")}, NextCursor: "c1"}
	f.feed.failures[""] = []error{
		&provider.APIError{Status: 503, Type: "API_ERROR"},
		&provider.APIError{Status: 429, Type: "RATE_LIMIT_EXCEEDED"},
	}

	res, err := f.driver.SyncItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Retries)
	assert.Equal(t, 3, f.feed.calls[""])
	assert.Equal(t, "c1", f.cursor(t, "item-1"))
}

func TestSyncItem_ExhaustedRetriesPreserveCursor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.feed.pages[""] = &provider.Page{Accounts: accounts, Added: []provider.Transaction{purchase("t1", "45")}, NextCursor: "c1", HasMore: true}
	f.feed.pages["c1"] = &provider.Page{Added: []provider.Transaction{purchase("t2", "5")}, NextCursor: "c2"}
	transient := &provider.APIError{Status: 500, Type: "API_ERROR"}
	f.feed.failures["c1"] = []error{transient, transient, transient, transient, transient}

	res, err := f.driver.SyncItem(ctx, "item-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 4, f.feed.calls["c1"])
	assert.Equal(t, "c1", f.cursor(t, "item-1"))
	assert.True(t, f.monthTotals(t, march).CCPurchases.Equal(decimal.NewFromInt(45)))

	// the next invocation resumes from c1
	res, err = f.driver.SyncItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, "c2", f.cursor(t, "item-1"))
	assert.True(t, f.monthTotals(t, march).CCPurchases.Equal(decimal.NewFromInt(50)))
}

func TestSyncItem_PermanentFailureIsNotRetried(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.feed.failures[""] = []error{&provider.APIError{Status: 400, Type: "ITEM_ERROR", Code: "ITEM_LOGIN_REQUIRED"}}

	_, err := f.driver.SyncItem(ctx, "item-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 1, f.feed.calls[""])
	assert.Equal(t, "", f.cursor(t, "item-1"))
}

func TestSyncItem_UnknownItem(t *testing.T) {
	f := newFixture(t)
	_, err := f.driver.SyncItem(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSyncAll_OneFailingItemDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addItem(t, "item-2", "bad")
	f.feed.pages[""] = &provider.Page{Accounts: accounts, Added: []provider.Transaction{purchase("t1", "45")}, NextCursor: "c1"}
	f.feed.failures["bad"] = []error{&provider.APIError{Status: 400, Type: "INVALID_INPUT", Code: "INVALID_ACCESS_TOKEN"}}

	report, err := f.driver.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Items)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "c1", f.cursor(t, "item-1"))
	assert.Equal(t, "bad", f.cursor(t, "item-2"))
}
