package service

import (
	"context"
	"io"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-engine/internal/aggregate"
	"github.com/carson-networks/budget-engine/internal/classify"
	"github.com/carson-networks/budget-engine/internal/operator"
	"github.com/carson-networks/budget-engine/internal/period"
	"github.com/carson-networks/budget-engine/internal/storage/account"
	"github.com/carson-networks/budget-engine/internal/storage/item"
	"github.com/carson-networks/budget-engine/internal/storage/memstore"
	"github.com/carson-networks/budget-engine/internal/storage/transaction"
)

type testEnv struct {
	store      *memstore.Store
	op         *operator.OperatorDelegator
	aggregator *aggregate.Aggregator
	user       uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memstore.New()
	op := operator.NewOperatorDelegator(store, 2, log)
	op.Start()
	t.Cleanup(op.Stop)

	return &testEnv{
		store:      store,
		op:         op,
		aggregator: aggregate.New(period.NewIndexer(time.UTC), log),
		user:       uuid.Must(uuid.NewV4()),
	}
}

func (e *testEnv) addItem(t *testing.T, id string, owner uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	w, err := e.store.Write(ctx)
	require.NoError(t, err)
	require.NoError(t, w.Items.Insert(ctx, &item.Item{ID: id, UserID: owner, AccessToken: []byte("sealed")}))
	require.NoError(t, w.Commit(ctx))
}

func (e *testEnv) addAccount(t *testing.T, acct account.Account) {
	t.Helper()
	ctx := context.Background()
	w, err := e.store.Write(ctx)
	require.NoError(t, err)
	require.NoError(t, w.Accounts.Upsert(ctx, &acct))
	require.NoError(t, w.Commit(ctx))
}

// addTransaction stores txn and folds it into the summaries the way a sync
// page would.
func (e *testEnv) addTransaction(t *testing.T, txn transaction.Transaction) {
	t.Helper()
	ctx := context.Background()
	w, err := e.store.Write(ctx)
	require.NoError(t, err)
	require.NoError(t, e.aggregator.ApplyTransaction(ctx, w.Summaries, &txn, aggregate.Apply))
	require.NoError(t, w.Transactions.Upsert(ctx, &txn))
	require.NoError(t, w.Commit(ctx))
}

func creditPurchase(id string, user uuid.UUID, amount string, date civil.Date, category string) transaction.Transaction {
	return transaction.Transaction{
		ID:              id,
		AccountID:       "acct-credit",
		ItemID:          "item-1",
		UserID:          user,
		AccountType:     classify.AccountTypeCredit,
		Amount:          decimal.RequireFromString(amount),
		Currency:        "USD",
		Date:            date,
		Name:            "Store " + id,
		CategoryPrimary: category,
	}
}
