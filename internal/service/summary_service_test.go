package service

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-engine/internal/period"
)

func TestListByPeriod_NewestFirstWithCursor(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSummaryService(env.store, env.op, env.aggregator)
	ctx := context.Background()

	for i, day := range []int{3, 1, 2} {
		date := civil.Date{Year: 2024, Month: time.March, Day: day}
		env.addTransaction(t, creditPurchase(string(rune('a'+i)), env.user, "10", date, "SHOPPING"))
	}

	first, next, err := svc.ListByPeriod(ctx, env.user, period.Day, &SummaryCursor{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 3, first[0].BucketStart.Day())
	assert.Equal(t, 2, first[1].BucketStart.Day())
	require.NotNil(t, next)

	rest, next, err := svc.ListByPeriod(ctx, env.user, period.Day, next)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, 1, rest[0].BucketStart.Day())
	assert.Nil(t, next)

	months, _, err := svc.ListByPeriod(ctx, env.user, period.Month, nil)
	require.NoError(t, err)
	require.Len(t, months, 1)
	assert.True(t, months[0].Totals.CCPurchases.Equal(decimal.NewFromInt(30)))
}

func TestListCategories_OrdersByAmount(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSummaryService(env.store, env.op, env.aggregator)
	ctx := context.Background()

	env.addTransaction(t, creditPurchase("t1", env.user, "20", civil.Date{Year: 2024, Month: time.March, Day: 2}, "FOOD_AND_DRINK"))
	env.addTransaction(t, creditPurchase("t2", env.user, "5", civil.Date{Year: 2024, Month: time.March, Day: 9}, "food and drink"))
	env.addTransaction(t, creditPurchase("t3", env.user, "100", civil.Date{Year: 2024, Month: time.March, Day: 20}, "TRAVEL"))
	env.addTransaction(t, creditPurchase("t4", env.user, "7", civil.Date{Year: 2024, Month: time.March, Day: 21}, ""))

	bucket, spend, err := svc.ListCategories(ctx, env.user, period.Month, civil.Date{Year: 2024, Month: time.March, Day: 15})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), bucket.Start)

	require.Len(t, spend, 3)
	assert.Equal(t, "TRAVEL", spend[0].Category)
	assert.Equal(t, "FOOD_AND_DRINK", spend[1].Category)
	assert.True(t, spend[1].Amount.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "UNCATEGORIZED", spend[2].Category)
}

func TestRebuild_ReproducesTotals(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSummaryService(env.store, env.op, env.aggregator)
	ctx := context.Background()

	env.addTransaction(t, creditPurchase("t1", env.user, "12.34", civil.Date{Year: 2024, Month: time.March, Day: 2}, "SHOPPING"))
	env.addTransaction(t, creditPurchase("t2", env.user, "0.66", civil.Date{Year: 2024, Month: time.March, Day: 3}, "SHOPPING"))

	before, _, err := svc.ListByPeriod(ctx, env.user, period.Month, nil)
	require.NoError(t, err)

	stats, err := svc.Rebuild(ctx, env.user, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Applied)

	after, _, err := svc.ListByPeriod(ctx, env.user, period.Month, nil)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.True(t, before[0].Totals.Equal(after[0].Totals))
	assert.True(t, after[0].Totals.CCPurchases.Equal(decimal.NewFromInt(13)))
}
