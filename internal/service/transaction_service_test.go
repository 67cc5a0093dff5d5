package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTransactions_KeysetPages(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTransactionService(env.store)
	ctx := context.Background()
	date := civil.Date{Year: 2024, Month: time.March, Day: 2}

	for i := 0; i < 5; i++ {
		env.addTransaction(t, creditPurchase(fmt.Sprintf("t%d", i), env.user, "1", date, ""))
	}
	env.addTransaction(t, creditPurchase("other", uuid.Must(uuid.NewV4()), "1", date, ""))

	var seen []string
	cursor := &TransactionCursor{Limit: 2}
	for page := 0; ; page++ {
		require.Less(t, page, 5)
		rows, next, err := svc.ListTransactions(ctx, env.user, cursor)
		require.NoError(t, err)
		for _, r := range rows {
			seen = append(seen, r.ID)
		}
		if next == nil {
			break
		}
		assert.Equal(t, 2, next.Limit)
		cursor = next
	}

	assert.Equal(t, []string{"t0", "t1", "t2", "t3", "t4"}, seen)
}

func TestListTransactions_Empty(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTransactionService(env.store)

	rows, next, err := svc.ListTransactions(context.Background(), env.user, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Nil(t, next)
}
