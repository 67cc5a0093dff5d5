package storage

import (
	"context"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/budget-engine/internal/storage/account"
	"github.com/carson-networks/budget-engine/internal/storage/bill"
	"github.com/carson-networks/budget-engine/internal/storage/item"
	"github.com/carson-networks/budget-engine/internal/storage/payment"
	"github.com/carson-networks/budget-engine/internal/storage/summary"
	"github.com/carson-networks/budget-engine/internal/storage/transaction"
)

// Writer groups the table writers of a single transaction. Nothing is
// visible to readers until Commit.
type Writer struct {
	Tx
	Summaries    summary.IWriter
	Bills        bill.IWriter
	Payments     payment.IWriter
	Transactions transaction.IWriter
	Accounts     account.IWriter
	Items        item.IWriter
}

type bobTx struct {
	tx bob.Tx
}

func (t bobTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t bobTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		Tx:           bobTx{tx: tx},
		Summaries:    summary.NewWriter(tx),
		Bills:        bill.NewWriter(tx),
		Payments:     payment.NewWriter(tx),
		Transactions: transaction.NewWriter(tx),
		Accounts:     account.NewWriter(tx),
		Items:        item.NewWriter(tx),
	}
}
