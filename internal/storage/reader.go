package storage

import (
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/budget-engine/internal/storage/account"
	"github.com/carson-networks/budget-engine/internal/storage/bill"
	"github.com/carson-networks/budget-engine/internal/storage/item"
	"github.com/carson-networks/budget-engine/internal/storage/payment"
	"github.com/carson-networks/budget-engine/internal/storage/summary"
	"github.com/carson-networks/budget-engine/internal/storage/transaction"
)

type Reader struct {
	Summaries    summary.IReader
	Bills        bill.IReader
	Payments     payment.IReader
	Transactions transaction.IReader
	Accounts     account.IReader
	Items        item.IReader
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{
		Summaries:    summary.NewReader(exec),
		Bills:        bill.NewReader(exec),
		Payments:     payment.NewReader(exec),
		Transactions: transaction.NewReader(exec),
		Accounts:     account.NewReader(exec),
		Items:        item.NewReader(exec),
	}
}
