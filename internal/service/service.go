package service

import (
	"context"
	"errors"

	"github.com/carson-networks/budget-engine/internal/aggregate"
	"github.com/carson-networks/budget-engine/internal/operator/actions"
	"github.com/carson-networks/budget-engine/internal/storage"
)

// ErrValidation marks input rejected before it reaches storage. Wrapped
// errors carry the offending field.
var ErrValidation = errors.New("validation failed")

// Processor runs write actions. *operator.OperatorDelegator implements it.
type Processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// Service holds all business logic services.
type Service struct {
	Bills        *BillService
	Payments     *PaymentService
	Summaries    *SummaryService
	Transactions *TransactionService
	Accounts     *AccountService
	Items        *ItemService
}

// NewService wires every service against one storage and operator.
func NewService(store storage.Storage, op Processor, agg *aggregate.Aggregator, items ItemSyncer, tokens TokenSealer) *Service {
	return &Service{
		Bills:        NewBillService(store, op),
		Payments:     NewPaymentService(store, op),
		Summaries:    NewSummaryService(store, op, agg),
		Transactions: NewTransactionService(store),
		Accounts:     NewAccountService(store),
		Items:        NewItemService(store, op, items, tokens),
	}
}
