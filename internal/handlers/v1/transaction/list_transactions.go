package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/handlers"
	"github.com/carson-networks/budget-engine/internal/logging"
	"github.com/carson-networks/budget-engine/internal/service"
	"github.com/carson-networks/budget-engine/internal/storage/transaction"
)

// ListTransactionsCursor represents a pagination cursor in responses.
type ListTransactionsCursor struct {
	After string `json:"after" doc:"Pass as the after query parameter"`
	Limit int    `json:"limit" doc:"Page size used for this cursor"`
}

// ListTransactionsInput is the Huma input for listing transactions.
type ListTransactionsInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Caller user UUID"`
	After  string `query:"after" doc:"Transaction ID from a previous nextCursor"`
	Limit  int    `query:"limit" minimum:"0" maximum:"500" doc:"Page size, default 50"`
}

// ListTransactionsResponseBody is the response body for listing transactions.
type ListTransactionsResponseBody struct {
	Transactions []Transaction           `json:"transactions" doc:"Page of transactions"`
	NextCursor   *ListTransactionsCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

// ListTransactionsOutput is the Huma output for listing transactions.
type ListTransactionsOutput struct {
	Body ListTransactionsResponseBody
}

// transactionLister is the interface for listing transactions.
type transactionLister interface {
	ListTransactions(ctx context.Context, userID uuid.UUID, cursor *service.TransactionCursor) ([]*transaction.Transaction, *service.TransactionCursor, error)
}

// ListTransactionsHandler handles GET /v1/transactions.
type ListTransactionsHandler struct {
	TransactionService transactionLister
}

// NewListTransactionsHandler creates a new ListTransactionsHandler.
func NewListTransactionsHandler(svc transactionLister) *ListTransactionsHandler {
	return &ListTransactionsHandler{TransactionService: svc}
}

// Register registers the list transactions endpoint with the Huma API.
func (h *ListTransactionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-transactions",
		Method:      http.MethodGet,
		Path:        "/v1/transactions",
		Summary:     "List transactions",
		Description: "Returns a page of synced transactions using keyset pagination on the transaction ID.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

// parseListTransactionsInput parses and validates the API input.
// Without after or limit, the service uses its default page.
func parseListTransactionsInput(input *ListTransactionsInput) (uuid.UUID, *service.TransactionCursor, error) {
	userID, err := handlers.ParseUserID(input.UserID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if input.After == "" && input.Limit == 0 {
		return userID, nil, nil
	}
	return userID, &service.TransactionCursor{After: input.After, Limit: input.Limit}, nil
}

func toResponse(tx *transaction.Transaction) Transaction {
	resp := Transaction{
		ID:               tx.ID,
		AccountID:        tx.AccountID,
		AccountType:      string(tx.AccountType),
		Amount:           tx.Amount.String(),
		Currency:         tx.Currency,
		Date:             tx.Date.String(),
		Name:             tx.Name,
		CategoryPrimary:  tx.CategoryPrimary,
		CategoryDetailed: tx.CategoryDetailed,
		Pending:          tx.Pending,
	}
	if effective, ok := tx.Classifiable().EffectiveDate(); ok {
		resp.EffectiveDate = effective.String()
	}
	return resp
}

func (h *ListTransactionsHandler) handle(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
	logData := logging.GetLogData(ctx)
	userID, requestCursor, err := parseListTransactionsInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("listTransactionsMs")
	}
	transactions, nextCursor, err := h.TransactionService.ListTransactions(ctx, userID, requestCursor)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, handlers.Error(err, "failed to list transactions")
	}

	if logData != nil {
		logData.AddData("transactionCount", len(transactions))
	}

	resp := ListTransactionsResponseBody{
		Transactions: make([]Transaction, len(transactions)),
	}

	for i, tx := range transactions {
		resp.Transactions[i] = toResponse(tx)
	}

	if nextCursor != nil {
		resp.NextCursor = &ListTransactionsCursor{
			After: nextCursor.After,
			Limit: nextCursor.Limit,
		}
	}

	return &ListTransactionsOutput{Body: resp}, nil
}
