package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/handlers"
	"github.com/carson-networks/budget-engine/internal/logging"
	"github.com/carson-networks/budget-engine/internal/storage/account"
)

// ListAccountsInput is the Huma input for listing accounts.
type ListAccountsInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Caller user UUID"`
	ItemID string `path:"itemID" doc:"Provider item ID"`
}

// ListAccountsResponseBody is the response body for listing accounts.
type ListAccountsResponseBody struct {
	Accounts []Account `json:"accounts" doc:"Accounts of the item"`
}

// ListAccountsOutput is the Huma output for listing accounts.
type ListAccountsOutput struct {
	Body ListAccountsResponseBody
}

// accountLister is the interface for listing accounts.
type accountLister interface {
	ListAccounts(ctx context.Context, userID uuid.UUID, itemID string) ([]*account.Account, error)
}

// ListAccountsHandler handles GET /v1/items/{itemID}/accounts.
type ListAccountsHandler struct {
	AccountService accountLister
}

// NewListAccountsHandler creates a new ListAccountsHandler.
func NewListAccountsHandler(svc accountLister) *ListAccountsHandler {
	return &ListAccountsHandler{AccountService: svc}
}

// Register registers the list accounts endpoint with the Huma API.
func (h *ListAccountsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-accounts",
		Method:      http.MethodGet,
		Path:        "/v1/items/{itemID}/accounts",
		Summary:     "List accounts",
		Description: "Returns the provider accounts of one linked item.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *ListAccountsHandler) handle(ctx context.Context, input *ListAccountsInput) (*ListAccountsOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := handlers.ParseUserID(input.UserID)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("listAccountsMs")
	}
	accounts, err := h.AccountService.ListAccounts(ctx, userID, input.ItemID)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, handlers.Error(err, "failed to list accounts")
	}

	if logData != nil {
		logData.AddData("accountCount", len(accounts))
	}

	resp := ListAccountsResponseBody{
		Accounts: make([]Account, len(accounts)),
	}
	for i, acc := range accounts {
		resp.Accounts[i] = Account{
			ID:       acc.ID,
			ItemID:   acc.ItemID,
			Name:     acc.Name,
			Type:     string(acc.Type),
			Subtype:  acc.Subtype,
			Currency: acc.Currency,
		}
	}

	return &ListAccountsOutput{Body: resp}, nil
}
