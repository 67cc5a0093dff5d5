package item

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/handlers"
	"github.com/carson-networks/budget-engine/internal/logging"
	"github.com/carson-networks/budget-engine/internal/txsync"
)

type SyncItemInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Caller user UUID"`
	ItemID string `path:"itemID" doc:"Provider item ID"`
}

type SyncItemResponse struct {
	Pages    int    `json:"pages" doc:"Pages committed in this run"`
	Accounts int    `json:"accounts" doc:"Accounts upserted"`
	Added    int    `json:"added" doc:"Transactions added"`
	Modified int    `json:"modified" doc:"Transactions modified, including redelivered adds"`
	Removed  int    `json:"removed" doc:"Transactions removed"`
	Retries  int    `json:"retries" doc:"Provider fetch retries"`
	Cursor   string `json:"cursor" doc:"Cursor the next run resumes from"`
}

type SyncItemOutput struct {
	Body SyncItemResponse
}

type itemSyncer interface {
	SyncItem(ctx context.Context, userID uuid.UUID, itemID string) (txsync.Result, error)
}

// SyncItemHandler handles POST /v1/items/{itemID}/sync.
type SyncItemHandler struct {
	ItemService itemSyncer
}

func NewSyncItemHandler(svc itemSyncer) *SyncItemHandler {
	return &SyncItemHandler{ItemService: svc}
}

func (h *SyncItemHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "sync-item",
		Method:      http.MethodPost,
		Path:        "/v1/items/{itemID}/sync",
		Summary:     "Sync an item now",
		Description: "Pulls every pending provider change for the item. Webhooks and the periodic job call the same routine.",
		Tags:        []string{"Items"},
	}, h.handle)
}

func (h *SyncItemHandler) handle(ctx context.Context, input *SyncItemInput) (*SyncItemOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := handlers.ParseUserID(input.UserID)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("syncItemMs")
		logData.AddData("itemID", input.ItemID)
	}
	result, err := h.ItemService.SyncItem(ctx, userID, input.ItemID)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		if errors.Is(err, txsync.ErrRetriesExhausted) {
			return nil, huma.NewError(http.StatusServiceUnavailable, "provider unavailable, sync will resume from the last committed page", err)
		}
		return nil, handlers.Error(err, "failed to sync item")
	}

	if logData != nil {
		logData.AddData("pages", result.Pages)
	}
	return &SyncItemOutput{Body: SyncItemResponse{
		Pages:    result.Pages,
		Accounts: result.Accounts,
		Added:    result.Added,
		Modified: result.Modified,
		Removed:  result.Removed,
		Retries:  result.Retries,
		Cursor:   result.Cursor,
	}}, nil
}
