package item

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/handlers"
	"github.com/carson-networks/budget-engine/internal/storage/item"
)

// Item is the API response model for a linked login. The access token is
// never returned.
type Item struct {
	ID              string  `json:"id" doc:"Provider item ID"`
	InstitutionName string  `json:"institutionName,omitempty" doc:"Institution display name"`
	LastSyncedAt    *string `json:"lastSyncedAt,omitempty" doc:"RFC3339 time of the last committed sync page"`
	CreatedAt       string  `json:"createdAt" doc:"RFC3339 link time"`
}

type ListItemsInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Caller user UUID"`
}

type ListItemsResponseBody struct {
	Items []Item `json:"items" doc:"Linked items"`
}

type ListItemsOutput struct {
	Body ListItemsResponseBody
}

type itemLister interface {
	ListItems(ctx context.Context, userID uuid.UUID) ([]*item.Item, error)
}

// ListItemsHandler handles GET /v1/items.
type ListItemsHandler struct {
	ItemService itemLister
}

func NewListItemsHandler(svc itemLister) *ListItemsHandler {
	return &ListItemsHandler{ItemService: svc}
}

func (h *ListItemsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-items",
		Method:      http.MethodGet,
		Path:        "/v1/items",
		Summary:     "List linked items",
		Tags:        []string{"Items"},
	}, h.handle)
}

func (h *ListItemsHandler) handle(ctx context.Context, input *ListItemsInput) (*ListItemsOutput, error) {
	userID, err := handlers.ParseUserID(input.UserID)
	if err != nil {
		return nil, err
	}
	items, err := h.ItemService.ListItems(ctx, userID)
	if err != nil {
		return nil, handlers.Error(err, "failed to list items")
	}

	resp := ListItemsResponseBody{Items: make([]Item, len(items))}
	for i, it := range items {
		resp.Items[i] = Item{
			ID:              it.ID,
			InstitutionName: it.InstitutionName,
			CreatedAt:       it.CreatedAt.Format(time.RFC3339),
		}
		if it.LastSyncedAt != nil {
			synced := it.LastSyncedAt.Format(time.RFC3339)
			resp.Items[i].LastSyncedAt = &synced
		}
	}
	return &ListItemsOutput{Body: resp}, nil
}
