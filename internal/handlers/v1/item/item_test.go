package item

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/item"
	"github.com/carson-networks/budget-engine/internal/txsync"
)

type mockItemService struct {
	mock.Mock
}

func (m *mockItemService) ListItems(ctx context.Context, userID uuid.UUID) ([]*item.Item, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]*item.Item)
	return items, args.Error(1)
}

func (m *mockItemService) SyncItem(ctx context.Context, userID uuid.UUID, itemID string) (txsync.Result, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Get(0).(txsync.Result), args.Error(1)
}

func newTestAPI(t *testing.T, svc *mockItemService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewListItemsHandler(svc).Register(api)
	NewSyncItemHandler(svc).Register(api)
	return api
}

func TestHTTP_ListItems_OmitsToken(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	synced := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	svc := new(mockItemService)
	svc.On("ListItems", mock.Anything, user).Return([]*item.Item{{
		ID:              "item-1",
		UserID:          user,
		AccessToken:     []byte("sealed-secret"),
		InstitutionName: "First Platypus Bank",
		LastSyncedAt:    &synced,
	}}, nil)

	resp := newTestAPI(t, svc).Get("/v1/items", "X-User-ID: "+user.String())

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), "sealed-secret")
	var body ListItemsResponseBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Items, 1)
	require.NotNil(t, body.Items[0].LastSyncedAt)
	assert.Equal(t, "2024-05-01T08:00:00Z", *body.Items[0].LastSyncedAt)
}

func TestHTTP_SyncItem(t *testing.T) {
	user := uuid.Must(uuid.NewV4())

	svc := new(mockItemService)
	svc.On("SyncItem", mock.Anything, user, "item-1").
		Return(txsync.Result{ItemID: "item-1", Pages: 3, Added: 12, Removed: 1, Cursor: "c3"}, nil)

	resp := newTestAPI(t, svc).Post("/v1/items/item-1/sync", "X-User-ID: "+user.String())

	assert.Equal(t, http.StatusOK, resp.Code)
	var body SyncItemResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 3, body.Pages)
	assert.Equal(t, 12, body.Added)
	assert.Equal(t, "c3", body.Cursor)
}

func TestHTTP_SyncItem_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: storage.ErrNotFound, status: http.StatusNotFound},
		{name: "retries exhausted", err: fmt.Errorf("item-1: %w", txsync.ErrRetriesExhausted), status: http.StatusServiceUnavailable},
		{name: "other", err: fmt.Errorf("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := uuid.Must(uuid.NewV4())
			svc := new(mockItemService)
			svc.On("SyncItem", mock.Anything, user, "item-1").Return(txsync.Result{}, tt.err)

			resp := newTestAPI(t, svc).Post("/v1/items/item-1/sync", "X-User-ID: "+user.String())

			assert.Equal(t, tt.status, resp.Code)
		})
	}
}
