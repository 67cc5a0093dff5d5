package service

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-engine/internal/crypto"
	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/txsync"
)

type mockSyncer struct {
	mock.Mock
}

func (m *mockSyncer) SyncItem(ctx context.Context, itemID string) (txsync.Result, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(txsync.Result), args.Error(1)
}

func newSealer(t *testing.T) *crypto.Sealer {
	t.Helper()
	encKey, err := crypto.NewRandomKey()
	require.NoError(t, err)
	sigKey, err := crypto.NewRandomKey()
	require.NoError(t, err)
	sealer, err := crypto.NewSealer(encKey, sigKey)
	require.NoError(t, err)
	return sealer
}

func TestAddItem_SealsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	sealer := newSealer(t)
	svc := NewItemService(env.store, env.op, new(mockSyncer), sealer)
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, env.user, " item-1 ", "access-sandbox-123", "First Platypus Bank"))

	items, err := svc.ListItems(ctx, env.user)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "item-1", items[0].ID)
	assert.NotContains(t, string(items[0].AccessToken), "access-sandbox-123")

	token, err := sealer.Open(items[0].AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access-sandbox-123", string(token))
}

func TestAddItem_Validation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewItemService(env.store, env.op, new(mockSyncer), newSealer(t))
	ctx := context.Background()

	assert.ErrorIs(t, svc.AddItem(ctx, env.user, "", "token", ""), ErrValidation)
	assert.ErrorIs(t, svc.AddItem(ctx, env.user, "item-1", "", ""), ErrValidation)
	assert.ErrorIs(t, svc.AddItem(ctx, uuid.Nil, "item-1", "token", ""), ErrValidation)
}

func TestSyncItem_RunsDriverForOwner(t *testing.T) {
	env := newTestEnv(t)
	syncer := new(mockSyncer)
	svc := NewItemService(env.store, env.op, syncer, newSealer(t))
	ctx := context.Background()
	env.addItem(t, "item-1", env.user)

	syncer.On("SyncItem", mock.Anything, "item-1").Return(txsync.Result{ItemID: "item-1", Pages: 2, Added: 7}, nil)

	result, err := svc.SyncItem(ctx, env.user, "item-1")
	require.NoError(t, err)
	assert.Equal(t, 7, result.Added)
	syncer.AssertExpectations(t)
}

func TestSyncItem_OtherUserNeverSyncs(t *testing.T) {
	env := newTestEnv(t)
	syncer := new(mockSyncer)
	svc := NewItemService(env.store, env.op, syncer, newSealer(t))
	env.addItem(t, "item-1", env.user)

	_, err := svc.SyncItem(context.Background(), uuid.Must(uuid.NewV4()), "item-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	syncer.AssertNotCalled(t, "SyncItem", mock.Anything, mock.Anything)
}
