package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/storage/item"
	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

type itemTable struct {
	*tables
}

func (t *itemTable) FindByID(ctx context.Context, id string) (*item.Item, error) {
	it, ok := t.st.items[id]
	if !ok {
		return nil, sqlconfig.ErrNotFound
	}
	return &it, nil
}

func (t *itemTable) sorted(keep func(*item.Item) bool) []*item.Item {
	var rows []*item.Item
	for _, it := range t.st.items {
		it := it
		if keep(&it) {
			rows = append(rows, &it)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

func (t *itemTable) List(ctx context.Context, after string, limit int) ([]*item.Item, error) {
	if limit <= 0 {
		limit = item.DefaultLimit
	}
	rows := t.sorted(func(it *item.Item) bool { return it.ID > after })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (t *itemTable) ListByUser(ctx context.Context, userID uuid.UUID) ([]*item.Item, error) {
	return t.sorted(func(it *item.Item) bool { return it.UserID == userID }), nil
}

func (t *itemTable) Insert(ctx context.Context, it *item.Item) error {
	if _, ok := t.st.items[it.ID]; ok {
		return fmt.Errorf("item %s already exists", it.ID)
	}
	row := *it
	row.CreatedAt = t.now()
	t.st.items[it.ID] = row
	return nil
}

func (t *itemTable) UpdateCursor(ctx context.Context, id string, cursor string, syncedAt time.Time) error {
	it, ok := t.st.items[id]
	if !ok {
		return sqlconfig.ErrNotFound
	}
	synced := syncedAt.UTC()
	it.Cursor = cursor
	it.LastSyncedAt = &synced
	t.st.items[id] = it
	return nil
}
