package memstore

import (
	"context"
	"sort"

	"github.com/carson-networks/budget-engine/internal/storage/account"
	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

type accountTable struct {
	*tables
}

func (t *accountTable) FindByID(ctx context.Context, id string) (*account.Account, error) {
	a, ok := t.st.accounts[id]
	if !ok {
		return nil, sqlconfig.ErrNotFound
	}
	return &a, nil
}

func (t *accountTable) ListByItem(ctx context.Context, itemID string) ([]*account.Account, error) {
	var rows []*account.Account
	for _, a := range t.st.accounts {
		if a.ItemID == itemID {
			a := a
			rows = append(rows, &a)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}

func (t *accountTable) Upsert(ctx context.Context, a *account.Account) error {
	row := *a
	row.UpdatedAt = t.now()
	t.st.accounts[a.ID] = row
	return nil
}
