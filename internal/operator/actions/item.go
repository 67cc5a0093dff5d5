package actions

import (
	"context"

	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/item"
)

// AddItem registers a linked provider login. AccessToken must already be encrypted.
type AddItem struct {
	Item item.Item
}

func (a *AddItem) Key() string {
	return a.Item.UserID.String()
}

func (a *AddItem) Perform(ctx context.Context, writer *storage.Writer) error {
	return writer.Items.Insert(ctx, &a.Item)
}
