package actions

import (
	"context"

	"github.com/carson-networks/budget-engine/internal/storage"
)

// IAction is a unit of work run inside one storage transaction. Actions
// returning the same Key never run concurrently.
type IAction interface {
	Key() string
	Perform(ctx context.Context, writer *storage.Writer) error
}
