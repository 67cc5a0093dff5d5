package storage

import (
	"context"

	"github.com/carson-networks/budget-engine/internal/storage/sqlconfig"
)

// ErrNotFound is returned when a keyed lookup, update or delete matches no row.
var ErrNotFound = sqlconfig.ErrNotFound

// Storage hands out read views and write transactions. Postgres is the
// production implementation; memstore backs tests.
type Storage interface {
	Read() *Reader
	Write(ctx context.Context) (*Writer, error)
}

// Tx is the commit boundary of a Writer.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
