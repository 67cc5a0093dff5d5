package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/budget-engine/internal/config"
)

// Postgres is the lib/pq backed Storage.
type Postgres struct {
	db  *sql.DB
	bob bob.DB
}

var _ Storage = (*Postgres)(nil)

func NewPostgres(ctx context.Context, env *config.Config) (*Postgres, error) {
	db, err := sql.Open("postgres", env.PostgresURL())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresFromDB(db), nil
}

func NewPostgresFromDB(db *sql.DB) *Postgres {
	return &Postgres{db: db, bob: bob.NewDB(db)}
}

func (p *Postgres) Read() *Reader {
	return NewReader(p.bob)
}

func (p *Postgres) Write(ctx context.Context) (*Writer, error) {
	tx, err := p.bob.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return NewWriter(tx), nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// DB exposes the pool for the migration runner.
func (p *Postgres) DB() *sql.DB {
	return p.db
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
