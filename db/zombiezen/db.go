// Package zombiezen is the primary storage backend: pure-Go SQLite via
// zombiezen.com/go/sqlite, providing the C4 user repository and C5 outbox
// store behind the uow.Tx contract. Grounded on the teacher's
// db/zombiezen/users.go sqlitex.Execute/ResultFunc query pattern.
package zombiezen

import (
	"context"
	"fmt"
	"runtime"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/caasmo/identityoutbox/outbox"
	"github.com/caasmo/identityoutbox/uow"
)

// Db owns the connection pool and implements uow.Tx.
type Db struct {
	pool *sqlitex.Pool
}

var _ uow.Tx = (*Db)(nil)

// New opens (or creates) the SQLite database at path with WAL enabled.
func New(path string) (*Db, error) {
	poolSize := runtime.NumCPU()
	if poolSize < 1 {
		poolSize = 1
	}

	p, err := sqlitex.NewPool(fmt.Sprintf("file:%s", path), sqlitex.PoolOptions{
		PoolSize: poolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("zombiezen: open pool: %w", err)
	}
	return &Db{pool: p}, nil
}

// NewFromPool wraps an already-constructed pool (used by tests against
// file::memory:).
func NewFromPool(p *sqlitex.Pool) *Db {
	return &Db{pool: p}
}

func (d *Db) Close() error {
	return d.pool.Close()
}

// tx wraps one checked-out connection for the lifetime of a unit-of-work
// call. Commit/Rollback return the connection to the pool.
type tx struct {
	pool    *sqlitex.Pool
	conn    *sqlite.Conn
	tracker *uow.EntityTracker
}

func (d *Db) Begin(ctx context.Context) (uow.RepositoryFactory, *uow.EntityTracker, outbox.Store, uow.Committer, error) {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("zombiezen: take conn: %w", err)
	}

	if err := sqlitex.ExecuteTransient(conn, "BEGIN IMMEDIATE", nil); err != nil {
		d.pool.Put(conn)
		return nil, nil, nil, nil, fmt.Errorf("zombiezen: begin: %w", err)
	}

	t := &tx{pool: d.pool, conn: conn, tracker: uow.NewEntityTracker(ctx)}
	return &repositoryFactory{tx: t}, t.tracker, &outboxStore{conn: conn}, t, nil
}

func (t *tx) Commit(ctx context.Context) error {
	defer t.pool.Put(t.conn)
	return sqlitex.ExecuteTransient(t.conn, "COMMIT", nil)
}

func (t *tx) Rollback(ctx context.Context) error {
	defer t.pool.Put(t.conn)
	return sqlitex.ExecuteTransient(t.conn, "ROLLBACK", nil)
}
