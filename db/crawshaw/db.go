// Package crawshaw is the secondary storage backend: cgo SQLite via
// crawshaw.io/sqlite, implementing the same uow.Tx/outbox.Store contracts
// as db/zombiezen so either can be selected at setup time. Grounded on the
// teacher's db/crawshaw/jobqueue.go connection-pool + sqlitex.Exec pattern.
package crawshaw

import (
	"context"
	"fmt"
	"runtime"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"

	"github.com/caasmo/identityoutbox/outbox"
	"github.com/caasmo/identityoutbox/uow"
)

type Db struct {
	pool *sqlitex.Pool
}

var _ uow.Tx = (*Db)(nil)

// Open opens (or creates) the SQLite database at path via the cgo
// crawshaw.io/sqlite driver, mirroring db/zombiezen.New's pool sizing.
func Open(path string) (*Db, error) {
	poolSize := runtime.NumCPU()
	if poolSize < 1 {
		poolSize = 1
	}
	p, err := sqlitex.Open(fmt.Sprintf("file:%s", path), 0, poolSize)
	if err != nil {
		return nil, fmt.Errorf("crawshaw: open pool: %w", err)
	}
	return &Db{pool: p}, nil
}

// New wraps a pool the caller owns and is responsible for closing; used by
// tests against a shared-cache in-memory pool.
func New(pool *sqlitex.Pool) (*Db, error) {
	if pool == nil {
		return nil, fmt.Errorf("crawshaw: pool cannot be nil")
	}
	return &Db{pool: pool}, nil
}

func (d *Db) Close() error {
	return d.pool.Close()
}

type tx struct {
	pool    *sqlitex.Pool
	conn    *sqlite.Conn
	tracker *uow.EntityTracker
}

func (d *Db) Begin(ctx context.Context) (uow.RepositoryFactory, *uow.EntityTracker, outbox.Store, uow.Committer, error) {
	conn := d.pool.Get(ctx)
	if conn == nil {
		return nil, nil, nil, nil, fmt.Errorf("crawshaw: pool closed or context cancelled")
	}

	if err := sqlitex.Exec(conn, "BEGIN IMMEDIATE", nil); err != nil {
		d.pool.Put(conn)
		return nil, nil, nil, nil, fmt.Errorf("crawshaw: begin: %w", err)
	}

	t := &tx{pool: d.pool, conn: conn, tracker: uow.NewEntityTracker(ctx)}
	return &repositoryFactory{tx: t}, t.tracker, &outboxStore{conn: conn}, t, nil
}

func (t *tx) Commit(ctx context.Context) error {
	defer t.pool.Put(t.conn)
	return sqlitex.Exec(t.conn, "COMMIT", nil)
}

func (t *tx) Rollback(ctx context.Context) error {
	defer t.pool.Put(t.conn)
	return sqlitex.Exec(t.conn, "ROLLBACK", nil)
}
