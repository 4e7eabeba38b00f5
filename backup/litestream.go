// Package backup runs continuous SQLite replication alongside the server:
// open the primary db as a litestream.DB, attach a file-backed Replica, and
// drive both from the server.Daemon lifecycle.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/benbjohnson/litestream"
	"github.com/benbjohnson/litestream/file"

	"github.com/caasmo/identityoutbox/config"
)

// Litestream is a server.Daemon that continuously ships WAL frames from the
// primary database file to a local replica directory.
type Litestream struct {
	logger  *slog.Logger
	db      *litestream.DB
	replica *litestream.Replica

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownDone chan struct{}
}

// New builds a Litestream daemon for dbPath, replicating into cfg's
// configured directory. Returns an error immediately if the replica
// directory cannot be created.
func New(dbPath string, cfg config.Backup, logger *slog.Logger) (*Litestream, error) {
	ctx, cancel := context.WithCancel(context.Background())

	db := litestream.NewDB(dbPath)
	db.Logger = logger.With("db", dbPath)

	if err := os.MkdirAll(cfg.ReplicaPath, 0750); err != nil && !os.IsExist(err) {
		cancel()
		return nil, fmt.Errorf("backup: create replica directory %q: %w", cfg.ReplicaPath, err)
	}
	absReplicaPath, err := filepath.Abs(cfg.ReplicaPath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("backup: resolve replica path %q: %w", cfg.ReplicaPath, err)
	}

	replica := litestream.NewReplica(db, cfg.ReplicaName)
	replica.Client = file.NewReplicaClient(absReplicaPath)
	db.Replicas = append(db.Replicas, replica)

	return &Litestream{
		logger:       logger,
		db:           db,
		replica:      replica,
		ctx:          ctx,
		cancel:       cancel,
		shutdownDone: make(chan struct{}),
	}, nil
}

func (l *Litestream) Name() string { return "litestream" }

// Start opens the database and begins replication, blocking until the
// initial setup succeeds or fails; replication itself continues in a
// background goroutine after that.
func (l *Litestream) Start() error {
	startupErr := make(chan error, 1)

	go func() {
		l.logger.Info("litestream: starting continuous backup")

		if err := l.db.Open(); err != nil {
			l.logger.Error("litestream: failed to open database", "error", err)
			close(l.shutdownDone)
			startupErr <- err
			return
		}

		if err := l.replica.Start(l.ctx); err != nil {
			l.logger.Error("litestream: failed to start replica", "error", err)
			close(l.shutdownDone)
			startupErr <- err
			return
		}

		l.logger.Info("litestream: replication started")
		startupErr <- nil

		<-l.ctx.Done()
		l.logger.Info("litestream: received shutdown signal")

		if err := l.replica.Stop(false); err != nil {
			l.logger.Error("litestream: error stopping replica", "error", err)
		}
		if err := l.db.Close(); err != nil {
			l.logger.Error("litestream: error closing database", "error", err)
		}
		close(l.shutdownDone)
	}()

	return <-startupErr
}

// Stop cancels replication and waits for the background goroutine to
// finish, or for ctx to expire first.
func (l *Litestream) Stop(ctx context.Context) error {
	l.logger.Info("litestream: stopping")
	l.cancel()

	select {
	case <-l.shutdownDone:
		l.logger.Info("litestream: stopped gracefully")
		return nil
	case <-ctx.Done():
		l.logger.Info("litestream: shutdown timed out")
		return ctx.Err()
	}
}
