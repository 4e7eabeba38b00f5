// Package uow implements the Unit of Work (C6): a higher-order operation
// that opens a transaction, hands the caller a RepositoryFactory bound to
// it, and atomically drains every mutated aggregate's domain events into
// the outbox before committing. Grounded on other_examples' pericarp
// SimpleUnitOfWork (mutex-guarded tracked-aggregate map, drain-on-commit)
// generalized from event-sourcing replay to outbox-envelope capture.
package uow

import (
	"context"
	"sync"

	"github.com/caasmo/identityoutbox/clock"
	"github.com/caasmo/identityoutbox/domain/event"
	"github.com/caasmo/identityoutbox/domain/user"
	"github.com/caasmo/identityoutbox/idgen"
	"github.com/caasmo/identityoutbox/outbox"

	"go.opentelemetry.io/otel/trace"
)

// UserRepository is the C4 aggregate repository, bound to one open
// transaction by a RepositoryFactory.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	FindAll(ctx context.Context) ([]*user.User, error)
	// Save upserts the aggregate and tracks it so DrainEvents() is called
	// before commit. Returns db.ErrUsernameConflict or db.ErrEmailConflict
	// on unique-constraint violations.
	Save(ctx context.Context, u *user.User) error
}

// RepositoryFactory hands out repositories bound to the transaction this
// Execute call opened.
type RepositoryFactory interface {
	Users() UserRepository
}

// Tx is the minimal transactional-store contract UnitOfWork needs from a
// storage backend: begin a transaction, obtain a RepositoryFactory +
// EntityTracker bound to it, then commit or rollback.
type Tx interface {
	// Begin opens a transaction and returns a bound RepositoryFactory plus
	// the matching outbox.Store, an EntityTracker to register saved
	// aggregates against, and a commit/rollback pair.
	Begin(ctx context.Context) (RepositoryFactory, *EntityTracker, outbox.Store, Committer, error)
}

// Committer finalizes or discards the transaction Begin opened.
type Committer interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWork executes closures against a fresh transaction, per call.
type UnitOfWork struct {
	tx    Tx
	clock clock.Clock
	ids   idgen.Generator
}

func New(tx Tx, clk clock.Clock, ids idgen.Generator) *UnitOfWork {
	return &UnitOfWork{tx: tx, clock: clk, ids: ids}
}

// Clock returns the clock used to stamp outbox envelopes, exposed so
// callers outside this package can stamp aggregates with the same time
// source before opening a unit of work.
func (uow *UnitOfWork) Clock() clock.Clock {
	return uow.clock
}

// IDs returns the id generator used to stamp outbox envelopes, exposed so
// callers can mint aggregate ids from the same monotonic source.
func (uow *UnitOfWork) IDs() idgen.Generator {
	return uow.ids
}

// Execute opens a transaction, invokes f, and on success drains every
// tracked aggregate's events into the outbox store before committing
// (I-T1, I-T2). On error, it rolls back and returns the original error;
// rollback errors are swallowed (logged by the caller if desired), matching
// the teacher's scheduler pattern of not surfacing secondary errors.
func Execute[T any](ctx context.Context, uow *UnitOfWork, f func(RepositoryFactory) (T, error)) (T, error) {
	var zero T

	factory, tracker, store, committer, err := uow.tx.Begin(ctx)
	if err != nil {
		return zero, err
	}

	result, err := f(factory)
	if err != nil {
		_ = committer.Rollback(ctx)
		return zero, err
	}

	envelopes, err := tracker.drainToEnvelopes(ctx, uow.ids, uow.clock)
	if err != nil {
		_ = committer.Rollback(ctx)
		return zero, err
	}

	if len(envelopes) > 0 {
		if err := store.InsertMany(ctx, envelopes); err != nil {
			_ = committer.Rollback(ctx)
			return zero, err
		}
	}

	if err := committer.Commit(ctx); err != nil {
		return zero, err
	}

	return result, nil
}

// EntityTracker collects aggregates whose Save was called within one
// unit-of-work invocation and, at commit time, drains their events into
// stamped outbox envelopes. Internally synchronized because the save-path
// may be invoked defensively from more than one call site within a
// logically single-threaded unit-of-work (per spec.md §5's "Shared
// resources" note).
type EntityTracker struct {
	traceID string
	mu      sync.Mutex
	tracked []*user.User
}

// NewEntityTracker captures the ambient trace context at construction time
// (I-T3: trace context captured when track runs, not at commit time).
func NewEntityTracker(ctx context.Context) *EntityTracker {
	t := &EntityTracker{}
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		t.traceID = sc.TraceID().String()
	}
	return t
}

// Track registers u so its pending events are flushed at commit time.
func (t *EntityTracker) Track(u *user.User) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracked = append(t.tracked, u)
}

func (t *EntityTracker) drainToEnvelopes(ctx context.Context, ids idgen.Generator, clk clock.Clock) ([]event.Envelope, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var envelopes []event.Envelope
	now := clk.Now()

	for _, u := range t.tracked {
		for _, ev := range u.DrainEvents() {
			payload, err := marshalEvent(ev)
			if err != nil {
				return nil, err
			}
			id, err := ids.NewID()
			if err != nil {
				return nil, err
			}
			envelopes = append(envelopes, event.New(id, ev.EventType(), payload, t.traceID, now))
		}
	}
	return envelopes, nil
}
