// Package outbox defines the storage contract for outbox envelopes (C5) and
// the backoff policy (C8) the relay worker uses to reschedule failed
// envelopes. Concrete storage backends live under db/zombiezen and
// db/crawshaw.
package outbox

import (
	"context"

	"github.com/caasmo/identityoutbox/domain/event"
)

// Store is implemented once per storage backend and invoked only from
// within an already-open transaction managed by the unit of work.
type Store interface {
	// InsertMany persists freshly captured envelopes. Rows start
	// status=pending, retry_count=0, next_attempt_at=created_at (I-O1).
	InsertMany(ctx context.Context, envelopes []event.Envelope) error

	// LeasePending selects up to limit envelopes eligible for dispatch
	// (status in pending/failed, next_attempt_at <= now), ordered by
	// next_attempt_at ascending, and leases them for the duration of the
	// caller's transaction so no other poller can observe the same rows
	// (P5 disjointness). On backends without SELECT ... FOR UPDATE SKIP
	// LOCKED, this is implemented via a lease-column UPDATE ... RETURNING,
	// per spec.md §9's sanctioned fallback.
	LeasePending(ctx context.Context, limit int) ([]event.Envelope, error)

	// SaveAll persists the mutated (possibly terminal) state of
	// previously leased envelopes.
	SaveAll(ctx context.Context, envelopes []event.Envelope) error
}
