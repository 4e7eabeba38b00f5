package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/caasmo/identityoutbox/domain/event"
)

// outboxStore implements outbox.Store. SQLite lacks SELECT ... FOR UPDATE
// SKIP LOCKED; LeasePending instead relies on the fact that the caller's
// transaction was opened with BEGIN IMMEDIATE (db.go), which takes SQLite's
// single writer lock for the whole connection for the duration of the
// unit-of-work. That already gives two concurrent relay instances the same
// disjointness SKIP LOCKED would (P5): the second poller simply blocks
// until the first commits or rolls back. lease_owner/lease_expires_at are
// still stamped on each leased row as a random fencing token, per spec's
// sanctioned fallback, so a future lock-based backend (e.g. Postgres) can
// reuse the same Envelope shape without a schema change.
type outboxStore struct {
	conn *sqlite.Conn
}

func (s *outboxStore) InsertMany(ctx context.Context, envelopes []event.Envelope) error {
	for _, e := range envelopes {
		if err := s.insertOne(e); err != nil {
			return err
		}
	}
	return nil
}

func (s *outboxStore) insertOne(e event.Envelope) error {
	return sqlitex.Execute(s.conn,
		`INSERT INTO outbox (id, event_type, payload, status, trace_id, created_at, retry_count, next_attempt_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				e.ID.String(),
				e.EventType,
				string(e.Payload),
				string(e.Status),
				e.TraceID,
				e.CreatedAt.Format(time.RFC3339),
				e.RetryCount,
				formatNullableTime(e.NextAttemptAt),
			},
		})
}

func (s *outboxStore) LeasePending(ctx context.Context, limit int) ([]event.Envelope, error) {
	leaseOwner := leaseToken()
	leaseExpires := time.Now().UTC().Add(30 * time.Second).Format(time.RFC3339)
	now := time.Now().UTC().Format(time.RFC3339)

	var envelopes []event.Envelope
	var scanErr error

	err := sqlitex.Execute(s.conn,
		`UPDATE outbox SET lease_owner = ?, lease_expires_at = ?
		WHERE id IN (
			SELECT id FROM outbox
			WHERE status IN ('pending', 'failed') AND next_attempt_at <= ?
			ORDER BY next_attempt_at ASC
			LIMIT ?
		)
		RETURNING id, event_type, payload, status, trace_id, created_at, processed_at,
			retry_count, next_attempt_at, last_attempted_at, lease_owner, lease_expires_at`,
		&sqlitex.ExecOptions{
			Args: []any{leaseOwner, leaseExpires, now, limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				e, err := scanEnvelope(stmt)
				if err != nil {
					scanErr = err
					return err
				}
				envelopes = append(envelopes, e)
				return nil
			},
		})
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}
	return envelopes, nil
}

func (s *outboxStore) SaveAll(ctx context.Context, envelopes []event.Envelope) error {
	for _, e := range envelopes {
		err := sqlitex.Execute(s.conn,
			`UPDATE outbox SET status = ?, processed_at = ?, retry_count = ?,
				next_attempt_at = ?, last_attempted_at = ?
			WHERE id = ?`,
			&sqlitex.ExecOptions{
				Args: []any{
					string(e.Status),
					formatNullableTime(e.ProcessedAt),
					e.RetryCount,
					formatNullableTime(e.NextAttemptAt),
					formatNullableTime(e.LastAttemptedAt),
					e.ID.String(),
				},
			})
		if err != nil {
			return err
		}
	}
	return nil
}

func scanEnvelope(stmt *sqlite.Stmt) (event.Envelope, error) {
	id, err := parseUUIDColumn(stmt, "id")
	if err != nil {
		return event.Envelope{}, err
	}
	createdAt, err := time.Parse(time.RFC3339, stmt.GetText("created_at"))
	if err != nil {
		return event.Envelope{}, fmt.Errorf("zombiezen: parse outbox created_at: %w", err)
	}

	e := event.Envelope{
		ID:             id,
		EventType:      stmt.GetText("event_type"),
		Payload:        json.RawMessage(stmt.GetText("payload")),
		Status:         event.Status(stmt.GetText("status")),
		TraceID:        stmt.GetText("trace_id"),
		CreatedAt:      createdAt,
		RetryCount:     int(stmt.GetInt64("retry_count")),
		LeaseOwner:     stmt.GetText("lease_owner"),
	}

	e.ProcessedAt = parseNullableTimeColumn(stmt, "processed_at")
	e.NextAttemptAt = parseNullableTimeColumn(stmt, "next_attempt_at")
	e.LastAttemptedAt = parseNullableTimeColumn(stmt, "last_attempted_at")
	e.LeaseExpiresAt = parseNullableTimeColumn(stmt, "lease_expires_at")

	return e, nil
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func parseNullableTimeColumn(stmt *sqlite.Stmt, col string) *time.Time {
	s := stmt.GetText(col)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
