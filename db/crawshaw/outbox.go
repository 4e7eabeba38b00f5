package crawshaw

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"

	"github.com/caasmo/identityoutbox/domain/event"
	"github.com/google/uuid"
)

// outboxStore mirrors db/zombiezen/outbox.go's lease-column fallback; see
// that file's doc comment for why BEGIN IMMEDIATE alone already gives P5
// disjointness on SQLite.
type outboxStore struct {
	conn *sqlite.Conn
}

func (s *outboxStore) InsertMany(ctx context.Context, envelopes []event.Envelope) error {
	for _, e := range envelopes {
		err := sqlitex.Exec(s.conn,
			`INSERT INTO outbox (id, event_type, payload, status, trace_id, created_at, retry_count, next_attempt_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			nil,
			e.ID.String(), e.EventType, string(e.Payload), string(e.Status), e.TraceID,
			e.CreatedAt.Format(time.RFC3339), e.RetryCount, formatNullableTime(e.NextAttemptAt))
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *outboxStore) LeasePending(ctx context.Context, limit int) ([]event.Envelope, error) {
	var b [8]byte
	_, _ = rand.Read(b[:])
	leaseOwner := hex.EncodeToString(b[:])
	leaseExpires := time.Now().UTC().Add(30 * time.Second).Format(time.RFC3339)
	now := time.Now().UTC().Format(time.RFC3339)

	var envelopes []event.Envelope
	var scanErr error

	err := sqlitex.Exec(s.conn,
		`UPDATE outbox SET lease_owner = ?, lease_expires_at = ?
		WHERE id IN (
			SELECT id FROM outbox
			WHERE status IN ('pending', 'failed') AND next_attempt_at <= ?
			ORDER BY next_attempt_at ASC
			LIMIT ?
		)
		RETURNING id, event_type, payload, status, trace_id, created_at, processed_at,
			retry_count, next_attempt_at, last_attempted_at, lease_owner, lease_expires_at`,
		func(stmt *sqlite.Stmt) error {
			e, err := scanEnvelope(stmt)
			if err != nil {
				scanErr = err
				return err
			}
			envelopes = append(envelopes, e)
			return nil
		},
		leaseOwner, leaseExpires, now, limit)
	if err != nil {
		return nil, err
	}
	return envelopes, scanErr
}

func (s *outboxStore) SaveAll(ctx context.Context, envelopes []event.Envelope) error {
	for _, e := range envelopes {
		err := sqlitex.Exec(s.conn,
			`UPDATE outbox SET status = ?, processed_at = ?, retry_count = ?,
				next_attempt_at = ?, last_attempted_at = ?
			WHERE id = ?`,
			nil,
			string(e.Status), formatNullableTime(e.ProcessedAt), e.RetryCount,
			formatNullableTime(e.NextAttemptAt), formatNullableTime(e.LastAttemptedAt), e.ID.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func scanEnvelope(stmt *sqlite.Stmt) (event.Envelope, error) {
	id, err := uuid.Parse(stmt.GetText("id"))
	if err != nil {
		return event.Envelope{}, fmt.Errorf("crawshaw: parse envelope id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, stmt.GetText("created_at"))
	if err != nil {
		return event.Envelope{}, fmt.Errorf("crawshaw: parse outbox created_at: %w", err)
	}

	e := event.Envelope{
		ID:         id,
		EventType:  stmt.GetText("event_type"),
		Payload:    json.RawMessage(stmt.GetText("payload")),
		Status:     event.Status(stmt.GetText("status")),
		TraceID:    stmt.GetText("trace_id"),
		CreatedAt:  createdAt,
		RetryCount: int(stmt.GetInt64("retry_count")),
		LeaseOwner: stmt.GetText("lease_owner"),
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
