// Package event defines the outbox envelope: the wire contract between
// aggregate save-time (domain/user) and handler dispatch-time (handlers,
// relay). Grounded on the teacher's queue.Status* constants in
// queue/queue.go, generalized from the teacher's job-status set to the
// 4-state set spec.md requires.
package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the outbox envelope's lifecycle tag.
type Status string

const (
	StatusPending           Status = "pending"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
	StatusPermanentlyFailed Status = "permanently_failed"
)

// Envelope is a durable record of one domain event captured inside a
// unit-of-work transaction, awaiting relay dispatch. Terminal states are
// Completed and PermanentlyFailed (I-O2, I-O3).
type Envelope struct {
	ID              uuid.UUID
	EventType       string
	Payload         json.RawMessage
	Status          Status
	TraceID         string // 32 hex chars, optional
	CreatedAt       time.Time
	ProcessedAt     *time.Time
	RetryCount      int
	NextAttemptAt   *time.Time
	LastAttemptedAt *time.Time

	// LeaseOwner and LeaseExpiresAt exist for forward-compatibility with a
	// future lock-based (e.g. Postgres skip-locked) backend; the SQLite
	// backend exercises them as a random fencing token rather than a
	// true cross-process lock, see outbox/store.go.
	LeaseOwner     string
	LeaseExpiresAt *time.Time
}

// New builds a pending Envelope for a freshly recorded domain event. next
// attempt is immediately due (I-O1: next_attempt_at <= created_at).
func New(id uuid.UUID, eventType string, payload json.RawMessage, traceID string, now time.Time) Envelope {
	due := now
	return Envelope{
		ID:            id,
		EventType:     eventType,
		Payload:       payload,
		Status:        StatusPending,
		TraceID:       traceID,
		CreatedAt:     now,
		RetryCount:    0,
		NextAttemptAt: &due,
	}
}
