// Package idgen generates time-ordered identifiers for aggregates and outbox
// envelopes. google/uuid's NewV7 only guarantees millisecond ordering, so the
// real Generator serializes calls behind a mutex to force intra-millisecond
// monotonicity across goroutines.
package idgen

import (
	"sync"

	"github.com/google/uuid"
)

// Generator produces time-ordered UUIDs.
type Generator interface {
	NewID() (uuid.UUID, error)
}

// Monotonic wraps uuid.NewV7 with a mutex so concurrent callers within the
// same millisecond still get strictly increasing ids.
type Monotonic struct {
	mu sync.Mutex
}

// NewMonotonic returns the production Generator.
func NewMonotonic() *Monotonic {
	return &Monotonic{}
}

func (m *Monotonic) NewID() (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uuid.NewV7()
}
