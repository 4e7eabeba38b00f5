// Package handlers implements the C7 handler registry: the mapping from an
// outbox envelope's event_type to the side-effect handlers the relay worker
// invokes. Grounded on the teacher's queue/executor's JobHandler pattern,
// generalized from one handler per job to zero-or-more handlers per event.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Handler is a single ready-to-invoke side effect.
type Handler interface {
	Handle(ctx context.Context) error
}

// Context identifies the envelope a Handler is running on behalf of, for
// logging and span attachment.
type Context struct {
	EnvelopeID string
	TraceID    string
}

// Factory builds zero or more Handlers for one event payload.
type Factory func(ctx context.Context, payload json.RawMessage, hctx Context) ([]Handler, error)

// ErrUnknownEventType is returned for an event_type with no registered
// factory; the relay leaves such envelopes in failed for retry.
var ErrUnknownEventType = fmt.Errorf("handlers: unknown event type")

// Registry is an immutable-after-construction map from event_type to
// Factory, safe for concurrent read-only use across relay batches.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for eventType. Intended to be called only during
// setup, before the registry is handed to the relay worker.
func (r *Registry) Register(eventType string, f Factory) {
	r.factories[eventType] = f
}

// HandlersFor resolves and invokes the factory for one envelope.
func (r *Registry) HandlersFor(ctx context.Context, eventType string, payload json.RawMessage, hctx Context) ([]Handler, error) {
	f, ok := r.factories[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, eventType)
	}
	return f(ctx, payload, hctx)
}

// tracer is shared by every concrete handler's Handle method.
var tracer = otel.Tracer("relay")

// StartSpan opens a child span for a handler invocation, reattaching the
// envelope's stored trace id as a remote parent when present (spec.md
// §4.5/§9), so the handler's work appears under the originating request's
// distributed trace.
func StartSpan(ctx context.Context, handlerName string, hctx Context) (context.Context, trace.Span) {
	if hctx.TraceID != "" {
		if traceID, err := trace.TraceIDFromHex(hctx.TraceID); err == nil {
			remote := trace.NewSpanContext(trace.SpanContextConfig{
				TraceID:    traceID,
				SpanID:     trace.SpanID{},
				Remote:     true,
				TraceFlags: trace.FlagsSampled,
			})
			ctx = trace.ContextWithRemoteSpanContext(ctx, remote)
		}
	}
	return tracer.Start(ctx, handlerName)
}
