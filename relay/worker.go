// Package relay implements the C9 relay worker: the Idle/Busy polling loop
// that leases pending outbox envelopes, dispatches them through the C7
// handler registry, and reschedules or terminates them per the C8 backoff
// policy. Grounded on the teacher's queue/scheduler.Scheduler (ticker +
// ctx/cancel + shutdownDone shutdown pattern), generalized from claiming
// one job table to leasing outbox envelopes inside a unit-of-work
// transaction.
package relay

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/caasmo/identityoutbox/clock"
	"github.com/caasmo/identityoutbox/config"
	"github.com/caasmo/identityoutbox/domain/event"
	"github.com/caasmo/identityoutbox/handlers"
	"github.com/caasmo/identityoutbox/notify"
	"github.com/caasmo/identityoutbox/outbox"
	"github.com/caasmo/identityoutbox/uow"
)

// Worker is the relay's C9 polling loop. It implements server.Daemon so it
// can be registered alongside the HTTP server's other background
// components.
type Worker struct {
	tx       uow.Tx
	clock    clock.Clock
	registry *handlers.Registry
	notifier notify.Notifier

	batchSize int
	interval  time.Duration
	backoff   outbox.BackoffConfig
	rng       *rand.Rand

	logger *slog.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownDone chan struct{}
}

func New(tx uow.Tx, clk clock.Clock, registry *handlers.Registry, notifier notify.Notifier, cfg config.Relay, logger *slog.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		tx:           tx,
		clock:        clk,
		registry:     registry,
		notifier:     notifier,
		batchSize:    cfg.BatchSize,
		interval:     cfg.Interval,
		backoff:      outbox.BackoffConfig{MaxRetries: cfg.MaxRetries, BaseFactor: cfg.BaseFactor, MaxFactor: cfg.MaxFactor, BaseDelay: cfg.BaseDelay, JitterMax: cfg.JitterMax},
		rng:          rand.New(rand.NewSource(clk.Now().UnixNano())),
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		shutdownDone: make(chan struct{}),
	}
}

func (w *Worker) Name() string { return "relay" }

// Start begins the Idle/Busy loop in a background goroutine and returns
// immediately, matching server.Daemon's non-blocking Start contract. Idle
// waits for the next tick; Busy skips the wait and re-leases immediately
// whenever the last batch came back full, since a full batch implies
// backlog likely remains (spec.md §4.7).
func (w *Worker) Start() error {
	go func() {
		w.logger.Info("relay: starting", "interval", w.interval, "batch_size", w.batchSize)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				w.logger.Info("relay: shutdown signal received")
				close(w.shutdownDone)
				return
			case <-ticker.C:
				for {
					processed, err := w.processBatch(w.ctx)
					if err != nil {
						w.logger.Error("relay: batch failed", "err", err)
						break
					}
					if processed > 0 {
						w.logger.Debug("relay: batch processed", "count", processed)
					}
					if processed < w.batchSize {
						break
					}
					// Busy: the batch was full, stay busy and re-lease
					// immediately instead of waiting for the next tick.
					select {
					case <-w.ctx.Done():
						w.logger.Info("relay: shutdown signal received")
						close(w.shutdownDone)
						return
					default:
					}
				}
			}
		}
	}()
	return nil
}

func (w *Worker) Stop(ctx context.Context) error {
	w.logger.Info("relay: stopping")
	w.cancel()

	select {
	case <-w.shutdownDone:
		w.logger.Info("relay: stopped gracefully")
		return nil
	case <-ctx.Done():
		w.logger.Warn("relay: stop timed out")
		return ctx.Err()
	}
}

// processBatch implements spec.md §4.7's lease -> dispatch -> reschedule ->
// save cycle within one transaction: lease up to batchSize envelopes,
// dispatch each sequentially (stopping at the first failing handler),
// reclassify failures via the backoff policy, then persist every envelope's
// final state before committing.
func (w *Worker) processBatch(ctx context.Context) (int, error) {
	// The relay never touches aggregates directly, only the outbox.Store
	// Begin also hands back.
	_, _, store, committer, err := w.tx.Begin(ctx)
	if err != nil {
		return 0, err
	}

	envelopes, err := store.LeasePending(ctx, w.batchSize)
	if err != nil {
		_ = committer.Rollback(ctx)
		return 0, err
	}
	if len(envelopes) == 0 {
		_ = committer.Rollback(ctx)
		return 0, nil
	}

	now := w.clock.Now()
	for i := range envelopes {
		w.dispatchOne(ctx, &envelopes[i], now)
	}

	if err := store.SaveAll(ctx, envelopes); err != nil {
		_ = committer.Rollback(ctx)
		return 0, err
	}

	if err := committer.Commit(ctx); err != nil {
		return 0, err
	}

	for i := range envelopes {
		if envelopes[i].Status == event.StatusPermanentlyFailed {
			w.alertPermanentFailure(ctx, envelopes[i])
		}
	}

	return len(envelopes), nil
}

// dispatchOne mutates env in place to its post-attempt state. Handlers run
// sequentially per envelope; the first failing handler aborts the rest for
// that envelope (spec.md §4.7 step 3).
func (w *Worker) dispatchOne(ctx context.Context, env *event.Envelope, now time.Time) {
	hctx := handlers.Context{EnvelopeID: env.ID.String(), TraceID: env.TraceID}

	hs, err := w.registry.HandlersFor(ctx, env.EventType, env.Payload, hctx)
	if err != nil {
		w.recordFailure(env, now, err)
		return
	}

	for _, h := range hs {
		hCtx, span := handlers.StartSpan(ctx, env.EventType, hctx)
		err := h.Handle(hCtx)
		span.End()
		if err != nil {
			w.recordFailure(env, now, err)
			return
		}
	}

	env.Status = event.StatusCompleted
	env.ProcessedAt = &now
	env.LastAttemptedAt = &now
}

func (w *Worker) recordFailure(env *event.Envelope, now time.Time, cause error) {
	env.LastAttemptedAt = &now
	env.RetryCount++

	outcome := outbox.Calculate(w.backoff, env.RetryCount, now, w.rng)
	switch o := outcome.(type) {
	case outbox.RetryAt:
		env.Status = event.StatusFailed
		env.NextAttemptAt = &o.At
	case outbox.PermanentlyFailed:
		env.Status = event.StatusPermanentlyFailed
		env.NextAttemptAt = nil
	}

	w.logger.Warn("relay: handler failed", "envelope_id", env.ID, "event_type", env.EventType, "retry_count", env.RetryCount, "err", cause)
}

func (w *Worker) alertPermanentFailure(ctx context.Context, env event.Envelope) {
	if w.notifier == nil {
		return
	}
	n := notify.Notification{
		Timestamp: w.clock.Now(),
		Type:      notify.Alarm,
		Source:    "relay",
		Message:   "outbox envelope permanently failed",
		Fields: map[string]interface{}{
			"envelope_id": env.ID.String(),
			"event_type":  env.EventType,
			"retry_count": env.RetryCount,
		},
	}
	if err := w.notifier.Send(ctx, n); err != nil {
		w.logger.Error("relay: failed to send permanent-failure alert", "err", err)
	}
}
