// Package loginguard tracks failed-login volume per client IP using a
// sliding-window Count-Min sketch: a count-then-tick shape that flags IPs
// hammering the login endpoint with bad credentials.
package loginguard

import (
	"sync"
	"time"

	"github.com/keilerkonzept/topk/sliding"

	"github.com/caasmo/identityoutbox/config"
)

// Guard is a thread-safe sliding-window sketch of failed login attempts
// per client IP. Once a tick completes, ips that exceed the configured
// share of the window are reported so callers can deny them.
type Guard struct {
	mu              sync.Mutex
	sketch          *sliding.Sketch
	tickSize        uint64
	tickReq         uint64
	lastTickTime    time.Time
	maxSharePercent int
	activationRPS   int

	blocked map[string]struct{}
}

// New builds a Guard from cfg. Returns nil if login guarding is disabled,
// so callers can skip tracking entirely without a nil check at every call
// site (RecordFailure/IsBlocked are no-ops on a nil *Guard).
func New(cfg config.LoginGuard) *Guard {
	if !cfg.Enabled {
		return nil
	}
	return &Guard{
		sketch:          sliding.New(cfg.K, cfg.WindowSize, sliding.WithWidth(cfg.Width), sliding.WithDepth(cfg.Depth)),
		tickSize:        cfg.TickSize,
		lastTickTime:    time.Now(),
		maxSharePercent: cfg.MaxSharePercent,
		activationRPS:   cfg.ActivationRPS,
		blocked:         make(map[string]struct{}),
	}
}

// RecordFailure registers a failed login attempt from ip. When enough
// attempts have accumulated to complete a tick, it recomputes the set of
// ips over the share threshold.
func (g *Guard) RecordFailure(ip string) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sketch.Incr(ip)
	g.tickReq++

	if g.tickReq < g.tickSize {
		return
	}
	g.tickReq = 0

	now := time.Now()
	duration := now.Sub(g.lastTickTime)
	g.lastTickTime = now

	var rps float64
	if duration.Seconds() > 0 {
		rps = float64(g.tickSize) / duration.Seconds()
	}
	if rps < float64(g.activationRPS) {
		g.sketch.Tick()
		return
	}

	windowCapacity := uint64(g.sketch.WindowSize) * g.tickSize
	thresholdCount := (windowCapacity * uint64(g.maxSharePercent)) / 100

	blocked := make(map[string]struct{})
	for _, item := range g.sketch.SortedSlice() {
		if item.Count > uint32(thresholdCount) {
			blocked[item.Item] = struct{}{}
		} else {
			break
		}
	}
	g.blocked = blocked
	g.sketch.Tick()
}

// IsBlocked reports whether ip exceeded the failed-login share threshold
// as of the last completed tick.
func (g *Guard) IsBlocked(ip string) bool {
	if g == nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	_, blocked := g.blocked[ip]
	return blocked
}
