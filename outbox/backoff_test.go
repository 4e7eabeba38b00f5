package outbox_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/caasmo/identityoutbox/outbox"
)

func TestCalculate_PermanentlyFailedAtMaxRetries(t *testing.T) {
	cfg := outbox.BackoffConfig{MaxRetries: 3, BaseFactor: 2, MaxFactor: 64, BaseDelay: time.Second, JitterMax: 0}
	rng := rand.New(rand.NewSource(1))

	got := outbox.Calculate(cfg, 3, time.Now(), rng)
	if _, ok := got.(outbox.PermanentlyFailed); !ok {
		t.Fatalf("expected PermanentlyFailed at retryCount==MaxRetries, got %#v", got)
	}

	got = outbox.Calculate(cfg, 4, time.Now(), rng)
	if _, ok := got.(outbox.PermanentlyFailed); !ok {
		t.Fatalf("expected PermanentlyFailed beyond MaxRetries, got %#v", got)
	}
}

func TestCalculate_RetryAtGrowsExponentiallyUntilCapped(t *testing.T) {
	cfg := outbox.BackoffConfig{MaxRetries: 10, BaseFactor: 2, MaxFactor: 8, BaseDelay: time.Second, JitterMax: 0}
	rng := rand.New(rand.NewSource(1))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		retryCount   int
		expectedBase time.Duration
	}{
		{0, time.Second},      // factor 1
		{1, 2 * time.Second},  // factor 2
		{2, 4 * time.Second},  // factor 4
		{3, 8 * time.Second},  // factor capped at MaxFactor=8
		{4, 8 * time.Second},  // still capped
	}

	for _, c := range cases {
		got := outbox.Calculate(cfg, c.retryCount, base, rng)
		retryAt, ok := got.(outbox.RetryAt)
		if !ok {
			t.Fatalf("retryCount=%d: expected RetryAt, got %#v", c.retryCount, got)
		}
		if delta := retryAt.At.Sub(base); delta != c.expectedBase {
			t.Errorf("retryCount=%d: expected delay %s, got %s", c.retryCount, c.expectedBase, delta)
		}
	}
}

func TestCalculate_JitterIsBoundedAndNonNegative(t *testing.T) {
	cfg := outbox.BackoffConfig{MaxRetries: 10, BaseFactor: 1, MaxFactor: 1, BaseDelay: time.Second, JitterMax: 500 * time.Millisecond}
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		got := outbox.Calculate(cfg, 0, base, rng)
		retryAt := got.(outbox.RetryAt)
		delta := retryAt.At.Sub(base)
		if delta < time.Second || delta >= time.Second+500*time.Millisecond {
			t.Fatalf("delay %s outside [base, base+jitter_max)", delta)
		}
	}
}

func TestCalculate_DeterministicForSeededRNG(t *testing.T) {
	cfg := outbox.DefaultBackoffConfig()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a := outbox.Calculate(cfg, 1, base, rand.New(rand.NewSource(7)))
	b := outbox.Calculate(cfg, 1, base, rand.New(rand.NewSource(7)))

	if a.(outbox.RetryAt).At != b.(outbox.RetryAt).At {
		t.Fatalf("expected identical seeds to produce identical outcomes")
	}
}
