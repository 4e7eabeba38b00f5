package outbox

import (
	"math"
	"math/rand"
	"time"
)

// BackoffConfig parameterizes the exponential-backoff-with-jitter policy
// (C8). All fields are required; base_factor/max_factor are expressed as
// floats to allow fractional growth rates in tests.
type BackoffConfig struct {
	MaxRetries      int
	BaseFactor      float64
	MaxFactor       float64
	BaseDelay       time.Duration
	JitterMax       time.Duration
}

// DefaultBackoffConfig mirrors the teacher's queue defaults in magnitude
// (seconds-scale base delay, bounded retry count) generalized to the
// explicit formula spec.md §4.6 requires.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		MaxRetries: 8,
		BaseFactor: 2,
		MaxFactor:  64,
		BaseDelay:  5 * time.Second,
		JitterMax:  500 * time.Millisecond,
	}
}

// Outcome is a closed 2-variant sum type, not a bool+time pair, per the
// design note favoring tagged unions over flag fields.
type Outcome interface {
	isOutcome()
}

// RetryAt carries the next scheduled attempt time.
type RetryAt struct {
	At time.Time
}

func (RetryAt) isOutcome() {}

// PermanentlyFailed signals the envelope has exhausted its retry budget.
type PermanentlyFailed struct{}

func (PermanentlyFailed) isOutcome() {}

// Calculate is a pure function: given the config, the attempt count about
// to be recorded, the time of the just-failed attempt, and an injected RNG
// (so callers can seed it for deterministic tests), returns the next
// scheduling decision.
func Calculate(cfg BackoffConfig, retryCount int, lastFailedAt time.Time, rng *rand.Rand) Outcome {
	if retryCount >= cfg.MaxRetries {
		return PermanentlyFailed{}
	}

	factor := math.Pow(cfg.BaseFactor, float64(retryCount))
	if factor > cfg.MaxFactor {
		factor = cfg.MaxFactor
	}

	delay := time.Duration(float64(cfg.BaseDelay) * factor)

	var jitter time.Duration
	if cfg.JitterMax > 0 {
		jitter = time.Duration(rng.Int63n(int64(cfg.JitterMax)))
	}

	return RetryAt{At: lastFailedAt.Add(delay + jitter)}
}
