// Package retry runs fallible operations with exponential backoff and a
// circuit breaker guarding persistently failing dependencies.
package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/reconhq/mailrecon/pkg/errors"
	"github.com/reconhq/mailrecon/pkg/logging"
)

// Defaults for the retry policy and the circuit breaker.
const (
	DefaultMaxAttempts      = 3
	DefaultBaseDelay        = 100 * time.Millisecond
	DefaultMaxDelay         = 5 * time.Second
	DefaultFailureThreshold = 5
	DefaultCooldown         = 30 * time.Second
)

// Runner executes operations under a retry policy. Safe for concurrent
// use.
type Runner struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	breaker     *breaker
	logger      zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithMaxAttempts sets how many times an operation runs before its last
// error is returned. Values below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the first backoff interval. Each subsequent
// attempt doubles it up to the max delay.
func WithBaseDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.baseDelay = d
		}
	}
}

// WithMaxDelay caps the backoff interval.
func WithMaxDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.maxDelay = d
		}
	}
}

// WithBreaker configures the circuit breaker: after threshold
// consecutive exhausted operations the circuit opens for the cooldown
// period, during which Do fails fast with ErrCircuitOpen.
func WithBreaker(threshold int, cooldown time.Duration) Option {
	return func(r *Runner) {
		if threshold > 0 && cooldown > 0 {
			r.breaker = newBreaker(threshold, cooldown)
		}
	}
}

// WithLogger routes the runner's structured output.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// New creates a Runner with default policy and breaker settings.
func New(opts ...Option) *Runner {
	r := &Runner{
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		maxDelay:    DefaultMaxDelay,
		breaker:     newBreaker(DefaultFailureThreshold, DefaultCooldown),
		logger:      *logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do runs op until it succeeds, the attempt budget is exhausted, or the
// context is canceled. The returned error is the last attempt's error,
// the context error, or ErrCircuitOpen when the breaker rejects the
// call outright.
func (r *Runner) Do(ctx context.Context, name string, op func(context.Context) error) error {
	if !r.breaker.allow() {
		r.logger.Warn().Str("operation", name).Msg("circuit open, failing fast")
		return errors.ErrCircuitOpen
	}

	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, r.delay(attempt)); err != nil {
				r.breaker.recordFailure()
				return err
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			r.breaker.recordSuccess()
			return nil
		}

		r.logger.Debug().
			Str("operation", name).
			Int("attempt", attempt+1).
			Err(lastErr).
			Msg("attempt failed")
	}

	r.breaker.recordFailure()
	return lastErr
}

// delay computes the backoff before the given attempt, capped at the
// max delay.
func (r *Runner) delay(attempt int) time.Duration {
	d := r.baseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= r.maxDelay {
			return r.maxDelay
		}
	}
	if d > r.maxDelay {
		return r.maxDelay
	}
	return d
}

// sleep waits for the duration or until the context is done.
func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
