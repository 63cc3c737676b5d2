package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultMaxAttempts  = 3
	defaultBaseDelay    = 20 * time.Millisecond
	defaultJitterFactor = 0.3

	MaxAttempts     = 10
	maxBackoffShift = 30
	maxBackoff      = time.Hour
)

var (
	ErrInvalidMaxAttempts  = errors.Errorf("max attempts must be between 1 and %d", MaxAttempts)
	ErrNegativeBaseDelay   = errors.New("base delay must not be negative")
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

type config struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
}

type Option func(*config) error

func WithMaxAttempts(attempts int) Option {
	return func(c *config) error {
		if attempts <= 0 || attempts > MaxAttempts {
			return ErrInvalidMaxAttempts
		}
		c.maxAttempts = attempts
		return nil
	}
}

// WithBaseDelay sets the first backoff; later ones double it.
func WithBaseDelay(delay time.Duration) Option {
	return func(c *config) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}
		c.baseDelay = delay
		return nil
	}
}

func WithJitterFactor(factor float64) Option {
	return func(c *config) error {
		if factor < 0 || factor > 1 {
			return ErrInvalidJitterFactor
		}
		c.jitterFactor = factor
		return nil
	}
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate reports the first option Do would reject.
func Validate(opts ...Option) error {
	_, err := newConfig(opts)
	return err
}

// Do calls fn until it succeeds, fails with an error retryable rejects, the
// attempts run out or ctx is done. The last error of fn is returned, also
// when ctx ends during a backoff.
func Do(ctx context.Context, fn func(ctx context.Context) error, retryable func(error) bool, opts ...Option) error {
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := Backoff(attempt, cfg.baseDelay, cfg.jitterFactor, rand.Float64()) //nolint:gosec
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return err
			}
		}
		if err = fn(ctx); err == nil || !retryable(err) {
			return err
		}
	}
	return err
}

// Backoff is the wait before the given retry attempt (1-based):
// base*2^(attempt-1), capped at an hour, stretched by up to jitter of itself,
// r in [0, 1).
func Backoff(attempt int, base time.Duration, jitter, r float64) time.Duration {
	if attempt < 1 || base <= 0 {
		return 0
	}
	shift := attempt - 1
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	delay := base << shift
	if delay>>shift != base || delay > maxBackoff {
		delay = maxBackoff
	}
	return delay + time.Duration(r*float64(delay)*jitter)
}
