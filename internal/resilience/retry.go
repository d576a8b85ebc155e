package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures [Retry].
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	// Default: 3.
	MaxAttempts int

	// InitialBackoff is the delay before the second attempt. Default: 500ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between attempts. Default: 5s.
	MaxBackoff time.Duration

	// BackoffFactor is the multiplier applied per attempt. Default: 2.
	BackoffFactor float64

	// Jitter spreads each delay by ±Jitter×delay (0.0–1.0).
	Jitter float64

	// RetryIf decides whether an error is worth another attempt.
	// Default: [DefaultRetryIf].
	RetryIf func(error) bool

	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

// temporary is implemented by errors that know whether a retry can help,
// such as HTTP status errors from transcription backends.
type temporary interface {
	Temporary() bool
}

// DefaultRetryIf retries every error except context cancellation, deadline
// expiry and errors that declare themselves non-temporary.
func DefaultRetryIf(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var t temporary
	if errors.As(err, &t) {
		return t.Temporary()
	}
	return true
}

func (cfg RetryConfig) withDefaults() RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = 2
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = DefaultRetryIf
	}
	return cfg
}

// Retry calls fn until it succeeds, RetryIf rejects its error, or MaxAttempts
// is reached, sleeping with exponential backoff in between. The last error is
// returned unchanged. If ctx ends while waiting, ctx.Err() is returned.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !cfg.RetryIf(err) || attempt == cfg.MaxAttempts {
			break
		}

		backoff := calculateBackoff(attempt, cfg)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, backoff)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, lastErr
}

// calculateBackoff returns initial×factor^(attempt-1) with jitter, capped at
// MaxBackoff.
func calculateBackoff(attempt int, cfg RetryConfig) time.Duration {
	d := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffFactor, float64(attempt-1))
	if cfg.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * cfg.Jitter
	}
	if d > float64(cfg.MaxBackoff) {
		d = float64(cfg.MaxBackoff)
	}
	if d < 0 {
		d = float64(cfg.InitialBackoff)
	}
	return time.Duration(d)
}
