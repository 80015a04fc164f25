package options

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig holds the configuration for retrying store loads.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int

	// InitialBackoff is the initial backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration.
	MaxBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// loadWithRetry loads from store with exponential backoff and jitter.
// ErrNoOptions is a definitive answer and is never retried.
func loadWithRetry(ctx context.Context, store Store, config RetryConfig, logger zerolog.Logger) (Options, error) {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		o, err := store.Load(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Str("store", store.Name()).
					Int("attempt", attempt).
					Msg("Options loaded after retry")
			}
			return o, nil
		}

		if errors.Is(err, ErrNoOptions) {
			return Options{}, err
		}
		lastErr = err

		if attempt >= config.MaxAttempts {
			break
		}

		LoadRetries.WithLabelValues(store.Name()).Inc()

		// ±20% jitter
		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))

		logger.Warn().
			Err(err).
			Str("store", store.Name()).
			Int("attempt", attempt).
			Dur("backoff", jitter).
			Msg("Options load failed, retrying")

		select {
		case <-ctx.Done():
			return Options{}, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(jitter):
		}

		backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	return Options{}, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, config.MaxAttempts, lastErr)
}
