// Package retry runs operations with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"

	"hiring-workers/internal/common/logger"
)

// Policy bounds a retry loop.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultPolicy is used for dependency bootstrapping in the worker manager.
var DefaultPolicy = Policy{
	MaxAttempts:  10,
	InitialDelay: 2 * time.Second,
	MaxDelay:     30 * time.Second,
}

// exponential returns a jitter-free doubling backoff starting at InitialDelay and
// capped at MaxDelay. It never gives up on its own.
func (p Policy) exponential() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval <= 0 {
		b.MaxInterval = time.Duration(math.MaxInt64)
	}
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Backoff returns the delay before attempt n (1-based): InitialDelay doubled n-1 times,
// capped at MaxDelay.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	b := p.exponential()
	delay := b.NextBackOff()
	for i := 1; i < attempt && delay < b.MaxInterval; i++ {
		delay = b.NextBackOff()
	}
	return delay
}

// Do calls op until it succeeds, the attempts run out or ctx is done.
func Do(ctx context.Context, p Policy, log logger.Logger, name string, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	calls := 0
	b := backoff.WithContext(backoff.WithMaxRetries(p.exponential(), uint64(attempts-1)), ctx)
	err := backoff.RetryNotify(func() error {
		calls++
		return op(ctx)
	}, b, func(err error, delay time.Duration) {
		log.Warn(fmt.Sprintf("%s failed, retrying...", name), map[string]interface{}{
			"error":       err,
			"attempt":     calls,
			"maxAttempts": attempts,
			"nextRetryIn": delay.String(),
		})
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s cancelled after %d attempts: %w", name, calls, ctx.Err())
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, calls, err)
}
