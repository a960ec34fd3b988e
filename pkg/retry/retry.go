// Package retry runs single operations with bounded exponential backoff.
// Failure classification decides whether an attempt is worth repeating; the
// delay clock honors the caller's context so a pending backoff never outlives
// the request.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/scribewise/scribewise/pkg/adapter"
)

// Policy bounds one operation's retry budget.
type Policy struct {
	// MaxAttempts is the number of retries after the first attempt. Zero
	// means the operation runs exactly once.
	MaxAttempts int

	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration

	// Factor multiplies the delay on each further retry. Must be > 1.
	Factor float64
}

// Op is one repeatable remote call. It must be safe to invoke more than once.
type Op[T any] func(ctx context.Context) (T, error)

// Do runs op, retrying transient failures until the policy is exhausted.
// Fatal and cancellation failures propagate unchanged on the spot, as does
// the final failure once attempts run out. Do keeps no state between calls
// and is safe for concurrent use with independent policies.
func Do[T any](ctx context.Context, policy Policy, op Op[T]) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		classified := adapter.Classify(err)
		if classified.Kind != adapter.KindTransient || attempt >= policy.MaxAttempts {
			return zero, err
		}

		delay := Delay(policy, attempt+1)
		if classified.RetryAfter > delay {
			delay = classified.RetryAfter
		}
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return zero, sleepErr
		}
	}
}

// Delay returns the wait before retry n (n >= 1): BaseDelay * Factor^(n-1).
func Delay(policy Policy, n int) time.Duration {
	if n < 1 {
		return 0
	}
	return time.Duration(float64(policy.BaseDelay) * math.Pow(policy.Factor, float64(n-1)))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
