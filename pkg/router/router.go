// Package router escalates a task from a primary model to a fallback model
// when the primary keeps failing transiently. Fallback exists for
// availability failures only; a fatal rejection from the primary is final.
package router

import (
	"context"

	"github.com/scribewise/scribewise/pkg/adapter"
	"github.com/scribewise/scribewise/pkg/retry"
)

// Tier pairs a primary and fallback model for one logical task type. The
// primary policy is deliberately shallow so a globally degraded model fails
// fast into fallback instead of burning the whole budget.
type Tier struct {
	Primary        string
	Fallback       string
	PrimaryPolicy  retry.Policy
	FallbackPolicy retry.Policy
}

// Task performs one remote call against the given model. It must be safe to
// invoke repeatedly.
type Task[T any] func(ctx context.Context, model string) (T, error)

// Route runs primary through retry under the tier's primary policy, and on
// transient exhaustion descends once to fallback under the fallback policy.
// A nil fallback task re-runs the primary closure against the fallback model,
// the common case of identical logic on a different backend tier. Fatal and
// cancellation failures propagate immediately without descent.
func Route[T any](ctx context.Context, tier Tier, primary, fallback Task[T]) (T, error) {
	result, err := retry.Do(ctx, tier.PrimaryPolicy, func(ctx context.Context) (T, error) {
		return primary(ctx, tier.Primary)
	})
	if err == nil {
		return result, nil
	}

	if adapter.Classify(err).Kind != adapter.KindTransient {
		var zero T
		return zero, err
	}

	if fallback == nil {
		fallback = primary
	}
	return retry.Do(ctx, tier.FallbackPolicy, func(ctx context.Context) (T, error) {
		return fallback(ctx, tier.Fallback)
	})
}
