package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scribewise/scribewise/pkg/adapter"
)

func TestDelayGrowsExponentially(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: 2000 * time.Millisecond, Factor: 2}

	want := []time.Duration{
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		8000 * time.Millisecond,
	}
	for i, expected := range want {
		if got := Delay(policy, i+1); got != expected {
			t.Errorf("Delay(n=%d) = %v, want %v", i+1, got, expected)
		}
	}
}

func TestDoReturnsFirstSuccess(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Factor: 2}

	calls := 0
	got, err := Do(context.Background(), policy, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "ok" || calls != 1 {
		t.Fatalf("got %q after %d calls, want ok after 1", got, calls)
	}
}

func TestDoRetriesTransientFailures(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Factor: 2}

	calls := 0
	got, err := Do(context.Background(), policy, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &adapter.AdapterError{Status: 503, Message: "unavailable"}
		}
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "recovered" || calls != 3 {
		t.Fatalf("got %q after %d calls, want recovered after 3", got, calls)
	}
}

func TestDoDoesNotRetryFatalFailures(t *testing.T) {
	policy := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, Factor: 2}

	fatal := &adapter.AdapterError{Status: 400, Message: "bad request"}
	calls := 0
	_, err := Do(context.Background(), policy, func(ctx context.Context) (int, error) {
		calls++
		return 0, fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("err = %v, want the original fatal error", err)
	}
	if calls != 1 {
		t.Fatalf("fatal failure attempted %d times, want 1", calls)
	}
}

func TestDoPropagatesFailureUnchangedOnExhaustion(t *testing.T) {
	policy := Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, Factor: 2}

	transient := &adapter.AdapterError{Status: 429, Message: "rate limited"}
	calls := 0
	_, err := Do(context.Background(), policy, func(ctx context.Context) (int, error) {
		calls++
		return 0, transient
	})
	if !errors.Is(err, transient) {
		t.Fatalf("err = %v, want the original transient error unwrapped", err)
	}
	if calls != 3 {
		t.Fatalf("attempted %d times, want 3 (1 + 2 retries)", calls)
	}
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{MaxAttempts: 0, BaseDelay: time.Millisecond, Factor: 2},
		func(ctx context.Context) (int, error) {
			calls++
			return 0, &adapter.AdapterError{Status: 503}
		})
	if err == nil || calls != 1 {
		t.Fatalf("err=%v calls=%d, want failure after exactly 1 call", err, calls)
	}
}

func TestDoAbortsDelayOnCancellation(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Hour, Factor: 2}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, policy, func(ctx context.Context) (int, error) {
			return 0, &adapter.AdapterError{Status: 503}
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not abort the pending delay")
	}
}

func TestDoHonorsRetryAfterHint(t *testing.T) {
	policy := Policy{MaxAttempts: 1, BaseDelay: time.Millisecond, Factor: 2}

	start := time.Now()
	calls := 0
	_, _ = Do(context.Background(), policy, func(ctx context.Context) (int, error) {
		calls++
		return 0, &adapter.AdapterError{Status: 429, RetryAfter: 50 * time.Millisecond}
	})
	if calls != 2 {
		t.Fatalf("attempted %d times, want 2", calls)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("retried after %v, want the 50ms hint honored", elapsed)
	}
}
