package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Kind labels how an upstream failure should be handled.
type Kind int

const (
	// KindFatal failures will not succeed on retry (bad request, permanent
	// rejection). Unclassifiable failures land here too.
	KindFatal Kind = iota

	// KindTransient failures are expected to succeed if retried later
	// (rate limit, overload, transport hiccup).
	KindTransient

	// KindCancelled means the caller's context ended the call. Never retried.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindCancelled:
		return "cancelled"
	default:
		return "fatal"
	}
}

// AdapterError is the normalized failure each provider adapter surfaces.
// Status and Code are optional; adapters fill whatever the SDK exposes.
type AdapterError struct {
	Status     int
	Code       string
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *AdapterError) Error() string {
	if e == nil {
		return "adapter error"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("adapter error (status=%d)", e.Status)
}

func (e *AdapterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ClassifiedError wraps an upstream failure with its handling kind and an
// optional suggested wait before the next attempt.
type ClassifiedError struct {
	Kind       Kind
	RetryAfter time.Duration
	Err        error
}

func (e *ClassifiedError) Error() string {
	if e == nil || e.Err == nil {
		return "upstream failure"
	}
	return e.Err.Error()
}

func (e *ClassifiedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Statuses the providers return when a retry is worth it. Deliberately not
// the whole 5xx range: 502 from these APIs usually means a broken deploy of
// an intermediary, and 504 is covered by the caller's context deadline.
var transientStatuses = map[int]bool{429: true, 500: true, 503: true}

var transientCodes = map[string]bool{
	"RESOURCE_EXHAUSTED": true,
	"PERMISSION_DENIED":  true,
}

// Message fragments that mark a retryable failure even when no status code
// survived the SDK's error wrapping. Case-sensitive, checked in order, first
// match wins.
var transientFragments = []string{
	"quota",
	"Quota",
	"RESOURCE_EXHAUSTED",
	"rate limit",
	"Rate limit",
	"Too Many Requests",
	"rpc error",
	"RPC failed",
	"xhr error",
	"fetch failed",
	"connection reset",
	"overloaded",
	"Overloaded",
	"The service is currently unavailable",
}

// Classify decides how a failure from a remote call should be handled. It is
// a pure function of the failure's observable fields and never panics; input
// it cannot place defaults to fatal so unknown errors are not retried forever.
func Classify(err error) *ClassifiedError {
	if err == nil {
		return &ClassifiedError{Kind: KindFatal, Err: errors.New("unknown upstream failure")}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ClassifiedError{Kind: KindCancelled, Err: err}
	}

	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) && adapterErr != nil {
		if transientStatuses[adapterErr.Status] || transientCodes[adapterErr.Code] {
			return &ClassifiedError{Kind: KindTransient, RetryAfter: adapterErr.RetryAfter, Err: err}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClassifiedError{Kind: KindTransient, Err: err}
	}

	msg := err.Error()
	for _, fragment := range transientFragments {
		if strings.Contains(msg, fragment) {
			return &ClassifiedError{Kind: KindTransient, Err: err}
		}
	}

	return &ClassifiedError{Kind: KindFatal, Err: err}
}

// IsTransient reports whether an error is safe to retry.
func IsTransient(err error) bool {
	return Classify(err).Kind == KindTransient
}

// IsCancelled reports whether an error came from the caller's context.
func IsCancelled(err error) bool {
	return Classify(err).Kind == KindCancelled
}

