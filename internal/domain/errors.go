package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnauthorized is matched by every *AuthError via errors.Is.
var ErrUnauthorized = errors.New("invalid or expired credential")

// AuthError is fatal to a whole fetch cycle and is never retried.
type AuthError struct {
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return ErrUnauthorized.Error()
	}
	return fmt.Sprintf("%s: %v", ErrUnauthorized, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool { return target == ErrUnauthorized }

// RateLimitError means the API quota is exhausted until Reset. A zero Reset
// means the server did not advertise one.
type RateLimitError struct {
	Reset      time.Time
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return fmt.Sprintf("rate limit exceeded: %v", e.Err)
	}
	return fmt.Sprintf("rate limit exceeded until %s: %v", e.Reset.Format(time.RFC3339), e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// TransientError covers network failures and 5xx responses. StatusCode is 0
// when no response was received.
type TransientError struct {
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("transient failure: %v", e.Err)
	}
	return fmt.Sprintf("transient failure (HTTP %d): %v", e.StatusCode, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// RequestError is a client-side 4xx that retrying cannot fix.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request rejected (HTTP %d): %v", e.StatusCode, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// RecordMappingError describes a single raw record that could not be
// normalized. It is logged and counted, never returned from a batch.
type RecordMappingError struct {
	Kind  string
	Index int
	Err   error
}

func (e *RecordMappingError) Error() string {
	return fmt.Sprintf("failed to map %s record #%d: %v", e.Kind, e.Index, e.Err)
}

func (e *RecordMappingError) Unwrap() error { return e.Err }

// ResourceError records a top-level resource that degraded to empty.
type ResourceError struct {
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
