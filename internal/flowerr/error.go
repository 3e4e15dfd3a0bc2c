// Package flowerr contains error types shared by the prflow packages.
package flowerr

import (
	"errors"
	"fmt"
	"time"
)

// RetryableError wraps an error of an operation that can be run again,
// e.g. because the GitHub API rate limit was exceeded or GitHub responded
// with a server error.
type RetryableError struct {
	// Err is the wrapped original error
	Err error
	// After is the earliest point in time when the operation can be
	// retried. It is the zero value when it can be retried immediately.
	After time.Time
}

func NewRetryableError(originalErr error, retryAfter time.Time) *RetryableError {
	return &RetryableError{
		Err:   originalErr,
		After: retryAfter,
	}
}

func NewRetryableAnytimeError(originalErr error) *RetryableError {
	return &RetryableError{
		Err: originalErr,
	}
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

func (e *RetryableError) Error() string {
	if e.After.IsZero() {
		return fmt.Sprintf("retryable error: %s", e.Err)
	}

	return fmt.Sprintf("retryable error (after %s): %s", e.After.Format(time.RFC3339), e.Err)
}

// IsRetryable returns true if err wraps a RetryableError.
// retryAfter is the earliest time the operation can be retried again.
func IsRetryable(err error) (retryable bool, retryAfter time.Time) {
	var retryErr *RetryableError
	if errors.As(err, &retryErr) {
		return true, retryErr.After
	}

	return false, time.Time{}
}
