package ai

import (
	"context"
	"errors"
	"fmt"
)

// Generator performs one request/response round-trip against the language model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrDailyQuota indicates the provider's daily request quota is exhausted.
// Retrying within the same day cannot succeed, so callers should not retry.
var ErrDailyQuota = errors.New("daily request quota exceeded")

// StatusError carries the provider's HTTP status code so callers can classify
// a failure for retry purposes.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model provider error (status %d): %s", e.StatusCode, e.Message)
}

// Retryable reports whether the status indicates a condition that may clear
// on its own: rate limiting, overload, or any server-side failure.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode == 503 || e.StatusCode >= 500
}

// TransientError is returned once the retry budget is exhausted.
type TransientError struct {
	Attempts   int
	LastStatus int
	Err        error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("model call failed after %d attempts (last status %d): %v", e.Attempts, e.LastStatus, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
