package ollama

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const defaultMaxRetries = 3

type connectionError struct {
	host string
	err  error
}

func (e *connectionError) Error() string {
	return fmt.Sprintf("cannot reach ollama at %s: %v", e.host, e.err)
}

func (e *connectionError) Unwrap() error { return e.err }

// IsConnectionError reports whether err means the server was unreachable,
// as opposed to the server rejecting the request.
func IsConnectionError(err error) bool {
	var ce *connectionError
	return errors.As(err, &ce)
}

type modelNotFoundError struct {
	body string
}

func (e *modelNotFoundError) Error() string {
	return "model not found: " + e.body
}

// IsModelNotFound reports whether err means the requested model is not
// installed on the server (fix: ollama pull <model>).
func IsModelNotFound(err error) bool {
	var me *modelNotFoundError
	return errors.As(err, &me)
}

type rateLimitError struct{}

func (e *rateLimitError) Error() string { return "rate limited" }

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.statusCode, e.body)
}

// retryWithBackoff retries fn on rate-limit and 5xx failures with exponential
// back-off. Connection errors, missing models, and client-side failures are
// not retried.
func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var rl *rateLimitError
		var se *serverError
		if !errors.As(lastErr, &rl) && !errors.As(lastErr, &se) {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
