// Package retry provides a small bounded-backoff retry helper for
// idempotent operations.
package retry

import (
	"context"
	"fmt"
	"time"
)

type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	OnRetry        func(attempt int, err error, backoff time.Duration)
}

// Transient decides whether an error is worth another attempt. A false
// return aborts immediately with the original error.
type Transient func(err error) bool

type Operation[T any] func() (T, error)

// Do runs op until it succeeds, a permanent error occurs, attempts run
// out, or ctx is cancelled. Backoff doubles between attempts.
func Do[T any](ctx context.Context, p Policy, transient Transient, op Operation[T]) (T, error) {
	backoff := p.InitialBackoff

	for attempt := 1; ; attempt++ {
		val, err := op()
		if err == nil {
			return val, nil
		}

		var zero T
		if !transient(err) {
			return zero, err
		}
		if attempt == p.MaxAttempts {
			return zero, fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, backoff)
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}
