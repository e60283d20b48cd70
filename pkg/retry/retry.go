package retry

import (
	"context"
	"fmt"
	"time"
)

// ExhaustedError is returned by Do when every attempt failed or the
// last error was not retryable.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do runs fn until it succeeds or the policy gives up. Context
// cancellation between attempts is returned as is.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := 0
	for {
		attempts++

		err := fn(ctx)
		if err == nil {
			return nil
		}

		if p.Retryable != nil && !p.Retryable(err) {
			return &ExhaustedError{Attempts: attempts, Err: err}
		}
		if attempts >= p.MaxAttempts {
			return &ExhaustedError{Attempts: attempts, Err: err}
		}

		delay := p.Delay(attempts)
		if p.OnRetry != nil {
			p.OnRetry(attempts, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
