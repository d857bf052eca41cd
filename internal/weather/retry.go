package weather

import (
	"context"
	"net/http"
	"time"
)

// Sleeper waits for d or until the context is done. Injected so tests can
// assert the backoff schedule without real waiting.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepWithContext is the production Sleeper.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryPolicy is an explicit retry schedule: max attempts, a starting delay,
// a multiplier, and a predicate deciding which failures are worth retrying.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Retryable   func(error) bool
}

// DefaultRetryPolicy retries only HTTP 403, up to 3 attempts, with doubling
// backoff starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		Retryable: func(err error) bool {
			return HTTPStatus(err) == http.StatusForbidden
		},
	}
}

// Execute runs fn under the policy. After every retryable failure, including
// the last, it waits one backoff step before returning control; the waits
// are suspension points and abort as soon as ctx is done.
func (p RetryPolicy) Execute(ctx context.Context, sleep Sleeper, fn func() error) error {
	if sleep == nil {
		sleep = SleepWithContext
	}
	delay := p.BaseDelay
	var last error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		last = fn()
		if last == nil || p.Retryable == nil || !p.Retryable(last) {
			return last
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	return last
}
