package throttle

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

const (
	// Retry policy for write operations: fixed attempt ceiling with capped
	// exponential backoff and jitter.
	maxAttempts    = 10
	initialBackoff = 2 * time.Second
	maxBackoff     = 300 * time.Second
	maxJitter      = 5 * time.Second

	// increaseFactor is applied to the write throttler on every rate-limit
	// classification so subsequent calls self-pace before the backoff sleep.
	increaseFactor = 2.0
	delayCeiling   = 60 * time.Second
)

// ClassifiedError carries the classification alongside the underlying error
// so callers can branch on data without reclassifying.
type ClassifiedError struct {
	Classification Classification
	Err            error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Classification.Category, e.Err)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Do runs fn under the write retry policy: pace with the throttler, classify
// each failure, retry up to the attempt ceiling while the classification is
// retryable, and surface non-retryable failures unchanged (wrapped with their
// classification). A RATE_LIMITED classification also increases the
// throttler's pacing delay.
func Do(ctx context.Context, t *Throttler, fn func() error) error {
	var last *ClassifiedError

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if t != nil {
			t.Wait()
		}

		err := fn()
		if err == nil {
			return nil
		}

		class := Classify(err)
		last = &ClassifiedError{Classification: class, Err: err}

		if class.Category == RateLimited && t != nil {
			t.IncreaseDelay(increaseFactor, delayCeiling)
		}
		if !class.Retryable {
			return last
		}
		if attempt == maxAttempts-1 {
			break
		}

		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return last
}

// backoff returns the sleep before retry attempt+1: initial 2s doubled per
// attempt, capped at 300s, plus uniform jitter up to 5s.
func backoff(attempt int) time.Duration {
	d := initialBackoff
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			d = maxBackoff
			break
		}
	}
	return d + time.Duration(rand.Int63n(int64(maxJitter)))
}
