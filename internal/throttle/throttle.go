// package throttle paces remote write calls and classifies remote failures.
//
// Pacing keeps steady-state traffic below the provider's rate limiter;
// retry backoff recovers when the limiter is hit anyway. The two delays are
// independent: Wait enforces the gap between consecutive calls, RetryDelay
// spaces attempts of a single failed call.
package throttle

import (
	"sync"
	"time"
)

// Throttler enforces a minimum delay between consecutive Wait calls on the
// same instance. Delay is mutable at runtime.
type Throttler struct {
	mu       sync.Mutex
	delay    time.Duration
	lastCall time.Time
}

// NewThrottler creates a throttler with the given pacing delay.
func NewThrottler(delay time.Duration) *Throttler {
	return &Throttler{delay: clampDelay(delay)}
}

// Wait blocks until at least the configured delay has elapsed since the
// previous Wait call.
func (t *Throttler) Wait() {
	t.mu.Lock()
	elapsed := time.Since(t.lastCall)
	pause := t.delay - elapsed
	t.mu.Unlock()

	if pause > 0 {
		time.Sleep(pause)
	}

	t.mu.Lock()
	t.lastCall = time.Now()
	t.mu.Unlock()
}

// Delay returns the current pacing delay.
func (t *Throttler) Delay() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delay
}

// SetDelay replaces the pacing delay, clamped to be non-negative.
func (t *Throttler) SetDelay(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delay = clampDelay(d)
}

// IncreaseDelay multiplies the current delay by factor and caps it at max.
// Used reactively after a rate-limit signal.
func (t *Throttler) IncreaseDelay(factor float64, max time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	d := time.Duration(float64(t.delay) * factor)
	if t.delay == 0 {
		// A zero baseline would never grow; seed with a second.
		d = time.Second
	}
	if d > max {
		d = max
	}
	t.delay = clampDelay(d)
}

// ResetDelay restores the baseline pacing delay.
func (t *Throttler) ResetDelay(d time.Duration) {
	t.SetDelay(d)
}

func clampDelay(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
