package throttle

import (
	"math/rand"
	"sync"
	"time"
)

const (
	// successDecay geometrically shrinks the delay after each success so a
	// transient blip does not penalize throughput forever.
	successDecay = 0.9
	// genericGrowth applies to non-rate-limit errors.
	genericGrowth = 1.5
	// rateLimitGrowth and rateLimitPenalty apply to rate-limit errors.
	rateLimitGrowth  = 2.0
	rateLimitPenalty = time.Second

	// retryCeiling caps the exponential component of RetryDelay.
	retryCeiling = 60 * time.Second
)

// AdaptiveThrottler paces calls to the zero-quota metadata source. On top of
// the base throttler it adjusts its delay from call outcomes: decay on
// success, growth on error, steeper growth on rate-limit causes.
type AdaptiveThrottler struct {
	Throttler
	mu   sync.Mutex
	base time.Duration
	max  time.Duration
}

// NewAdaptiveThrottler creates an adaptive throttler with the given baseline
// and cap. The delay starts at base and never drops below it.
func NewAdaptiveThrottler(base, max time.Duration) *AdaptiveThrottler {
	a := &AdaptiveThrottler{base: clampDelay(base), max: max}
	a.SetDelay(base)
	return a
}

// OnSuccess decays the delay toward the baseline floor.
func (a *AdaptiveThrottler) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()

	d := time.Duration(float64(a.Delay()) * successDecay)
	if d < a.base {
		d = a.base
	}
	a.SetDelay(d)
}

// OnError grows the delay; rate-limit causes grow more aggressively than
// generic failures.
func (a *AdaptiveThrottler) OnError(isRateLimit bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var d time.Duration
	if isRateLimit {
		d = time.Duration(float64(a.Delay())*rateLimitGrowth) + rateLimitPenalty
	} else {
		d = time.Duration(float64(a.Delay()) * genericGrowth)
	}
	if d > a.max {
		d = a.max
	}
	a.SetDelay(d)
}

// RetryDelay returns an exponential-backoff-with-jitter duration for the
// given retry attempt (0-based), independent of the steady-state delay:
// base = min(60s, 2^attempt seconds), plus uniform jitter in [0, base/2).
func (a *AdaptiveThrottler) RetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := retryCeiling
	if attempt < 6 { // 2^6 = 64s already exceeds the ceiling
		base = time.Duration(1<<uint(attempt)) * time.Second
		if base > retryCeiling {
			base = retryCeiling
		}
	}
	jitter := time.Duration(rand.Int63n(int64(base)/2 + 1))
	return base + jitter
}
