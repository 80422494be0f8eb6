package throttle

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
)

func TestThrottlerZeroDelay(t *testing.T) {
	th := NewThrottler(0)

	start := time.Now()
	th.Wait()
	th.Wait()

	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Errorf("two waits with zero delay took %v, want <10ms", elapsed)
	}
}

func TestThrottlerEnforcesDelay(t *testing.T) {
	th := NewThrottler(50 * time.Millisecond)

	th.Wait()
	start := time.Now()
	th.Wait()

	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("second wait returned after %v, want >=40ms", elapsed)
	}
}

func TestThrottlerSetDelayClamps(t *testing.T) {
	th := NewThrottler(time.Second)
	th.SetDelay(-5 * time.Second)

	if d := th.Delay(); d != 0 {
		t.Errorf("negative delay should clamp to 0, got %v", d)
	}
}

func TestThrottlerIncreaseDelay(t *testing.T) {
	th := NewThrottler(100 * time.Millisecond)

	th.IncreaseDelay(2, time.Second)
	if d := th.Delay(); d != 200*time.Millisecond {
		t.Errorf("delay = %v, want 200ms", d)
	}

	th.IncreaseDelay(100, time.Second)
	if d := th.Delay(); d != time.Second {
		t.Errorf("delay should cap at 1s, got %v", d)
	}

	th.ResetDelay(100 * time.Millisecond)
	if d := th.Delay(); d != 100*time.Millisecond {
		t.Errorf("reset delay = %v, want 100ms", d)
	}
}

func TestAdaptiveThrottlerDecaysTowardBase(t *testing.T) {
	at := NewAdaptiveThrottler(100*time.Millisecond, time.Minute)
	at.SetDelay(time.Second)

	at.OnSuccess()
	if d := at.Delay(); d != 900*time.Millisecond {
		t.Errorf("delay after success = %v, want 900ms", d)
	}

	for i := 0; i < 100; i++ {
		at.OnSuccess()
	}
	if d := at.Delay(); d != 100*time.Millisecond {
		t.Errorf("delay should floor at base, got %v", d)
	}
}

func TestAdaptiveThrottlerGrowsOnError(t *testing.T) {
	at := NewAdaptiveThrottler(100*time.Millisecond, time.Minute)

	at.OnError(false)
	if d := at.Delay(); d != 150*time.Millisecond {
		t.Errorf("delay after generic error = %v, want 150ms", d)
	}

	at.SetDelay(100 * time.Millisecond)
	at.OnError(true)
	if d := at.Delay(); d != 1200*time.Millisecond {
		t.Errorf("delay after rate-limit error = %v, want 1.2s", d)
	}

	at.SetDelay(59 * time.Minute)
	at.OnError(true)
	if d := at.Delay(); d != time.Minute {
		t.Errorf("delay should cap, got %v", d)
	}
}

func TestAdaptiveRetryDelay(t *testing.T) {
	at := NewAdaptiveThrottler(0, time.Minute)

	tests := []struct {
		attempt int
		base    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{10, 60 * time.Second},
	}

	for _, tt := range tests {
		d := at.RetryDelay(tt.attempt)
		if d < tt.base || d > tt.base+tt.base/2 {
			t.Errorf("RetryDelay(%d) = %v, want in [%v, %v]", tt.attempt, d, tt.base, tt.base+tt.base/2)
		}
	}
}

func apiError(code int, reason string) error {
	e := &googleapi.Error{Code: code, Message: "remote failure"}
	if reason != "" {
		e.Errors = []googleapi.ErrorItem{{Reason: reason}}
	}
	return e
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		category  Category
		retryable bool
	}{
		{"rate limited", apiError(429, "rateLimitExceeded"), RateLimited, true},
		{"quota exceeded", apiError(403, "quotaExceeded"), QuotaExceeded, false},
		{"forbidden", apiError(403, "forbidden"), PermissionDenied, false},
		{"not found", apiError(404, ""), NotFound, false},
		{"bad request", apiError(400, "invalidValue"), InvalidRequest, false},
		{"server error", apiError(500, ""), ServerError, true},
		{"bad gateway", apiError(502, ""), ServerError, true},
		{"timeout", context.DeadlineExceeded, NetworkError, true},
		{"plain error", errors.New("boom"), Unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.err)
			if c.Category != tt.category {
				t.Errorf("category = %s, want %s", c.Category, tt.category)
			}
			if c.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", c.Retryable, tt.retryable)
			}
		})
	}
}

func TestClassifyCarriesStatusAndReason(t *testing.T) {
	c := Classify(apiError(403, "quotaExceeded"))
	if c.StatusCode != 403 || c.Reason != "quotaExceeded" {
		t.Errorf("status/reason = %d/%q", c.StatusCode, c.Reason)
	}
	if c.UserAction == "" {
		t.Error("classification should carry a remediation hint")
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), NewThrottler(0), func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestDoReturnsNonRetryableImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), NewThrottler(0), func() error {
		calls++
		return apiError(404, "")
	})

	if calls != 1 {
		t.Errorf("non-retryable error should not retry, calls = %d", calls)
	}
	var ce *ClassifiedError
	if !errors.As(err, &ce) || ce.Classification.Category != NotFound {
		t.Errorf("expected classified NOT_FOUND error, got %v", err)
	}
}

func TestDoRateLimitedIncreasesThrottle(t *testing.T) {
	th := NewThrottler(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		// Cancel before the first backoff sleep finishes.
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, th, func() error {
		return apiError(429, "rateLimitExceeded")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context cancellation, got %v", err)
	}
	if d := th.Delay(); d <= 10*time.Millisecond {
		t.Errorf("rate limit should increase pacing delay, got %v", d)
	}
}

func TestBackoffBounds(t *testing.T) {
	for attempt := 0; attempt < 12; attempt++ {
		d := backoff(attempt)
		if d < initialBackoff {
			t.Errorf("backoff(%d) = %v, below initial", attempt, d)
		}
		if d > maxBackoff+maxJitter {
			t.Errorf("backoff(%d) = %v, above cap+jitter", attempt, d)
		}
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		category Category
		kind     ActionKind
	}{
		{QuotaExceeded, Abort},
		{Unknown, Abort},
		{NotFound, Skip},
		{PermissionDenied, Skip},
		{InvalidRequest, Skip},
		{RateLimited, Skip},
		{ServerError, Skip},
		{NetworkError, Skip},
	}

	for _, tt := range tests {
		action := Decide(Classification{Category: tt.category})
		if action.Kind != tt.kind {
			t.Errorf("Decide(%s) = %v, want %v", tt.category, action.Kind, tt.kind)
		}
		if action.Reason == "" {
			t.Errorf("Decide(%s) should carry a reason", tt.category)
		}
	}
}
