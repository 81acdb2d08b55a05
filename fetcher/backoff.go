package fetcher

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// retryableStatus reports whether a response status is worth retrying.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

// nextDelay doubles d, capped at max.
func nextDelay(d, max time.Duration) time.Duration {
	if d > max/2 {
		return max
	}
	return d * 2
}

// BackoffDelay returns the wait before the nth retry (n >= 1):
// min(base * 2^(n-1), max).
func BackoffDelay(base, max time.Duration, n int) time.Duration {
	d := base
	if d > max {
		return max
	}
	for i := 1; i < n; i++ {
		d = nextDelay(d, max)
	}
	return d
}

// RetryAfter parses a numeric Retry-After header in seconds. Integer and
// decimal values are accepted; anything else, including HTTP dates, is
// reported as absent.
func RetryAfter(h http.Header) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return 0, false
	}
	if secs >= float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64), true
	}
	return time.Duration(secs * float64(time.Second)), true
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
