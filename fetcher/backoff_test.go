package fetcher

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestBackoffDelay(t *testing.T) {
	const max = 16 * time.Second
	for _, base := range []time.Duration{250 * time.Millisecond, time.Second, 3 * time.Second} {
		for n := 1; n <= 10; n++ {
			want := base << (n - 1)
			if want > max {
				want = max
			}
			if got := BackoffDelay(base, max, n); got != want {
				t.Errorf("BackoffDelay(%v, %v, %d) = %v, want %v", base, max, n, got, want)
			}
		}
	}
}

func TestBackoffDelay_Monotonic(t *testing.T) {
	prev := time.Duration(0)
	for n := 1; n <= 64; n++ {
		d := BackoffDelay(time.Second, 16*time.Second, n)
		if d < prev {
			t.Fatalf("delay decreased at n=%d: %v < %v", n, d, prev)
		}
		if d > 16*time.Second {
			t.Fatalf("delay exceeded cap at n=%d: %v", n, d)
		}
		prev = d
	}
}

func TestBackoffDelay_BaseAboveCap(t *testing.T) {
	if got := BackoffDelay(time.Minute, 16*time.Second, 1); got != 16*time.Second {
		t.Errorf("got %v, want cap", got)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
		ok     bool
	}{
		{"absent", "", 0, false},
		{"integer", "10", 10 * time.Second, true},
		{"decimal", "1.5", 1500 * time.Millisecond, true},
		{"padded", "  3 ", 3 * time.Second, true},
		{"zero", "0", 0, true},
		{"word", "soon", 0, false},
		{"http date", "Wed, 21 Oct 2015 07:28:00 GMT", 0, false},
		{"negative", "-5", 0, false},
		{"nan", "NaN", 0, false},
		{"inf", "Inf", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Retry-After", tt.header)
			}
			got, ok := RetryAfter(h)
			if got != tt.want || ok != tt.ok {
				t.Errorf("RetryAfter(%q) = (%v, %v), want (%v, %v)", tt.header, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRetryableStatus(t *testing.T) {
	for code, want := range map[int]bool{200: false, 404: false, 429: true, 500: false, 502: false, 503: true} {
		if got := retryableStatus(code); got != want {
			t.Errorf("retryableStatus(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestSleepCtx_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := sleepCtx(ctx, time.Hour); err == nil {
		t.Fatal("want error from canceled context")
	}
	if time.Since(start) > time.Second {
		t.Error("sleepCtx did not return promptly on cancel")
	}
}

func TestHostLimiter(t *testing.T) {
	if newHostLimiter(0, 1) != nil {
		t.Fatal("zero rate should disable the limiter")
	}
	var nilLimiter *hostLimiter
	if err := nilLimiter.wait(context.Background(), "https://example.com/"); err != nil {
		t.Fatalf("nil limiter wait: %v", err)
	}

	l := newHostLimiter(1000, 2)
	if l.get("a.example") == l.get("b.example") {
		t.Error("hosts should get separate limiters")
	}
	if l.get("a.example") != l.get("a.example") {
		t.Error("same host should reuse its limiter")
	}
	if hostOf("https://WWW.Example.com:8443/x") != "www.example.com" {
		t.Errorf("hostOf = %q", hostOf("https://WWW.Example.com:8443/x"))
	}
}
