// Package fetcher retrieves pages over HTTP, retrying transient failures
// with capped exponential backoff and honoring Retry-After hints.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/use-agent/audit-seo/config"
	"github.com/use-agent/audit-seo/models"
)

// Fetcher performs paced, retried GET requests. It is safe for sequential
// use by one caller; the underlying client is shared.
type Fetcher struct {
	cfg     config.FetchConfig
	client  *http.Client
	limiter *hostLimiter
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the client built from the config.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithSleep replaces the function used for every pacing and backoff wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

// New creates a Fetcher from cfg.
func New(cfg config.FetchConfig, opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		cfg:     cfg,
		limiter: newHostLimiter(cfg.HostRate, cfg.HostBurst),
		sleep:   sleepCtx,
	}
	for _, o := range opts {
		o(f)
	}
	if f.client == nil {
		client, err := newHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
		f.client = client
	}
	return f, nil
}

// Fetch retrieves rawURL. It makes at most MaxRetries+1 attempts, sleeping
// BaseDelay before each one. Network errors and 429/503 responses are
// retried after the current backoff delay (or Retry-After, if longer);
// every other status is returned as is.
//
// A nil outcome always comes with an *models.AuditError describing why the
// URL produced nothing.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*models.FetchOutcome, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	delay := f.cfg.BaseDelay
	var lastErr error

	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if err := f.sleep(ctx, f.cfg.BaseDelay); err != nil {
			return nil, canceled(err)
		}
		if err := f.limiter.wait(ctx, rawURL); err != nil {
			return nil, canceled(err)
		}

		out, err := f.do(ctx, rawURL)
		final := attempt == f.cfg.MaxRetries

		if err != nil {
			if ctx.Err() != nil {
				return nil, canceled(ctx.Err())
			}
			lastErr = err
			slog.Debug("fetch attempt failed",
				"url", rawURL, "attempt", attempt+1, "error", err,
			)
			if final {
				break
			}
			if err := f.sleep(ctx, delay); err != nil {
				return nil, canceled(err)
			}
			delay = nextDelay(delay, f.cfg.MaxDelay)
			continue
		}

		out.Attempts = attempt + 1
		if !retryableStatus(out.StatusCode) {
			return out, nil
		}

		lastErr = fmt.Errorf("fetcher: HTTP %d", out.StatusCode)
		if final {
			break
		}
		wait := delay
		if ra, ok := RetryAfter(out.Header); ok && ra > wait {
			wait = ra
		}
		slog.Debug("fetch throttled",
			"url", rawURL, "attempt", attempt+1, "status", out.StatusCode, "wait", wait,
		)
		if err := f.sleep(ctx, wait); err != nil {
			return nil, canceled(err)
		}
		delay = nextDelay(delay, f.cfg.MaxDelay)
	}

	return nil, models.NewAuditError(
		models.ErrCodeRetriesExhausted,
		fmt.Sprintf("gave up after %d attempts", f.cfg.MaxRetries+1),
		lastErr,
	)
}

// do performs a single attempt, reading the whole (capped) body.
func (f *Fetcher) do(ctx context.Context, rawURL string) (*models.FetchOutcome, error) {
	if limit := f.cfg.ConnectTimeout + f.cfg.ReadTimeout; limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetcher: build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetcher: request failed: %w", err)
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if f.cfg.MaxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, f.cfg.MaxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("fetcher: read body: %w", err)
	}

	return &models.FetchOutcome{
		StatusCode: resp.StatusCode,
		Body:       data,
		Header:     resp.Header,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return models.NewAuditError(models.ErrCodeInvalidURL, "unparseable url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return models.NewAuditError(models.ErrCodeInvalidURL,
			fmt.Sprintf("unsupported scheme %q", u.Scheme), nil)
	}
	if u.Host == "" {
		return models.NewAuditError(models.ErrCodeInvalidURL, "missing host", nil)
	}
	return nil
}

func canceled(err error) error {
	msg := "fetch interrupted"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "fetch deadline exceeded"
	}
	return models.NewAuditError(models.ErrCodeCanceled, msg, err)
}
