// Package audit drives the fetch → parse → extract → write pipeline over a
// list of URLs, one URL at a time.
package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/use-agent/audit-seo/cache"
	"github.com/use-agent/audit-seo/checks"
	"github.com/use-agent/audit-seo/document"
	"github.com/use-agent/audit-seo/models"
)

//go:generate mockgen -destination=mock_fetcher_test.go -package=audit github.com/use-agent/audit-seo/audit Fetcher

// ErrNoURLs is returned when the input list is empty.
var ErrNoURLs = errors.New("audit: no URLs to audit")

// Fetcher retrieves a page. A nil outcome must come with a non-nil error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*models.FetchOutcome, error)
}

// RowWriter receives the header once, then one row per audited page.
type RowWriter interface {
	WriteHeader(columns []string) error
	WriteRow(rec *models.PageRecord) error
}

// State is the per-URL pipeline state.
type State int

const (
	StatePending State = iota
	StateFetching
	StateFailed
	StateExtracted
	StateWritten
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateFetching:
		return "FETCHING"
	case StateFailed:
		return "FAILED"
	case StateExtracted:
		return "EXTRACTED"
	case StateWritten:
		return "WRITTEN"
	case StateSkipped:
		return "SKIPPED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is the terminal outcome for one URL: either a written Record or a
// skip Err.
type Result struct {
	URL    string
	State  State
	Record *models.PageRecord
	Err    error
}

// Runner processes URLs sequentially.
type Runner struct {
	fetcher   Fetcher
	extractor *checks.Extractor
	primed    *cache.Cache
	progress  io.Writer
	now       func() time.Time
}

// Option customises a Runner.
type Option func(*Runner)

// WithExtractor replaces the default check list.
func WithExtractor(e *checks.Extractor) Option {
	return func(r *Runner) {
		r.extractor = e
	}
}

// WithProgress sets where "[DONE] <url>" lines are printed.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) {
		r.progress = w
	}
}

// NewRunner creates a Runner that fetches through f.
func NewRunner(f Fetcher, opts ...Option) *Runner {
	r := &Runner{
		fetcher:   f,
		extractor: checks.Default(),
		primed:    cache.New(1, 0),
		progress:  io.Discard,
		now:       time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run audits urls in order and writes one row per fetched page to w.
//
// The header comes from a priming extraction of the first URL; that fetch
// is reused by the main loop rather than repeated. URLs whose fetch fails
// are skipped, logged and listed in the summary. Run stops early, without
// error, when ctx is canceled. Only writer failures are returned as errors.
func (r *Runner) Run(ctx context.Context, urls []string, w RowWriter) (*models.RunSummary, error) {
	start := r.now()
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	summary := &models.RunSummary{
		Total:   len(urls),
		Skipped: []models.SkipDetail{},
	}
	defer func() {
		summary.DurationMs = r.now().Sub(start).Milliseconds()
	}()

	if err := w.WriteHeader(r.prime(ctx, urls[0])); err != nil {
		return summary, fmt.Errorf("audit: write header: %w", err)
	}

	for _, u := range urls {
		if ctx.Err() != nil {
			summary.Canceled = true
			slog.Warn("audit interrupted", "remaining", len(urls)-summary.Written-len(summary.Skipped))
			break
		}

		res, err := r.process(ctx, u, w)
		if err != nil {
			return summary, err
		}

		switch res.State {
		case StateWritten:
			summary.Written++
			fmt.Fprintf(r.progress, "[DONE] %s\n", u)
		case StateSkipped:
			detail := skipDetail(u, res.Err)
			summary.Skipped = append(summary.Skipped, detail)
			slog.Warn("url skipped", "url", u, "code", detail.Code, "reason", detail.Message)
		}
	}

	return summary, nil
}

// prime fetches the first URL to derive the report header. The column set
// does not depend on page content, so a failed fetch still yields it via an
// empty document.
func (r *Runner) prime(ctx context.Context, first string) []string {
	out, err := r.fetcher.Fetch(ctx, first)
	r.primed.Set(first, out, err)

	doc, status := document.Empty(), 0
	if err == nil && out != nil {
		doc = parse(out)
		status = out.StatusCode
	}
	return r.extractor.Extract(doc, first, status).Keys()
}

// process takes one URL through FETCHING to WRITTEN or SKIPPED. The returned
// error is non-nil only when the writer fails.
func (r *Runner) process(ctx context.Context, u string, w RowWriter) (Result, error) {
	res := Result{URL: u, State: StatePending}
	transition(&res, StateFetching)

	var out *models.FetchOutcome
	var err error
	if cached, ok := r.primed.Take(u); ok {
		out, err = cached.Outcome, cached.Err
	} else {
		out, err = r.fetcher.Fetch(ctx, u)
	}
	if err == nil && out == nil {
		err = models.NewAuditError(models.ErrCodeRetriesExhausted, "fetch returned no outcome", nil)
	}
	if err != nil {
		res.Err = err
		transition(&res, StateFailed)
		transition(&res, StateSkipped)
		return res, nil
	}

	res.Record = r.extractor.Extract(parse(out), u, out.StatusCode)
	transition(&res, StateExtracted)

	if err := w.WriteRow(res.Record); err != nil {
		return res, fmt.Errorf("audit: write row for %s: %w", u, err)
	}
	transition(&res, StateWritten)
	return res, nil
}

func transition(res *Result, to State) {
	slog.Debug("url state", "url", res.URL, "from", res.State, "to", to)
	res.State = to
}

func parse(out *models.FetchOutcome) *document.Document {
	ct := ""
	if out.Header != nil {
		ct = out.Header.Get("Content-Type")
	}
	return document.Parse(out.Body, ct)
}

func skipDetail(u string, err error) models.SkipDetail {
	var ae *models.AuditError
	if errors.As(err, &ae) {
		return ae.ToDetail(u)
	}
	return models.SkipDetail{URL: u, Code: "UNKNOWN", Message: err.Error()}
}
