package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ParseSchedule parses a standard five-field cron expression, with the
// usual descriptors such as "@daily".
func ParseSchedule(expr string) (cron.Schedule, error) {
	s, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("audit: parse schedule %q: %w", expr, err)
	}
	return s, nil
}

// Repeat runs job at every activation of sched until ctx is done. A failing
// job is logged and the next activation still happens.
func Repeat(ctx context.Context, sched cron.Schedule, job func(context.Context) error) {
	for {
		next := sched.Next(time.Now())
		if next.IsZero() {
			slog.Warn("schedule has no further activations")
			return
		}
		slog.Info("next audit scheduled", "at", next.Format(time.RFC3339))

		t := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}

		if err := job(ctx); err != nil {
			slog.Error("scheduled audit failed", "error", err)
		}
	}
}
