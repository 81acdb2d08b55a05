package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/use-agent/audit-seo/audit"
	"github.com/use-agent/audit-seo/config"
	"github.com/use-agent/audit-seo/fetcher"
	"github.com/use-agent/audit-seo/models"
	"github.com/use-agent/audit-seo/report"
	"github.com/use-agent/audit-seo/webhook"
)

var (
	configPath string
	csvPath    string
	schedule   string
	maxRetries int
	baseDelay  time.Duration
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:           "audit-seo <input>",
	Short:         "Audit on-page SEO signals for a URL or a file of URLs",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	// Flag defaults reflect the environment so --help shows effective values.
	env := config.Load()

	f := rootCmd.Flags()
	f.StringVar(&configPath, "config", os.Getenv("AUDIT_SEO_CONFIG"), "YAML config file")
	f.StringVar(&csvPath, "csv", env.Report.BasePath, "output CSV path; the current date is inserted before the extension")
	f.StringVar(&schedule, "schedule", env.Schedule.Cron, "cron expression for repeated audits; empty runs once")
	f.IntVar(&maxRetries, "max-retries", env.Fetch.MaxRetries, "retries after the first attempt")
	f.DurationVar(&baseDelay, "base-delay", env.Fetch.BaseDelay, "delay before every attempt and initial backoff")
	f.StringVar(&logLevel, "log-level", env.Log.Level, "debug, info, warn or error")
	f.StringVar(&logFormat, "log-format", env.Log.Format, "text or json")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "audit-seo:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	initLogger(cfg.Log)

	if cfg.Fetch.MaxRetries < 0 {
		return fmt.Errorf("--max-retries must not be negative")
	}
	if cfg.Fetch.BaseDelay < 0 {
		return fmt.Errorf("--base-delay must not be negative")
	}

	f, err := fetcher.New(cfg.Fetch)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Schedule.Cron == "" {
		return auditOnce(cmd.Context(), out, cfg, f, args[0])
	}

	sched, err := audit.ParseSchedule(cfg.Schedule.Cron)
	if err != nil {
		return err
	}
	slog.Info("audit-seo scheduled", "cron", cfg.Schedule.Cron, "input", args[0])
	audit.Repeat(cmd.Context(), sched, func(ctx context.Context) error {
		return auditOnce(ctx, out, cfg, f, args[0])
	})
	slog.Info("audit-seo stopped")
	return nil
}

// applyFlags copies explicitly set flags over the file/env configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("csv") {
		cfg.Report.BasePath = csvPath
	}
	if flags.Changed("schedule") {
		cfg.Schedule.Cron = schedule
	}
	if flags.Changed("max-retries") {
		cfg.Fetch.MaxRetries = maxRetries
	}
	if flags.Changed("base-delay") {
		cfg.Fetch.BaseDelay = baseDelay
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
}

// auditOnce audits every URL named by input into a freshly dated report.
func auditOnce(ctx context.Context, out io.Writer, cfg *config.Config, f *fetcher.Fetcher, input string) error {
	urls, err := audit.LoadURLs(input)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return audit.ErrNoURLs
	}

	path := report.DatedPath(cfg.Report.BasePath, time.Now())
	w, err := report.Open(path)
	if err != nil {
		return err
	}

	slog.Info("audit starting",
		"urls", len(urls),
		"report", path,
		"maxRetries", cfg.Fetch.MaxRetries,
		"baseDelay", cfg.Fetch.BaseDelay,
	)

	summary, runErr := audit.NewRunner(f, audit.WithProgress(out)).Run(ctx, urls, w)
	if err := w.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}
	summary.ReportPath = path

	fmt.Fprintf(out, "Saved SEO audit results to %s\n", path)
	slog.Info("audit finished",
		"written", summary.Written,
		"skipped", len(summary.Skipped),
		"canceled", summary.Canceled,
		"durationMs", summary.DurationMs,
	)

	notify(cfg.Webhook, summary)
	return nil
}

// notify posts the run summary to the configured webhook. Failures are
// logged by the webhook package and never fail the run.
func notify(cfg config.WebhookConfig, summary *models.RunSummary) {
	if cfg.URL == "" {
		return
	}
	event := &webhook.Event{
		Type:      webhook.EventAuditCompleted,
		JobID:     "audit-" + uuid.NewString(),
		Timestamp: time.Now().Unix(),
		Data:      summary,
	}
	// The run context may already be canceled; delivery gets its own budget.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = webhook.DeliverWithRetry(ctx, cfg.URL, cfg.Secret, event, webhook.DefaultDelays)
}

// initLogger configures slog based on the LogConfig. Logs go to stderr so
// stdout carries only progress lines.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
