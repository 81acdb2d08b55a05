package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Fetch    FetchConfig
	Report   ReportConfig
	Schedule ScheduleConfig
	Log      LogConfig
	Webhook  WebhookConfig
}

// FetchConfig controls how pages are retrieved.
type FetchConfig struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int // default: 3

	// BaseDelay is slept before every attempt and seeds the backoff.
	BaseDelay time.Duration // default: 1s

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration // default: 16s

	// ConnectTimeout bounds TCP (and TLS) connection setup.
	ConnectTimeout time.Duration // default: 5s

	// ReadTimeout bounds waiting for and reading the response.
	ReadTimeout time.Duration // default: 20s

	UserAgent string // default: "seo-audit-bot/1.0"

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64 // default: 10 MiB

	// TLSFingerprint selects the TLS ClientHello: "" for Go's own, "chrome"
	// for a Chrome-like fingerprint.
	TLSFingerprint string

	// HostRate is the sustained per-host request rate. Zero disables it.
	HostRate float64 // default: 0

	// HostBurst is the per-host token bucket size.
	HostBurst int // default: 1
}

// ReportConfig controls the CSV report.
type ReportConfig struct {
	// BasePath is the report path before the date stamp is inserted.
	BasePath string // default: "audit-seo.csv"
}

// ScheduleConfig controls repeated audits.
type ScheduleConfig struct {
	// Cron is a standard five-field cron expression. Empty runs once.
	Cron string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// WebhookConfig controls the optional completion webhook.
type WebhookConfig struct {
	// URL receives an audit.completed event. Empty disables delivery.
	URL string

	// Secret signs the payload with HMAC-SHA256 when non-empty.
	Secret string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Fetch: FetchConfig{
			MaxRetries:     3,
			BaseDelay:      1 * time.Second,
			MaxDelay:       16 * time.Second,
			ConnectTimeout: 5 * time.Second,
			ReadTimeout:    20 * time.Second,
			UserAgent:      "seo-audit-bot/1.0",
			MaxBodyBytes:   10 << 20,
			HostBurst:      1,
		},
		Report: ReportConfig{
			BasePath: "audit-seo.csv",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	cfg := Default()
	applyEnv(cfg)
	return cfg
}

// applyEnv overrides cfg with any AUDIT_SEO_* variables that are set and
// valid. Invalid values keep the current setting.
func applyEnv(cfg *Config) {
	f := &cfg.Fetch
	f.MaxRetries = envIntOr("AUDIT_SEO_MAX_RETRIES", f.MaxRetries)
	f.BaseDelay = envDurationOr("AUDIT_SEO_BASE_DELAY", f.BaseDelay)
	f.MaxDelay = envDurationOr("AUDIT_SEO_MAX_DELAY", f.MaxDelay)
	f.ConnectTimeout = envDurationOr("AUDIT_SEO_CONNECT_TIMEOUT", f.ConnectTimeout)
	f.ReadTimeout = envDurationOr("AUDIT_SEO_READ_TIMEOUT", f.ReadTimeout)
	f.UserAgent = envOr("AUDIT_SEO_USER_AGENT", f.UserAgent)
	f.MaxBodyBytes = envInt64Or("AUDIT_SEO_MAX_BODY_BYTES", f.MaxBodyBytes)
	f.TLSFingerprint = strings.ToLower(envOr("AUDIT_SEO_TLS_FINGERPRINT", f.TLSFingerprint))
	f.HostRate = envFloatOr("AUDIT_SEO_HOST_RATE", f.HostRate)
	f.HostBurst = envIntOr("AUDIT_SEO_HOST_BURST", f.HostBurst)

	cfg.Report.BasePath = envOr("AUDIT_SEO_CSV", cfg.Report.BasePath)
	cfg.Schedule.Cron = envOr("AUDIT_SEO_SCHEDULE", cfg.Schedule.Cron)

	cfg.Log.Level = envOr("AUDIT_SEO_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envOr("AUDIT_SEO_LOG_FORMAT", cfg.Log.Format)

	cfg.Webhook.URL = envOr("AUDIT_SEO_WEBHOOK_URL", cfg.Webhook.URL)
	cfg.Webhook.Secret = envOr("AUDIT_SEO_WEBHOOK_SECRET", cfg.Webhook.Secret)
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return fallback
}
