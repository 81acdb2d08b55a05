package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to allow YAML unmarshalling from strings
// such as "1s" or "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a string, got %s", value.ShortTag())
	}
	raw := strings.TrimSpace(value.Value)
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration %q must not be negative", raw)
	}
	d.Duration = parsed
	return nil
}

// fileConfig mirrors Config for YAML files. Pointer fields distinguish
// "unset" from zero so a file only overrides what it names.
type fileConfig struct {
	Fetch struct {
		MaxRetries     *int      `yaml:"max_retries"`
		BaseDelay      *Duration `yaml:"base_delay"`
		MaxDelay       *Duration `yaml:"max_delay"`
		ConnectTimeout *Duration `yaml:"connect_timeout"`
		ReadTimeout    *Duration `yaml:"read_timeout"`
		UserAgent      *string   `yaml:"user_agent"`
		MaxBodyBytes   *int64    `yaml:"max_body_bytes"`
		TLSFingerprint *string   `yaml:"tls_fingerprint"`
		HostRate       *float64  `yaml:"host_rate"`
		HostBurst      *int      `yaml:"host_burst"`
	} `yaml:"fetch"`
	Report struct {
		CSV *string `yaml:"csv"`
	} `yaml:"report"`
	Schedule struct {
		Cron *string `yaml:"cron"`
	} `yaml:"schedule"`
	Log struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"log"`
	Webhook struct {
		URL    *string `yaml:"url"`
		Secret *string `yaml:"secret"`
	} `yaml:"webhook"`
}

// LoadFile builds a Config from defaults, then the YAML file at path (if
// path is non-empty), then environment variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fc fileConfig
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if err := fc.apply(cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func (fc *fileConfig) apply(cfg *Config) error {
	f := &cfg.Fetch
	if v := fc.Fetch.MaxRetries; v != nil {
		if *v < 0 {
			return fmt.Errorf("fetch.max_retries must not be negative")
		}
		f.MaxRetries = *v
	}
	setDuration(&f.BaseDelay, fc.Fetch.BaseDelay)
	setDuration(&f.MaxDelay, fc.Fetch.MaxDelay)
	setDuration(&f.ConnectTimeout, fc.Fetch.ConnectTimeout)
	setDuration(&f.ReadTimeout, fc.Fetch.ReadTimeout)
	setString(&f.UserAgent, fc.Fetch.UserAgent)
	if v := fc.Fetch.MaxBodyBytes; v != nil {
		if *v <= 0 {
			return fmt.Errorf("fetch.max_body_bytes must be positive")
		}
		f.MaxBodyBytes = *v
	}
	if v := fc.Fetch.TLSFingerprint; v != nil {
		f.TLSFingerprint = strings.ToLower(*v)
	}
	if v := fc.Fetch.HostRate; v != nil {
		f.HostRate = *v
	}
	if v := fc.Fetch.HostBurst; v != nil {
		f.HostBurst = *v
	}

	setString(&cfg.Report.BasePath, fc.Report.CSV)
	setString(&cfg.Schedule.Cron, fc.Schedule.Cron)
	setString(&cfg.Log.Level, fc.Log.Level)
	setString(&cfg.Log.Format, fc.Log.Format)
	setString(&cfg.Webhook.URL, fc.Webhook.URL)
	setString(&cfg.Webhook.Secret, fc.Webhook.Secret)
	return nil
}

func setDuration(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = v.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
