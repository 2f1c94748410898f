package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for invalid or inconsistent values.
// It is called after defaults have been applied, so zero values that have
// defaults never reach it.
func Validate(cfg *Config) error {
	if err := validateShip(&cfg.Ship); err != nil {
		return fmt.Errorf("ship: %w", err)
	}
	if err := validateOffshore(&cfg.Offshore); err != nil {
		return fmt.Errorf("offshore: %w", err)
	}
	if err := validateTelemetry(&cfg.Telemetry); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if err := validateAudit(&cfg.Audit); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	return nil
}

func validateShip(cfg *ShipConfig) error {
	if err := validateHostPort("listen_address", cfg.ListenAddress); err != nil {
		return err
	}
	if err := validateHostPort("offshore_address", cfg.OffshoreAddress); err != nil {
		return err
	}
	if cfg.DialTimeout < 0 {
		return fmt.Errorf("dial_timeout must not be negative")
	}
	if cfg.DispatchTimeout < time.Second {
		return fmt.Errorf("dispatch_timeout %v is below the 1s minimum", cfg.DispatchTimeout)
	}
	if cfg.DequeuePollInterval <= 0 {
		return fmt.Errorf("dequeue_poll_interval must be positive")
	}
	if cfg.MaxHeaderBytes < 0 {
		return fmt.Errorf("max_header_bytes must not be negative")
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limit.requests_per_second must be positive when enabled")
		}
		if cfg.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate_limit.burst must be positive when enabled")
		}
	}
	return nil
}

func validateOffshore(cfg *OffshoreConfig) error {
	if err := validateHostPort("listen_address", cfg.ListenAddress); err != nil {
		return err
	}
	if cfg.DialTimeout <= 0 {
		return fmt.Errorf("dial_timeout must be positive")
	}
	if cfg.ResponseIdleTimeout <= 0 {
		return fmt.Errorf("response_idle_timeout must be positive")
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) error {
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", cfg.Logging.Level)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format %q is not one of json, text", cfg.Logging.Format)
	}
	if cfg.Metrics.Enabled {
		if err := validateHostPort("metrics.listen_address", cfg.Metrics.ListenAddress); err != nil {
			return err
		}
	}
	return nil
}

func validateAudit(cfg *AuditConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SQLite.Path == "" {
		return fmt.Errorf("sqlite.path must not be empty when audit is enabled")
	}
	if cfg.BufferSize <= 0 {
		return fmt.Errorf("buffer_size must be positive")
	}
	if cfg.Retention.Days < 0 {
		return fmt.Errorf("retention.days must not be negative")
	}
	if cfg.Retention.MaxRecords < 0 {
		return fmt.Errorf("retention.max_records must not be negative")
	}
	if cfg.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			return fmt.Errorf("retention.schedule %q is not a valid cron expression: %w", cfg.Retention.Schedule, err)
		}
	}
	return nil
}

// validateHostPort checks that addr is a host:port pair net.Listen and
// net.Dial will accept.
func validateHostPort(field, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s %q is not a valid host:port: %w", field, addr, err)
	}
	return nil
}
