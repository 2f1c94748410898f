package config

import (
	"strings"
	"testing"
)

// validConfig returns a configuration that passes validation, for tests to
// break one field at a time.
func validConfig() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Audit.SQLite.WALMode = DefaultAuditWALMode
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("default configuration failed validation: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty ship listen address",
			mutate:  func(c *Config) { c.Ship.ListenAddress = "" },
			wantErr: "listen_address must not be empty",
		},
		{
			name:    "ship listen address without port",
			mutate:  func(c *Config) { c.Ship.ListenAddress = "localhost" },
			wantErr: "not a valid host:port",
		},
		{
			name:    "bad offshore address",
			mutate:  func(c *Config) { c.Ship.OffshoreAddress = "::bad::" },
			wantErr: "offshore_address",
		},
		{
			name:    "dispatch timeout below minimum",
			mutate:  func(c *Config) { c.Ship.DispatchTimeout = 1 },
			wantErr: "dispatch_timeout",
		},
		{
			name: "rate limit enabled with zero rate",
			mutate: func(c *Config) {
				c.Ship.RateLimit.Enabled = true
				c.Ship.RateLimit.RequestsPerSecond = 0
			},
			wantErr: "requests_per_second must be positive",
		},
		{
			name:    "negative offshore dial timeout",
			mutate:  func(c *Config) { c.Offshore.DialTimeout = -1 },
			wantErr: "dial_timeout must be positive",
		},
		{
			name:    "zero response idle timeout",
			mutate:  func(c *Config) { c.Offshore.ResponseIdleTimeout = 0 },
			wantErr: "response_idle_timeout must be positive",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name: "metrics enabled without address",
			mutate: func(c *Config) {
				c.Telemetry.Metrics.Enabled = true
				c.Telemetry.Metrics.ListenAddress = ""
			},
			wantErr: "metrics.listen_address",
		},
		{
			name: "audit enabled without path",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.SQLite.Path = ""
			},
			wantErr: "sqlite.path",
		},
		{
			name: "bad retention schedule",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.Retention.Schedule = "every day at dawn"
			},
			wantErr: "retention.schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_DisabledSectionsSkipped(t *testing.T) {
	cfg := validConfig()
	// Disabled sections must not be validated: garbage in them is fine.
	cfg.Telemetry.Metrics.Enabled = false
	cfg.Telemetry.Metrics.ListenAddress = ""
	cfg.Audit.Enabled = false
	cfg.Audit.SQLite.Path = ""
	cfg.Audit.BufferSize = 0

	if err := Validate(cfg); err != nil {
		t.Fatalf("disabled sections were validated: %v", err)
	}
}
