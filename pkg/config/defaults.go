package config

import "time"

// Default values for configuration fields.
const (
	// Ship defaults
	DefaultShipListenAddress   = "127.0.0.1:8080"
	DefaultOffshoreAddress     = "127.0.0.1:9999"
	DefaultShipDialTimeout     = 10 * time.Second
	DefaultDispatchTimeout     = 60 * time.Second
	DefaultDequeuePollInterval = 1 * time.Second
	DefaultShipShutdownTimeout = 30 * time.Second
	DefaultShipMaxHeaderBytes  = 1048576 // 1MB
	DefaultRateLimitEnabled    = false
	DefaultRateLimitPerSecond  = 100.0
	DefaultRateLimitBurst      = 200

	// Offshore defaults
	DefaultOffshoreListenAddress  = "0.0.0.0:9999"
	DefaultDestinationDialTimeout = 30 * time.Second
	DefaultResponseIdleTimeout    = 5 * time.Second
	DefaultMaxFrameBytes          = uint32(64 << 20) // 64MB

	// Telemetry defaults
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "json"
	DefaultMetricsEnabled       = true
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsNamespace     = "seaway"
	DefaultMetricsSubsystem     = "relay"

	// Audit defaults
	DefaultAuditEnabled       = false
	DefaultAuditBufferSize    = 1000
	DefaultAuditSQLitePath    = "data/audit.db"
	DefaultAuditWALMode       = true
	DefaultAuditBusyTimeout   = 5 * time.Second
	DefaultAuditRetentionDays = 30
	DefaultAuditSchedule      = "0 3 * * *"
)

// ApplyDefaults fills in default values for any zero-valued configuration
// fields. Booleans whose default is true are handled by the YAML layer
// (see Load), since a zero bool is indistinguishable from an explicit
// false here.
func ApplyDefaults(cfg *Config) {
	// Ship
	if cfg.Ship.ListenAddress == "" {
		cfg.Ship.ListenAddress = DefaultShipListenAddress
	}
	if cfg.Ship.OffshoreAddress == "" {
		cfg.Ship.OffshoreAddress = DefaultOffshoreAddress
	}
	if cfg.Ship.DialTimeout == 0 {
		cfg.Ship.DialTimeout = DefaultShipDialTimeout
	}
	if cfg.Ship.DispatchTimeout == 0 {
		cfg.Ship.DispatchTimeout = DefaultDispatchTimeout
	}
	if cfg.Ship.DequeuePollInterval == 0 {
		cfg.Ship.DequeuePollInterval = DefaultDequeuePollInterval
	}
	if cfg.Ship.ShutdownTimeout == 0 {
		cfg.Ship.ShutdownTimeout = DefaultShipShutdownTimeout
	}
	if cfg.Ship.MaxHeaderBytes == 0 {
		cfg.Ship.MaxHeaderBytes = DefaultShipMaxHeaderBytes
	}
	if cfg.Ship.RateLimit.RequestsPerSecond == 0 {
		cfg.Ship.RateLimit.RequestsPerSecond = DefaultRateLimitPerSecond
	}
	if cfg.Ship.RateLimit.Burst == 0 {
		cfg.Ship.RateLimit.Burst = DefaultRateLimitBurst
	}

	// Offshore
	if cfg.Offshore.ListenAddress == "" {
		cfg.Offshore.ListenAddress = DefaultOffshoreListenAddress
	}
	if cfg.Offshore.DialTimeout == 0 {
		cfg.Offshore.DialTimeout = DefaultDestinationDialTimeout
	}
	if cfg.Offshore.ResponseIdleTimeout == 0 {
		cfg.Offshore.ResponseIdleTimeout = DefaultResponseIdleTimeout
	}
	if cfg.Offshore.MaxFrameBytes == 0 {
		cfg.Offshore.MaxFrameBytes = DefaultMaxFrameBytes
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}

	// Audit
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = DefaultAuditBufferSize
	}
	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.Audit.SQLite.BusyTimeout == 0 {
		cfg.Audit.SQLite.BusyTimeout = DefaultAuditBusyTimeout
	}
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = DefaultAuditRetentionDays
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = DefaultAuditSchedule
	}
}
