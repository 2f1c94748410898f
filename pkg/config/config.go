package config

import "time"

// Config is the root configuration structure for Seaway. It contains the
// ship-side (local multiplexer) and offshore-side (remote executor)
// sections plus the shared telemetry and audit settings. One file serves
// both subcommands; each side reads only its own section.
type Config struct {
	// Ship contains configuration for the local multiplexing proxy.
	Ship ShipConfig `yaml:"ship"`

	// Offshore contains configuration for the remote executor.
	Offshore OffshoreConfig `yaml:"offshore"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Audit contains the exchange audit trail configuration.
	Audit AuditConfig `yaml:"audit"`
}

// ShipConfig contains configuration for the ship-side proxy: the local
// HTTP listener, the single upstream link, and dispatch behavior.
type ShipConfig struct {
	// ListenAddress is the address the local HTTP proxy listens on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// OffshoreAddress is the host:port of the offshore executor that the
	// one persistent upstream connection is dialed to.
	// Default: "127.0.0.1:9999"
	OffshoreAddress string `yaml:"offshore_address"`

	// DialTimeout bounds the startup dial to the offshore executor. The
	// ship refuses to start if this dial fails; there is no retry.
	// Default: 10s
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// DispatchTimeout is how long a client request waits for its relayed
	// response before the client gets a 504.
	// Default: 60s
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`

	// DequeuePollInterval bounds each blocking dequeue in the upstream
	// pump so it can interleave shutdown checks.
	// Default: 1s
	DequeuePollInterval time.Duration `yaml:"dequeue_poll_interval"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown of the local listener.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits how much of a client request header the
	// listener will parse.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// RateLimit optionally throttles accepted client requests.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig contains the optional token-bucket limit applied to
// client requests before they are enqueued.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is applied.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// RequestsPerSecond is the sustained refill rate of the bucket.
	// Default: 100
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the bucket capacity.
	// Default: 200
	Burst int `yaml:"burst"`
}

// OffshoreConfig contains configuration for the remote executor.
type OffshoreConfig struct {
	// ListenAddress is the address the executor accepts the one upstream
	// connection on.
	// Default: "0.0.0.0:9999"
	ListenAddress string `yaml:"listen_address"`

	// DialTimeout bounds each outbound connection to a destination
	// server.
	// Default: 30s
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// ResponseIdleTimeout is the inactivity window after which a
	// destination response is considered complete. Running out of bytes
	// within this window terminates collection; it is not an error.
	// Default: 5s
	ResponseIdleTimeout time.Duration `yaml:"response_idle_timeout"`

	// MaxFrameBytes caps the payload size of inbound frames. Oversized
	// frames are drained and skipped rather than buffered. Zero means
	// the full 32-bit frame length range is accepted.
	// Default: 67108864 (64MB)
	MaxFrameBytes uint32 `yaml:"max_frame_bytes"`
}

// TelemetryConfig contains observability configuration shared by both
// sides.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the dedicated address for the /metrics endpoint.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Namespace is the Prometheus metric namespace.
	// Default: "seaway"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	// Default: "relay"
	Subsystem string `yaml:"subsystem"`
}

// AuditConfig contains configuration for the exchange audit trail.
type AuditConfig struct {
	// Enabled controls whether exchanges are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// BufferSize is the async recorder buffer; records are dropped (and
	// counted) when it is full rather than blocking the relay path.
	// Default: 1000
	BufferSize int `yaml:"buffer_size"`

	// SQLite contains the storage backend settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention contains the pruning settings.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains settings for the SQLite audit store.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// WALMode enables write-ahead logging for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long a statement waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains settings for scheduled audit pruning.
type RetentionConfig struct {
	// Days is how long records are kept. Zero disables age pruning.
	// Default: 30
	Days int `yaml:"days"`

	// Schedule is a standard cron expression for pruning runs. Empty
	// disables the scheduler.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`

	// MaxRecords caps the table size regardless of age. Zero disables.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}
