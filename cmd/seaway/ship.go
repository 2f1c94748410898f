package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"harborlink/seaway/pkg/audit"
	"harborlink/seaway/pkg/config"
	"harborlink/seaway/pkg/relay"
	"harborlink/seaway/pkg/ship"
	"harborlink/seaway/pkg/telemetry/logging"
	"harborlink/seaway/pkg/telemetry/metrics"
)

var shipFlags struct {
	listenAddress   string
	offshoreAddress string
	logLevel        string
	watchConfig     bool
}

var shipCmd = &cobra.Command{
	Use:   "ship",
	Short: "Start the ship-side proxy",
	Long: `Start the local multiplexing proxy.

The ship proxy accepts plain HTTP requests from local clients, dials the
offshore executor exactly once at startup, and relays every request over
that single connection in strict FIFO order. If the startup dial fails
the ship refuses to start; if the link breaks later, queued and new
requests fail fast with a gateway error.

Examples:
  # Start with default config
  seaway ship

  # Override the local listen address
  seaway ship --listen 0.0.0.0:8080

  # Point at a different offshore executor
  seaway ship --offshore relay.example.com:9999`,
	RunE: runShip,
}

func init() {
	rootCmd.AddCommand(shipCmd)

	shipCmd.Flags().StringVarP(&shipFlags.listenAddress, "listen", "l", "", "override listen address")
	shipCmd.Flags().StringVar(&shipFlags.offshoreAddress, "offshore", "", "override offshore executor address")
	shipCmd.Flags().StringVar(&shipFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	shipCmd.Flags().BoolVar(&shipFlags.watchConfig, "watch-config", false, "hot-reload the reloadable config subset on file changes")
}

func runShip(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if shipFlags.listenAddress != "" {
		cfg.Ship.ListenAddress = shipFlags.listenAddress
	}
	if shipFlags.offshoreAddress != "" {
		cfg.Ship.OffshoreAddress = shipFlags.offshoreAddress
	}
	if shipFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = shipFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var relayMetrics *metrics.RelayMetrics
	var dispatchMetrics *metrics.DispatchMetrics
	if cfg.Telemetry.Metrics.Enabled {
		collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		relayMetrics = collector.Relay()
		dispatchMetrics = collector.Dispatch()
		go collector.Serve(ctx, cfg.Telemetry.Metrics.ListenAddress)
	}

	recorder, err := setupAudit(ctx, &cfg.Audit)
	if err != nil {
		return err
	}
	defer recorder.Close()

	if shipFlags.watchConfig {
		watcher, err := config.NewWatcher(cfgFile, 0, func(c *config.Config) {
			logging.SetLevel(c.Telemetry.Logging.Level)
		})
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	queue := relay.NewQueue()
	pump := relay.NewPump(relay.PumpConfig{
		OffshoreAddress: cfg.Ship.OffshoreAddress,
		DialTimeout:     cfg.Ship.DialTimeout,
		PollInterval:    cfg.Ship.DequeuePollInterval,
	}, queue, relayMetrics)

	dispatcher := ship.NewDispatcher(queue, cfg.Ship.DispatchTimeout, cfg.Ship.RateLimit,
		dispatchMetrics, recorder)

	server := ship.NewServer(&cfg.Ship, pump, dispatcher)
	return server.Start(ctx)
}

// setupAudit wires the audit trail when enabled. A nil recorder is valid
// and records nothing.
func setupAudit(ctx context.Context, cfg *config.AuditConfig) (*audit.Recorder, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	storage, err := audit.NewSQLiteStorage(audit.SQLiteConfig{
		Path:        cfg.SQLite.Path,
		WALMode:     cfg.SQLite.WALMode,
		BusyTimeout: cfg.SQLite.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audit storage: %w", err)
	}

	pruner := audit.NewPruner(storage, audit.RetentionConfig{
		Days:       cfg.Retention.Days,
		Schedule:   cfg.Retention.Schedule,
		MaxRecords: cfg.Retention.MaxRecords,
	})
	scheduler := audit.NewScheduler(pruner)
	if err := scheduler.Start(ctx); err != nil {
		storage.Close()
		return nil, err
	}

	return audit.NewRecorder(storage, cfg.BufferSize), nil
}
