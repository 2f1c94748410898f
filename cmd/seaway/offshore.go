package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"harborlink/seaway/pkg/config"
	"harborlink/seaway/pkg/offshore"
	"harborlink/seaway/pkg/telemetry/logging"
	"harborlink/seaway/pkg/telemetry/metrics"
)

var offshoreFlags struct {
	listenAddress string
	logLevel      string
	watchConfig   bool
}

var offshoreCmd = &cobra.Command{
	Use:   "offshore",
	Short: "Start the offshore executor",
	Long: `Start the remote executor.

The offshore executor accepts the single persistent connection from a
ship proxy and services framed requests off it sequentially: each request
is executed against its real destination server and the response is
framed back before the next request is read. Destination failures are
answered with synthesized HTTP errors; they never close the shared link.

Examples:
  # Start with default config
  seaway offshore

  # Override the listen address
  seaway offshore --listen 0.0.0.0:9999`,
	RunE: runOffshore,
}

func init() {
	rootCmd.AddCommand(offshoreCmd)

	offshoreCmd.Flags().StringVarP(&offshoreFlags.listenAddress, "listen", "l", "", "override listen address")
	offshoreCmd.Flags().StringVar(&offshoreFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	offshoreCmd.Flags().BoolVar(&offshoreFlags.watchConfig, "watch-config", false, "hot-reload the reloadable config subset on file changes")
}

func runOffshore(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if offshoreFlags.listenAddress != "" {
		cfg.Offshore.ListenAddress = offshoreFlags.listenAddress
	}
	if offshoreFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = offshoreFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var executorMetrics *metrics.ExecutorMetrics
	if cfg.Telemetry.Metrics.Enabled {
		collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		executorMetrics = collector.Executor()
		go collector.Serve(ctx, cfg.Telemetry.Metrics.ListenAddress)
	}

	recorder, err := setupAudit(ctx, &cfg.Audit)
	if err != nil {
		return err
	}
	defer recorder.Close()

	if offshoreFlags.watchConfig {
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

	executor := offshore.NewExecutor(&cfg.Offshore, executorMetrics, recorder)
	server := offshore.NewServer(&cfg.Offshore, executor, executorMetrics)
	return server.Start(ctx)
}
