package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/portolan-hq/tilegate/pkg/bridge"
	"github.com/portolan-hq/tilegate/pkg/chartsync"
	"github.com/portolan-hq/tilegate/pkg/cli"
	"github.com/portolan-hq/tilegate/pkg/config"
	"github.com/portolan-hq/tilegate/pkg/logbridge"
	"github.com/portolan-hq/tilegate/pkg/server"
	"github.com/portolan-hq/tilegate/pkg/stats"
	"github.com/portolan-hq/tilegate/pkg/supervisor"
	"github.com/portolan-hq/tilegate/pkg/telemetry/health"
	"github.com/portolan-hq/tilegate/pkg/telemetry/logging"
	"github.com/portolan-hq/tilegate/pkg/telemetry/metrics"
	"github.com/portolan-hq/tilegate/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	offline       bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the tile server",
	Long: `Start the TileGate server.

The server merges the configured chart documents, builds the embedded
tile engine from the result, and serves tiles plus the management API
until interrupted. Chart configuration changes on disk or in the sync
repository trigger a rebuild without a restart.`,
	RunE: runServer,
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "listen address (overrides config)")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate configuration and exit")
	runCmd.Flags().BoolVar(&runFlags.offline, "offline", false, "build the offline chart variant")

	rootCmd.AddCommand(runCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Command line flags override file settings.
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if runFlags.offline {
		cfg.Charts.Offline = true
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	ctx := cli.SetupSignalHandler()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("init tracing: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()
	if tracer.Enabled() {
		fmt.Println("✓ Tracing initialized")
	}

	elog := logbridge.New(logbridge.Options{Sink: logger.Slog()})

	// With sync enabled the chart configuration lives in the cloned
	// repository; a relative config path is resolved against it.
	chartConfigPath := cfg.Charts.ConfigPath
	var repo *chartsync.Repository
	if cfg.Sync.Enabled {
		repo, err = chartsync.NewRepository(&cfg.Sync)
		if err != nil {
			return cli.NewConfigError("sync", err.Error())
		}
		slog.Info("cloning chart repository",
			"repository", cfg.Sync.Repository,
			"branch", cfg.Sync.Branch,
		)
		if err := repo.Clone(ctx); err != nil {
			return cli.NewCommandError("run", fmt.Errorf("clone chart repository: %w", err))
		}
		if !filepath.IsAbs(chartConfigPath) {
			chartConfigPath = filepath.Join(repo.ChartDir(), chartConfigPath)
		}
		fmt.Println("✓ Chart repository synced")
		if info, err := repo.CurrentCommit(); err == nil {
			slog.Info("chart repository ready", "commit", info.SHA, "author", info.Author)
		}
	}

	sup, err := supervisor.New(supervisor.Config{
		ConfigPath: chartConfigPath,
		WorkDir:    cfg.Charts.WorkDir,
		URLPrefix:  cfg.Charts.URLPrefix,
		EngineLog:  elog,
		Logger:     logger.Slog(),
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer sup.Close()

	// A broken chart configuration at startup is not fatal. The server
	// comes up answering 503 for tiles until a rescan succeeds.
	if _, err := sup.Rebuild(false, cfg.Charts.Offline); err != nil {
		slog.Error("initial chart build failed", "error", err)
		fmt.Printf("✗ Chart engine not ready: %v\n", err)
	} else {
		fmt.Printf("✓ Chart engine ready (%d maps)\n", len(sup.Maps()))
	}
	if collector != nil {
		collector.SetEngineUp(sup.Status().Running)
		collector.SetLayerCount(len(sup.Maps()))
	}

	rescan := func(reason string, changedOnly bool) error {
		_, span := tracer.Start(context.Background(), "tilegate.engine.rebuild")
		defer span.End()

		start := time.Now()
		ran, err := sup.Rebuild(changedOnly, cfg.Charts.Offline)

		tracing.SetRebuildAttributes(span, reason, len(sup.Maps()))
		switch {
		case err != nil:
			tracing.SetErrorAttributes(span, err, "rebuild")
		case ran:
			tracing.AddEvent(span, "application_swapped")
		}

		if collector != nil {
			collector.SetEngineUp(sup.Status().Running)
			collector.SetLayerCount(len(sup.Maps()))
			switch {
			case err != nil:
				collector.RecordRebuild("failure", time.Since(start))
			case !ran:
				collector.RecordRebuild("skipped", time.Since(start))
			default:
				collector.RecordRebuild("success", time.Since(start))
			}
		}
		return err
	}

	if cfg.Charts.Watch {
		fw, err := supervisor.NewWatcher(filepath.Dir(chartConfigPath), cfg.Charts.WatchDebounce, logger.Slog())
		if err != nil {
			slog.Warn("chart file watcher unavailable", "error", err)
		} else {
			go func() {
				if werr := fw.Watch(ctx, func() error { return rescan("config changed", true) }); werr != nil {
					slog.Error("chart file watcher stopped", "error", werr)
				}
			}()
			defer fw.Stop()
			fmt.Println("✓ Chart file watcher started")
		}
	}

	sched := supervisor.NewScheduler(logger.Slog())
	schedule := cfg.Charts.RescanSchedule
	if schedule == config.RescanDisabled {
		schedule = ""
	}
	if err := sched.Start(ctx, schedule, func() error { return rescan("schedule", true) }); err != nil {
		return cli.NewConfigError("charts.rescan_schedule", err.Error())
	}
	defer sched.Stop()

	var syncWatcher *chartsync.Watcher
	if repo != nil && cfg.Sync.Poll.Enabled {
		syncWatcher = chartsync.NewWatcher(repo, cfg.Sync.Poll.Interval, func(string) error {
			return rescan("chart sync", false)
		})
		syncWatcher.SetLogger(logger.Slog())
		if collector != nil {
			syncWatcher.SetCollector(collector)
		}
		if err := syncWatcher.Start(ctx); err != nil {
			slog.Warn("chart sync watcher not started", "error", err)
			syncWatcher = nil
		} else {
			defer syncWatcher.Stop()
			fmt.Println("✓ Chart sync watcher started")
		}
	}

	store, err := stats.New(&cfg.Stats)
	if err != nil {
		return cli.NewConfigError("stats", err.Error())
	}
	defer store.Close()
	if cfg.Stats.Enabled {
		fmt.Printf("✓ Statistics store initialized (%s)\n", cfg.Stats.Backend)
	}

	checker := health.New(&cfg.Telemetry.Health)
	checker.RegisterCheck("engine", func(ctx context.Context) error {
		if !sup.Status().Running {
			return errors.New("no tile application available")
		}
		return nil
	})
	checker.RegisterCheck("charts", func(ctx context.Context) error {
		_, err := os.Stat(chartConfigPath)
		return err
	})
	if sq, ok := store.(*stats.SQLiteStore); ok {
		checker.RegisterCheck("stats", sq.Ping)
	}
	checker.RegisterCheck("sync", func(ctx context.Context) error {
		if syncWatcher == nil {
			return health.ErrDisabled
		}
		if !syncWatcher.IsRunning() {
			return errors.New("sync watcher not running")
		}
		return nil
	})

	_, serverPort, err := net.SplitHostPort(cfg.Server.ListenAddress)
	if err != nil {
		serverPort = ""
	}
	reqBridge := bridge.New(bridge.Options{
		Environ: bridge.Synthesizer{
			Prefix:     cfg.Charts.URLPrefix,
			ServerName: cfg.Server.Name,
			ServerPort: serverPort,
			Software:   "tilegate/" + Version,
		},
		Log: logger.Slog(),
	})

	srv := server.NewServer(server.Options{
		Config:    cfg,
		Host:      sup,
		Bridge:    reqBridge,
		Stats:     store,
		Metrics:   collector,
		Tracer:    tracer,
		Health:    checker,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})

	scheme := "http"
	if cfg.Server.TLS.Enabled {
		scheme = "https"
	}
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  Tiles:   %s://%s%s/\n", scheme, cfg.Server.ListenAddress, cfg.Charts.URLPrefix)
	fmt.Printf("  Status:  %s://%s/api/status\n", scheme, cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("  Metrics: %s://%s%s\n", scheme, cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Println("✓ Server stopped")
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("TileGate v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("chart configuration",
		"path", cfg.Charts.ConfigPath,
		"url_prefix", cfg.Charts.URLPrefix,
		"offline", cfg.Charts.Offline,
	)
	if cfg.Sync.Enabled {
		slog.Debug("chart sync enabled",
			"repository", cfg.Sync.Repository,
			"branch", cfg.Sync.Branch,
		)
	}
	if cfg.Stats.Enabled {
		slog.Debug("statistics enabled", "backend", cfg.Stats.Backend)
	}
}
