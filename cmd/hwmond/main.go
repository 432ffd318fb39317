// hwmond is the hardware-monitoring daemon: it supervises the sensor
// sidecar process, collects baseline system statistics, and serves both
// to the presentation layer over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/luminsdev/hardware-monitoring/internal/config"
	"github.com/luminsdev/hardware-monitoring/pkg/api"
	"github.com/luminsdev/hardware-monitoring/pkg/sidecar"
	"github.com/luminsdev/hardware-monitoring/pkg/stats"
)

var (
	cfgFile    string
	listenAddr string
	sidecarBin string
)

var rootCmd = &cobra.Command{
	Use:   "hwmond",
	Short: "Hardware monitoring daemon with a sensor sidecar supervisor",
	Long: `hwmond supervises an external sensor sidecar process that samples
CPU/GPU temperatures and power draw, merges its readings into baseline
system statistics, and serves the result over HTTP.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.Flags().StringVar(&listenAddr, "listen", "", "API listen address (overrides config)")
	rootCmd.Flags().StringVar(&sidecarBin, "sidecar-binary", "", "sidecar executable path (overrides discovery)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Listen.Addr = listenAddr
	}
	if sidecarBin != "" {
		cfg.Sidecar.Binary = sidecarBin
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	sugar.Infow("starting hwmond",
		"listen", cfg.Listen.Addr,
		"health", cfg.Listen.HealthAddr)

	metrics := sidecar.NewPrometheusMetricsCollector("hwmon")

	opts := []sidecar.Option{
		sidecar.WithLogger(sugar),
		sidecar.WithMetricsCollector(metrics),
		sidecar.WithIntervalMillis(cfg.Sidecar.IntervalMillis),
	}
	if cfg.Sidecar.Binary != "" {
		opts = append(opts, sidecar.WithBinaryPath(cfg.Sidecar.Binary))
	} else {
		opts = append(opts, sidecar.WithResolver(
			sidecar.NewResolver(cfg.Sidecar.BinaryName, cfg.Sidecar.DevDir, sugar)))
	}
	handle := sidecar.Start(opts...)
	state := handle.State()

	monitor := stats.NewMonitor(sugar, cfg.Stats.TopProcesses)
	defer monitor.Close()

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	go monitor.Run(runCtx, time.Duration(cfg.Stats.RefreshSeconds)*time.Second)

	server := api.NewServer(state, monitor, metrics.Registry(), sugar)
	httpSrv := &http.Server{
		Addr:              cfg.Listen.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		sugar.Infow("API server listening", "addr", cfg.Listen.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("API server failed", "error", err)
		}
	}()

	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutines", healthcheck.GoroutineCountCheck(500))
	health.AddReadinessCheck("sidecar", func() error {
		status := state.Status()
		if status.Code == sidecar.StatusError {
			return fmt.Errorf("sidecar error: %s", status.Reason)
		}
		if state.IsStalled() {
			return errors.New("sidecar stalled")
		}
		return nil
	})
	healthSrv := &http.Server{
		Addr:              cfg.Listen.HealthAddr,
		Handler:           health,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		sugar.Infow("health server listening", "addr", cfg.Listen.HealthAddr)
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorw("health server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	sugar.Infow("shutdown signal received", "signal", sig)

	cancelRun()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("API server shutdown error", "error", err)
	}
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("health server shutdown error", "error", err)
	}
	if err := handle.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("sidecar shutdown error", "error", err)
	}

	sugar.Info("hwmond stopped")
	return nil
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}
