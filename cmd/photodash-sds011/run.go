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

	"github.com/hjkoskel/sds011dash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var simulate bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start polling the sensor",
	RunE:  runPoller,
}

func openSource(cfg *sds011dash.Config) sds011dash.ByteSource {
	if cfg.Simulate {
		return sds011dash.NewSimSource(*cfg.Sim, time.Now().UnixNano())
	}
	return sds011dash.NewLinuxConn(cfg.Device)
}

func runPoller(cmd *cobra.Command, args []string) error {
	var overrides []sds011dash.Override
	if simulate {
		overrides = append(overrides, func(c *sds011dash.Config) { c.Simulate = true })
	}
	cfg, err := sds011dash.LoadConfig(configPath, overrides...)
	if err != nil {
		return err
	}
	logger, logFile, err := sds011dash.NewLogger(cfg.Log, verbose, os.Stderr)
	if err != nil {
		return err
	}
	defer logFile.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := sds011dash.NewMetrics(reg)
	board := sds011dash.NewStatusBoard()

	client := sds011dash.NewDashboardClient(cfg.Endpoint, cfg.RequestTimeoutSeconds.Duration())
	source := openSource(cfg)
	defer source.Close()

	quiet := sds011dash.NewQuietHours(client, logger, metrics)
	reporter := sds011dash.NewReporter(client, logger, metrics, board)
	poller := sds011dash.NewPoller(cfg.PollSettings(), source, quiet, reporter, sds011dash.SystemClock{}, logger, metrics, board)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Status.Addr != "" {
		server := &http.Server{
			Addr:              cfg.Status.Addr,
			Handler:           sds011dash.NewStatusRouter(board, reg, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("status server listening", "addr", cfg.Status.Addr)
			if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
				logger.Error("status server failed", "error", errServe)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("starting", "endpoint", client.Endpoint(), "device", cfg.Device, "simulate", cfg.Simulate)
	if errRun := poller.Run(ctx); errRun != nil {
		logger.Error("poller failed", "error", errRun)
		return fmt.Errorf("sensor: %w", errRun)
	}
	logger.Info("stopped")
	return nil
}

func init() {
	runCmd.Flags().BoolVar(&simulate, "simulate", false, "Use simulated sensor instead of serial device")
	rootCmd.AddCommand(runCmd)
}
