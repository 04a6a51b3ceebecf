package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/torqcare/torqcare-diagnosis/internal/api"
	"github.com/torqcare/torqcare-diagnosis/internal/config"
	"github.com/torqcare/torqcare-diagnosis/internal/engine"
	"github.com/torqcare/torqcare-diagnosis/internal/features"
	"github.com/torqcare/torqcare-diagnosis/internal/metrics"
	"github.com/torqcare/torqcare-diagnosis/internal/predictors"
	"github.com/torqcare/torqcare-diagnosis/internal/services"
	"github.com/torqcare/torqcare-diagnosis/internal/store"
	"github.com/torqcare/torqcare-diagnosis/internal/utils"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagnosis requests over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file")
	return cmd
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting diagnosis engine", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	// A missing or mismatched artifact set is fatal: the process refuses to
	// serve diagnoses rather than degrade silently.
	bank, err := predictors.Load(cfg.Artifacts.Dir, logger)
	if err != nil {
		logger.Error("failed to load model artifacts",
			slog.String("dir", cfg.Artifacts.Dir), slog.Any("error", err))
		return err
	}
	extractor, err := features.NewExtractor(bank.Schema())
	if err != nil {
		return err
	}

	historyStore, err := store.New(logger, cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open history store",
			slog.String("path", cfg.Store.Path), slog.Any("error", err))
		return err
	}
	defer historyStore.Close()

	composer := engine.NewComposer(logger, extractor, bank, cfg.Policy)
	service := services.NewDiagnosisService(logger, composer, historyStore)

	server, err := api.NewServer(cfg.Server, logger, service)
	if err != nil {
		logger.Error("failed to create HTTP server", slog.Any("error", err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	if cfg.Store.PruneInterval > 0 && cfg.Store.HistoryWindow > 0 {
		go pruneLoop(ctx, logger, historyStore, cfg.Store.PruneInterval, cfg.Store.HistoryWindow)
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("HTTP server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("diagnosis engine stopped")
	return nil
}

// pruneLoop keeps the reading history bounded to the configured window.
func pruneLoop(ctx context.Context, logger *slog.Logger, historyStore *store.Store, interval, window time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := historyStore.PruneReadings(ctx, window); err != nil {
				logger.Warn("history prune failed", slog.Any("error", err))
			}
		}
	}
}
