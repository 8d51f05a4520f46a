package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/pipeline"
)

func watchCmd(configPath, logLevel *string) *cobra.Command {
	var (
		metricsAddr string
		debounce    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-enrich files as they change",
		Long: `Watch monitors the original corpus directory and re-enriches files as
they are created or modified. Pipeline metrics are exposed in Prometheus
format on the metrics address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath, *logLevel)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			runner, err := pipeline.NewRunner(cfg, logger)
			if err != nil {
				return err
			}

			registry := prometheus.NewRegistry()
			runner.SetMetrics(pipeline.NewMetrics(registry))

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			server := &http.Server{Addr: metricsAddr, Handler: mux}

			go func() {
				logger.Info("Metrics server started", "addr", metricsAddr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Metrics server failed", "error", err)
				}
			}()
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				_ = server.Shutdown(shutdownCtx)
			}()

			watcher, err := pipeline.NewWatcher(cfg, runner, pipeline.WatcherConfig{
				DebounceDelay: debounce,
				Logger:        logger,
			})
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}

			if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("Watch stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Prometheus metrics listen address")
	cmd.Flags().DurationVar(&debounce, "debounce", 250*time.Millisecond, "Delay before re-enriching changed files")
	return cmd
}
