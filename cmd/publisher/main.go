// Package main runs the SharePoint list publisher as a gRPC service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nucleus/sharepoint-publisher/internal/config"
	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
	"github.com/nucleus/sharepoint-publisher/internal/host"
	"github.com/nucleus/sharepoint-publisher/internal/logging"
	"github.com/nucleus/sharepoint-publisher/internal/sink"

	// Registers the http.sharepoint publisher factory.
	"github.com/nucleus/sharepoint-publisher/internal/connector/sharepoint"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "publisher <listener_address>",
		Short: "Publish SharePoint lists as shapes over gRPC",
		Long: `publisher exposes the lists of a SharePoint site as a catalog of shapes and
streams their items as upsert data points to the calling host.

Examples:
  # Listen on a local port
  publisher 127.0.0.1:50051

  # Mirror data points to NATS as well
  SPP_SINK_KIND=nats SPP_SINK_NATS_URL=nats://localhost:4222 publisher :50051`,
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, args[0], configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	return cmd
}

func run(ctx context.Context, address, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	publisher, err := endpoint.DefaultRegistry().Create(sharepoint.TemplateID, endpoint.Dependencies{
		Logger: logger,
		Client: cfg.ClientOptions(),
	})
	if err != nil {
		return err
	}
	defer publisher.Close()

	downstream, closeSink, err := sink.Open(ctx, cfg.Sink, logger)
	if err != nil {
		return fmt.Errorf("open %s sink: %w", cfg.Sink.Kind, err)
	}
	defer func() {
		if err := closeSink(); err != nil {
			logger.Warn(context.Background(), "closing sink", zap.Error(err))
		}
	}()

	lis, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	if cfg.Metrics.Address != "" {
		metricsSrv := serveMetrics(ctx, cfg.Metrics.Address, logger)
		defer metricsSrv.Close()
	}

	srv := host.NewServer(host.NewService(publisher, downstream, logger), logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(lis) }()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	srv.Shutdown(shutdownCtx)
	return nil
}

func serveMetrics(ctx context.Context, address string, logger *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "metrics server failed", zap.Error(err))
		}
	}()
	logger.Info(ctx, "metrics listening", zap.String("address", address))
	return srv
}
