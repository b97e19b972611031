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

	"github.com/getsentry/sentry-go"

	"github.com/nontonanime/api/internal/api"
	"github.com/nontonanime/api/internal/client"
	"github.com/nontonanime/api/internal/config"
	grpcserver "github.com/nontonanime/api/internal/grpc"
	"github.com/nontonanime/api/internal/metrics"
)

const shutdownTimeout = 15 * time.Second

func main() {
	started := time.Now()
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Str("proxy_connection_string", cfg.ProxyConnectionString).
		Str("source_domain", cfg.SourceDomain).
		Str("resolver_domain", cfg.ResolverDomain).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Str("cache_type", cfg.Cache.Type).
		Msg("Application started with configuration")

	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		})
		if err != nil {
			logger.Error().Err(err).Msg("Failed to initialize Sentry, continuing without error reporting")
		} else {
			logger.Info().Str("environment", cfg.Sentry.Environment).Msg("Sentry error reporting enabled")
			defer sentry.Flush(2 * time.Second)
		}
	}

	scraper := client.NewClient(cfg)
	defer func() {
		if err := scraper.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close client")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	// Optional gRPC health endpoint for orchestrators
	if cfg.GRPC.Port > 0 {
		address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.GRPC.Port)
		listener, err := net.Listen("tcp", address)
		if err != nil {
			logger.Fatal().Err(err).Str("address", address).Msg("Failed to create gRPC listener")
		}

		grpcServer := grpcserver.NewGRPCServer(scraper)
		go grpcServer.WatchUpstream(ctx, config.Duration("grpc.probe_interval", cfg.GRPC.ProbeInterval, time.Minute))
		go func() {
			logger.Info().Str("address", address).Msg("Starting gRPC health server")
			if err := grpcServer.Serve(listener); err != nil {
				logger.Error().Err(err).Msg("gRPC server stopped")
			}
		}()
		defer grpcServer.Shutdown()
	}

	router := api.NewRouter(scraper, api.Options{Port: cfg.Server.Port, Started: started})
	httpServer := api.NewHTTPServer(cfg.Server.Address, cfg.Server.Port, router)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("address", httpServer.Addr).Msg("Starting HTTP API server")
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Failed to serve HTTP API")
		}
	case <-ctx.Done():
		logger.Info().Msg("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shutdown HTTP API server")
	}

	logger.Info().Msg("Server stopped gracefully")
}
