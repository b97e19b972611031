package grpc

import (
	"context"
	"sync"
	"time"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/nontonanime/api/internal/client"
	"github.com/nontonanime/api/internal/config"
)

// UpstreamService is the health service name that tracks whether the source site answers.
const UpstreamService = "nontonanime.v1.Upstream"

var (
	grpcServerMetrics         *grpcprom.ServerMetrics
	registerServerMetricsOnce sync.Once
)

// Server is the gRPC health endpoint for orchestrators. The overall status is SERVING
// until Shutdown; UpstreamService follows the last upstream probe.
type Server struct {
	*grpc.Server
	health *health.Server
	client client.Client
}

// NewGRPCServer creates a gRPC server with Prometheus metrics, health checking, and reflection.
func NewGRPCServer(c client.Client) *Server {
	// Set up Prometheus gRPC server metrics once per process
	registerServerMetricsOnce.Do(func() {
		grpcServerMetrics = grpcprom.NewServerMetrics(
			grpcprom.WithServerHandlingTimeHistogram(),
		)
		prometheus.MustRegister(grpcServerMetrics)
	})

	srvMetrics := grpcServerMetrics

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(srvMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(srvMetrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(UpstreamService, grpc_health_v1.HealthCheckResponse_SERVING)

	// Register reflection service for tools like grpcurl
	reflection.Register(grpcServer)

	srvMetrics.InitializeMetrics(grpcServer)

	return &Server{
		Server: grpcServer,
		health: healthServer,
		client: c,
	}
}

// Probe fetches the home page once and publishes the result as the UpstreamService status.
func (s *Server) Probe(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	logger := config.GetLogger()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if env := s.client.Home(ctx); !env.Success {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		logger.Warn().Int("code", env.Code).Str("error", env.Error).Str("details", env.Details).Msg("Upstream probe failed")
	}

	s.health.SetServingStatus(UpstreamService, status)
	return status
}

// WatchUpstream probes the source site every interval until ctx is done.
func (s *Server) WatchUpstream(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Shutdown reports NOT_SERVING for every service, then stops accepting RPCs and waits for pending ones.
func (s *Server) Shutdown() {
	s.health.Shutdown()
	s.GracefulStop()
}
