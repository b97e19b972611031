package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection/grpc_reflection_v1"

	"github.com/nontonanime/api/internal/models"
	"github.com/nontonanime/api/internal/testutil"
)

// serve starts srv on a random local port and returns a connected client.
func serve(t *testing.T, srv *Server) *grpc.ClientConn {
	t.Helper()

	lis, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.GracefulStop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func check(t *testing.T, conn *grpc.ClientConn, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("Health check for %q failed: %v", service, err)
	}
	return resp.Status
}

func TestNewGRPCServer_HealthCheck(t *testing.T) {
	srv := NewGRPCServer(&testutil.FakeClient{})
	conn := serve(t, srv)

	if status := check(t, conn, ""); status != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("Expected SERVING status, got %v", status)
	}
	if status := check(t, conn, UpstreamService); status != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("Expected SERVING status for upstream, got %v", status)
	}
}

func TestServer_ProbeTracksUpstream(t *testing.T) {
	healthy := true
	fake := &testutil.FakeClient{
		HomeFunc: func(context.Context) models.Envelope[[]models.CatalogEntry] {
			if healthy {
				return models.Ok([]models.CatalogEntry{})
			}
			return models.Fail[[]models.CatalogEntry](500, "failed to fetch home data", "status 503")
		},
	}
	srv := NewGRPCServer(fake)
	conn := serve(t, srv)

	healthy = false
	if got := srv.Probe(context.Background()); got != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("Expected NOT_SERVING from probe, got %v", got)
	}
	if status := check(t, conn, UpstreamService); status != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Errorf("Expected NOT_SERVING for upstream, got %v", status)
	}
	if status := check(t, conn, ""); status != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("Upstream failures must not change the overall status, got %v", status)
	}

	healthy = true
	srv.Probe(context.Background())
	if status := check(t, conn, UpstreamService); status != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("Expected SERVING after recovery, got %v", status)
	}
}

func TestServer_WatchUpstreamStopsWithContext(t *testing.T) {
	fake := &testutil.FakeClient{}
	srv := NewGRPCServer(fake)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.WatchUpstream(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WatchUpstream did not return after cancellation")
	}
	if len(fake.Calls()) < 2 {
		t.Errorf("Expected repeated probes, got %v", fake.Calls())
	}
}

func TestNewGRPCServer_ReflectionEnabled(t *testing.T) {
	conn := serve(t, NewGRPCServer(&testutil.FakeClient{}))

	reflectionClient := grpc_reflection_v1.NewServerReflectionClient(conn)
	stream, err := reflectionClient.ServerReflectionInfo(context.Background())
	if err != nil {
		t.Fatalf("Failed to create reflection stream: %v", err)
	}

	err = stream.Send(&grpc_reflection_v1.ServerReflectionRequest{
		MessageRequest: &grpc_reflection_v1.ServerReflectionRequest_ListServices{
			ListServices: "",
		},
	})
	if err != nil {
		t.Fatalf("Failed to send reflection request: %v", err)
	}

	resp, err := stream.Recv()
	if err != nil {
		t.Fatalf("Failed to receive reflection response: %v", err)
	}

	listResp := resp.GetListServicesResponse()
	if listResp == nil {
		t.Fatal("Expected list services response")
	}

	found := false
	for _, svc := range listResp.Service {
		if svc.Name == grpc_health_v1.Health_ServiceDesc.ServiceName {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected the health service to be registered")
	}
}

func TestNewGRPCServer_CalledMultipleTimes(t *testing.T) {
	// Metrics registration must happen once per process.
	srv1 := NewGRPCServer(&testutil.FakeClient{})
	srv2 := NewGRPCServer(&testutil.FakeClient{})

	if srv1 == nil || srv2 == nil {
		t.Fatal("Expected non-nil servers from multiple calls")
	}
}
