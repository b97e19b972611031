package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPort is used when no metrics port is configured.
const DefaultPort = 9090

// NewHTTPServer creates an HTTP server that exposes Prometheus metrics at /metrics.
func NewHTTPServer(address string, port int) *http.Server {
	if port == 0 {
		port = DefaultPort
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", address, port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
