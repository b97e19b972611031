// Package api exposes the scraping client over HTTP with gin.
//
// Every scraper route answers with the operation's envelope and uses the
// envelope code as HTTP status.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nontonanime/api/internal/client"
)

// Options configures the router
type Options struct {
	// Port is reported by /health.
	Port int
	// Started is the process start time used for the uptime in /health.
	Started time.Time
}

// NewRouter builds the gin engine serving c.
func NewRouter(c client.Client, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if opts.Started.IsZero() {
		opts.Started = time.Now()
	}
	h := &handler{client: c, port: opts.Port, started: opts.Started}

	router := gin.New()
	router.Use(requestLogger(), recovery(), reportServerErrors())

	router.GET("/", h.index)
	router.GET("/health", h.health)

	scraper := router.Group("/api")
	scraper.GET("/home", h.home)
	scraper.GET("/search", h.search)
	scraper.GET("/detail", h.detail)
	scraper.GET("/download", h.download)

	router.NoRoute(h.notFound)
	router.NoMethod(h.notFound)

	return router
}

// NewHTTPServer wraps router in an http.Server listening on address:port.
// The write timeout leaves room for a full download resolution.
func NewHTTPServer(address string, port int, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", address, port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}
