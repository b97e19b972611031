package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/nontonanime/api/internal/config"
	"github.com/nontonanime/api/internal/models"
)

// requestLogger logs one line per request through the shared zerolog logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger := config.GetLogger()
		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// recovery turns a handler panic into a 500 envelope and reports it to Sentry.
func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			logger := config.GetLogger()
			logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Handler panicked")

			hub := sentry.CurrentHub().Clone()
			hub.Scope().SetRequest(c.Request)
			hub.Recover(recovered)

			c.AbortWithStatusJSON(http.StatusInternalServerError,
				models.Fail[any](http.StatusInternalServerError, "internal server error", fmt.Sprint(recovered)))
		}()
		c.Next()
	}
}

// reportServerErrors sends the errors attached to 5xx responses to Sentry.
// Without a configured DSN the capture is a no-op.
func reportServerErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < http.StatusInternalServerError || len(c.Errors) == 0 {
			return
		}

		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		hub.Scope().SetTag("route", c.FullPath())
		for _, ginErr := range c.Errors {
			hub.CaptureException(ginErr.Err)
		}
	}
}
