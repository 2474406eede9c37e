package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
	metrics "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Metrics"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestLogger tags each request with an ID, logs it and feeds the
// HTTP metrics.
func RequestLogger(log *logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	httpLog := log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		m.ObserveHTTP(c.Request.Method, route, status, elapsed.Seconds())

		event := httpLog.Logger.Info()
		switch {
		case status >= 500:
			event = httpLog.Logger.Error()
		case status >= 400:
			event = httpLog.Logger.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", elapsed).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// GetRequestID returns the ID assigned by RequestLogger
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
