package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs HTTP requests. Successful requests are logged at
// debug, client errors at warn, and server errors at error level.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		requestID := GetRequestID(c)
		status := c.Writer.Status()
		latency := time.Since(start)

		attrs := []any{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", latency),
		}

		switch {
		case status >= 500:
			logger.Error("http_request_error", attrs...)
		case status >= 400:
			logger.Warn("http_request_warning", attrs...)
		default:
			logger.Debug("http_request", attrs...)
		}
	}
}
