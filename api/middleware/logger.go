package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request ID back to the caller
const RequestIDHeader = "X-Request-ID"

// ErrorLogger receives failed requests for the error log
type ErrorLogger interface {
	LogAppError(msg string, fields ...zap.Field)
}

// Logger returns a gin middleware that tags each request with an ID and
// logs it once finished. Server errors also go to errLog when set.
func Logger(log *zap.Logger, errLog ErrorLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Warn("HTTP request", fields...)
			if errLog != nil {
				errLog.LogAppError("HTTP error response", fields...)
			}
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
