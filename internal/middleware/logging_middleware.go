package middleware

import (
	"time"

	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
	loggerKey       = "logger"

	maxRequestIDLen = 64
)

// LoggingMiddleware tags each request with an id and a request scoped logger,
// then writes one summary line once the handler chain returns.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		reqLog := logger.WithContext(map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"route":      route,
			"ip":         c.ClientIP(),
		})
		c.Set(loggerKey, reqLog)

		reqLog.Debug("Incoming request", map[string]interface{}{
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
		})

		c.Next()

		status := c.Writer.Status()
		summary := map[string]interface{}{
			"status_code": status,
			"latency_ms":  time.Since(start).Milliseconds(),
			"body_size":   c.Writer.Size(),
		}
		if len(c.Errors) > 0 {
			summary["errors"] = c.Errors.String()
		}

		switch {
		case status >= 500:
			var cause error
			if last := c.Errors.Last(); last != nil {
				cause = last.Err
			}
			reqLog.Error("Request completed", cause, summary)
		case status >= 400:
			reqLog.Warn("Request completed", summary)
		default:
			reqLog.Info("Request completed", summary)
		}
	}
}

// validRequestID accepts proxy ids made of URL safe characters only, so a
// client cannot inject arbitrary text into log lines or response headers.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

// GetLoggerFromContext returns the request logger, or the global one outside a request.
func GetLoggerFromContext(c *gin.Context) *logger.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return logger.Get()
}
