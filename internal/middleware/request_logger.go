package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/logger"
)

// RequestLogger tags every request with an X-Request-ID and logs its outcome.
// An incoming X-Request-ID header is kept.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequestID, requestID)
		c.Header(constants.HeaderRequestID, requestID)

		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		reqLog := log.WithRequestID(requestID)
		if userID, ok := GetUserID(c); ok {
			reqLog = reqLog.WithUser(userID)
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			reqLog.Error("request completed", fields...)
		case status >= 400:
			reqLog.Warn("request completed", fields...)
		default:
			reqLog.Info("request completed", fields...)
		}
	}
}

// RequestLog returns a logger carrying the request id and, once the request is
// authenticated, the user id. For use in handlers.
func RequestLog(c *gin.Context, log *logger.Logger) *logger.Logger {
	reqLog := log.WithRequestID(c.GetString(constants.ContextKeyRequestID))
	if userID, ok := GetUserID(c); ok {
		reqLog = reqLog.WithUser(userID)
	}
	return reqLog
}
