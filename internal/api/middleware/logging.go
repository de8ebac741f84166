package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// LogApi writes one structured access log line per request
func LogApi(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"clientIP", c.ClientIP(),
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"userAgent", c.Request.UserAgent(),
			"latency", time.Since(start),
			"proto", c.Request.Proto,
		}
		if userID := c.GetString(UserIDKey); userID != "" {
			attrs = append(attrs, "userID", userID)
		}
		if errMsg := c.Errors.ByType(gin.ErrorTypePrivate).String(); errMsg != "" {
			attrs = append(attrs, "error", errMsg)
		}

		switch {
		case status >= 500:
			log.Error("API request", attrs...)
		case status >= 400:
			log.Warn("API request", attrs...)
		default:
			log.Info("API request", attrs...)
		}
	}
}
