package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/carmarket/pkg/logger"
	"go.uber.org/zap"
)

var quietPaths = map[string]bool{
	"/healthz":      true,
	"/health/ready": true,
	"/metrics":      true,
}

// RequestLogger writes one line per request. Probes and scrapes are skipped,
// 4xx log at warn and 5xx at error.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if quietPaths[path] {
			return
		}

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		log := logger.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			log.Error("Request failed", fields...)
		case status >= 400:
			log.Warn("Request rejected", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}
