package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/logger"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 envelope and logs it with the
// stack and request id
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			logger.WithContext(c.Request.Context()).Error("Panic recovered",
				zap.Any("panic", rec),
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
				zap.Stack("stack"),
			)

			if !c.Writer.Written() {
				common.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
			}
			c.Abort()
		}()

		c.Next()
	}
}
