package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/connectfood/core/internal/pkg/httputil"
)

// Recovery turns a handler panic into a 500 for that request only.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				fields := []zap.Field{
					zap.Any("panic", rec),
					zap.Stack("stack"),
					zap.String("method", c.Request.Method),
					zap.String("route", c.FullPath()),
					zap.String("request_id", httputil.GetRequestID(c)),
				}
				if principal, ok := httputil.GetPrincipal(c); ok {
					fields = append(fields, zap.String("username", principal.Username))
				}
				logger.Error("panic recovered", fields...)

				httputil.InternalError(c)
				c.Abort()
			}
		}()
		c.Next()
	}
}
