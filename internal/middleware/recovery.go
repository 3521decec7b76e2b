package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/util"
)

// RecoveryMiddleware turns panics into a JSON 500 response.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Log.Error("panic recovered",
			zap.String("panic", fmt.Sprint(recovered)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			logger.WithRequestID(GetRequestID(c)),
		)
		util.RespondInternalError(c, "An unexpected error occurred")
	})
}
