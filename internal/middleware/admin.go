package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/util"
)

// RequireStaff ensures the authenticated user is staff or a superuser.
// It must run after the auth middleware.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := util.GetUserFromContext(c)
		if !ok {
			return
		}
		if !user.IsAdmin() {
			util.RespondForbidden(c)
			return
		}
		c.Next()
	}
}

// RequireSuperuser ensures the authenticated user is a superuser.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := util.GetUserFromContext(c)
		if !ok {
			return
		}
		if !user.IsSuperuser {
			logger.Log.Warn("superuser route denied",
				logger.WithUserID(user.ID),
				zap.String("path", c.Request.URL.Path),
			)
			util.RespondForbidden(c)
			return
		}
		c.Next()
	}
}
