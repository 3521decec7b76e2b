package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/util"
)

// bearerToken returns the token of an "Authorization: Bearer <token>" header
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// OptionalAuthMiddleware loads the user of a valid access token. Requests
// without an Authorization header pass through anonymously; a header that
// does not carry a valid access token is rejected.
func (h *Handlers) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok || token == "" {
			util.RespondUnauthorized(c, "Authentication credentials were not provided.")
			return
		}

		user, err := h.auth.ValidateToken(token)
		if err != nil {
			logger.Log.Debug("Rejected access token", zap.Error(err))
			util.RespondUnauthorized(c, "Given token not valid for any token type")
			return
		}

		util.SetUser(c, user)
		c.Next()
	}
}

// AuthMiddleware requires an authenticated user, validating the bearer token
// itself when OptionalAuthMiddleware has not already done so.
func (h *Handlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if util.CurrentUser(c) != nil {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok || token == "" {
			util.RespondUnauthorized(c)
			return
		}

		user, err := h.auth.ValidateToken(token)
		if err != nil {
			util.RespondUnauthorized(c, "Given token not valid for any token type")
			return
		}

		util.SetUser(c, user)
		c.Next()
	}
}
