package util

import (
	"github.com/gin-gonic/gin"

	"github.com/emrealmaoglu/trailium/internal/models"
)

// Context keys set by the auth middleware.
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
)

// GetUserFromContext extracts the authenticated user from the Gin context.
// If the user is not authenticated, it responds with 401 and returns false.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	user := CurrentUser(c)
	if user == nil {
		RespondUnauthorized(c)
		return nil, false
	}
	return user, true
}

// CurrentUser returns the authenticated user or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// SetUser stores the authenticated user on the context.
func SetUser(c *gin.Context, user *models.User) {
	c.Set(ContextUserKey, user)
	c.Set(ContextUserIDKey, user.ID)
}
