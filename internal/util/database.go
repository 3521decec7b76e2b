package util

import (
	"github.com/gin-gonic/gin"
)

// HandleDBError sends the response matching a database error.
// Returns true if the error was handled (and response was sent), false otherwise
func HandleDBError(c *gin.Context, err error, resourceName string) bool {
	if err == nil {
		return false
	}
	RespondWithError(c, err, resourceName)
	return true
}
