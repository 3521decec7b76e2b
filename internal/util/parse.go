package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// ParseUint parses a positive identifier.
func ParseUint(s string) (uint, bool) {
	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil || val == 0 {
		return 0, false
	}
	return uint(val), true
}

// ParseIDParam reads the :name path parameter as an identifier. An invalid
// value is reported as a 404 for resource.
func ParseIDParam(c *gin.Context, name, resource string) (uint, bool) {
	id, ok := ParseUint(c.Param(name))
	if !ok {
		RespondNotFound(c, resource)
		return 0, false
	}
	return id, true
}

// QueryUint reads an optional positive identifier from the query string.
func QueryUint(c *gin.Context, name string) (uint, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return 0, false
	}
	return ParseUint(raw)
}
