package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emrealmaoglu/trailium/internal/database"
	apierrors "github.com/emrealmaoglu/trailium/internal/errors"
	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/metrics"
	"github.com/emrealmaoglu/trailium/internal/validation"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// RespondWithAPIError sends a structured API error response
func RespondWithAPIError(c *gin.Context, apiErr *apierrors.APIError) {
	status := apiErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logger.Log.Error("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
		)
		metrics.Get().ErrorsTotal.WithLabelValues(string(apiErr.Code), c.FullPath()).Inc()
	} else if status >= http.StatusBadRequest {
		logger.Log.Warn("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.String("field", apiErr.Field),
		)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    string(apiErr.Code),
		Message: apiErr.Message,
		Field:   apiErr.Field,
		Details: apiErr.Details,
	})
}

// RespondWithError maps err onto the matching API error. resource names the
// object for not-found and conflict messages.
func RespondWithError(c *gin.Context, err error, resource string) {
	if apiErr, ok := apierrors.As(err); ok {
		RespondWithAPIError(c, apiErr)
		return
	}
	if vErr, ok := validation.AsError(err); ok {
		metrics.Get().ValidationFailures.WithLabelValues(vErr.Field, "invalid").Inc()
		RespondWithAPIError(c, apierrors.ValidationError(vErr.Field, vErr.Message))
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		RespondNotFound(c, resource)
		return
	}
	if database.IsUniqueViolation(err) {
		RespondConflict(c, resource)
		return
	}

	logger.Log.Error("Unhandled error", zap.String("resource", resource), zap.Error(err))
	RespondInternalError(c, "An unexpected error occurred")
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message ...string) {
	msg := "Authentication credentials were not provided."
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	RespondWithAPIError(c, apierrors.Unauthorized(msg))
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, apierrors.NotFound(resource))
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, apierrors.BadRequest(message))
}

// RespondForbidden sends a 403 Forbidden response
func RespondForbidden(c *gin.Context, message ...string) {
	msg := "You do not have permission to perform this action."
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	RespondWithAPIError(c, apierrors.Forbidden(msg))
}

// RespondInternalError sends a 500 Internal Server Error response
func RespondInternalError(c *gin.Context, message string) {
	RespondWithAPIError(c, apierrors.InternalError(message))
}

// RespondConflict sends a 409 Conflict response
func RespondConflict(c *gin.Context, resource string) {
	RespondWithAPIError(c, apierrors.Conflict(resource))
}

// RespondValidationError sends a 400 response bound to a request field
func RespondValidationError(c *gin.Context, field, message string) {
	RespondWithAPIError(c, apierrors.ValidationError(field, message))
}
