package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emrealmaoglu/trailium/internal/auth"
	"github.com/emrealmaoglu/trailium/internal/dto"
	apierrors "github.com/emrealmaoglu/trailium/internal/errors"
	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/metrics"
	"github.com/emrealmaoglu/trailium/internal/util"
)

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,max=128"`
}

// bindTokenRequest binds obj for the token endpoints. An empty body or a
// missing required key answers with missing; malformed JSON is reported as such.
func bindTokenRequest(c *gin.Context, obj interface{}, missing string) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	if _, ok := util.FirstFieldError(err); ok || errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": missing})
		return false
	}
	logger.Log.Debug("Rejected token request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
	return false
}

// Login exchanges credentials for an access/refresh token pair
// POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if !bindTokenRequest(c, &req, "username and password required") {
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "username and password required"})
		return
	}

	tokens, user, err := h.auth.Login(req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.Get().LoginAttempts.WithLabelValues("failure").Inc()
			logger.Log.Info("Login failed", zap.String("username", req.Username), logger.WithIP(c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials"})
			return
		}
		util.RespondWithError(c, err, "User")
		return
	}

	metrics.Get().LoginAttempts.WithLabelValues("success").Inc()
	logger.Log.Info("User logged in", logger.WithUserID(user.ID), zap.Bool("remember_me", req.RememberMe))
	c.JSON(http.StatusOK, tokens)
}

// Refresh issues a new access token for a valid refresh token
// POST /api/auth/refresh
func (h *Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindTokenRequest(c, &req, "refresh is required") {
		return
	}

	access, err := h.auth.Refresh(req.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// Logout blacklists a refresh token and always answers 205
// POST /api/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	var req refreshRequest
	if !bindTokenRequest(c, &req, "refresh is required") {
		return
	}

	if err := h.auth.Logout(req.Refresh); err != nil {
		logger.WarnWithFields("Failed to blacklist refresh token", err)
	}
	c.Status(http.StatusResetContent)
}

// Register creates a new account
// POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if !util.BindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(req)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameExists) {
			util.RespondWithAPIError(c, apierrors.AlreadyExists("Username"))
			return
		}
		util.RespondWithError(c, err, "User")
		return
	}

	logger.Log.Info("User registered", logger.WithUserID(user.ID), zap.String("username", user.Username))
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// ChangePassword verifies the old password and stores a new one
// POST /api/auth/change-password
func (h *Handlers) ChangePassword(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if !util.BindJSON(c, &req) {
		return
	}

	if err := h.auth.ChangePassword(currentUser, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrIncorrectPassword) {
			util.RespondValidationError(c, "old_password", "Incorrect password")
			return
		}
		util.RespondWithError(c, err, "User")
		return
	}

	logger.Log.Info("Password changed", logger.WithUserID(currentUser.ID))
	c.Status(http.StatusNoContent)
}
