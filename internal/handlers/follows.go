package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/dto"
	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/metrics"
	"github.com/emrealmaoglu/trailium/internal/models"
	"github.com/emrealmaoglu/trailium/internal/telemetry"
	"github.com/emrealmaoglu/trailium/internal/util"
)

// Follow transitions recorded in metrics and traces.
const (
	transitionRequested = "requested"
	transitionRerequest = "rerequested"
	transitionAccepted  = "accepted"
	transitionRejected  = "rejected"
	transitionUnfollow  = "unfollowed"
)

// followTarget resolves the :id user. The follow endpoints answer with
// {"error": ...} bodies instead of the API error envelope.
func followTarget(c *gin.Context) (*models.User, bool) {
	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return nil, false
	}

	var target models.User
	if err := database.DB.First(&target, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			logger.Log.Error("Failed to load follow target", zap.Uint("target_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return nil, false
	}
	return &target, true
}

func recordFollowTransition(c *gin.Context, followerID, followedID uint, transition string) {
	_, span := telemetry.GetBusinessEvents().TraceFollowTransition(c.Request.Context(), followerID, followedID, transition)
	span.End()
	metrics.Get().FollowTransitions.WithLabelValues(transition).Inc()
}

// FollowUser sends a follow request to the target user
// POST /api/follows/users/:id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	target, ok := followTarget(c)
	if !ok {
		return
	}
	if target.ID == currentUser.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
		return
	}

	var (
		status     = http.StatusCreated
		message    = "Follow request sent"
		transition string
	)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var follow models.Follow
		err := tx.Where("follower_id = ? AND followed_id = ?", currentUser.ID, target.ID).Take(&follow).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			transition = transitionRequested
			return tx.Create(&models.Follow{
				FollowerID: currentUser.ID,
				FollowedID: target.ID,
				Status:     models.FollowPending,
			}).Error
		}
		if err != nil {
			return err
		}

		switch follow.Status {
		case models.FollowAccepted:
			status, message = http.StatusOK, "Already following"
			return nil
		case models.FollowPending:
			status, message = http.StatusOK, "Follow request already pending"
			return nil
		}

		transition = transitionRerequest
		return tx.Model(&follow).Update("status", models.FollowPending).Error
	})
	if err != nil {
		logger.Log.Error("Failed to create follow request",
			zap.Uint("follower_id", currentUser.ID),
			zap.Uint("followed_id", target.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow user"})
		return
	}

	if transition != "" {
		recordFollowTransition(c, currentUser.ID, target.ID, transition)
	}
	c.JSON(status, gin.H{"message": message})
}

// UnfollowUser removes the caller's follow row for the target, whatever its state
// POST /api/follows/users/:id/unfollow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	target, ok := followTarget(c)
	if !ok {
		return
	}

	result := database.DB.
		Where("follower_id = ? AND followed_id = ?", currentUser.ID, target.ID).
		Delete(&models.Follow{})
	if result.Error != nil {
		logger.Log.Error("Failed to unfollow", zap.Uint("followed_id", target.ID), zap.Error(result.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow user"})
		return
	}
	if result.RowsAffected > 0 {
		recordFollowTransition(c, currentUser.ID, target.ID, transitionUnfollow)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed successfully"})
}

// AcceptFollowRequest accepts the target's pending request to follow the caller
// POST /api/follows/users/:id/accept
func (h *Handlers) AcceptFollowRequest(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	target, ok := followTarget(c)
	if !ok {
		return
	}

	result := database.DB.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ? AND status = ?", target.ID, currentUser.ID, models.FollowPending).
		Update("status", models.FollowAccepted)
	if result.Error != nil {
		logger.Log.Error("Failed to accept follow request", zap.Uint("follower_id", target.ID), zap.Error(result.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept follow request"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Follow request not found"})
		return
	}

	recordFollowTransition(c, target.ID, currentUser.ID, transitionAccepted)
	c.JSON(http.StatusOK, gin.H{"message": "Follow request accepted"})
}

// RejectFollowRequest drops the target's pending request to follow the caller
// POST /api/follows/users/:id/reject
func (h *Handlers) RejectFollowRequest(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	target, ok := followTarget(c)
	if !ok {
		return
	}

	result := database.DB.
		Where("follower_id = ? AND followed_id = ? AND status = ?", target.ID, currentUser.ID, models.FollowPending).
		Delete(&models.Follow{})
	if result.Error != nil {
		logger.Log.Error("Failed to reject follow request", zap.Uint("follower_id", target.ID), zap.Error(result.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject follow request"})
		return
	}
	if result.RowsAffected > 0 {
		recordFollowTransition(c, target.ID, currentUser.ID, transitionRejected)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Follow request rejected"})
}

// GetFollowStatus reports the state of the caller's follow row for the target
// GET /api/follows/users/:id/status
func (h *Handlers) GetFollowStatus(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	target, ok := followTarget(c)
	if !ok {
		return
	}

	var follow models.Follow
	err := database.DB.Where("follower_id = ? AND followed_id = ?", currentUser.ID, target.ID).Take(&follow).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusOK, gin.H{"status": "none"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load follow status"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": follow.Status})
	}
}

func withFollowUsers(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Follower").Preload("Followed")
}

func (h *Handlers) listFollows(c *gin.Context, where string, args ...interface{}) {
	var follows []models.Follow
	err := database.DB.Scopes(withFollowUsers).
		Where(where, args...).
		Order("created_at DESC").
		Order("id DESC").
		Find(&follows).Error
	if err != nil {
		util.RespondWithError(c, err, "Follow")
		return
	}
	c.JSON(http.StatusOK, dto.ToFollowResponses(follows))
}

// GetFollowers lists accepted follows where the caller is followed
// GET /api/follows/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	h.listFollows(c, "followed_id = ? AND status = ?", currentUser.ID, models.FollowAccepted)
}

// GetFollowing lists accepted follows where the caller is the follower
// GET /api/follows/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	h.listFollows(c, "follower_id = ? AND status = ?", currentUser.ID, models.FollowAccepted)
}

// GetFollowRequests lists pending requests addressed to the caller
// GET /api/follows/requests
func (h *Handlers) GetFollowRequests(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	h.listFollows(c, "followed_id = ? AND status = ?", currentUser.ID, models.FollowPending)
}

// ListFollows pages through every follow row involving the caller
// GET /api/follows
func (h *Handlers) ListFollows(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	base := database.DB.Model(&models.Follow{}).
		Where("follower_id = ? OR followed_id = ?", currentUser.ID, currentUser.ID)
	page, err := util.Paginate(c, base, util.DefaultPageSize, func(q *gorm.DB) (interface{}, error) {
		var follows []models.Follow
		if err := q.Scopes(withFollowUsers).Order("created_at DESC").Order("id DESC").Find(&follows).Error; err != nil {
			return nil, err
		}
		return dto.ToFollowResponses(follows), nil
	})
	if err != nil {
		util.RespondWithError(c, err, "Follow")
		return
	}
	c.JSON(http.StatusOK, page)
}
