package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/dto"
	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/models"
	"github.com/emrealmaoglu/trailium/internal/repository"
	"github.com/emrealmaoglu/trailium/internal/util"
	"github.com/emrealmaoglu/trailium/internal/validation"
	"github.com/emrealmaoglu/trailium/internal/visibility"
)

// ListUsers returns a paginated user listing. Anonymous access is allowed.
// GET /api/users?search=&ordering=
func (h *Handlers) ListUsers(c *gin.Context) {
	base := h.users.ListQuery(c.Request.Context(), c.Query("search"), c.Query("ordering"))

	page, err := util.Paginate(c, base, util.DefaultPageSize, func(q *gorm.DB) (interface{}, error) {
		var users []models.User
		if err := q.Find(&users).Error; err != nil {
			return nil, err
		}
		return dto.ToUserResponses(users), nil
	})
	if err != nil {
		util.RespondWithError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetUser returns one user
// GET /api/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// GetUserProfile returns a user when their profile privacy allows it
// GET /api/users/:id/profile
func (h *Handlers) GetUserProfile(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	target, ok := h.loadUser(c)
	if !ok {
		return
	}

	if !visibility.CanViewProfile(database.DB, currentUser, target) {
		util.RespondForbidden(c, "This profile is private")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(target))
}

// UpdateUser applies profile changes to the caller or, for staff, anyone
// PUT|PATCH /api/users/:id
func (h *Handlers) UpdateUser(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	target, ok := h.loadUser(c)
	if !ok {
		return
	}
	if target.ID != currentUser.ID && !currentUser.IsAdmin() {
		util.RespondForbidden(c)
		return
	}
	h.applyProfileUpdate(c, target)
}

// DeleteUser deactivates the caller or, for staff, anyone
// DELETE /api/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	target, ok := h.loadUser(c)
	if !ok {
		return
	}
	if target.ID != currentUser.ID && !currentUser.IsAdmin() {
		util.RespondForbidden(c)
		return
	}
	h.deactivate(c, target)
}

// GetMe returns the authenticated user
// GET /api/users/me
func (h *Handlers) GetMe(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(currentUser))
}

// UpdateMe partially updates the authenticated user
// PATCH /api/users/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	h.applyProfileUpdate(c, currentUser)
}

// DeleteMe deactivates the authenticated user
// DELETE /api/users/me
func (h *Handlers) DeleteMe(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	h.deactivate(c, currentUser)
}

func (h *Handlers) loadUser(c *gin.Context) (*models.User, bool) {
	id, ok := util.ParseIDParam(c, "id", "User")
	if !ok {
		return nil, false
	}
	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			util.RespondNotFound(c, "User")
		} else {
			util.RespondWithError(c, err, "User")
		}
		return nil, false
	}
	return user, true
}

func (h *Handlers) applyProfileUpdate(c *gin.Context, user *models.User) {
	var req dto.UpdateUserRequest
	if !util.BindJSON(c, &req) {
		return
	}

	fields, err := profileFields(&req)
	if err != nil {
		util.RespondWithError(c, err, "User")
		return
	}

	if err := h.users.UpdateFields(c.Request.Context(), user, fields); err != nil {
		util.RespondWithError(c, err, "User")
		return
	}

	updated, err := h.users.GetUser(c.Request.Context(), user.ID)
	if err != nil {
		util.RespondWithError(c, err, "User")
		return
	}
	logger.Log.Info("Profile updated", logger.WithUserID(user.ID))
	c.JSON(http.StatusOK, dto.ToUserResponse(updated))
}

// profileFields validates the present request fields and maps them to columns
func profileFields(req *dto.UpdateUserRequest) (map[string]interface{}, error) {
	fields := map[string]interface{}{}

	if req.Email != nil {
		email, err := validation.ValidateEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		fields["email"] = email
	}

	short := []struct {
		value  *string
		column string
		max    int
	}{
		{req.FullName, "full_name", 150},
		{req.Gender, "gender", 20},
		{req.Phone, "phone", 50},
		{req.Address, "address", 255},
	}
	for _, f := range short {
		if f.value == nil {
			continue
		}
		clean, err := validation.ValidateText(*f.value, f.column, f.max)
		if err != nil {
			return nil, err
		}
		fields[f.column] = clean
	}

	if req.Avatar != nil {
		avatar, err := validation.ValidateBody(*req.Avatar, "avatar", 500)
		if err != nil {
			return nil, err
		}
		fields["avatar"] = avatar
	}
	if req.About != nil {
		about, err := validation.ValidateBody(*req.About, "about", 2000)
		if err != nil {
			return nil, err
		}
		fields["about"] = about
	}

	if req.IsPrivate != nil {
		fields["is_private"] = *req.IsPrivate
	}
	if req.IsPremium != nil {
		fields["is_premium"] = *req.IsPremium
	}
	if req.Visibility != nil {
		fields["profile_privacy"] = *req.Visibility
	}
	return fields, nil
}

func (h *Handlers) deactivate(c *gin.Context, user *models.User) {
	if err := h.users.Deactivate(c.Request.Context(), user.ID); err != nil {
		util.RespondWithError(c, err, "User")
		return
	}
	logger.Log.Info("User deactivated", logger.WithUserID(user.ID))
	c.Status(http.StatusNoContent)
}
