package dto

import (
	"github.com/emrealmaoglu/trailium/internal/models"
)

// UserResponse is the user serializer. Password and audit fields are never exposed.
type UserResponse struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Avatar      string `json:"avatar"`
	FullName    string `json:"full_name"`
	Gender      string `json:"gender"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	About       string `json:"about"`
	IsPremium   bool   `json:"is_premium"`
	IsPrivate   bool   `json:"is_private"`
	Visibility  string `json:"visibility"`
	IsSuperuser bool   `json:"is_superuser"`
	IsStaff     bool   `json:"is_staff"`
}

// UserBrief is the nested {id, username} form used inside posts, comments and follows.
type UserBrief struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// UpdateUserRequest is a partial profile update. Nil fields are left untouched.
type UpdateUserRequest struct {
	Email      *string `json:"email,omitempty" binding:"omitempty,email,max=254"`
	Avatar     *string `json:"avatar,omitempty" binding:"omitempty,max=500"`
	FullName   *string `json:"full_name,omitempty" binding:"omitempty,max=150"`
	Gender     *string `json:"gender,omitempty" binding:"omitempty,max=20"`
	Phone      *string `json:"phone,omitempty" binding:"omitempty,max=50"`
	Address    *string `json:"address,omitempty" binding:"omitempty,max=255"`
	About      *string `json:"about,omitempty" binding:"omitempty,max=2000"`
	IsPrivate  *bool   `json:"is_private,omitempty"`
	IsPremium  *bool   `json:"is_premium,omitempty"`
	Visibility *string `json:"visibility,omitempty" binding:"omitempty,oneof=public friends private"`
}

// ToUserResponse converts models.User to UserResponse
func ToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}

	return &UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Avatar:      user.Avatar,
		FullName:    user.FullName,
		Gender:      user.Gender,
		Phone:       user.Phone,
		Address:     user.Address,
		About:       user.About,
		IsPremium:   user.IsPremium,
		IsPrivate:   user.IsPrivate,
		Visibility:  user.ProfilePrivacy,
		IsSuperuser: user.IsSuperuser,
		IsStaff:     user.IsStaff,
	}
}

// ToUserResponses converts a slice of users
func ToUserResponses(users []models.User) []*UserResponse {
	responses := make([]*UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	return responses
}

// ToUserBrief converts a user to its nested form
func ToUserBrief(user *models.User) UserBrief {
	if user == nil {
		return UserBrief{}
	}
	return UserBrief{ID: user.ID, Username: user.Username}
}
