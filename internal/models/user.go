package models

import (
	"time"
)

// Profile privacy levels for User.ProfilePrivacy.
const (
	PrivacyPublic  = "public"
	PrivacyFriends = "friends"
	PrivacyPrivate = "private"
)

// ProfilePrivacyChoices lists the accepted ProfilePrivacy values.
var ProfilePrivacyChoices = []string{PrivacyPublic, PrivacyFriends, PrivacyPrivate}

// User is a Trailium account. Accounts are deactivated rather than deleted
// when their owner closes them.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email    string `gorm:"size:254;index" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`

	Avatar   string `gorm:"size:500" json:"avatar"`
	FullName string `gorm:"size:150" json:"full_name"`
	Gender   string `gorm:"size:20" json:"gender"`
	Phone    string `gorm:"size:50" json:"phone"`
	Address  string `gorm:"size:255" json:"address"`
	About    string `gorm:"type:text" json:"about"`

	IsPremium      bool   `gorm:"not null" json:"is_premium"`
	IsPrivate      bool   `gorm:"not null" json:"is_private"`
	ProfilePrivacy string `gorm:"size:10;not null;default:public;index" json:"visibility"`

	IsStaff     bool       `gorm:"not null" json:"is_staff"`
	IsSuperuser bool       `gorm:"not null" json:"is_superuser"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	LastLogin   *time.Time `json:"last_login,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may bypass ownership checks.
func (u *User) IsAdmin() bool {
	return u != nil && (u.IsStaff || u.IsSuperuser)
}

// RevokedToken blacklists a refresh token by its jti until it expires.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"`
	JTI       string    `gorm:"column:jti;size:64;uniqueIndex;not null"`
	UserID    uint      `gorm:"index"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
