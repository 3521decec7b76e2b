package models

import "time"

// Follow request states.
const (
	FollowPending  = "pending"
	FollowAccepted = "accepted"
	FollowRejected = "rejected"
)

// Follow is a directed relationship from Follower to Followed. Only accepted
// follows grant access to followers-only content.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follows_pair,priority:1;index:idx_follows_follower_status,priority:1" json:"follower_id"`
	Follower   User      `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_follows_pair,priority:2;index:idx_follows_followed_status,priority:1" json:"followed_id"`
	Followed   User      `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"-"`
	Status     string    `gorm:"size:10;not null;default:pending;index:idx_follows_follower_status,priority:2;index:idx_follows_followed_status,priority:2" json:"status"`
	CreatedAt  time.Time `gorm:"index:idx_follows_follower_status,priority:3;index:idx_follows_followed_status,priority:3" json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}
