package models

import "time"

// Content visibility levels shared by posts and albums.
const (
	VisibilityPublic    = "public"
	VisibilityFollowers = "followers"
	VisibilityPrivate   = "private"
)

var VisibilityChoices = []string{VisibilityPublic, VisibilityFollowers, VisibilityPrivate}

const (
	PostTitleMinLength = 5
	PostTitleMaxLength = 200
	PostBodyMaxLength  = 5000
)

// Post is a short text entry on a user's timeline.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_posts_user_created,priority:1" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Body        string    `gorm:"type:text" json:"body"`
	IsPublished bool      `gorm:"not null;index:idx_posts_published_created,priority:1" json:"is_published"`
	Visibility  string    `gorm:"size:10;not null;default:public;index:idx_posts_visibility_created,priority:1" json:"visibility"`
	CreatedAt   time.Time `gorm:"index:idx_posts_user_created,priority:2;index:idx_posts_visibility_created,priority:2;index:idx_posts_published_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	LikesCount    int64 `gorm:"->;-:migration" json:"likes_count"`
	CommentsCount int64 `gorm:"->;-:migration" json:"comments_count"`
}

func (Post) TableName() string {
	return "posts"
}

// Comment is a reply left on a post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// Like records that a user liked a post. A user likes a post at most once.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"post_id"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}
