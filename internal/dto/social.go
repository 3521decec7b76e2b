package dto

import (
	"time"

	"github.com/emrealmaoglu/trailium/internal/models"
)

// PostResponse is the post serializer
type PostResponse struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	User          UserBrief `json:"user"`
	IsPublished   bool      `json:"is_published"`
	Visibility    string    `json:"visibility"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// PostRequest is used for create, full update and partial update.
type PostRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Body        *string `json:"body" binding:"omitempty,max=2000"`
	IsPublished *bool   `json:"is_published"`
	Visibility  *string `json:"visibility" binding:"omitempty,oneof=public followers private"`
}

// CommentResponse is the comment serializer
type CommentResponse struct {
	ID        uint      `json:"id"`
	User      UserBrief `json:"user"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentRequest carries a new comment
type CommentRequest struct {
	Body string `json:"body" binding:"max=1000"`
}

// AlbumSummary is returned by album create and update
type AlbumSummary struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	IsPublished bool      `json:"is_published"`
	Visibility  string    `json:"visibility"`
	CreatedAt   time.Time `json:"created_at"`
}

// AlbumResponse is the album serializer used by list and detail
type AlbumResponse struct {
	AlbumSummary
	Photos []*PhotoResponse `json:"photos"`
}

// AlbumRequest is used for album create and updates
type AlbumRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	IsPublished *bool   `json:"is_published"`
	Visibility  *string `json:"visibility" binding:"omitempty,oneof=public followers private"`
}

// PhotoResponse is the photo serializer
type PhotoResponse struct {
	ID           uint           `json:"id"`
	Title        string         `json:"title"`
	URL          string         `json:"url"`
	ThumbnailURL string         `json:"thumbnail_url"`
	Metadata     models.JSONMap `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
}

// PhotoRequest is the JSON form of a photo create
type PhotoRequest struct {
	Title        string         `json:"title" binding:"max=200"`
	URL          string         `json:"url" binding:"required,max=500"`
	ThumbnailURL string         `json:"thumbnail_url" binding:"max=500"`
	Metadata     models.JSONMap `json:"metadata"`
}

// FollowResponse is the follow serializer
type FollowResponse struct {
	ID        uint      `json:"id"`
	Follower  UserBrief `json:"follower"`
	Followed  UserBrief `json:"followed"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPostResponse converts a post with its preloaded user and annotated counts
func ToPostResponse(post *models.Post) *PostResponse {
	return &PostResponse{
		ID:            post.ID,
		Title:         post.Title,
		Body:          post.Body,
		User:          ToUserBrief(&post.User),
		IsPublished:   post.IsPublished,
		Visibility:    post.Visibility,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		CreatedAt:     post.CreatedAt,
	}
}

// ToPostResponses converts a page of posts
func ToPostResponses(posts []models.Post) []*PostResponse {
	responses := make([]*PostResponse, len(posts))
	for i := range posts {
		responses[i] = ToPostResponse(&posts[i])
	}
	return responses
}

// ToCommentResponse converts a comment with its preloaded user
func ToCommentResponse(comment *models.Comment) *CommentResponse {
	return &CommentResponse{
		ID:        comment.ID,
		User:      ToUserBrief(&comment.User),
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}

func ToCommentResponses(comments []models.Comment) []*CommentResponse {
	responses := make([]*CommentResponse, len(comments))
	for i := range comments {
		responses[i] = ToCommentResponse(&comments[i])
	}
	return responses
}

func ToAlbumSummary(album *models.Album) *AlbumSummary {
	return &AlbumSummary{
		ID:          album.ID,
		Title:       album.Title,
		IsPublished: album.IsPublished,
		Visibility:  album.Visibility,
		CreatedAt:   album.CreatedAt,
	}
}

// ToAlbumResponse converts an album with its preloaded photos.
func ToAlbumResponse(album *models.Album) *AlbumResponse {
	return &AlbumResponse{
		AlbumSummary: *ToAlbumSummary(album),
		Photos:       ToPhotoResponses(album.Photos),
	}
}

func ToAlbumResponses(albums []models.Album) []*AlbumResponse {
	responses := make([]*AlbumResponse, len(albums))
	for i := range albums {
		responses[i] = ToAlbumResponse(&albums[i])
	}
	return responses
}

func ToPhotoResponse(photo *models.Photo) *PhotoResponse {
	metadata := photo.Metadata
	if metadata == nil {
		metadata = models.JSONMap{}
	}
	return &PhotoResponse{
		ID:           photo.ID,
		Title:        photo.Title,
		URL:          photo.URL,
		ThumbnailURL: photo.ThumbnailURL,
		Metadata:     metadata,
		CreatedAt:    photo.CreatedAt,
	}
}

// ToPhotoResponses never returns nil so empty albums serialize as [].
func ToPhotoResponses(photos []models.Photo) []*PhotoResponse {
	responses := make([]*PhotoResponse, len(photos))
	for i := range photos {
		responses[i] = ToPhotoResponse(&photos[i])
	}
	return responses
}

// ToFollowResponse converts a follow with both users preloaded
func ToFollowResponse(follow *models.Follow) *FollowResponse {
	return &FollowResponse{
		ID:        follow.ID,
		Follower:  ToUserBrief(&follow.Follower),
		Followed:  ToUserBrief(&follow.Followed),
		Status:    follow.Status,
		CreatedAt: follow.CreatedAt,
	}
}

func ToFollowResponses(follows []models.Follow) []*FollowResponse {
	responses := make([]*FollowResponse, len(follows))
	for i := range follows {
		responses[i] = ToFollowResponse(&follows[i])
	}
	return responses
}
