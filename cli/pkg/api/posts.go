package api

import (
	"fmt"
	"net/http"
	"strconv"
)

func pageQuery(page, pageSize int) map[string]string {
	q := map[string]string{}
	if page > 0 {
		q["page"] = strconv.Itoa(page)
	}
	if pageSize > 0 {
		q["page_size"] = strconv.Itoa(pageSize)
	}
	return q
}

// ListPosts lists posts visible to the caller. userID 0 means the caller's own.
func ListPosts(userID uint, page, pageSize int) (*Page[Post], error) {
	q := pageQuery(page, pageSize)
	if userID != 0 {
		q["user_id"] = strconv.FormatUint(uint64(userID), 10)
	}

	var out Page[Post]
	if err := getJSON("/api/posts", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFeed returns published posts from followed users
func GetFeed(page, pageSize int) (*Page[Post], error) {
	var out Page[Post]
	if err := getJSON("/api/feed/posts", pageQuery(page, pageSize), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPost fetches a single post
func GetPost(id uint) (*Post, error) {
	var post Post
	if err := getJSON(fmt.Sprintf("/api/posts/%d", id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost publishes a new post
func CreatePost(req PostRequest) (*Post, error) {
	var post Post
	if err := sendJSON(http.MethodPost, "/api/posts", req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes one of the caller's posts
func DeletePost(id uint) error {
	return sendJSON(http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), nil, nil)
}

// LikePost likes a post. Liking twice is a no-op.
func LikePost(id uint) error {
	return sendJSON(http.MethodPost, fmt.Sprintf("/api/posts/%d/like", id), nil, nil)
}

// UnlikePost removes the caller's like
func UnlikePost(id uint) error {
	return sendJSON(http.MethodDelete, fmt.Sprintf("/api/posts/%d/like", id), nil, nil)
}

// ListComments lists comments on a post, oldest first
func ListComments(postID uint) ([]Comment, error) {
	var out []Comment
	if err := getJSON(fmt.Sprintf("/api/posts/%d/comments", postID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateComment comments on a post
func CreateComment(postID uint, body string) (*Comment, error) {
	var out Comment
	path := fmt.Sprintf("/api/posts/%d/comments", postID)
	if err := sendJSON(http.MethodPost, path, map[string]string{"body": body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
