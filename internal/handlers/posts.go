package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/dto"
	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/metrics"
	"github.com/emrealmaoglu/trailium/internal/models"
	"github.com/emrealmaoglu/trailium/internal/telemetry"
	"github.com/emrealmaoglu/trailium/internal/util"
	"github.com/emrealmaoglu/trailium/internal/validation"
	"github.com/emrealmaoglu/trailium/internal/visibility"
)

const (
	postBodyMaxLength    = 2000
	commentBodyMaxLength = 1000
	defaultTitleLength   = 50
)

// postColumns annotates each post with its like and comment counts
const postColumns = "posts.*, " +
	"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count"

// postScope is the post queryset: one owner's posts with ?user_id, otherwise
// everything the viewer may see.
func postScope(c *gin.Context, viewer *models.User) func(*gorm.DB) *gorm.DB {
	if ownerID, ok := util.QueryUint(c, "user_id"); ok {
		return visibility.OwnerContent(database.DB, viewer, ownerID, "posts")
	}
	return visibility.VisibleContent(viewer, "posts")
}

func fetchPosts(q *gorm.DB) (interface{}, error) {
	var posts []models.Post
	err := q.Select(postColumns).
		Preload("User").
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return dto.ToPostResponses(posts), nil
}

func respondPostPage(c *gin.Context, base *gorm.DB, defaultSize int) {
	page, err := util.Paginate(c, base, defaultSize, fetchPosts)
	if err != nil {
		util.RespondWithError(c, err, "Post")
		return
	}
	c.JSON(http.StatusOK, page)
}

// findPost loads a post from the caller's queryset or writes a 404
func findPost(c *gin.Context, viewer *models.User) (*models.Post, bool) {
	id, ok := util.ParseIDParam(c, "id", "Post")
	if !ok {
		return nil, false
	}

	var post models.Post
	err := database.DB.Model(&models.Post{}).
		Scopes(postScope(c, viewer)).
		Select(postColumns).
		Preload("User").
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		util.RespondWithError(c, err, "Post")
		return nil, false
	}
	return &post, true
}

// ListPosts returns the posts visible to the caller
// GET /api/posts?user_id=
func (h *Handlers) ListPosts(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	base := database.DB.Model(&models.Post{}).Scopes(postScope(c, currentUser))
	respondPostPage(c, base, util.DefaultPageSize)
}

// GetPost returns one visible post
// GET /api/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	post, ok := findPost(c, currentUser)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToPostResponse(post))
}

// CreatePost publishes a post for the caller
// POST /api/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req dto.PostRequest
	if !util.BindJSON(c, &req) {
		return
	}

	post := models.Post{
		UserID:      currentUser.ID,
		IsPublished: true,
		Visibility:  models.VisibilityPublic,
	}
	if err := applyPostRequest(&post, &req, false); err != nil {
		util.RespondWithError(c, err, "Post")
		return
	}

	ctx, span := telemetry.GetBusinessEvents().TraceCreatePost(c.Request.Context(), currentUser.ID, post.Visibility)
	defer span.End()

	if err := database.DB.WithContext(ctx).Create(&post).Error; err != nil {
		telemetry.RecordSpanError(span, err)
		util.RespondWithError(c, err, "Post")
		return
	}

	metrics.Get().PostsCreated.WithLabelValues(post.Visibility).Inc()
	logger.Log.Info("Post created", logger.WithUserID(currentUser.ID))

	post.User = *currentUser
	c.JSON(http.StatusCreated, dto.ToPostResponse(&post))
}

// UpdatePost edits a post owned by the caller. PATCH leaves absent fields
// untouched.
// PUT|PATCH /api/posts/:id
func (h *Handlers) UpdatePost(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	post, ok := findPost(c, currentUser)
	if !ok {
		return
	}
	if post.UserID != currentUser.ID {
		util.RespondForbidden(c)
		return
	}

	var req dto.PostRequest
	if !util.BindJSON(c, &req) {
		return
	}
	if err := applyPostRequest(post, &req, c.Request.Method == http.MethodPatch); err != nil {
		util.RespondWithError(c, err, "Post")
		return
	}

	if err := database.DB.Omit(clause.Associations).Save(post).Error; err != nil {
		util.RespondWithError(c, err, "Post")
		return
	}
	c.JSON(http.StatusOK, dto.ToPostResponse(post))
}

// DeletePost removes a post owned by the caller with its likes and comments
// DELETE /api/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	post, ok := findPost(c, currentUser)
	if !ok {
		return
	}
	if post.UserID != currentUser.ID {
		util.RespondForbidden(c)
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		util.RespondWithError(c, err, "Post")
		return
	}
	c.Status(http.StatusNoContent)
}

// LikePost records the caller's like once
// POST /api/posts/:id/like
func (h *Handlers) LikePost(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	post, ok := findPost(c, currentUser)
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Like{}).
			Where("post_id = ? AND user_id = ?", post.ID, currentUser.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		err := tx.Create(&models.Like{PostID: post.ID, UserID: currentUser.ID}).Error
		if database.IsUniqueViolation(err) {
			return nil
		}
		return err
	})
	if err != nil {
		util.RespondWithError(c, err, "Like")
		return
	}

	metrics.Get().LikesTotal.WithLabelValues("like").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "liked"})
}

// UnlikePost removes the caller's like if there is one
// DELETE /api/posts/:id/like
func (h *Handlers) UnlikePost(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	post, ok := findPost(c, currentUser)
	if !ok {
		return
	}

	if err := database.DB.Where("post_id = ? AND user_id = ?", post.ID, currentUser.ID).
		Delete(&models.Like{}).Error; err != nil {
		util.RespondWithError(c, err, "Like")
		return
	}

	metrics.Get().LikesTotal.WithLabelValues("unlike").Inc()
	c.Status(http.StatusNoContent)
}

// ListComments returns every comment of a visible post, oldest first
// GET /api/posts/:id/comments
func (h *Handlers) ListComments(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	post, ok := findPost(c, currentUser)
	if !ok {
		return
	}

	var comments []models.Comment
	if err := database.DB.Preload("User").Where("post_id = ?", post.ID).Order("id").Find(&comments).Error; err != nil {
		util.RespondWithError(c, err, "Comment")
		return
	}
	c.JSON(http.StatusOK, dto.ToCommentResponses(comments))
}

// CreateComment adds a comment to a visible post
// POST /api/posts/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	post, ok := findPost(c, currentUser)
	if !ok {
		return
	}

	var req dto.CommentRequest
	if !util.BindJSON(c, &req) {
		return
	}
	body, err := validation.ValidateBody(req.Body, "body", commentBodyMaxLength)
	if err != nil {
		util.RespondWithError(c, err, "Comment")
		return
	}
	if body == "" {
		util.RespondValidationError(c, "body", "This field may not be blank.")
		return
	}

	comment := models.Comment{PostID: post.ID, UserID: currentUser.ID, Body: body}
	if err := database.DB.Create(&comment).Error; err != nil {
		util.RespondWithError(c, err, "Comment")
		return
	}

	metrics.Get().CommentsTotal.WithLabelValues().Inc()
	comment.User = *currentUser
	c.JSON(http.StatusCreated, dto.ToCommentResponse(&comment))
}

// GetFeed returns posts from accounts the caller follows
// GET /api/feed/posts?page=&page_size=
func (h *Handlers) GetFeed(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	_, span := telemetry.GetBusinessEvents().TraceFeed(c.Request.Context(), currentUser.ID, util.ParseInt(c.Query("page"), 1))
	defer span.End()

	base := database.DB.Model(&models.Post{}).Scopes(visibility.FollowedFeed(currentUser, "posts"))
	respondPostPage(c, base, util.FeedPageSize)
}

// GetMyPosts returns the caller's own posts
// GET /api/my-posts
func (h *Handlers) GetMyPosts(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	base := database.DB.Model(&models.Post{}).Where("posts.user_id = ?", currentUser.ID)
	respondPostPage(c, base, util.DefaultPageSize)
}

// applyPostRequest validates req onto post. A full write treats absent
// fields as empty; a partial write keeps them.
func applyPostRequest(post *models.Post, req *dto.PostRequest, partial bool) error {
	if req.Body != nil || !partial {
		body, err := validation.ValidateBody(deref(req.Body), "body", postBodyMaxLength)
		if err != nil {
			return err
		}
		if body == "" {
			return &validation.Error{Field: "body", Message: "This field may not be blank."}
		}
		post.Body = body
	}

	if req.Title != nil || !partial {
		title, err := validation.ValidateText(deref(req.Title), "title", models.PostTitleMaxLength)
		if err != nil {
			return err
		}
		post.Title = title
	}
	if post.Title == "" {
		post.Title = strings.TrimSpace(truncateRunes(post.Body, defaultTitleLength))
	}
	if utf8.RuneCountInString(post.Title) < models.PostTitleMinLength {
		return &validation.Error{Field: "title", Message: "Ensure this field has at least 5 characters."}
	}

	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}
	if req.Visibility != nil {
		post.Visibility = *req.Visibility
	}
	return nil
}

func requiredField(field string) error {
	return &validation.Error{Field: field, Message: "This field is required."}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
