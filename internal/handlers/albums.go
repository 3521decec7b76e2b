package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/dto"
	apierrors "github.com/emrealmaoglu/trailium/internal/errors"
	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/models"
	"github.com/emrealmaoglu/trailium/internal/storage"
	"github.com/emrealmaoglu/trailium/internal/util"
	"github.com/emrealmaoglu/trailium/internal/validation"
	"github.com/emrealmaoglu/trailium/internal/visibility"
)

const (
	albumTitleMaxLength = 200
	photoTitleMaxLength = 200
	captionMaxLength    = 500
)

// AllowedImageTypes are the sniffed content types accepted for photo uploads
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// albumScope is the album queryset: one owner's albums with ?user_id,
// otherwise the caller's own.
func albumScope(c *gin.Context, viewer *models.User) func(*gorm.DB) *gorm.DB {
	if ownerID, ok := util.QueryUint(c, "user_id"); ok {
		return visibility.OwnerContent(database.DB, viewer, ownerID, "albums")
	}
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("albums.user_id = ?", viewer.ID)
	}
}

func preloadPhotos(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Photos", func(db *gorm.DB) *gorm.DB {
		return db.Order("photos.id")
	})
}

func findAlbum(c *gin.Context, viewer *models.User) (*models.Album, bool) {
	id, ok := util.ParseIDParam(c, "id", "Album")
	if !ok {
		return nil, false
	}

	var album models.Album
	err := database.DB.Model(&models.Album{}).
		Scopes(albumScope(c, viewer), preloadPhotos).
		Where("albums.id = ?", id).
		Take(&album).Error
	if err != nil {
		util.RespondWithError(c, err, "Album")
		return nil, false
	}
	return &album, true
}

// findOwnedAlbum is findAlbum plus an ownership check answered with 403
func findOwnedAlbum(c *gin.Context, viewer *models.User) (*models.Album, bool) {
	album, ok := findAlbum(c, viewer)
	if !ok {
		return nil, false
	}
	if album.UserID != viewer.ID {
		util.RespondForbidden(c)
		return nil, false
	}
	return album, true
}

// ListAlbums returns albums with their photos
// GET /api/albums?user_id=
func (h *Handlers) ListAlbums(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	base := database.DB.Model(&models.Album{}).Scopes(albumScope(c, currentUser))
	page, err := util.Paginate(c, base, util.DefaultPageSize, func(q *gorm.DB) (interface{}, error) {
		var albums []models.Album
		err := q.Scopes(preloadPhotos).
			Order("albums.created_at DESC").
			Order("albums.id DESC").
			Find(&albums).Error
		if err != nil {
			return nil, err
		}
		return dto.ToAlbumResponses(albums), nil
	})
	if err != nil {
		util.RespondWithError(c, err, "Album")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetAlbum returns one album with its photos
// GET /api/albums/:id
func (h *Handlers) GetAlbum(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	album, ok := findAlbum(c, currentUser)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToAlbumResponse(album))
}

// CreateAlbum creates an album for the caller
// POST /api/albums
func (h *Handlers) CreateAlbum(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req dto.AlbumRequest
	if !util.BindJSON(c, &req) {
		return
	}

	album := models.Album{
		UserID:      currentUser.ID,
		IsPublished: true,
		Visibility:  models.VisibilityPublic,
	}
	if err := applyAlbumRequest(&album, &req, false); err != nil {
		util.RespondWithError(c, err, "Album")
		return
	}
	if err := database.DB.Create(&album).Error; err != nil {
		util.RespondWithError(c, err, "Album")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAlbumSummary(&album))
}

// UpdateAlbum edits an album owned by the caller
// PUT|PATCH /api/albums/:id
func (h *Handlers) UpdateAlbum(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	album, ok := findOwnedAlbum(c, currentUser)
	if !ok {
		return
	}

	var req dto.AlbumRequest
	if !util.BindJSON(c, &req) {
		return
	}
	if err := applyAlbumRequest(album, &req, c.Request.Method == http.MethodPatch); err != nil {
		util.RespondWithError(c, err, "Album")
		return
	}
	if err := database.DB.Omit(clause.Associations).Save(album).Error; err != nil {
		util.RespondWithError(c, err, "Album")
		return
	}
	c.JSON(http.StatusOK, dto.ToAlbumSummary(album))
}

// DeleteAlbum removes an album owned by the caller and its photos
// DELETE /api/albums/:id
func (h *Handlers) DeleteAlbum(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	album, ok := findOwnedAlbum(c, currentUser)
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("album_id = ?", album.ID).Delete(&models.Photo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Album{}, album.ID).Error
	})
	if err != nil {
		util.RespondWithError(c, err, "Album")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPhotos returns the photos of an album in upload order
// GET /api/albums/:id/photos
func (h *Handlers) ListPhotos(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	album, ok := findAlbum(c, currentUser)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToPhotoResponses(album.Photos))
}

// CreatePhoto adds a photo to an album owned by the caller. Multipart
// requests upload an image through the storage backend; JSON requests
// reference an existing URL.
// POST /api/albums/:id/photos
func (h *Handlers) CreatePhoto(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	album, ok := findOwnedAlbum(c, currentUser)
	if !ok {
		return
	}

	var (
		photo *models.Photo
		key   string
		err   error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		photo, key, err = h.uploadPhoto(c, currentUser)
	} else {
		photo, err = photoFromJSON(c)
	}
	if err != nil {
		util.RespondWithError(c, err, "Photo")
		return
	}

	photo.AlbumID = album.ID
	if err := database.DB.Create(photo).Error; err != nil {
		if key != "" {
			h.discardUpload(c.Request.Context(), key)
		}
		util.RespondWithError(c, err, "Photo")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPhotoResponse(photo))
}

// discardUpload removes a stored image whose photo row could not be saved.
func (h *Handlers) discardUpload(ctx context.Context, key string) {
	if err := h.storage.Delete(ctx, key); err != nil {
		logger.Log.Warn("Failed to remove orphaned upload",
			zap.String("backend", h.storage.Backend()),
			zap.String("key", key),
			zap.Error(err))
	}
}

func (h *Handlers) uploadPhoto(c *gin.Context, user *models.User) (*models.Photo, string, error) {
	if h.storage == nil {
		return nil, "", apierrors.ServiceUnavailable("Photo storage")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return nil, "", &validation.Error{Field: "image", Message: "No file was submitted."}
	}

	contentType, err := util.SniffContentType(file)
	if err != nil {
		return nil, "", err
	}
	maxSize := h.config.Storage.MaxUploadBytes
	upload := validation.Upload{Filename: file.Filename, ContentType: contentType, Size: file.Size}
	if err := validation.ValidateUpload(upload, AllowedImageTypes, maxSize); err != nil {
		return nil, "", err
	}

	title, err := validation.ValidateText(c.PostForm("title"), "title", photoTitleMaxLength)
	if err != nil {
		return nil, "", err
	}
	caption, err := validation.ValidateBody(c.PostForm("caption"), "caption", captionMaxLength)
	if err != nil {
		return nil, "", err
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	key := storage.PhotoKey(user.ID, "upload"+storage.ExtensionForContentType(contentType), time.Now().UTC())
	url, err := h.storage.Put(c.Request.Context(), key, src, file.Size, contentType)
	if err != nil {
		logger.Log.Error("Photo upload failed",
			zap.String("backend", h.storage.Backend()),
			zap.String("key", key),
			zap.Error(err))
		return nil, "", apierrors.InternalError("Failed to store image")
	}

	metadata := models.JSONMap{}
	if caption != "" {
		metadata["caption"] = caption
	}
	return &models.Photo{Title: title, URL: url, ThumbnailURL: url, Metadata: metadata}, key, nil
}

func photoFromJSON(c *gin.Context) (*models.Photo, error) {
	var req dto.PhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BindError(err)
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, &validation.Error{Field: "url", Message: "This field is required."}
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "/") {
		return nil, &validation.Error{Field: "url", Message: "Enter a valid URL."}
	}

	title, err := validation.ValidateText(req.Title, "title", photoTitleMaxLength)
	if err != nil {
		return nil, err
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = models.JSONMap{}
	}
	return &models.Photo{
		Title:        title,
		URL:          url,
		ThumbnailURL: strings.TrimSpace(req.ThumbnailURL),
		Metadata:     metadata,
	}, nil
}

func applyAlbumRequest(album *models.Album, req *dto.AlbumRequest, partial bool) error {
	if req.Title != nil || !partial {
		title, err := validation.ValidateText(deref(req.Title), "title", albumTitleMaxLength)
		if err != nil {
			return err
		}
		if title == "" {
			return &validation.Error{Field: "title", Message: "This field may not be blank."}
		}
		album.Title = title
	}
	if req.IsPublished != nil {
		album.IsPublished = *req.IsPublished
	}
	if req.Visibility != nil {
		album.Visibility = *req.Visibility
	}
	return nil
}
