package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emrealmaoglu/trailium/internal/config"
)

// PhotoStorage stores uploaded photo files and returns their public URL.
// This interface allows for easy mocking in tests
type PhotoStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Backend() string
}

// Ensure every backend implements PhotoStorage
var (
	_ PhotoStorage = (*S3Storage)(nil)
	_ PhotoStorage = (*MinioStorage)(nil)
	_ PhotoStorage = (*LocalStorage)(nil)
)

// New builds the backend selected by cfg.Backend
func New(ctx context.Context, cfg config.StorageConfig) (PhotoStorage, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
	case "s3":
		return NewS3Storage(ctx, cfg.AWSRegion, cfg.AWSBucket, cfg.CDNBaseURL)
	case "minio":
		return NewMinioStorage(ctx, MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// PhotoKey builds the object key for a user's photo:
// photos/{year}/{month}/{userID}/{uuid}{ext}
func PhotoKey(userID uint, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("photos/%d/%02d/%d/%s%s",
		now.Year(), now.Month(), userID, uuid.New().String(), ext)
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
