package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/emrealmaoglu/trailium/internal/telemetry"
)

// MinioConfig configures the S3-compatible MinIO backend
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL overrides the URL prefix of stored objects.
	PublicURL string
}

// MinioStorage stores photos in a MinIO bucket.
// It is safe for concurrent use by multiple goroutines.
type MinioStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStorage creates the client, checks connectivity and creates the
// bucket if it is missing.
func NewMinioStorage(ctx context.Context, cfg MinioConfig) (*MinioStorage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: telemetry.NewInstrumentedTransport("minio", nil),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinioStorage{client: cli, bucket: cfg.Bucket, baseURL: minioBaseURL(cfg)}, nil
}

func minioBaseURL(cfg MinioConfig) string {
	if cfg.PublicURL != "" {
		return cfg.PublicURL
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}

func (m *MinioStorage) Backend() string { return "minio" }

// Put streams the object to the bucket without touching local disk.
func (m *MinioStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	ctx, span := telemetry.TraceStorageCall(ctx, "put", telemetry.StorageCallAttrs{
		Backend: "minio", Bucket: m.bucket, Key: key, ContentType: contentType, SizeBytes: size,
	})
	defer span.End()

	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "max-age=86400",
	})
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return "", fmt.Errorf("failed to upload to minio: %w", err)
	}
	return joinURL(m.baseURL, key), nil
}

// Delete removes an object by key.
func (m *MinioStorage) Delete(ctx context.Context, key string) error {
	ctx, span := telemetry.TraceStorageCall(ctx, "delete", telemetry.StorageCallAttrs{Backend: "minio", Bucket: m.bucket, Key: key})
	defer span.End()

	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}
	return nil
}
