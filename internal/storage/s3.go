package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/emrealmaoglu/trailium/internal/telemetry"
)

// S3Storage handles photo uploads to AWS S3
type S3Storage struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// NewS3Storage creates a new S3 backend. Objects are served from baseURL,
// typically a CDN in front of the bucket.
func NewS3Storage(ctx context.Context, region, bucket, baseURL string) (*S3Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithHTTPClient(telemetry.NewInstrumentedHTTPClient(telemetry.HTTPClientConfig{
			ServiceName: "s3",
			Timeout:     time.Minute,
		})),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &S3Storage{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		region:  region,
		baseURL: baseURL,
	}, nil
}

func (u *S3Storage) Backend() string { return "s3" }

// Put uploads a photo to S3 with proper metadata
func (u *S3Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	ctx, span := telemetry.TraceStorageCall(ctx, "put", telemetry.StorageCallAttrs{
		Backend: "s3", Bucket: u.bucket, Key: key, ContentType: contentType, SizeBytes: size,
	})
	defer span.End()

	if contentType == "" {
		contentType = getContentTypeForImage(filepath.Ext(key))
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		// Photos are immutable once uploaded
		CacheControl: aws.String("max-age=86400"),
		Metadata: map[string]string{
			"upload-timestamp": time.Now().UTC().Format(time.RFC3339),
			"file-type":        "photo",
		},
	})
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return joinURL(u.baseURL, key), nil
}

// Delete deletes a file from S3
func (u *S3Storage) Delete(ctx context.Context, key string) error {
	ctx, span := telemetry.TraceStorageCall(ctx, "delete", telemetry.StorageCallAttrs{Backend: "s3", Bucket: u.bucket, Key: key})
	defer span.End()

	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// CheckBucketAccess verifies that we can access the S3 bucket
func (u *S3Storage) CheckBucketAccess(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", u.bucket, err)
	}
	return nil
}

// getContentTypeForImage returns the MIME type for image extensions
func getContentTypeForImage(extension string) string {
	switch strings.ToLower(extension) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// ExtensionForContentType returns the canonical file extension of an image type
func ExtensionForContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
