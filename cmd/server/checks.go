package main

import (
	"context"
	"errors"

	"github.com/emrealmaoglu/trailium/internal/cache"
	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/storage"
	"github.com/emrealmaoglu/trailium/internal/validation"
)

var errRedisNotConnected = errors.New("redis is not configured or unreachable")

// serviceChecks pings the backing services the server can run degraded
// without. storageErr is the error storage.New returned, if any.
func serviceChecks(photoStorage storage.PhotoStorage, storageErr error) map[string]validation.ServiceCheck {
	return map[string]validation.ServiceCheck{
		"database": database.Ping,
		"redis": func(ctx context.Context) error {
			rc := cache.GetRedisClient()
			if rc == nil {
				return errRedisNotConnected
			}
			return rc.Ping(ctx)
		},
		"storage": func(ctx context.Context) error {
			if storageErr != nil {
				return storageErr
			}
			if s3, ok := photoStorage.(*storage.S3Storage); ok {
				return s3.CheckBucketAccess(ctx)
			}
			return nil
		},
	}
}
