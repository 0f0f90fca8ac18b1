package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/noah-isme/salon-booking-api/pkg/config"
)

// BlobStore persists uploaded objects and returns the URL they are served from.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// New selects the blob store configured by cfg. The AWS config is only used for S3.
func New(cfg config.StorageConfig, awsCfg aws.Config, s3Client S3API) (BlobStore, error) {
	switch cfg.Driver {
	case "", config.StorageDriverLocal:
		return NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL)
	case config.StorageDriverS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("storage: s3 driver requires STORAGE_S3_BUCKET")
		}
		return NewS3Store(s3Client, cfg.S3Bucket, awsCfg.Region, cfg.PublicBaseURL), nil
	}
	return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
}

// ContentTypeFor maps an image extension to its MIME type.
func ContentTypeFor(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	}
	return "application/octet-stream"
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
