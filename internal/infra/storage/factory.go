package storage

import (
	"context"
	"fmt"

	"github.com/bryanwahyu/callprep/internal/config"
	"github.com/bryanwahyu/callprep/internal/domain/files"
)

// New returns the BlobStore selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (files.BlobStore, error) {
	switch cfg.Driver {
	case "minio":
		return NewMinio(ctx, cfg.Endpoint, cfg.Region, cfg.Bucket, cfg.AccessKey, cfg.SecretKey, cfg.UseSSL)
	case "s3":
		return NewS3(ctx, S3Options{
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			PathStyle: cfg.PathStyle,
		})
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
