package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/P3chys/classroom-api/internal/config"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/metrics"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the object storage used for attachments.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	SignedURL(ctx context.Context, key string) (string, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

// MinIO refuses presigned URLs valid for longer than a week.
const maxMinIOURLExpiry = 7 * 24 * time.Hour

type StorageService struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// NewObjectStore builds the backend selected by STORAGE_BACKEND.
func NewObjectStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (ObjectStore, error) {
	switch cfg.StorageBackend {
	case "gcs":
		store, err := NewGCSStorageService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "minio", "":
		store, err := NewStorageService(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func NewStorageService(ctx context.Context, cfg *config.Config, log *logger.Logger) (*StorageService, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, err
		}
	}

	expiry := cfg.StorageURLExpiry
	if expiry > maxMinIOURLExpiry {
		log.Warn("Clamping signed URL expiry to MinIO maximum", "requested", expiry, "max", maxMinIOURLExpiry)
		expiry = maxMinIOURLExpiry
	}

	return &StorageService{
		client: client,
		bucket: cfg.MinIOBucket,
		expiry: expiry,
	}, nil
}

func (s *StorageService) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	metrics.RecordStorageOperation("minio", "upload", err)
	return err
}

func (s *StorageService) SignedURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.expiry, url.Values{})
	metrics.RecordStorageOperation("minio", "sign", err)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *StorageService) DeletePrefix(ctx context.Context, prefix string) error {
	var firstErr error
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			firstErr = obj.Err
			break
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	metrics.RecordStorageOperation("minio", "delete_prefix", firstErr)
	return firstErr
}
