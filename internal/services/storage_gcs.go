package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/P3chys/classroom-api/internal/config"
	"github.com/P3chys/classroom-api/internal/metrics"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSStorageService stores attachments in a Google Cloud Storage bucket.
// V2 signing is used so retrieval URLs can outlive the week-long V4 limit.
type GCSStorageService struct {
	client *storage.Client
	bucket string
	expiry time.Duration
}

func NewGCSStorageService(ctx context.Context, cfg *config.Config) (*GCSStorageService, error) {
	if cfg.GCSBucket == "" {
		return nil, errors.New("missing env var GCS_BUCKET")
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStorageService{
		client: client,
		bucket: cfg.GCSBucket,
		expiry: cfg.StorageURLExpiry,
	}, nil
}

func (s *GCSStorageService) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		metrics.RecordStorageOperation("gcs", "upload", err)
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	err := w.Close()
	metrics.RecordStorageOperation("gcs", "upload", err)
	if err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (s *GCSStorageService) SignedURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: time.Now().Add(s.expiry),
		Scheme:  storage.SigningSchemeV2,
	})
	metrics.RecordStorageOperation("gcs", "sign", err)
	return u, err
}

func (s *GCSStorageService) DeletePrefix(ctx context.Context, prefix string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	bucket := s.client.Bucket(s.bucket)
	it := bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	var firstErr error
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			firstErr = err
			break
		}
		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) && firstErr == nil {
			firstErr = err
		}
	}
	metrics.RecordStorageOperation("gcs", "delete_prefix", firstErr)
	return firstErr
}
