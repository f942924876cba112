package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"contenthub-backend/internal/config"
)

// ObjectStorage is the blob-storage boundary. Implementations are MinIO in
// production and an in-memory fake in tests.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, bucket, key string) error
	PublicURL(bucket, key string) string
}

// MinIOStorage implements ObjectStorage against a MinIO endpoint.
type MinIOStorage struct {
	client *minio.Client
}

func NewMinIOStorage(cfg config.MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinIOStorage{client: client}, nil
}

// EnsureBuckets creates any missing buckets. Called once at startup.
func (s *MinIOStorage) EnsureBuckets(ctx context.Context, buckets []string) error {
	for _, bucket := range buckets {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

func (s *MinIOStorage) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(
		ctx,
		bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload to minio: %w", err)
	}
	return s.PublicURL(bucket, key), nil
}

func (s *MinIOStorage) Remove(ctx context.Context, bucket, key string) error {
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// PublicURL builds the publicly resolvable URL for an object.
func (s *MinIOStorage) PublicURL(bucket, key string) string {
	scheme := "http"
	if s.client.EndpointURL().Scheme == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, bucket, key)
}
