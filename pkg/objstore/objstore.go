// Package objstore wraps the MinIO client behind the three operations
// the document service needs. Locators are opaque object keys; callers
// get at the payload only through short-lived presigned links.
package objstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/propline/bidboard/pkg/config"
)

// Store is the object-storage collaborator.
type Store interface {
	Put(ctx context.Context, locator string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, locator string) error
	PresignedGet(ctx context.Context, locator string, ttl time.Duration) (string, error)
}

type minioStore struct {
	client *minio.Client
	bucket string
}

// New connects to the configured MinIO endpoint and ensures the bucket
// exists.
func New(ctx context.Context) (Store, error) {
	cfg := config.GetConfig().ObjectStore
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("objstore: connect: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("objstore: bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("objstore: make bucket: %w", err)
		}
	}
	return &minioStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *minioStore) Put(ctx context.Context, locator string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, locator, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *minioStore) Remove(ctx context.Context, locator string) error {
	return s.client.RemoveObject(ctx, s.bucket, locator, minio.RemoveObjectOptions{})
}

func (s *minioStore) PresignedGet(ctx context.Context, locator string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, locator, ttl, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// NewLocator builds an object key scoped under the uploader and the
// linked entity, e.g. u42/project/7/9f0c...-invoice.pdf.
func NewLocator(uploaderID uint, kind string, entityID uint, filename string) string {
	return fmt.Sprintf("u%d/%s/%d/%s-%s", uploaderID, kind, entityID, uuid.NewString(), filename)
}
