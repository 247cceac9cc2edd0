package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"classifieds-api/internal/core/config"
)

type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinio(ctx context.Context, c config.Media, l *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
		Region: c.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client %s: %w", c.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", c.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, c.Bucket, minio.MakeBucketOptions{Region: c.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", c.Bucket, err)
		}
		l.Info("media bucket created", zap.String("bucket", c.Bucket))
	}

	base := c.PublicBaseURL
	if base == "" {
		base = client.EndpointURL().String()
	}
	return &MinioStore{client: client, bucket: c.Bucket, baseURL: base}, nil
}

func (s *MinioStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return publicURL(s.baseURL, s.bucket, key), nil
}

func (s *MinioStore) Delete(ctx context.Context, keys []string) error {
	var errs []error
	for _, k := range keys {
		if err := s.client.RemoveObject(ctx, s.bucket, k, minio.RemoveObjectOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}
