package media

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"classifieds-api/internal/core/config"
)

// Store 远端对象存储
type Store interface {
	// Put 上传对象并返回可公开访问的 URL
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, keys []string) error
}

var ErrUnsupportedDriver = errors.New("unsupported media driver")

// NewStore 按配置选择 minio 或 s3
func NewStore(ctx context.Context, c config.Media, l *zap.Logger) (Store, error) {
	switch strings.ToLower(c.Driver) {
	case "", "minio":
		return NewMinio(ctx, c, l)
	case "s3":
		return NewS3(ctx, c)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, ErrUnsupportedDriver
	}
}

func publicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}
