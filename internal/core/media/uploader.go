package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"classifieds-api/internal/core/config"
	"classifieds-api/internal/core/metrics"
	"classifieds-api/internal/domain"
)

// Blob 内存中的待上传文件
type Blob struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Uploader struct {
	store     Store
	folder    string
	maxBytes  int64
	transform Transform
	log       *zap.Logger
}

func NewUploader(s Store, c config.Media, l *zap.Logger) *Uploader {
	maxMB := c.MaxFileMB
	if maxMB <= 0 {
		maxMB = 5
	}
	return &Uploader{
		store:    s,
		folder:   strings.Trim(c.Folder, "/"),
		maxBytes: int64(maxMB) << 20,
		transform: Transform{
			MaxWidth:    c.MaxWidth,
			MaxHeight:   c.MaxHeight,
			JPEGQuality: c.JPEGQuality,
		},
		log: l,
	}
}

func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

// Validate 数量 1-4、必须是可解码的图片、单个不超过上限
func (u *Uploader) Validate(blobs []Blob) error {
	if len(blobs) < domain.MinImages || len(blobs) > domain.MaxImages {
		return domain.Validation(fmt.Sprintf("Please upload between %d and %d images", domain.MinImages, domain.MaxImages),
			domain.FieldError{Field: "images", Message: "Image count must be between 1 and 4"})
	}
	for _, b := range blobs {
		if !strings.HasPrefix(contentTypeOf(b), "image/") {
			return domain.Validation("Only image files are allowed",
				domain.FieldError{Field: "images", Message: b.Filename + " is not an image"})
		}
		if int64(len(b.Data)) > u.maxBytes {
			return domain.Validation(fmt.Sprintf("Each image must be at most %dMB", u.maxBytes>>20),
				domain.FieldError{Field: "images", Message: b.Filename + " is too large"})
		}
		// 只读头部，在删除旧图之前就拒绝无法解码的文件
		if _, _, err := image.DecodeConfig(bytes.NewReader(b.Data)); err != nil {
			return domain.Validation("Invalid image file",
				domain.FieldError{Field: "images", Message: b.Filename + " could not be decoded"})
		}
	}
	return nil
}

// UploadBatch 并发上传，结果按输入顺序返回；任意一张失败则清理已上传的并整体失败
func (u *Uploader) UploadBatch(ctx context.Context, blobs []Blob) ([]domain.Image, error) {
	if err := u.Validate(blobs); err != nil {
		return nil, err
	}

	out := make([]domain.Image, len(blobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(domain.MaxImages)
	for i, b := range blobs {
		i, b := i, b
		g.Go(func() error {
			data, ct, ext, err := u.transform.Apply(b.Data)
			if err != nil {
				if errors.Is(err, ErrNotImage) {
					return domain.Validation("Invalid image file",
						domain.FieldError{Field: "images", Message: b.Filename + " could not be decoded"})
				}
				return err
			}
			key := path.Join(u.folder, uuid.NewString()+ext)
			url, err := u.store.Put(gctx, key, ct, data)
			if err != nil {
				return err
			}
			out[i] = domain.Image{URL: url, RemoteID: key}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metrics.ImagesUploaded.WithLabelValues("failed").Add(float64(len(blobs)))
		var done []string
		for _, img := range out {
			if img.RemoteID != "" {
				done = append(done, img.RemoteID)
			}
		}
		u.DeleteBatch(context.WithoutCancel(ctx), done)
		if domain.IsKind(err, domain.KindValidation) {
			return nil, err
		}
		u.log.Error("image upload failed", zap.Int("files", len(blobs)), zap.Error(err))
		return nil, domain.Upload("Failed to upload images", err)
	}
	metrics.ImagesUploaded.WithLabelValues("ok").Add(float64(len(blobs)))
	return out, nil
}

// DeleteBatch 尽力删除，失败只记日志
func (u *Uploader) DeleteBatch(ctx context.Context, remoteIDs []string) {
	if len(remoteIDs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := u.store.Delete(ctx, remoteIDs); err != nil {
		u.log.Warn("delete images failed", zap.Strings("ids", remoteIDs), zap.Error(err))
	}
}

func contentTypeOf(b Blob) string {
	ct := strings.ToLower(strings.TrimSpace(b.ContentType))
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(b.Data)
	}
	return ct
}
