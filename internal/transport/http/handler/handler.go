package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"classifieds-api/internal/core/media"
	"classifieds-api/internal/domain"
)

// FieldImages multipart 中图片字段名
const FieldImages = "images"

type pageQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// readImages 非 multipart 请求返回空；单个文件最多读 max+1 字节，超限由上传器拒绝
func readImages(c *gin.Context, max int64) ([]media.Blob, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Validation("Invalid multipart form")
	}
	files := form.File[FieldImages]
	blobs := make([]media.Blob, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, max+1))
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		blobs = append(blobs, media.Blob{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return blobs, nil
}
