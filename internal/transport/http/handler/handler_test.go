package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func ctxWith(req *http.Request) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestReadImagesNotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	files, err := readImages(ctxWith(req), 1<<20)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestReadImagesTruncatesAtLimit(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "x"))
	for _, name := range []string{"a.jpg", "b.jpg"} {
		fw, err := mw.CreateFormFile(FieldImages, name)
		require.NoError(t, err)
		_, _ = fw.Write(bytes.Repeat([]byte{0xff}, 64))
	}
	fw, err := mw.CreateFormFile("other", "c.jpg")
	require.NoError(t, err)
	_, _ = fw.Write([]byte{1})
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	files, err := readImages(ctxWith(req), 10)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.jpg", files[0].Filename)
	// 多读 1 字节，交给上传器判定超限
	assert.Len(t, files[0].Data, 11)
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteNoneMode, ParseSameSite("None"))
	assert.Equal(t, http.SameSiteLaxMode, ParseSameSite("lax"))
	assert.Equal(t, http.SameSiteStrictMode, ParseSameSite("strict"))
	assert.Equal(t, http.SameSiteDefaultMode, ParseSameSite(""))
}
