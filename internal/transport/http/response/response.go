package response

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classifieds-api/internal/domain"
)

// OK {success: true, message?, ...payload}
func OK(msg string, payload gin.H) gin.H {
	body := gin.H{"success": true}
	if msg != "" {
		body["message"] = msg
	}
	for k, v := range payload {
		body[k] = v
	}
	return body
}

// Fail {success: false, message, errors?}
func Fail(msg string, fields []domain.FieldError) gin.H {
	body := gin.H{"success": false, "message": msg}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	return body
}

// Abort 中间件直接以状态码默认提示终止
func Abort(c *gin.Context, status int) {
	c.AbortWithStatusJSON(status, Fail(Msg(status), nil))
}

// Error 业务错误按类型映射；未分类错误只记日志，不把细节返回给客户端
func Error(c *gin.Context, l *zap.Logger, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		l.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("rid", c.GetString("rid")),
			zap.Error(err))
		c.AbortWithStatusJSON(500, Fail(Msg(500), nil))
		return
	}
	status := StatusOf(de.Kind)
	if status >= 500 {
		l.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("rid", c.GetString("rid")),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, Fail(de.Msg, de.Fields))
}
