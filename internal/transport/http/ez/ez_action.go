package ez

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classifieds-api/internal/domain"
	resp "classifieds-api/internal/transport/http/response"
)

// 上下文中的身份信息，由 middleware.Auth 写入
const (
	KeyUserID = "userId"
	KeyRole   = "role"
	KeyEmail  = "email"
	KeyClaims = "claims"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ { return EZ{g: g, log: l} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // JSON body
	BindQuery Binder = "query" // URL ?a=b
	BindForm  Binder = "form"  // multipart/form-data 或 urlencoded
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// Action 一个接口：I 入参
// Handler 返回的 payload 平铺到 {success, message} 旁
type Action[I any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    bool     // 要求已登录
	Roles   []string // 限定角色（可选）
	Status  int      // 成功状态码，默认 200
	Message string   // 成功提示（可选）
	Handler func(c *gin.Context, in *I) (gin.H, error)
}

func RegisterAction[I any](e EZ, a Action[I]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			if c.GetString(KeyUserID) == "" {
				resp.Abort(c, http.StatusUnauthorized)
				return
			}
			if len(a.Roles) > 0 && !slices.Contains(a.Roles, c.GetString(KeyRole)) {
				resp.Abort(c, http.StatusForbidden)
				return
			}
		}

		// 2) 绑定入参（校验由 service 负责）
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindForm:
			bindErr = c.ShouldBind(&in)
		}
		if bindErr != nil {
			resp.Error(c, e.log, domain.Validation("Invalid request data",
				domain.FieldError{Field: "body", Message: bindErr.Error()}))
			return
		}

		// 3) 执行
		out, err := a.Handler(c, &in)
		if err != nil {
			resp.Error(c, e.log, err)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, resp.OK(a.Message, out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// UserID 当前登录用户
func UserID(c *gin.Context) string { return c.GetString(KeyUserID) }
