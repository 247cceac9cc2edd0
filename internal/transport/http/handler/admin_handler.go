package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classifieds-api/internal/domain"
	"classifieds-api/internal/service"
	"classifieds-api/internal/transport/http/ez"
)

// AdminHandler 管理端：用户列表、广告列表、下架
type AdminHandler struct {
	users *service.UserService
	ads   *service.AdService
	log   *zap.Logger
}

func NewAdminHandler(users *service.UserService, ads *service.AdService, l *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, ads: ads, log: l}
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, h.log)
	roles := []string{domain.RoleAdmin}

	type userQ struct {
		pageQuery
		Q string `form:"q"` // 按 email / fullname 模糊搜
	}
	ez.RegisterAction(e, ez.Action[userQ]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *userQ) (gin.H, error) {
			users, p, err := h.users.List(c.Request.Context(), in.Q, in.Page, in.Limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"users": users, "pagination": p}, nil
		},
	})

	type adQ struct {
		pageQuery
		Status string `form:"status"`
	}
	ez.RegisterAction(e, ez.Action[adQ]{
		Method: http.MethodGet,
		Path:   "/ads",
		Binder: ez.BindQuery,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *adQ) (gin.H, error) {
			page, err := h.ads.ListAll(c.Request.Context(), in.Status, in.Page, in.Limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"ads": page.Ads, "pagination": page.Pagination}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}]{
		Method:  http.MethodPost,
		Path:    "/ads/:id/deactivate",
		Binder:  ez.BindNone,
		Auth:    true,
		Roles:   roles,
		Message: "Ad deactivated successfully",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			ad, err := h.ads.Deactivate(c.Request.Context(), c.Param("id"))
			if err != nil {
				return nil, err
			}
			return gin.H{"ad": ad}, nil
		},
	})
}
