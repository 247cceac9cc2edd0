package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"classifieds-api/internal/core/server"
	"classifieds-api/internal/domain"
	mdw "classifieds-api/internal/transport/http/middleware"
)

// NewAdminEngine 管理端 v1，统一要求 admin 角色
func NewAdminEngine(l *zap.Logger, o server.Options, a mdw.Authenticator, cookie string, reg *Registry) *gin.Engine {
	r := server.NewEngine(l, o)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(a, cookie, domain.RoleAdmin, l))
	reg.MountAdmin(admin)
	return r
}
