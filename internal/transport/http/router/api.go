package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"classifieds-api/internal/core/server"
)

// NewAPIEngine 用户端：/api 下挂全部模块
func NewAPIEngine(l *zap.Logger, o server.Options, reg *Registry) *gin.Engine {
	r := server.NewEngine(l, o)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Classifieds API is running!"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	reg.MountAPI(r.Group("/api"))
	return r
}
