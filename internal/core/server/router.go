package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"classifieds-api/internal/core/config"
	mdw "classifieds-api/internal/transport/http/middleware"
)

type Options struct {
	Name    string // metrics 中的 server 标签
	Origins []string
	Limits  config.Limits
}

// NewEngine 两个 binary 共用的中间件链
func NewEngine(l *zap.Logger, o Options) *gin.Engine {
	r := gin.New()
	r.Use(
		mdw.RequestID(),
		ginzap.CustomRecoveryWithZap(l, true, mdw.RecoveryResponse),
	)
	// 未配置来源时不挂 CORS（cors.New 对空列表会 panic）
	if len(o.Origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     o.Origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization", mdw.HeaderRequestID},
			ExposeHeaders:    []string{mdw.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	lim := o.Limits
	if lim.RPS > 0 {
		r.Use(mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst))
	}
	if lim.PerIPRPS > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst, 10*time.Minute))
	}
	if lim.MaxConcurrent > 0 {
		r.Use(mdw.ConcurrencyLimit(lim.MaxConcurrent))
	}
	if lim.MaxBodyMB > 0 {
		r.Use(mdw.MaxBodyBytes(lim.MaxBodyMB << 20))
	}
	if lim.RequestTimeout > 0 {
		r.Use(mdw.Timeout(time.Duration(lim.RequestTimeout) * time.Second))
	}
	r.Use(mdw.Metrics(o.Name), mdw.AccessLog(l))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	return r
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    rt,
		WriteTimeout:   wt,
		IdleTimeout:    it,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
