package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"classifieds-api/internal/core/auth"
	"classifieds-api/internal/core/cache"
	"classifieds-api/internal/core/config"
	"classifieds-api/internal/core/database"
	"classifieds-api/internal/core/events"
	"classifieds-api/internal/core/media"
	"classifieds-api/internal/core/server"
	"classifieds-api/internal/repo"
	"classifieds-api/internal/service"
	"classifieds-api/internal/transport/http/handler"
	mdw "classifieds-api/internal/transport/http/middleware"
)

// App 两个 binary 共享的依赖
type App struct {
	Cfg      *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Cache    *cache.Cache // 未配置 Redis 时为 nil
	Events   events.Publisher
	Uploader *media.Uploader

	Users    *service.UserService
	Ads      *service.AdService
	Wishlist *service.WishlistService
}

func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	a := &App{Cfg: cfg, Log: l}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             l,
	})
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	a.DB = db
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			a.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	// 接口变量保持 nil，避免 typed-nil
	var revoker auth.Revoker
	var loader cache.Loader
	if cfg.Redis.Addr != "" {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := c.Ping(ctx); err != nil {
			// 缓存不是必需的，启动时不可达只告警
			l.Warn("redis ping failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		a.Cache, revoker, loader = c, c, c
	}

	store, err := media.NewStore(ctx, cfg.Media, l)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("media store: %w", err)
	}
	a.Uploader = media.NewUploader(store, cfg.Media, l)

	a.Events = events.Nop{}
	if cfg.NATS.URL != "" {
		p, err := events.NewNATS(cfg.NATS.URL, cfg.NATS.SubjectPrefix, l)
		if err != nil {
			l.Warn("nats connect failed, events disabled", zap.Error(err))
		} else {
			a.Events = p
		}
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	ads := repo.NewAdRepo(db)
	a.Users = service.NewUserService(repo.NewUserRepo(db), jwter, revoker, a.Events, l)
	a.Ads = service.NewAdService(ads, a.Uploader, a.Events, l).
		WithSearchCache(loader, time.Duration(cfg.Redis.SearchTTLSec)*time.Second)
	a.Wishlist = service.NewWishlistService(repo.NewWishlistRepo(db), ads, a.Events, l)
	return a, nil
}

func (a *App) CookieOpts() handler.CookieOpts {
	return handler.CookieOpts{
		Name:     a.Cfg.Cookie.Name,
		Domain:   a.Cfg.Cookie.Domain,
		Secure:   a.Cfg.Cookie.Secure,
		SameSite: handler.ParseSameSite(a.Cfg.Cookie.SameSite),
		MaxAge:   time.Duration(a.Cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
}

// Auth 登录校验中间件；role 为空表示任意已登录用户
func (a *App) Auth(role string) gin.HandlerFunc {
	return mdw.AuthJWT(a.Users, a.Cfg.Cookie.Name, role, a.Log)
}

func (a *App) ServerOptions(name string) server.Options {
	return server.Options{Name: name, Origins: a.Cfg.CORS.AllowedOrigins, Limits: a.Cfg.Limits}
}

// APIModules 用户端全部模块
func (a *App) APIModules() []any {
	authn := a.Auth("")
	return []any{
		handler.NewUserHandler(a.Users, a.CookieOpts(), authn, a.Log),
		handler.NewAdHandler(a.Ads, authn, a.Uploader.MaxBytes(), a.Log),
		handler.NewWishlistHandler(a.Wishlist, authn, a.Log),
	}
}

func (a *App) Close() {
	if a.Events != nil {
		a.Events.Close()
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			a.Log.Warn("db close", zap.Error(err))
		}
	}
}
