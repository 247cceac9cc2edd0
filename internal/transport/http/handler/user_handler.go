package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classifieds-api/internal/service"
	"classifieds-api/internal/transport/http/ez"
	mdw "classifieds-api/internal/transport/http/middleware"
)

// CookieOpts 会话 cookie
type CookieOpts struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}

type UserHandler struct {
	users  *service.UserService
	cookie CookieOpts
	auth   gin.HandlerFunc
	log    *zap.Logger
}

func NewUserHandler(users *service.UserService, cookie CookieOpts, authn gin.HandlerFunc, l *zap.Logger) *UserHandler {
	return &UserHandler{users: users, cookie: cookie, auth: authn, log: l}
}

func (h *UserHandler) Priority() int { return 10 }

func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/users")
	public := ez.New(g, h.log)
	authed := ez.New(g.Group("", h.auth), h.log)

	ez.RegisterAction(public, ez.Action[service.RegisterInput]{
		Method:  http.MethodPost,
		Path:    "/register",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Message: "User registered successfully",
		Handler: func(c *gin.Context, in *service.RegisterInput) (gin.H, error) {
			u, err := h.users.Register(c.Request.Context(), *in)
			if err != nil {
				return nil, err
			}
			return gin.H{"user": u}, nil
		},
	})

	ez.RegisterAction(public, ez.Action[service.LoginInput]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  ez.BindJSON,
		Message: "Login successful",
		Handler: func(c *gin.Context, in *service.LoginInput) (gin.H, error) {
			sess, err := h.users.Login(c.Request.Context(), *in)
			if err != nil {
				return nil, err
			}
			h.setCookie(c, sess.Token, int(h.cookie.MaxAge.Seconds()))
			return gin.H{"user": sess.User}, nil
		},
	})

	// 登出不要求登录，始终成功
	ez.RegisterAction(public, ez.Action[struct{}]{
		Method:  http.MethodPost,
		Path:    "/logout",
		Binder:  ez.BindNone,
		Message: "Logout successful",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			h.users.Logout(c.Request.Context(), mdw.TokenFrom(c, h.cookie.Name))
			h.setCookie(c, "", -1)
			return nil, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			u, err := h.users.Get(c.Request.Context(), ez.UserID(c))
			if err != nil {
				return nil, err
			}
			return gin.H{"user": u}, nil
		},
	})
}

func (h *UserHandler) setCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   maxAge,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: h.cookie.SameSite,
	})
}
