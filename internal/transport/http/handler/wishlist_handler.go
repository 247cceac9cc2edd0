package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classifieds-api/internal/service"
	"classifieds-api/internal/transport/http/ez"
)

type WishlistHandler struct {
	wishlist *service.WishlistService
	auth     gin.HandlerFunc
	log      *zap.Logger
}

func NewWishlistHandler(w *service.WishlistService, authn gin.HandlerFunc, l *zap.Logger) *WishlistHandler {
	return &WishlistHandler{wishlist: w, auth: authn, log: l}
}

func (h *WishlistHandler) Priority() int { return 30 }

// MountAPI 全部需要登录
func (h *WishlistHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/wishlist", h.auth), h.log)

	ez.RegisterAction(e, ez.Action[pageQuery]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *pageQuery) (gin.H, error) {
			page, err := h.wishlist.List(c.Request.Context(), ez.UserID(c), in.Page, in.Limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"data": page}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}]{
		Method: http.MethodGet,
		Path:   "/count",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			n, err := h.wishlist.Count(c.Request.Context(), ez.UserID(c))
			if err != nil {
				return nil, err
			}
			return gin.H{"data": gin.H{"count": n}}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}]{
		Method: http.MethodGet,
		Path:   "/check/:adId",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			ok, err := h.wishlist.Contains(c.Request.Context(), ez.UserID(c), c.Param("adId"))
			if err != nil {
				return nil, err
			}
			return gin.H{"data": gin.H{"isInWishlist": ok}}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}]{
		Method:  http.MethodPost,
		Path:    "/:adId",
		Binder:  ez.BindNone,
		Auth:    true,
		Status:  http.StatusCreated,
		Message: "Ad added to wishlist successfully",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			item, err := h.wishlist.Add(c.Request.Context(), ez.UserID(c), c.Param("adId"))
			if err != nil {
				return nil, err
			}
			return gin.H{"data": item}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}]{
		Method:  http.MethodDelete,
		Path:    "/:adId",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: "Ad removed from wishlist successfully",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			return nil, h.wishlist.Remove(c.Request.Context(), ez.UserID(c), c.Param("adId"))
		},
	})
}
