package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classifieds-api/internal/service"
	"classifieds-api/internal/transport/http/ez"
)

type AdHandler struct {
	ads      *service.AdService
	auth     gin.HandlerFunc
	maxImage int64
	log      *zap.Logger
}

func NewAdHandler(ads *service.AdService, authn gin.HandlerFunc, maxImageBytes int64, l *zap.Logger) *AdHandler {
	return &AdHandler{ads: ads, auth: authn, maxImage: maxImageBytes, log: l}
}

func (h *AdHandler) Priority() int { return 20 }

func (h *AdHandler) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/ads")
	public := ez.New(g, h.log)
	authed := ez.New(g.Group("", h.auth), h.log)

	ez.RegisterAction(public, ez.Action[service.SearchInput]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *service.SearchInput) (gin.H, error) {
			page, err := h.ads.Search(c.Request.Context(), *in)
			if err != nil {
				return nil, err
			}
			return gin.H{"ads": page.Ads, "pagination": page.Pagination}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[pageQuery]{
		Method: http.MethodGet,
		Path:   "/user/my-ads",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *pageQuery) (gin.H, error) {
			page, err := h.ads.ListByOwner(c.Request.Context(), ez.UserID(c), in.Page, in.Limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"ads": page.Ads, "pagination": page.Pagination}, nil
		},
	})

	ez.RegisterAction(public, ez.Action[struct{}]{
		Method: http.MethodGet,
		Path:   "/:slug",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			ad, err := h.ads.GetBySlug(c.Request.Context(), c.Param("slug"))
			if err != nil {
				return nil, err
			}
			return gin.H{"ad": ad}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[service.AdInput]{
		Method:  http.MethodPost,
		Path:    "",
		Binder:  ez.BindForm,
		Auth:    true,
		Status:  http.StatusCreated,
		Message: "Ad created successfully",
		Handler: func(c *gin.Context, in *service.AdInput) (gin.H, error) {
			files, err := readImages(c, h.maxImage)
			if err != nil {
				return nil, err
			}
			ad, err := h.ads.Create(c.Request.Context(), ez.UserID(c), *in, files)
			if err != nil {
				return nil, err
			}
			return gin.H{"ad": ad}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[service.AdUpdateInput]{
		Method:  http.MethodPut,
		Path:    "/:id",
		Binder:  ez.BindForm,
		Auth:    true,
		Message: "Ad updated successfully",
		Handler: func(c *gin.Context, in *service.AdUpdateInput) (gin.H, error) {
			files, err := readImages(c, h.maxImage)
			if err != nil {
				return nil, err
			}
			ad, err := h.ads.Update(c.Request.Context(), c.Param("id"), ez.UserID(c), *in, files)
			if err != nil {
				return nil, err
			}
			return gin.H{"ad": ad}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}]{
		Method:  http.MethodDelete,
		Path:    "/:id",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: "Ad deleted successfully",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			return nil, h.ads.Delete(c.Request.Context(), c.Param("id"), ez.UserID(c))
		},
	})
}
