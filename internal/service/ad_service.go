package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"classifieds-api/internal/core/cache"
	"classifieds-api/internal/core/events"
	"classifieds-api/internal/core/media"
	"classifieds-api/internal/core/metrics"
	"classifieds-api/internal/domain"
	"classifieds-api/internal/validate"
	"classifieds-api/pkg/utils"
)

// Media 图片上传/删除
type Media interface {
	Validate(blobs []media.Blob) error
	UploadBatch(ctx context.Context, blobs []media.Blob) ([]domain.Image, error)
	DeleteBatch(ctx context.Context, remoteIDs []string)
}

type AdInput struct {
	Title       string   `json:"title" form:"title" validate:"required,max=100"`
	Description string   `json:"description" form:"description" validate:"required,max=2000"`
	Price       *float64 `json:"price" form:"price" validate:"required,min=0,max=99999999"`
	Category    string   `json:"category" form:"category" validate:"required,category"`
	Condition   string   `json:"condition" form:"condition" validate:"required,condition"`
	City        string   `json:"city" form:"city" validate:"required,max=50"`
	State       string   `json:"state" form:"state" validate:"required,max=50"`
	Pincode     string   `json:"pincode" form:"pincode" validate:"required,pincode"`
}

// AdUpdateInput 部分更新；nil 表示不修改
type AdUpdateInput struct {
	Title       *string  `json:"title" form:"title" validate:"omitempty,min=1,max=100"`
	Description *string  `json:"description" form:"description" validate:"omitempty,min=1,max=2000"`
	Price       *float64 `json:"price" form:"price" validate:"omitempty,min=0,max=99999999"`
	Category    *string  `json:"category" form:"category" validate:"omitempty,category"`
	Condition   *string  `json:"condition" form:"condition" validate:"omitempty,condition"`
	City        *string  `json:"city" form:"city" validate:"omitempty,min=1,max=50"`
	State       *string  `json:"state" form:"state" validate:"omitempty,min=1,max=50"`
	Pincode     *string  `json:"pincode" form:"pincode" validate:"omitempty,pincode"`
	Status      *string  `json:"status" form:"status" validate:"omitempty,oneof=active sold inactive"`
}

type SearchInput struct {
	Query     string   `form:"query"`
	Category  string   `form:"category"`
	Condition string   `form:"condition" validate:"omitempty,condition"`
	City      string   `form:"city"`
	State     string   `form:"state"`
	MinPrice  *float64 `form:"minPrice" validate:"omitempty,min=0"`
	MaxPrice  *float64 `form:"maxPrice" validate:"omitempty,min=0"`
	Page      int      `form:"page" validate:"omitempty,min=1"`
	Limit     int      `form:"limit"`
	SortBy    string   `form:"sortBy" validate:"omitempty,oneof=createdAt price title"`
	SortOrder string   `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type AdPage struct {
	Ads        []domain.Ad       `json:"ads"`
	Pagination domain.Pagination `json:"pagination"`
}

type AdService struct {
	ads       domain.AdRepository
	media     Media
	cache     cache.Loader
	searchTTL time.Duration
	events    events.Publisher
	log       *zap.Logger
}

func NewAdService(ads domain.AdRepository, m Media, ev events.Publisher, l *zap.Logger) *AdService {
	if ev == nil {
		ev = events.Nop{}
	}
	return &AdService{ads: ads, media: m, events: ev, log: l}
}

// WithSearchCache 开启搜索结果缓存；ttl<=0 不生效
func (s *AdService) WithSearchCache(c cache.Loader, ttl time.Duration) *AdService {
	if c != nil && ttl > 0 {
		s.cache, s.searchTTL = c, ttl
	}
	return s
}

func (in *AdInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Pincode = strings.TrimSpace(in.Pincode)
}

func (in *AdUpdateInput) normalize() {
	in.Title = validate.TrimPtr(in.Title)
	in.Description = validate.TrimPtr(in.Description)
	in.City = validate.TrimPtr(in.City)
	in.State = validate.TrimPtr(in.State)
	in.Pincode = validate.TrimPtr(in.Pincode)
}

func imageCount(n int) error {
	if n < domain.MinImages {
		return domain.Validation("At least one image is required",
			domain.FieldError{Field: "images", Message: "At least one image is required"})
	}
	if n > domain.MaxImages {
		return domain.Validation("Maximum 4 images allowed",
			domain.FieldError{Field: "images", Message: "Maximum 4 images allowed"})
	}
	return nil
}

// Create 先上传图片再落库；落库失败时回收已上传的图片
func (s *AdService) Create(ctx context.Context, ownerID string, in AdInput, files []media.Blob) (*domain.Ad, error) {
	in.normalize()
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	if err := imageCount(len(files)); err != nil {
		return nil, err
	}

	imgs, err := s.media.UploadBatch(ctx, files)
	if err != nil {
		return nil, err
	}

	ad := &domain.Ad{
		ID:          utils.NewID(),
		Title:       in.Title,
		Description: in.Description,
		Price:       *in.Price,
		Category:    in.Category,
		Condition:   in.Condition,
		Location:    domain.Location{City: in.City, State: in.State, Pincode: in.Pincode},
		UserID:      ownerID,
		Status:      domain.StatusActive,
	}
	ad.SetImages(imgs)
	if err := s.ads.Create(ctx, ad); err != nil {
		s.media.DeleteBatch(context.WithoutCancel(ctx), ad.RemoteIDs())
		return nil, err
	}

	out, err := s.reload(ctx, ad)
	if err != nil {
		return nil, err
	}
	metrics.AdsCreated.Inc()
	events.Emit(ctx, s.events, s.log, events.AdCreated, adEvent(out))
	return out, nil
}

func (in SearchInput) filter() domain.AdFilter {
	page, limit := domain.NormalizePage(in.Page, in.Limit, domain.DefaultAdLimit)
	sortBy := domain.SortKey(in.SortBy)
	if !sortBy.Valid() {
		sortBy = domain.SortCreatedAt
	}
	return domain.AdFilter{
		Query:     strings.TrimSpace(in.Query),
		Category:  strings.TrimSpace(in.Category),
		Condition: in.Condition,
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		MinPrice:  in.MinPrice,
		MaxPrice:  in.MaxPrice,
		SortBy:    sortBy,
		SortDesc:  in.SortOrder != "asc",
		Page:      page,
		Limit:     limit,
	}
}

// Search 只返回 active 广告
func (s *AdService) Search(ctx context.Context, in SearchInput) (*AdPage, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	f := in.filter()

	load := func(ctx context.Context) (*AdPage, error) {
		metrics.SearchLoads.Inc()
		ads, total, err := s.ads.Search(ctx, f)
		if err != nil {
			return nil, err
		}
		return &AdPage{Ads: ads, Pagination: domain.NewPagination(f.Page, f.Limit, total)}, nil
	}
	if s.cache == nil {
		return load(ctx)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, searchKey(f), s.searchTTL, load)
}

func searchKey(f domain.AdFilter) string {
	b, _ := json.Marshal(f)
	sum := sha256.Sum256(b)
	return "ads:search:" + hex.EncodeToString(sum[:16])
}

// GetBySlug 先读后自增，返回值中的 views 为自增后的值
func (s *AdService) GetBySlug(ctx context.Context, slug string) (*domain.Ad, error) {
	ad, err := s.ads.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, domain.NotFound("Ad not found")
	}
	if err := s.ads.IncrementViews(ctx, ad.ID); err != nil {
		return nil, err
	}
	ad.Views++
	metrics.AdViews.Inc()
	return ad, nil
}

// ListByOwner 不过滤状态
func (s *AdService) ListByOwner(ctx context.Context, ownerID string, page, limit int) (*AdPage, error) {
	page, limit = domain.NormalizePage(page, limit, domain.DefaultAdLimit)
	ads, total, err := s.ads.ListByOwner(ctx, ownerID, domain.Offset(page, limit), limit)
	if err != nil {
		return nil, err
	}
	return &AdPage{Ads: ads, Pagination: domain.NewPagination(page, limit, total)}, nil
}

// Update 提供新图片时先删除旧图再上传；上传失败时广告将失去原图片
func (s *AdService) Update(ctx context.Context, adID, ownerID string, in AdUpdateInput, files []media.Blob) (*domain.Ad, error) {
	in.normalize()
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}

	ad, err := s.ads.FindOwned(ctx, adID, ownerID)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, domain.NotFound("Ad not found or unauthorized")
	}

	if in.Status != nil {
		to := domain.AdStatus(*in.Status)
		if !ad.Status.CanTransition(to) {
			return nil, domain.Validation(fmt.Sprintf("Cannot change status from %s to %s", ad.Status, to),
				domain.FieldError{Field: "status", Message: "Invalid status transition"})
		}
		ad.Status = to
	}

	replace := len(files) > 0
	if replace {
		if err := imageCount(len(files)); err != nil {
			return nil, err
		}
		if err := s.media.Validate(files); err != nil {
			return nil, err
		}
		s.media.DeleteBatch(ctx, ad.RemoteIDs())
		imgs, err := s.media.UploadBatch(ctx, files)
		if err != nil {
			s.log.Error("ad lost its images during update", zap.String("ad", ad.ID), zap.Error(err))
			s.clearImages(context.WithoutCancel(ctx), adID, ownerID)
			return nil, err
		}
		ad.SetImages(imgs)
	}

	applyFields(ad, in)
	if err := s.ads.Update(ctx, ad, replace); err != nil {
		if replace {
			s.media.DeleteBatch(context.WithoutCancel(ctx), ad.RemoteIDs())
		}
		return nil, err
	}

	out, err := s.reload(ctx, ad)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.events, s.log, events.AdUpdated, adEvent(out))
	return out, nil
}

// clearImages 旧图已删除而新图上传失败时，去掉指向已删除对象的图片记录
func (s *AdService) clearImages(ctx context.Context, adID, ownerID string) {
	ad, err := s.ads.FindOwned(ctx, adID, ownerID)
	if err != nil || ad == nil {
		s.log.Error("clear stale images failed", zap.String("ad", adID), zap.Error(err))
		return
	}
	ad.Images = nil
	if err := s.ads.Update(ctx, ad, true); err != nil {
		s.log.Error("clear stale images failed", zap.String("ad", adID), zap.Error(err))
	}
}

// applyFields 位置信息只覆盖提供了的子字段
func applyFields(ad *domain.Ad, in AdUpdateInput) {
	if in.Title != nil {
		ad.Title = *in.Title
	}
	if in.Description != nil {
		ad.Description = *in.Description
	}
	if in.Price != nil {
		ad.Price = *in.Price
	}
	if in.Category != nil {
		ad.Category = *in.Category
	}
	if in.Condition != nil {
		ad.Condition = *in.Condition
	}
	if in.City != nil {
		ad.Location.City = *in.City
	}
	if in.State != nil {
		ad.Location.State = *in.State
	}
	if in.Pincode != nil {
		ad.Location.Pincode = *in.Pincode
	}
}

// Delete 先删图片（尽力而为）再删记录
func (s *AdService) Delete(ctx context.Context, adID, ownerID string) error {
	ad, err := s.ads.FindOwned(ctx, adID, ownerID)
	if err != nil {
		return err
	}
	if ad == nil {
		return domain.NotFound("Ad not found or unauthorized")
	}
	s.media.DeleteBatch(ctx, ad.RemoteIDs())
	if err := s.ads.Delete(ctx, ad.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("Ad not found or unauthorized")
		}
		return err
	}
	metrics.AdsDeleted.Inc()
	events.Emit(ctx, s.events, s.log, events.AdDeleted, map[string]string{"id": ad.ID, "user": ad.UserID})
	return nil
}

// ListAll 管理端，status 为空表示全部
func (s *AdService) ListAll(ctx context.Context, status string, page, limit int) (*AdPage, error) {
	st := domain.AdStatus(status)
	if status != "" && !st.Valid() {
		return nil, domain.Validation("Invalid status",
			domain.FieldError{Field: "status", Message: "status must be one of: active sold inactive"})
	}
	page, limit = domain.NormalizePage(page, limit, domain.DefaultAdLimit)
	ads, total, err := s.ads.ListAll(ctx, st, domain.Offset(page, limit), limit)
	if err != nil {
		return nil, err
	}
	return &AdPage{Ads: ads, Pagination: domain.NewPagination(page, limit, total)}, nil
}

// Deactivate 管理端下架
func (s *AdService) Deactivate(ctx context.Context, adID string) (*domain.Ad, error) {
	ad, err := s.ads.FindByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, domain.NotFound("Ad not found")
	}
	if ad.Status != domain.StatusActive {
		return nil, domain.Validation("Only active ads can be deactivated")
	}
	ad.Status = domain.StatusInactive
	if err := s.ads.Update(ctx, ad, false); err != nil {
		return nil, err
	}
	out, err := s.reload(ctx, ad)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.events, s.log, events.AdUpdated, adEvent(out))
	return out, nil
}

func (s *AdService) reload(ctx context.Context, ad *domain.Ad) (*domain.Ad, error) {
	out, err := s.ads.FindByID(ctx, ad.ID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, domain.NotFound("Ad not found")
	}
	return out, nil
}

type adEventData struct {
	ID       string          `json:"id"`
	Slug     string          `json:"slug"`
	UserID   string          `json:"user"`
	Title    string          `json:"title"`
	Price    float64         `json:"price"`
	Category string          `json:"category"`
	Status   domain.AdStatus `json:"status"`
}

func adEvent(ad *domain.Ad) adEventData {
	return adEventData{
		ID: ad.ID, Slug: ad.Slug, UserID: ad.UserID, Title: ad.Title,
		Price: ad.Price, Category: ad.Category, Status: ad.Status,
	}
}
