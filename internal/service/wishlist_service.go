package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"classifieds-api/internal/core/events"
	"classifieds-api/internal/core/metrics"
	"classifieds-api/internal/domain"
	"classifieds-api/pkg/utils"
)

type WishlistPage struct {
	WishlistItems []domain.WishlistItem `json:"wishlistItems"`
	Pagination    domain.Pagination     `json:"pagination"`
}

type WishlistService struct {
	items  domain.WishlistRepository
	ads    domain.AdRepository
	events events.Publisher
	log    *zap.Logger
}

func NewWishlistService(items domain.WishlistRepository, ads domain.AdRepository, ev events.Publisher, l *zap.Logger) *WishlistService {
	if ev == nil {
		ev = events.Nop{}
	}
	return &WishlistService{items: items, ads: ads, events: ev, log: l}
}

func (s *WishlistService) Add(ctx context.Context, userID, adID string) (*domain.WishlistItem, error) {
	ad, err := s.ads.FindByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad == nil || ad.Status != domain.StatusActive {
		return nil, domain.NotFound("Ad not found or not available")
	}
	if ad.UserID == userID {
		return nil, domain.Validation("You cannot add your own ad to wishlist")
	}

	exists, err := s.items.Exists(ctx, userID, adID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Conflict("Ad is already in your wishlist")
	}

	w := &domain.WishlistItem{ID: utils.NewID(), UserID: userID, AdID: adID}
	if err := s.items.Create(ctx, w); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Conflict("Ad is already in your wishlist")
		}
		return nil, err
	}
	metrics.WishlistOps.WithLabelValues("add").Inc()
	events.Emit(ctx, s.events, s.log, events.WishlistAdded, map[string]string{"user": userID, "ad": adID})
	return w, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, adID string) error {
	removed, err := s.items.Delete(ctx, userID, adID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.NotFound("Ad not found in wishlist")
	}
	metrics.WishlistOps.WithLabelValues("remove").Inc()
	events.Emit(ctx, s.events, s.log, events.WishlistRemoved, map[string]string{"user": userID, "ad": adID})
	return nil
}

// List 最新在前；广告已删除的条目不返回
func (s *WishlistService) List(ctx context.Context, userID string, page, limit int) (*WishlistPage, error) {
	page, limit = domain.NormalizePage(page, limit, domain.DefaultWishlistLimit)
	items, total, err := s.items.ListResolved(ctx, userID, domain.Offset(page, limit), limit)
	if err != nil {
		return nil, err
	}
	return &WishlistPage{WishlistItems: items, Pagination: domain.NewPagination(page, limit, total)}, nil
}

func (s *WishlistService) Contains(ctx context.Context, userID, adID string) (bool, error) {
	return s.items.Exists(ctx, userID, adID)
}

func (s *WishlistService) Count(ctx context.Context, userID string) (int64, error) {
	return s.items.Count(ctx, userID)
}
