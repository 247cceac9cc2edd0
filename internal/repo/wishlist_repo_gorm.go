package repo

import (
	"context"

	"gorm.io/gorm"

	"classifieds-api/internal/domain"
)

type WishlistRepo struct{ db *gorm.DB }

func NewWishlistRepo(db *gorm.DB) *WishlistRepo { return &WishlistRepo{db: db} }

func (r *WishlistRepo) Create(ctx context.Context, w *domain.WishlistItem) error {
	return translate(r.db.WithContext(ctx).Omit("Ad").Create(w).Error)
}

// Delete 返回是否真的删除了记录
func (r *WishlistRepo) Delete(ctx context.Context, userID, adID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND ad_id = ?", userID, adID).
		Delete(&domain.WishlistItem{})
	return res.RowsAffected > 0, res.Error
}

func (r *WishlistRepo) Exists(ctx context.Context, userID, adID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.WishlistItem{}).
		Where("user_id = ? AND ad_id = ?", userID, adID).
		Count(&n).Error
	return n > 0, err
}

// Count 原始条数，包含广告已删除的条目
func (r *WishlistRepo) Count(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.WishlistItem{}).
		Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *WishlistRepo) ListResolved(ctx context.Context, userID string, offset, limit int) ([]domain.WishlistItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.WishlistItem{}).
		Joins("JOIN ads ON ads.id = wishlist_items.ad_id").
		Where("wishlist_items.user_id = ?", userID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]domain.WishlistItem, 0, limit)
	err := q.Select("wishlist_items.*").
		Preload("Ad.Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Ad.Owner").
		Order("wishlist_items.created_at DESC").
		Order("wishlist_items.id DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
