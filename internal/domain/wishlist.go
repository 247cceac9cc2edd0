package domain

import (
	"context"
	"time"
)

type WishlistItem struct {
	ID        string    `gorm:"primaryKey;size:32" json:"_id"`
	UserID    string    `gorm:"size:32;not null;uniqueIndex:idx_wishlist_user_ad;index:idx_wishlist_user_created,priority:1" json:"user"`
	AdID      string    `gorm:"size:32;not null;uniqueIndex:idx_wishlist_user_ad" json:"-"`
	Ad        *Ad       `gorm:"foreignKey:AdID" json:"ad,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_wishlist_user_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (WishlistItem) TableName() string { return "wishlist_items" }

type WishlistRepository interface {
	Create(ctx context.Context, w *WishlistItem) error
	Delete(ctx context.Context, userID, adID string) (bool, error)
	Exists(ctx context.Context, userID, adID string) (bool, error)
	Count(ctx context.Context, userID string) (int64, error)
	// ListResolved 只返回广告仍存在的条目
	ListResolved(ctx context.Context, userID string, offset, limit int) ([]WishlistItem, int64, error)
}
