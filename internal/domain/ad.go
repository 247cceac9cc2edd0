package domain

import (
	"context"
	"time"
)

type AdStatus string

const (
	StatusActive   AdStatus = "active"
	StatusSold     AdStatus = "sold"
	StatusInactive AdStatus = "inactive"
)

func (s AdStatus) Valid() bool {
	switch s {
	case StatusActive, StatusSold, StatusInactive:
		return true
	}
	return false
}

// CanTransition active -> sold | inactive；其余状态为终态
func (s AdStatus) CanTransition(to AdStatus) bool {
	if s == to {
		return true
	}
	return s == StatusActive && (to == StatusSold || to == StatusInactive)
}

var Categories = []string{
	"Electronics",
	"Vehicles",
	"Home & Furniture",
	"Fashion",
	"Books, Sports & Hobbies",
	"Jobs",
	"Services",
	"Real Estate",
	"Pets",
	"Other",
}

var Conditions = []string{"New", "Like New", "Good", "Fair", "Poor"}

func ValidCategory(c string) bool  { return contains(Categories, c) }
func ValidCondition(c string) bool { return contains(Conditions, c) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

const (
	MinImages = 1
	MaxImages = 4
)

type Location struct {
	City    string `gorm:"size:50;not null;index" json:"city"`
	State   string `gorm:"size:50;not null" json:"state"`
	Pincode string `gorm:"size:6;not null" json:"pincode"`
}

// Image 远端图片引用
type Image struct {
	URL      string `json:"url"`
	RemoteID string `json:"publicId"`
}

type AdImage struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	AdID     string `gorm:"size:32;not null;index" json:"-"`
	Position int    `gorm:"not null" json:"-"`
	URL      string `gorm:"size:512;not null" json:"url"`
	RemoteID string `gorm:"size:255;not null" json:"publicId"`
}

func (AdImage) TableName() string { return "ad_images" }

// AdOwner 广告中附带的发布者信息（fullname + email）
type AdOwner struct {
	ID       string `gorm:"primaryKey;size:32" json:"_id"`
	Email    string `json:"email"`
	FullName string `gorm:"column:fullname" json:"fullname"`
}

func (AdOwner) TableName() string { return "users" }

type Ad struct {
	ID          string    `gorm:"primaryKey;size:32" json:"_id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"size:2000;not null" json:"description"`
	Price       float64   `gorm:"type:decimal(12,2);not null;index" json:"price"`
	Category    string    `gorm:"size:64;not null;index" json:"category"`
	Condition   string    `gorm:"column:item_condition;size:16;not null" json:"condition"`
	Images      []AdImage `gorm:"foreignKey:AdID" json:"images"`
	Location    Location  `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Slug        string    `gorm:"uniqueIndex;size:160;not null" json:"slug"`
	UserID      string    `gorm:"size:32;not null;index" json:"-"`
	Owner       *AdOwner  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status      AdStatus  `gorm:"size:16;not null;default:active;index" json:"status"`
	Views       int64     `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Ad) TableName() string { return "ads" }

func (a *Ad) RemoteIDs() []string {
	ids := make([]string, 0, len(a.Images))
	for _, img := range a.Images {
		ids = append(ids, img.RemoteID)
	}
	return ids
}

func (a *Ad) SetImages(imgs []Image) {
	a.Images = make([]AdImage, 0, len(imgs))
	for i, img := range imgs {
		a.Images = append(a.Images, AdImage{AdID: a.ID, Position: i, URL: img.URL, RemoteID: img.RemoteID})
	}
}

// AdFields 可修改字段；nil 表示未提供
type AdFields struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *string
	Condition   *string
	City        *string
	State       *string
	Pincode     *string
	Status      *AdStatus
}

type SortKey string

const (
	SortCreatedAt SortKey = "createdAt"
	SortPrice     SortKey = "price"
	SortTitle     SortKey = "title"
)

func (k SortKey) Valid() bool {
	return k == SortCreatedAt || k == SortPrice || k == SortTitle
}

type AdFilter struct {
	Query     string
	Category  string
	Condition string
	City      string
	State     string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    SortKey
	SortDesc  bool
	Page      int
	Limit     int
}

type AdRepository interface {
	Create(ctx context.Context, ad *Ad) error
	Search(ctx context.Context, f AdFilter) ([]Ad, int64, error)
	FindActiveBySlug(ctx context.Context, slug string) (*Ad, error)
	FindByID(ctx context.Context, id string) (*Ad, error)
	FindOwned(ctx context.Context, id, ownerID string) (*Ad, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]Ad, int64, error)
	ListAll(ctx context.Context, status AdStatus, offset, limit int) ([]Ad, int64, error)
	IncrementViews(ctx context.Context, id string) error
	Update(ctx context.Context, ad *Ad, replaceImages bool) error
	Delete(ctx context.Context, id string) error
}
