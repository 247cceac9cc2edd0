package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"classifieds-api/internal/domain"
)

// slug 冲突时最多重试次数
const slugAttempts = 5

type AdRepo struct{ db *gorm.DB }

func NewAdRepo(db *gorm.DB) *AdRepo { return &AdRepo{db: db} }

func withImages(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") })
}

func withDetails(db *gorm.DB) *gorm.DB { return withImages(db).Preload("Owner") }

// Create 写入广告及图片；slug 唯一冲突时换随机后缀重试
func (r *AdRepo) Create(ctx context.Context, ad *domain.Ad) error {
	if ad.Slug == "" {
		ad.Slug = domain.NewSlug(ad.Title)
	}
	var err error
	for i := 0; i < slugAttempts; i++ {
		for j := range ad.Images {
			ad.Images[j].ID = 0
			ad.Images[j].AdID = ad.ID
		}
		err = translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Omit("Owner").Create(ad).Error
		}))
		if !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
		ad.Slug = domain.NewSlug(ad.Title)
	}
	return err
}

func (r *AdRepo) Search(ctx context.Context, f domain.AdFilter) ([]domain.Ad, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Ad{}).Where("status = ?", domain.StatusActive)

	if terms := strings.Fields(f.Query); len(terms) > 0 {
		conds := make([]string, 0, len(terms))
		args := make([]any, 0, len(terms)*2)
		for _, t := range terms {
			like := likePattern(t)
			conds = append(conds, "LOWER(title) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(description) LIKE ? ESCAPE '"+likeEscape+"'")
			args = append(args, like, like)
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Condition != "" {
		q = q.Where("item_condition = ?", f.Condition)
	}
	if s := strings.TrimSpace(f.City); s != "" {
		q = q.Where("LOWER(location_city) LIKE ? ESCAPE '"+likeEscape+"'", likePattern(s))
	}
	if s := strings.TrimSpace(f.State); s != "" {
		q = q.Where("LOWER(location_state) LIKE ? ESCAPE '"+likeEscape+"'", likePattern(s))
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	ads := make([]domain.Ad, 0, f.Limit)
	err := withDetails(q).
		Order(orderBy(f.SortBy, f.SortDesc)).
		Offset(domain.Offset(f.Page, f.Limit)).
		Limit(f.Limit).
		Find(&ads).Error
	if err != nil {
		return nil, 0, err
	}
	return ads, total, nil
}

func orderBy(k domain.SortKey, desc bool) clause.OrderBy {
	col := "created_at"
	switch k {
	case domain.SortPrice:
		col = "price"
	case domain.SortTitle:
		col = "title"
	}
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: col}, Desc: desc},
		{Column: clause.Column{Name: "id"}, Desc: desc},
	}}
}

func (r *AdRepo) first(db *gorm.DB) (*domain.Ad, error) {
	var ad domain.Ad
	err := withDetails(db).First(&ad).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

// FindActiveBySlug 未找到或非 active 返回 nil, nil
func (r *AdRepo) FindActiveBySlug(ctx context.Context, slug string) (*domain.Ad, error) {
	return r.first(r.db.WithContext(ctx).Where("slug = ? AND status = ?", slug, domain.StatusActive))
}

func (r *AdRepo) FindByID(ctx context.Context, id string) (*domain.Ad, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindOwned 不存在与不属于该用户不做区分
func (r *AdRepo) FindOwned(ctx context.Context, id, ownerID string) (*domain.Ad, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID))
}

func (r *AdRepo) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]domain.Ad, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&domain.Ad{}).Where("user_id = ?", ownerID), offset, limit)
}

// ListAll status 为空时不过滤
func (r *AdRepo) ListAll(ctx context.Context, status domain.AdStatus, offset, limit int) ([]domain.Ad, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Ad{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return r.list(q, offset, limit)
}

func (r *AdRepo) list(q *gorm.DB, offset, limit int) ([]domain.Ad, int64, error) {
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	ads := make([]domain.Ad, 0, limit)
	err := withDetails(q).
		Order(orderBy(domain.SortCreatedAt, true)).
		Offset(offset).Limit(limit).
		Find(&ads).Error
	if err != nil {
		return nil, 0, err
	}
	return ads, total, nil
}

func (r *AdRepo) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Ad{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// Update 按整条记录写回可变字段；replaceImages 时整体替换图片
func (r *AdRepo) Update(ctx context.Context, ad *domain.Ad, replaceImages bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Ad{}).Where("id = ?", ad.ID).Updates(map[string]any{
			"title":            ad.Title,
			"description":      ad.Description,
			"price":            ad.Price,
			"category":         ad.Category,
			"item_condition":   ad.Condition,
			"location_city":    ad.Location.City,
			"location_state":   ad.Location.State,
			"location_pincode": ad.Location.Pincode,
			"status":           ad.Status,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		if !replaceImages {
			return nil
		}
		if err := tx.Where("ad_id = ?", ad.ID).Delete(&domain.AdImage{}).Error; err != nil {
			return err
		}
		for i := range ad.Images {
			ad.Images[i].ID = 0
			ad.Images[i].AdID = ad.ID
			ad.Images[i].Position = i
		}
		if len(ad.Images) == 0 {
			return nil
		}
		return tx.Create(&ad.Images).Error
	})
}

func (r *AdRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ad_id = ?", id).Delete(&domain.AdImage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Ad{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
