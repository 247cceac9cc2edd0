package domain

const (
	DefaultAdLimit       = 12
	DefaultWishlistLimit = 20
	MaxLimit             = 50
)

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NormalizePage page 从 1 开始；limit 为 0 取默认值，其余收敛到 [1, MaxLimit]
func NormalizePage(page, limit, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit == 0: // 未传
		limit = def
	case limit < 1:
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func Offset(page, limit int) int { return (page - 1) * limit }

func NewPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		TotalCount:  total,
		Limit:       limit,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}
