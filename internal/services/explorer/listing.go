package explorer

// 列表分页的默认值与上限
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// ListParams 列表查询参数，未规整的原始值由 handler 直接透传
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Pagination 列表响应中的分页信息
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// normalizeListParams 规整分页与排序参数：
// page 最小为 1，limit 夹在 [1, 100] 内缺省 50，排序字段必须在白名单内
func normalizeListParams(p ListParams, sortable map[string]struct{}, defaultSortBy string) ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if _, ok := sortable[p.SortBy]; !ok {
		p.SortBy = defaultSortBy
	}
	if p.SortOrder != "desc" {
		p.SortOrder = "asc"
	}
	return p
}

func buildPagination(p ListParams, total int64) Pagination {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1 && total > 0,
	}
}
