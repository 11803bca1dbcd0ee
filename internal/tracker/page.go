package tracker

const (
	DefaultPerPage = 50
	MaxPerPage     = 500
)

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	From       int `json:"from"`
	To         int `json:"to"`
}

// Paginate slices items for a 1-based page. Out-of-range pages clamp to the
// nearest valid one.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	total := len(items)
	pages := (total + perPage - 1) / perPage
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)
	p := Page[T]{
		Items:      items[start:end],
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
		To:         end,
	}
	if total > 0 {
		p.From = start + 1
	}
	if p.Items == nil {
		p.Items = []T{}
	}
	return p
}
