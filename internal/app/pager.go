package app

import (
	"fmt"

	"quiz-admin-console/internal/domain"
)

// Pager is the pagination control state of a list view.
type Pager struct {
	Page        int    `json:"page"`
	TotalPages  int    `json:"totalPages"`
	Total       int    `json:"total"`
	ShowingFrom int    `json:"showingFrom"`
	ShowingTo   int    `json:"showingTo"`
	HasPrev     bool   `json:"hasPrev"`
	HasNext     bool   `json:"hasNext"`
	Pages       []int  `json:"pages"`
	Summary     string `json:"summary"`
}

// NewPager derives the controls from backend paging metadata. window limits the
// page buttons to a sliding range around the current page; 0 shows every page.
func NewPager(p domain.Pagination, requested, window int) Pager {
	page := p.Page
	if page <= 0 {
		page = requested
	}
	if page <= 0 {
		page = 1
	}
	from, to := p.ShowingFrom, p.ShowingTo
	if from == 0 && to == 0 && p.Total > 0 && p.Limit > 0 {
		from = (page-1)*p.Limit + 1
		to = page * p.Limit
		if to > p.Total {
			to = p.Total
		}
	}

	pager := Pager{
		Page:        page,
		TotalPages:  p.TotalPages,
		Total:       p.Total,
		ShowingFrom: from,
		ShowingTo:   to,
		HasPrev:     page > 1,
		HasNext:     page < p.TotalPages,
		Pages:       pageButtons(page, p.TotalPages, window),
	}
	pager.Summary = fmt.Sprintf("Showing %d to %d of %d results", from, to, p.Total)
	return pager
}

func pageButtons(page, total, window int) []int {
	pages := []int{}
	if total <= 0 {
		return pages
	}
	start, end := 1, total
	if window > 0 && total > window {
		start = page - window/2
		if start < 1 {
			start = 1
		}
		end = start + window - 1
		if end > total {
			end = total
			start = end - window + 1
		}
	}
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
