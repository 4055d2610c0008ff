package cards

import (
	"context"
	"strings"

	"github.com/ukydev/office-duty-card/internal/models"
)

// Paging limits for Query.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Query selects a page of the card list. Search is matched case-insensitively
// as a substring of the searchable fields.
type Query struct {
	Search   string
	Page     int
	PageSize int
}

// Page is one page of query results.
type Page struct {
	Cards      []models.Card `json:"cards"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// Matches reports whether card matches the search term. An empty term
// matches everything.
func Matches(card models.Card, search string) bool {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return true
	}
	for _, v := range card.SearchText() {
		if strings.Contains(v, term) {
			return true
		}
	}
	return false
}

// Query filters and paginates the card list.
func (s *Service) Query(ctx context.Context, q Query) (Page, error) {
	all, err := s.List(ctx)
	if err != nil {
		return Page{}, err
	}

	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Page < 1 {
		q.Page = 1
	}

	filtered := make([]models.Card, 0, len(all))
	for _, c := range all {
		if Matches(c, q.Search) {
			filtered = append(filtered, c)
		}
	}

	page := Page{
		Cards:      []models.Card{},
		Total:      len(filtered),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: (len(filtered) + q.PageSize - 1) / q.PageSize,
	}
	if q.Page > page.TotalPages {
		return page, nil
	}
	start := (q.Page - 1) * q.PageSize
	end := min(start+q.PageSize, len(filtered))
	page.Cards = filtered[start:end]
	return page, nil
}
