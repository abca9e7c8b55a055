package services

import (
	"sort"
	"strings"

	"github.com/yeremiapane/restaurant-storefront/models"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 48

	SortDefault   = ""
	SortName      = "name"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

// MenuQuery is the state of the menu page controls.
type MenuQuery struct {
	Search        string   `form:"search"`
	CategoryID    uint     `form:"category_id"`
	CategorySlug  string   `form:"category"`
	DietaryTags   []string `form:"tag"`
	MaxSpice      *int     `form:"max_spice"`
	Featured      bool     `form:"featured"`
	TodaysMenu    bool     `form:"todays_menu"`
	DailySpecial  bool     `form:"daily_special"`
	NewDish       bool     `form:"new_dish"`
	DiscountCombo bool     `form:"discount_combo"`
	Sort          string   `form:"sort"`
	Page          int      `form:"page"`
	PageSize      int      `form:"page_size"`
}

// Filtered reports whether any filter narrows the menu.
func (q MenuQuery) Filtered() bool {
	return strings.TrimSpace(q.Search) != "" || q.CategoryID != 0 || q.CategorySlug != "" ||
		len(q.DietaryTags) > 0 || q.MaxSpice != nil ||
		q.Featured || q.TodaysMenu || q.DailySpecial || q.NewDish || q.DiscountCombo
}

// MenuPage is one page of the browsing grid. When nothing matches Empty is
// set and EmptyMessage explains why.
type MenuPage struct {
	Items        []models.MenuItem `json:"items"`
	Total        int               `json:"total"`
	Page         int               `json:"page"`
	PageSize     int               `json:"page_size"`
	TotalPages   int               `json:"total_pages"`
	Empty        bool              `json:"empty"`
	EmptyMessage string            `json:"empty_message,omitempty"`
}

func (q MenuQuery) matches(item *models.MenuItem) bool {
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		if !strings.Contains(strings.ToLower(item.Name), term) &&
			!strings.Contains(strings.ToLower(item.Description), term) {
			return false
		}
	}
	if q.CategoryID != 0 && item.CategoryID != q.CategoryID {
		return false
	}
	if q.CategorySlug != "" && !strings.EqualFold(item.Category.Slug, q.CategorySlug) {
		return false
	}
	for _, tag := range q.DietaryTags {
		if tag = strings.TrimSpace(tag); tag != "" && !item.HasDietaryTag(tag) {
			return false
		}
	}
	if q.MaxSpice != nil && item.SpiceLevel > *q.MaxSpice {
		return false
	}
	switch {
	case q.Featured && !item.IsFeatured,
		q.TodaysMenu && !item.IsTodaysMenu,
		q.DailySpecial && !item.IsDailySpecial,
		q.NewDish && !item.IsNewDish,
		q.DiscountCombo && !item.IsDiscountCombo:
		return false
	}
	return true
}

func sortMenu(items []models.MenuItem, mode string) {
	var less func(a, b *models.MenuItem) bool
	switch mode {
	case SortName:
		less = func(a, b *models.MenuItem) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortPriceAsc:
		less = func(a, b *models.MenuItem) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b *models.MenuItem) bool { return a.Price > b.Price }
	case SortNewest:
		less = func(a, b *models.MenuItem) bool {
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID > b.ID
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
	default:
		less = func(a, b *models.MenuItem) bool {
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return less(&items[i], &items[j]) })
}

// FilterMenu applies q to items and returns the requested page. items is
// not modified.
func FilterMenu(items []models.MenuItem, q MenuQuery) MenuPage {
	matched := make([]models.MenuItem, 0, len(items))
	for i := range items {
		if q.matches(&items[i]) {
			matched = append(matched, items[i])
		}
	}
	sortMenu(matched, q.Sort)

	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	page := MenuPage{Total: len(matched), PageSize: size, Items: []models.MenuItem{}}
	if page.Total == 0 {
		page.Page = 1
		page.Empty = true
		if q.Filtered() {
			page.EmptyMessage = "No dishes match your filters. Try clearing some of them."
		} else {
			page.EmptyMessage = "The menu is empty right now. Please check back soon."
		}
		return page
	}

	page.TotalPages = (page.Total + size - 1) / size
	page.Page = q.Page
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Page > page.TotalPages {
		page.Page = page.TotalPages
	}
	start := (page.Page - 1) * size
	end := start + size
	if end > page.Total {
		end = page.Total
	}
	page.Items = matched[start:end]
	return page
}
