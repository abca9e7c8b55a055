package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/toggle"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/gorm"
)

type MenuService struct {
	DB      *gorm.DB
	Images  ImageStore
	Toggles *toggle.Board
}

func NewMenuService(db *gorm.DB, images ImageStore, board *toggle.Board) *MenuService {
	return &MenuService{DB: db, Images: images, Toggles: board}
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

type MenuItemInput struct {
	CategoryID      uint     `json:"category_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	IsAvailable     *bool    `json:"is_available"`
	DietaryTags     []string `json:"dietary_tags"`
	SpiceLevel      int      `json:"spice_level"`
	IsFeatured      bool     `json:"is_featured"`
	IsTodaysMenu    bool     `json:"is_todays_menu"`
	IsDailySpecial  bool     `json:"is_daily_special"`
	IsNewDish       bool     `json:"is_new_dish"`
	IsDiscountCombo bool     `json:"is_discount_combo"`
	SortOrder       int      `json:"sort_order"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and joins its words with dashes.
func Slugify(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "category"
	}
	return slug
}

// uniqueSlug returns Slugify(name), suffixed with -2, -3, ... if taken by
// another category.
func uniqueSlug(tx *gorm.DB, name string, exceptID uint) (string, error) {
	base := Slugify(name)
	slug := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(&models.MenuCategory{}).Where("slug = ? AND id <> ?", slug, exceptID).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Browse returns the filtered storefront menu: available items of active
// categories only.
func (s *MenuService) Browse(ctx context.Context, q MenuQuery) (MenuPage, error) {
	var items []models.MenuItem
	err := s.DB.WithContext(ctx).
		Joins("Category").
		Where("menu_items.is_available = ?", true).
		Where("Category.is_active = ?", true).
		Find(&items).Error
	if err != nil {
		return MenuPage{}, err
	}
	return FilterMenu(items, q), nil
}

func (s *MenuService) Categories(ctx context.Context, activeOnly bool) ([]models.MenuCategory, error) {
	query := s.DB.WithContext(ctx).Order("sort_order ASC, name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var categories []models.MenuCategory
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *MenuService) CreateCategory(ctx context.Context, in CategoryInput) (models.MenuCategory, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.MenuCategory{}, invalid("name", "Category name is required")
	}

	category := models.MenuCategory{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		SortOrder:   in.SortOrder,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := uniqueSlug(tx, category.Name, 0)
		if err != nil {
			return err
		}
		category.Slug = slug
		active := category.IsActive
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
		// default:true replaces a false value on insert
		if !active {
			category.IsActive = false
			return tx.Model(&category).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		return models.MenuCategory{}, err
	}

	utils.InfoLogger.Printf("Menu category created: %s (%s)", category.Name, category.Slug)
	return category, nil
}

func (s *MenuService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (models.MenuCategory, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.MenuCategory{}, invalid("name", "Category name is required")
	}

	var category models.MenuCategory
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err, "category")
		}
		name := strings.TrimSpace(in.Name)
		if name != category.Name {
			slug, err := uniqueSlug(tx, name, category.ID)
			if err != nil {
				return err
			}
			category.Slug = slug
		}
		category.Name = name
		category.Description = strings.TrimSpace(in.Description)
		category.SortOrder = in.SortOrder
		if in.IsActive != nil {
			category.IsActive = *in.IsActive
		}
		return tx.Save(&category).Error
	})
	if err != nil {
		return models.MenuCategory{}, err
	}
	return category, nil
}

// DeleteCategory refuses to remove a category that still has items.
func (s *MenuService) DeleteCategory(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.MenuCategory
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err, "category")
		}
		var count int64
		if err := tx.Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return newError(ErrConflict, "Category %q still has %d menu items", category.Name, count)
		}
		return tx.Delete(&category).Error
	})
}

// ListItems returns every menu item for the admin screen.
func (s *MenuService) ListItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.DB.WithContext(ctx).Preload("Category").Order("sort_order ASC, name ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MenuService) GetItem(ctx context.Context, id uint) (models.MenuItem, error) {
	var item models.MenuItem
	if err := s.DB.WithContext(ctx).Preload("Category").First(&item, id).Error; err != nil {
		return models.MenuItem{}, notFound(err, "menu item")
	}
	return item, nil
}

func validateMenuItem(tx *gorm.DB, in MenuItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "Name is required")
	}
	if in.Price < 0 {
		return invalid("price", "Price cannot be negative")
	}
	if in.SpiceLevel < 0 || in.SpiceLevel > 5 {
		return invalid("spice_level", "Spice level must be between 0 and 5")
	}
	var count int64
	if err := tx.Model(&models.MenuCategory{}).Where("id = ?", in.CategoryID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return invalid("category_id", "Category does not exist")
	}
	return nil
}

func applyMenuItem(item *models.MenuItem, in MenuItemInput) {
	item.CategoryID = in.CategoryID
	item.Name = strings.TrimSpace(in.Name)
	item.Description = strings.TrimSpace(in.Description)
	item.Price = utils.RoundMoney(in.Price)
	item.SpiceLevel = in.SpiceLevel
	item.IsFeatured = in.IsFeatured
	item.IsTodaysMenu = in.IsTodaysMenu
	item.IsDailySpecial = in.IsDailySpecial
	item.IsNewDish = in.IsNewDish
	item.IsDiscountCombo = in.IsDiscountCombo
	item.SortOrder = in.SortOrder
	item.DietaryTags = make([]string, 0, len(in.DietaryTags))
	for _, tag := range in.DietaryTags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			item.DietaryTags = append(item.DietaryTags, tag)
		}
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
}

func (s *MenuService) CreateItem(ctx context.Context, in MenuItemInput) (models.MenuItem, error) {
	item := models.MenuItem{IsAvailable: true}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateMenuItem(tx, in); err != nil {
			return err
		}
		applyMenuItem(&item, in)
		available := item.IsAvailable
		if err := tx.Omit("Category").Create(&item).Error; err != nil {
			return err
		}
		if !available {
			item.IsAvailable = false
			return tx.Model(&item).Update("is_available", false).Error
		}
		return nil
	})
	if err != nil {
		return models.MenuItem{}, err
	}

	utils.InfoLogger.Printf("Menu item created: %s (id=%d)", item.Name, item.ID)
	return s.GetItem(ctx, item.ID)
}

func (s *MenuService) UpdateItem(ctx context.Context, id uint, in MenuItemInput) (models.MenuItem, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MenuItem
		if err := tx.First(&item, id).Error; err != nil {
			return notFound(err, "menu item")
		}
		if err := validateMenuItem(tx, in); err != nil {
			return err
		}
		applyMenuItem(&item, in)
		return tx.Omit("Category").Save(&item).Error
	})
	if err != nil {
		return models.MenuItem{}, err
	}

	updated, err := s.GetItem(ctx, id)
	if err != nil {
		return models.MenuItem{}, err
	}
	if sw, ok := s.Toggles.Lookup(toggle.Key("menu_item", id, "is_available")); ok {
		sw.Sync(updated.IsAvailable)
	}
	return updated, nil
}

// DeleteItem removes the item and its image. Items referenced by orders
// cannot be deleted; mark them unavailable instead.
func (s *MenuService) DeleteItem(ctx context.Context, id uint) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&models.OrderItem{}).Where("menu_item_id = ?", id).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return newError(ErrConflict, "Menu item %q appears in orders; mark it unavailable instead", item.Name)
		}
		return tx.Delete(&models.MenuItem{ID: item.ID}).Error
	})
	if err != nil {
		return err
	}

	if item.ImageURL != "" {
		if err := s.Images.Delete(ctx, item.ImageURL); err != nil {
			utils.LogError("delete menu image", err, map[string]interface{}{"menu_item_id": id})
		}
	}
	utils.InfoLogger.Printf("Menu item deleted: %s (id=%d)", item.Name, id)
	return nil
}

// ToggleAvailability flips is_available with rollback on failure.
func (s *MenuService) ToggleAvailability(ctx context.Context, id uint) (toggle.State, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return toggle.State{}, err
	}

	sw := s.Toggles.Switch(toggle.Key("menu_item", id, "is_available"), item.IsAvailable, nil)
	res := sw.Flip(ctx, func(ctx context.Context, v bool) error {
		tx := s.DB.WithContext(ctx).Model(&models.MenuItem{ID: id}).Update("is_available", v)
		if tx.Error == nil && tx.RowsAffected == 0 {
			return errors.New("menu item no longer exists")
		}
		return tx.Error
	})
	if res.Err != nil {
		if !errors.Is(res.Err, toggle.ErrSaving) {
			utils.LogError("toggle menu item availability", res.Err, map[string]interface{}{"menu_item_id": id})
		}
		return sw.State(), res.Err
	}
	return sw.State(), nil
}

// SetImage stores a new image for the item and removes the old one.
func (s *MenuService) SetImage(ctx context.Context, id uint, filename string, r io.Reader) (models.MenuItem, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return models.MenuItem{}, err
	}

	url, err := s.Images.Save(ctx, filename, r)
	if err != nil {
		return models.MenuItem{}, err
	}
	if err := s.DB.WithContext(ctx).Model(&models.MenuItem{ID: id}).Update("image_url", url).Error; err != nil {
		_ = s.Images.Delete(ctx, url)
		return models.MenuItem{}, err
	}

	if item.ImageURL != "" {
		if err := s.Images.Delete(ctx, item.ImageURL); err != nil {
			utils.LogError("delete old menu image", err, map[string]interface{}{"menu_item_id": id})
		}
	}
	item.ImageURL = url
	return item, nil
}
