package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"

	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/realtime"
	"github.com/yeremiapane/restaurant-storefront/toggle"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/gorm"
)

// SettingsService serves the store settings row. Reads come from a cached
// snapshot that change events keep current.
type SettingsService struct {
	DB      *gorm.DB
	Toggles *toggle.Board

	mu     sync.RWMutex
	cached *models.StoreSettings
}

func NewSettingsService(db *gorm.DB, board *toggle.Board) *SettingsService {
	return &SettingsService{DB: db, Toggles: board}
}

// StoreSettingsInput holds the fields of the settings form. Feature flags
// are toggled one at a time and are not part of it.
type StoreSettingsInput struct {
	StoreName             string  `json:"store_name"`
	Tagline               string  `json:"tagline"`
	ContactEmail          string  `json:"contact_email"`
	ContactPhone          string  `json:"contact_phone"`
	Address               string  `json:"address"`
	Currency              string  `json:"currency"`
	TaxRate               float64 `json:"tax_rate"`
	ShippingCost          float64 `json:"shipping_cost"`
	FreeShippingThreshold float64 `json:"free_shipping_threshold"`
	MinOrderAmount        float64 `json:"min_order_amount"`
	Announcement          string  `json:"announcement"`
	ThemeHueShift         int     `json:"theme_hue_shift"`
	ThemeSaturation       int     `json:"theme_saturation"`
	ThemeBrightness       int     `json:"theme_brightness"`
	ThemeRadius           int     `json:"theme_radius"`
}

// FlagState is one feature flag as shown by the admin panel.
type FlagState struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	toggle.State
}

// ValidateStoreSettings checks the form before anything is written.
func ValidateStoreSettings(in StoreSettingsInput) error {
	if strings.TrimSpace(in.StoreName) == "" {
		return invalid("store_name", "Store name is required")
	}
	if in.TaxRate < 0 || in.TaxRate > 100 {
		return invalid("tax_rate", "Tax rate must be between 0 and 100")
	}
	if in.ShippingCost < 0 {
		return invalid("shipping_cost", "Shipping cost cannot be negative")
	}
	if in.FreeShippingThreshold < 0 {
		return invalid("free_shipping_threshold", "Free shipping threshold cannot be negative")
	}
	if in.MinOrderAmount < 0 {
		return invalid("min_order_amount", "Minimum order amount cannot be negative")
	}
	if email := strings.TrimSpace(in.ContactEmail); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return invalid("contact_email", "Contact email is invalid")
		}
	}
	if c := strings.TrimSpace(in.Currency); c == "" || len(c) > 8 {
		return invalid("currency", "Currency must be 1 to 8 characters")
	}
	if in.ThemeHueShift < -180 || in.ThemeHueShift > 180 {
		return invalid("theme_hue_shift", "Hue shift must be between -180 and 180")
	}
	if in.ThemeSaturation < 0 || in.ThemeSaturation > 200 {
		return invalid("theme_saturation", "Saturation must be between 0 and 200")
	}
	if in.ThemeBrightness < 0 || in.ThemeBrightness > 200 {
		return invalid("theme_brightness", "Brightness must be between 0 and 200")
	}
	if in.ThemeRadius < 0 || in.ThemeRadius > 32 {
		return invalid("theme_radius", "Corner radius must be between 0 and 32")
	}
	return nil
}

// Get returns the cached settings, loading them on first use.
func (s *SettingsService) Get(ctx context.Context) (models.StoreSettings, error) {
	s.mu.RLock()
	if s.cached != nil {
		out := *s.cached
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()
	return s.Reload(ctx)
}

// Reload reads the settings row and refreshes the cache and idle flag switches.
func (s *SettingsService) Reload(ctx context.Context) (models.StoreSettings, error) {
	var settings models.StoreSettings
	if err := s.DB.WithContext(ctx).Order("id").First(&settings).Error; err != nil {
		return models.StoreSettings{}, notFound(err, "store settings")
	}

	s.mu.Lock()
	s.cached = &settings
	s.mu.Unlock()

	for _, flag := range models.FeatureFlags {
		if sw, ok := s.Toggles.Lookup(toggle.Key("settings", flag.Key)); ok {
			sw.Sync(flag.Get(&settings))
		}
	}
	return settings, nil
}

// Update validates in and writes it over the settings row. Nothing is
// written when validation fails.
func (s *SettingsService) Update(ctx context.Context, in StoreSettingsInput) (models.StoreSettings, error) {
	if err := ValidateStoreSettings(in); err != nil {
		return models.StoreSettings{}, err
	}

	current, err := s.Reload(ctx)
	if err != nil {
		return models.StoreSettings{}, err
	}

	updates := map[string]interface{}{
		"store_name":              strings.TrimSpace(in.StoreName),
		"tagline":                 strings.TrimSpace(in.Tagline),
		"contact_email":           strings.TrimSpace(in.ContactEmail),
		"contact_phone":           strings.TrimSpace(in.ContactPhone),
		"address":                 strings.TrimSpace(in.Address),
		"currency":                strings.TrimSpace(in.Currency),
		"tax_rate":                in.TaxRate,
		"shipping_cost":           in.ShippingCost,
		"free_shipping_threshold": in.FreeShippingThreshold,
		"min_order_amount":        in.MinOrderAmount,
		"announcement":            in.Announcement,
		"theme_hue_shift":         in.ThemeHueShift,
		"theme_saturation":        in.ThemeSaturation,
		"theme_brightness":        in.ThemeBrightness,
		"theme_radius":            in.ThemeRadius,
	}
	if err := s.DB.WithContext(ctx).Model(&models.StoreSettings{ID: current.ID}).Updates(updates).Error; err != nil {
		utils.LogError("update store settings", err, nil)
		return models.StoreSettings{}, err
	}

	utils.InfoLogger.Printf("Store settings updated (id=%d)", current.ID)
	return s.Reload(ctx)
}

// Flags lists every feature flag with its switch state.
func (s *SettingsService) Flags(ctx context.Context) ([]FlagState, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]FlagState, 0, len(models.FeatureFlags))
	for _, flag := range models.FeatureFlags {
		sw := s.flagSwitch(flag, flag.Get(&settings))
		out = append(out, FlagState{Key: flag.Key, Label: flag.Label, State: sw.State()})
	}
	return out, nil
}

// ToggleFlag flips one feature flag optimistically. The cached settings see
// the new value at once and get the old one back if the write fails.
func (s *SettingsService) ToggleFlag(ctx context.Context, key string) (FlagState, error) {
	flag, ok := models.LookupFeatureFlag(key)
	if !ok {
		return FlagState{}, newError(ErrNotFound, "Unknown feature flag %q", key)
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return FlagState{}, err
	}

	sw := s.flagSwitch(flag, flag.Get(&settings))
	res := sw.Flip(ctx, func(ctx context.Context, v bool) error {
		tx := s.DB.WithContext(ctx).Model(&models.StoreSettings{ID: settings.ID}).Update(flag.Key, v)
		if tx.Error != nil {
			return tx.Error
		}
		if tx.RowsAffected == 0 {
			return errors.New("store settings row is missing")
		}
		return nil
	})

	state := FlagState{Key: flag.Key, Label: flag.Label, State: sw.State()}
	if res.Err != nil {
		if !errors.Is(res.Err, toggle.ErrSaving) {
			utils.LogError("toggle feature flag", res.Err, map[string]interface{}{"flag": flag.Key})
		}
		return state, res.Err
	}

	utils.InfoLogger.Printf("Feature flag %s set to %t", flag.Key, res.Value)
	return state, nil
}

func (s *SettingsService) flagSwitch(flag models.FeatureFlag, current bool) *toggle.Switch {
	return s.Toggles.Switch(toggle.Key("settings", flag.Key), current, func(v bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.cached != nil {
			next := *s.cached
			flag.Set(&next, v)
			s.cached = &next
		}
	})
}

// Publish reloads the cache when the settings row changes elsewhere.
func (s *SettingsService) Publish(ctx context.Context, ev realtime.Event) error {
	if ev.Table != "store_settings" || ev.Action == models.ActionDelete {
		return nil
	}
	_, err := s.Reload(ctx)
	return err
}
