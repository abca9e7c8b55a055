package models

import "time"

// StoreSettings is a single-row table. Feature flags default to true so a
// freshly migrated store shows every feature.
type StoreSettings struct {
	ID                    uint    `gorm:"primaryKey" json:"id"`
	StoreName             string  `gorm:"type:varchar(255);not null" json:"store_name"`
	Tagline               string  `gorm:"type:varchar(255)" json:"tagline"`
	ContactEmail          string  `gorm:"type:varchar(255)" json:"contact_email"`
	ContactPhone          string  `gorm:"type:varchar(50)" json:"contact_phone"`
	Address               string  `gorm:"type:text" json:"address"`
	Currency              string  `gorm:"type:varchar(8);not null;default:'$'" json:"currency"`
	TaxRate               float64 `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	ShippingCost          float64 `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_cost"`
	FreeShippingThreshold float64 `gorm:"type:decimal(10,2);not null;default:0" json:"free_shipping_threshold"`
	MinOrderAmount        float64 `gorm:"type:decimal(10,2);not null;default:0" json:"min_order_amount"`
	Announcement          string  `gorm:"type:text" json:"announcement"`

	EnableOnlineOrdering bool `gorm:"not null;default:true" json:"enable_online_ordering"`
	EnableReservations   bool `gorm:"not null;default:true" json:"enable_reservations"`
	EnableReturns        bool `gorm:"not null;default:true" json:"enable_returns"`
	EnableFeedback       bool `gorm:"not null;default:true" json:"enable_feedback"`
	EnableDelivery       bool `gorm:"not null;default:true" json:"enable_delivery"`
	EnablePickup         bool `gorm:"not null;default:true" json:"enable_pickup"`
	EnableGuestCheckout  bool `gorm:"not null;default:true" json:"enable_guest_checkout"`
	ShowSpiceLevel       bool `gorm:"not null;default:true" json:"show_spice_level"`
	ShowDietaryTags      bool `gorm:"not null;default:true" json:"show_dietary_tags"`
	ShowFeatured         bool `gorm:"not null;default:true" json:"show_featured"`
	ShowTodaysMenu       bool `gorm:"not null;default:true" json:"show_todays_menu"`
	ShowDailySpecials    bool `gorm:"not null;default:true" json:"show_daily_specials"`
	ShowNewDishes        bool `gorm:"not null;default:true" json:"show_new_dishes"`
	ShowDiscountCombos   bool `gorm:"not null;default:true" json:"show_discount_combos"`
	MaintenanceMode      bool `gorm:"not null;default:false" json:"maintenance_mode"`

	ThemeHueShift   int `gorm:"not null;default:0" json:"theme_hue_shift"`
	ThemeSaturation int `gorm:"not null;default:100" json:"theme_saturation"`
	ThemeBrightness int `gorm:"not null;default:100" json:"theme_brightness"`
	ThemeRadius     int `gorm:"not null;default:8" json:"theme_radius"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// FeatureFlag describes one boolean column of StoreSettings that the admin
// panel exposes as a toggle.
type FeatureFlag struct {
	Key   string
	Label string
	Get   func(*StoreSettings) bool
	Set   func(*StoreSettings, bool)
}

// FeatureFlags lists the toggleable columns in panel order. Key is the column name.
var FeatureFlags = []FeatureFlag{
	{"enable_online_ordering", "Online ordering", func(s *StoreSettings) bool { return s.EnableOnlineOrdering }, func(s *StoreSettings, v bool) { s.EnableOnlineOrdering = v }},
	{"enable_reservations", "Reservations", func(s *StoreSettings) bool { return s.EnableReservations }, func(s *StoreSettings, v bool) { s.EnableReservations = v }},
	{"enable_returns", "Return requests", func(s *StoreSettings) bool { return s.EnableReturns }, func(s *StoreSettings, v bool) { s.EnableReturns = v }},
	{"enable_feedback", "Order feedback", func(s *StoreSettings) bool { return s.EnableFeedback }, func(s *StoreSettings, v bool) { s.EnableFeedback = v }},
	{"enable_delivery", "Delivery", func(s *StoreSettings) bool { return s.EnableDelivery }, func(s *StoreSettings, v bool) { s.EnableDelivery = v }},
	{"enable_pickup", "Pickup", func(s *StoreSettings) bool { return s.EnablePickup }, func(s *StoreSettings, v bool) { s.EnablePickup = v }},
	{"enable_guest_checkout", "Guest checkout", func(s *StoreSettings) bool { return s.EnableGuestCheckout }, func(s *StoreSettings, v bool) { s.EnableGuestCheckout = v }},
	{"show_spice_level", "Spice level badges", func(s *StoreSettings) bool { return s.ShowSpiceLevel }, func(s *StoreSettings, v bool) { s.ShowSpiceLevel = v }},
	{"show_dietary_tags", "Dietary tags", func(s *StoreSettings) bool { return s.ShowDietaryTags }, func(s *StoreSettings, v bool) { s.ShowDietaryTags = v }},
	{"show_featured", "Featured dishes", func(s *StoreSettings) bool { return s.ShowFeatured }, func(s *StoreSettings, v bool) { s.ShowFeatured = v }},
	{"show_todays_menu", "Today's menu", func(s *StoreSettings) bool { return s.ShowTodaysMenu }, func(s *StoreSettings, v bool) { s.ShowTodaysMenu = v }},
	{"show_daily_specials", "Daily specials", func(s *StoreSettings) bool { return s.ShowDailySpecials }, func(s *StoreSettings, v bool) { s.ShowDailySpecials = v }},
	{"show_new_dishes", "New dishes", func(s *StoreSettings) bool { return s.ShowNewDishes }, func(s *StoreSettings, v bool) { s.ShowNewDishes = v }},
	{"show_discount_combos", "Discount combos", func(s *StoreSettings) bool { return s.ShowDiscountCombos }, func(s *StoreSettings, v bool) { s.ShowDiscountCombos = v }},
	{"maintenance_mode", "Maintenance mode", func(s *StoreSettings) bool { return s.MaintenanceMode }, func(s *StoreSettings, v bool) { s.MaintenanceMode = v }},
}

// LookupFeatureFlag returns the flag with the given column name.
func LookupFeatureFlag(key string) (FeatureFlag, bool) {
	for _, f := range FeatureFlags {
		if f.Key == key {
			return f, true
		}
	}
	return FeatureFlag{}, false
}
