package models

import (
	"strings"
	"time"
)

type MenuItem struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	CategoryID      uint         `gorm:"not null;index" json:"category_id"`
	Category        MenuCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Name            string       `gorm:"type:varchar(255);not null" json:"name"`
	Description     string       `gorm:"type:text" json:"description"`
	Price           float64      `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL        string       `gorm:"type:varchar(512)" json:"image_url"`
	IsAvailable     bool         `gorm:"not null;default:true" json:"is_available"`
	DietaryTags     []string     `gorm:"serializer:json" json:"dietary_tags"`
	SpiceLevel      int          `gorm:"not null;default:0" json:"spice_level"`
	IsFeatured      bool         `gorm:"not null;default:false" json:"is_featured"`
	IsTodaysMenu    bool         `gorm:"not null;default:false" json:"is_todays_menu"`
	IsDailySpecial  bool         `gorm:"not null;default:false" json:"is_daily_special"`
	IsNewDish       bool         `gorm:"not null;default:false" json:"is_new_dish"`
	IsDiscountCombo bool         `gorm:"not null;default:false" json:"is_discount_combo"`
	SortOrder       int          `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null" json:"updated_at"`
}

// HasDietaryTag reports whether the item carries tag, ignoring case.
func (m *MenuItem) HasDietaryTag(tag string) bool {
	for _, t := range m.DietaryTags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
