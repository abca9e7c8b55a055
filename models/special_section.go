package models

import "time"

type SpecialSection struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SectionKey    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"section_key"`
	Title         string    `gorm:"type:varchar(255)" json:"title"`
	IsAvailable   bool      `gorm:"not null;default:true" json:"is_available"`
	CustomMessage string    `gorm:"type:text" json:"custom_message"`
	DisplayOrder  int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}
