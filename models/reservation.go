package models

import "time"

const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
	ReservationNoShow    = "no_show"
)

type Reservation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID *uint     `gorm:"index" json:"customer_id,omitempty"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Email      string    `gorm:"type:varchar(255)" json:"email"`
	Phone      string    `gorm:"type:varchar(50)" json:"phone"`
	PartySize  int       `gorm:"not null" json:"party_size"`
	ReservedAt time.Time `gorm:"not null;index" json:"reserved_at"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Notes      string    `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// ReservationSettings is a single-row table configuring the booking form.
type ReservationSettings struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	IsEnabled    bool      `gorm:"not null;default:true" json:"is_enabled"`
	OpeningTime  string    `gorm:"type:varchar(5);not null;default:'11:00'" json:"opening_time"`
	ClosingTime  string    `gorm:"type:varchar(5);not null;default:'22:00'" json:"closing_time"`
	SlotMinutes  int       `gorm:"not null;default:30" json:"slot_minutes"`
	MinPartySize int       `gorm:"not null;default:1" json:"min_party_size"`
	MaxPartySize int       `gorm:"not null;default:10" json:"max_party_size"`
	MaxPerSlot   int       `gorm:"not null;default:5" json:"max_per_slot"`
	AdvanceDays  int       `gorm:"not null;default:30" json:"advance_days"`
	AutoConfirm  bool      `gorm:"not null;default:false" json:"auto_confirm"`
	ClosedDays   []string  `gorm:"serializer:json" json:"closed_days"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
