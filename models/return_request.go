package models

import "time"

const (
	ReturnStatusPending   = "pending"
	ReturnStatusApproved  = "approved"
	ReturnStatusRejected  = "rejected"
	ReturnStatusCompleted = "completed"
)

type ReturnRequest struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OrderID       uint      `gorm:"not null;uniqueIndex" json:"order_id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Reason        string    `gorm:"type:varchar(100);not null" json:"reason"`
	ReasonDetails string    `gorm:"type:text" json:"reason_details"`
	AdminNotes    string    `gorm:"type:text" json:"admin_notes"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}
