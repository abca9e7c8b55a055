package models

import (
	"time"
)

const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"

	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uint        `gorm:"not null;index" json:"user_id"`
	Status          string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus   string      `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	ShippingAddress string      `gorm:"type:text" json:"shipping_address"`
	Subtotal        float64     `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal"`
	Tax             float64     `gorm:"type:decimal(10,2);not null;default:0" json:"tax"`
	ShippingCost    float64     `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_cost"`
	OrderTotal      float64     `gorm:"type:decimal(10,2);not null;default:0" json:"order_total"`
	CreatedAt       time.Time   `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems      []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}
