package models

import (
	"time"
)

// Payment status constants
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusExpired   = "expired"
)

// Payment tracks a QR payment attempt for an order. GatewayOrderID is the
// idempotency key for finalizing the order.
type Payment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrderID        uint      `json:"order_id"`
	GatewayOrderID string    `json:"gateway_order_id" gorm:"uniqueIndex"`
	Amount         int64     `json:"amount"`
	PaymentCode    string    `json:"payment_code"` // scannable QR string from the gateway
	Status         string    `json:"status"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Expired reports whether the payment window has closed without a
// confirmed success.
func (p *Payment) Expired(now time.Time) bool {
	return p.Status == PaymentStatusPending && now.After(p.ExpiresAt)
}
