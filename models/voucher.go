package models

import (
	"time"

	"gorm.io/gorm"
)

// Voucher discount types
const (
	VoucherTypePercentage = "percentage"
	VoucherTypeFixed      = "fixed"
)

type Voucher struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Code        string         `gorm:"uniqueIndex" json:"code"` // stored upper-cased
	Type        string         `json:"type"`
	Value       int64          `json:"value"`
	MinPurchase int64          `json:"min_purchase"`
	Active      bool           `json:"active"`
	ExpiresAt   *time.Time     `json:"expires_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
