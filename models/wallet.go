package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentKey is a login-less stored-value account. The opaque key string is
// both the account identifier and the bearer credential.
type PaymentKey struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Key         string         `gorm:"uniqueIndex" json:"key"`
	Email       string         `json:"email"`
	Balance     int64          `json:"balance" gorm:"default:0"`
	Points      int            `json:"points" gorm:"default:0"`
	PINHash     string         `json:"-"`
	PINEnabled  bool           `json:"pin_enabled" gorm:"default:false"` // once enabled, never disabled
	LastCheckIn *time.Time     `json:"last_check_in"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// WalletTransaction is an append-only ledger entry. Amount is signed:
// credits positive, debits negative.
type WalletTransaction struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	PaymentKeyID uint       `json:"payment_key_id" gorm:"index"`
	PaymentKey   PaymentKey `json:"-" gorm:"foreignKey:PaymentKeyID"`
	Amount       int64      `json:"amount"`
	Type         string     `json:"type"`
	Description  string     `json:"description"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Ledger entry types
const (
	TransactionTypeTopup      = "topup"
	TransactionTypePurchase   = "purchase"
	TransactionTypeAdjustment = "adjustment"
)

// Topup order statuses
const (
	TopupStatusPending   = "pending"
	TopupStatusCompleted = "completed"
	TopupStatusExpired   = "expired"
)

// TopupOrder correlates a wallet top-up attempt with the payment gateway's
// transaction record. GatewayOrderID doubles as the idempotency key for
// crediting the balance.
type TopupOrder struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PaymentKeyID   uint      `json:"payment_key_id"`
	GatewayOrderID string    `json:"gateway_order_id" gorm:"uniqueIndex"`
	Amount         int64     `json:"amount"`
	Status         string    `json:"status"` // pending, completed, expired
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
