package models

import (
	"time"
)

// Order status constants
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	TotalAmount     int64       `json:"total_amount"`
	Discount        int64       `json:"discount"`
	VoucherCode     string      `json:"voucher_code"`
	PaymentMethod   string      `json:"payment_method"` // free, qris, wallet
	Status          string      `json:"status"`
	GatewayOrderID  string      `json:"gateway_order_id" gorm:"uniqueIndex"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	OrderItems      []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	OrderID      uint   `json:"order_id"`
	ProductID    uint   `json:"product_id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	Quantity     int    `json:"quantity"`
	DeliveryLink string `json:"delivery_link"`
}
