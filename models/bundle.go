package models

import (
	"time"

	"gorm.io/gorm"
)

// Bundle groups two or more products sold together at a combined discount.
type Bundle struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `json:"name"`
	ProductIDs      string         `json:"product_ids"` // comma-separated, validated >= 2 ids
	DiscountPercent int            `json:"discount_percent"`
	Active          bool           `json:"active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

type Banner struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ImageURL     string         `json:"image_url"`
	Title        string         `json:"title"`
	Link         string         `json:"link"`
	DisplayOrder int            `json:"display_order"`
	Active       bool           `json:"active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
