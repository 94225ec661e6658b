package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a digital product in the catalog
type Product struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `json:"name"`
	Price          int64          `json:"price"`
	OriginalPrice  int64          `json:"original_price"`
	Category       string         `json:"category"`
	Rating         float64        `json:"rating" gorm:"default:0"`
	ReviewCount    int            `json:"review_count" gorm:"default:0"`
	SoldCount      int            `json:"sold_count" gorm:"default:0"`
	BestSeller     bool           `json:"best_seller" gorm:"default:false"`
	Description    string         `json:"description"`
	Features       string         `json:"features"` // newline-separated feature list
	ImageURL       string         `json:"image_url"`
	DeliveryLink   string         `json:"delivery_link"`
	Stock          int            `json:"stock"`
	FlashSaleEnd   *time.Time     `json:"flash_sale_end"`
	FlashSaleStock *int           `json:"flash_sale_stock"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// FlashSaleLive reports whether a flash sale window is currently active
// for this product.
func (p *Product) FlashSaleLive(now time.Time) bool {
	return p.FlashSaleEnd != nil && now.Before(*p.FlashSaleEnd) &&
		p.FlashSaleStock != nil && *p.FlashSaleStock > 0
}

// EffectivePrice returns the price a buyer pays right now. Outside a live
// flash sale window the original price applies when one is set.
func (p *Product) EffectivePrice(now time.Time) int64 {
	if p.FlashSaleLive(now) {
		return p.Price
	}
	if p.OriginalPrice > 0 {
		return p.OriginalPrice
	}
	return p.Price
}

// ApplyPurchase records a purchase of qty units: stock goes down, sold
// count goes up, and a live flash sale consumes its promotional quota.
// When the quota hits zero the price reverts to the original price and the
// sale fields are cleared. All stock mutations must go through here so the
// revert invariant holds at every call site.
func (p *Product) ApplyPurchase(qty int, now time.Time) {
	p.Stock -= qty
	if p.Stock < 0 {
		p.Stock = 0
	}
	p.SoldCount += qty

	if p.FlashSaleLive(now) {
		remaining := *p.FlashSaleStock - qty
		if remaining <= 0 {
			if p.OriginalPrice > 0 {
				p.Price = p.OriginalPrice
			}
			p.FlashSaleEnd = nil
			p.FlashSaleStock = nil
		} else {
			p.FlashSaleStock = &remaining
		}
	}
}
