package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func flashSaleProduct(saleStock int) *Product {
	end := time.Now().Add(2 * time.Hour)
	stock := saleStock
	return &Product{
		Name:           "Canva Pro 1 Bulan",
		Price:          25000,
		OriginalPrice:  40000,
		Stock:          50,
		FlashSaleEnd:   &end,
		FlashSaleStock: &stock,
	}
}

func TestApplyPurchaseRevertsPriceWhenSaleStockExhausted(t *testing.T) {
	p := flashSaleProduct(1)

	p.ApplyPurchase(1, time.Now())

	assert.Equal(t, int64(40000), p.Price, "price must revert to original price")
	assert.Nil(t, p.FlashSaleEnd)
	assert.Nil(t, p.FlashSaleStock)
	assert.Equal(t, 49, p.Stock)
	assert.Equal(t, 1, p.SoldCount)
}

func TestApplyPurchaseKeepsSaleWhileQuotaRemains(t *testing.T) {
	p := flashSaleProduct(3)

	p.ApplyPurchase(1, time.Now())

	assert.Equal(t, int64(25000), p.Price)
	assert.NotNil(t, p.FlashSaleEnd)
	if assert.NotNil(t, p.FlashSaleStock) {
		assert.Equal(t, 2, *p.FlashSaleStock)
	}
}

func TestApplyPurchaseWithoutSale(t *testing.T) {
	p := &Product{Name: "Netflix Premium", Price: 54000, Stock: 10}

	p.ApplyPurchase(2, time.Now())

	assert.Equal(t, 8, p.Stock)
	assert.Equal(t, 2, p.SoldCount)
	assert.Equal(t, int64(54000), p.Price)
}

func TestEffectivePrice(t *testing.T) {
	now := time.Now()

	p := flashSaleProduct(5)
	assert.Equal(t, int64(25000), p.EffectivePrice(now))

	past := now.Add(-time.Minute)
	p.FlashSaleEnd = &past
	assert.Equal(t, int64(40000), p.EffectivePrice(now), "expired sale falls back to original price")
}

func TestPaymentExpired(t *testing.T) {
	now := time.Now()
	p := &Payment{Status: PaymentStatusPending, ExpiresAt: now.Add(-time.Second)}
	assert.True(t, p.Expired(now))

	p.ExpiresAt = now.Add(15 * time.Minute)
	assert.False(t, p.Expired(now))

	p.Status = PaymentStatusCompleted
	p.ExpiresAt = now.Add(-time.Hour)
	assert.False(t, p.Expired(now), "a completed payment never expires")
}
