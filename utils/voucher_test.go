package utils

import (
	"testing"
	"time"

	"github.com/nadifalfairuz/digistore/models"

	"github.com/stretchr/testify/assert"
)

func TestVoucherBelowMinimumPurchaseRejected(t *testing.T) {
	v := &models.Voucher{
		Code:        "HEMAT50",
		Type:        models.VoucherTypeFixed,
		Value:       50000,
		MinPurchase: 100000,
		Active:      true,
	}

	err := ValidateVoucher(v, 99999, time.Now())
	assert.Error(t, err)

	err = ValidateVoucher(v, 100000, time.Now())
	assert.NoError(t, err)
}

func TestFixedVoucherScenario(t *testing.T) {
	// subtotal 500000 with HEMAT50 (fixed 50000, min 100000) -> total 450000
	v := &models.Voucher{
		Code:        "HEMAT50",
		Type:        models.VoucherTypeFixed,
		Value:       50000,
		MinPurchase: 100000,
		Active:      true,
	}

	subtotal := int64(500000)
	assert.NoError(t, ValidateVoucher(v, subtotal, time.Now()))
	discount := VoucherDiscount(v, subtotal)
	assert.Equal(t, int64(50000), discount)
	assert.Equal(t, int64(450000), subtotal-discount)
}

func TestPercentageVoucher(t *testing.T) {
	v := &models.Voucher{Code: "DISKON10", Type: models.VoucherTypePercentage, Value: 10, Active: true}
	assert.Equal(t, int64(50000), VoucherDiscount(v, 500000))
}

func TestFullDiscountVoucherClampedToSubtotal(t *testing.T) {
	v := &models.Voucher{Code: "GRATIS", Type: models.VoucherTypePercentage, Value: 100, Active: true}
	assert.Equal(t, int64(120000), VoucherDiscount(v, 120000))

	fixed := &models.Voucher{Code: "POTONG", Type: models.VoucherTypeFixed, Value: 75000, Active: true}
	assert.Equal(t, int64(50000), VoucherDiscount(fixed, 50000), "fixed discount never exceeds subtotal")
}

func TestExpiredAndInactiveVoucherRejected(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	expired := &models.Voucher{Code: "LAMA", Type: models.VoucherTypeFixed, Value: 1000, Active: true, ExpiresAt: &past}
	assert.Error(t, ValidateVoucher(expired, 500000, time.Now()))

	inactive := &models.Voucher{Code: "MATI", Type: models.VoucherTypeFixed, Value: 1000, Active: false}
	assert.Error(t, ValidateVoucher(inactive, 500000, time.Now()))
}

func TestNormalizeVoucherCode(t *testing.T) {
	assert.Equal(t, "HEMAT50", NormalizeVoucherCode("  hemat50 "))
}
