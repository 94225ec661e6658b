package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/nadifalfairuz/digistore/models"
)

// NormalizeVoucherCode upper-cases and trims a voucher code; lookups and
// storage both go through this so matching stays exact.
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateVoucher checks whether a voucher can be applied to a cart with
// the given subtotal. It returns an AppError suitable for the response.
func ValidateVoucher(voucher *models.Voucher, subtotal int64, now time.Time) error {
	if !voucher.Active {
		return BadRequestError("Voucher is not active", nil)
	}
	if voucher.ExpiresAt != nil && now.After(*voucher.ExpiresAt) {
		return BadRequestError("Voucher has expired", nil)
	}
	if subtotal < voucher.MinPurchase {
		return BadRequestError(
			fmt.Sprintf("Minimum purchase of %s required for this voucher", FormatRupiah(voucher.MinPurchase)), nil)
	}
	return nil
}

// VoucherDiscount computes the discount a voucher grants on a subtotal.
// Percentage vouchers take value% of the subtotal; fixed vouchers take
// their value, clamped so the total never goes negative.
func VoucherDiscount(voucher *models.Voucher, subtotal int64) int64 {
	var discount int64
	switch voucher.Type {
	case models.VoucherTypePercentage:
		discount = subtotal * voucher.Value / 100
	case models.VoucherTypeFixed:
		discount = voucher.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
