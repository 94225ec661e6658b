package controllers

import (
	"time"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
)

// PreviewVoucher validates a code against a cart subtotal before
// checkout, so the storefront can show the discount up front. The same
// validation runs again inside checkout.
func PreviewVoucher(c *gin.Context) {
	var req struct {
		Code     string `json:"code" binding:"required"`
		Subtotal int64  `json:"subtotal" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "code and subtotal are required", err.Error())
		return
	}

	code := utils.NormalizeVoucherCode(req.Code)

	var voucher models.Voucher
	if err := config.DB.Where("code = ?", code).First(&voucher).Error; err != nil {
		utils.NotFound(c, "Voucher not found")
		return
	}

	if err := utils.ValidateVoucher(&voucher, req.Subtotal, time.Now()); err != nil {
		msg := err.Error()
		if appErr := utils.GetAppError(err); appErr != nil {
			msg = appErr.Message
		}
		utils.BadRequest(c, msg, nil)
		return
	}

	discount := utils.VoucherDiscount(&voucher, req.Subtotal)
	utils.Success(c, "Voucher is valid", gin.H{
		"code":               voucher.Code,
		"discount":           discount,
		"discount_formatted": utils.FormatRupiah(discount),
		"total":              req.Subtotal - discount,
		"total_formatted":    utils.FormatRupiah(req.Subtotal - discount),
	})
}
