package controllers

import (
	"time"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
)

type voucherRequest struct {
	Code        string     `json:"code" binding:"required,min=3,max=32"`
	Type        string     `json:"type" binding:"required,oneof=percentage fixed"`
	Value       int64      `json:"value" binding:"required,gt=0"`
	MinPurchase int64      `json:"min_purchase" binding:"gte=0"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Active      *bool      `json:"active"`
}

func (r *voucherRequest) validate() string {
	if r.Type == models.VoucherTypePercentage && r.Value > 100 {
		return "Percentage value cannot exceed 100"
	}
	return ""
}

// CreateVoucher adds a discount code. Codes are stored normalized so
// lookups at checkout are case-insensitive.
func CreateVoucher(c *gin.Context) {
	utils.LogInfo("CreateVoucher called")

	var req voucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid voucher data", err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		utils.BadRequest(c, msg, nil)
		return
	}

	code := utils.NormalizeVoucherCode(req.Code)

	var existing models.Voucher
	if err := config.DB.Where("code = ?", code).First(&existing).Error; err == nil {
		utils.Conflict(c, "A voucher with this code already exists", nil)
		return
	}

	voucher := models.Voucher{
		Code:        code,
		Type:        req.Type,
		Value:       req.Value,
		MinPurchase: req.MinPurchase,
		ExpiresAt:   req.ExpiresAt,
		Active:      true,
	}
	if req.Active != nil {
		voucher.Active = *req.Active
	}
	if err := config.DB.Create(&voucher).Error; err != nil {
		utils.LogError("Failed to create voucher: %v", err)
		utils.InternalServerError(c, "Failed to create voucher", nil)
		return
	}

	utils.LogInfo("Voucher %s created", voucher.Code)
	utils.Created(c, "Voucher created", voucher)
}

// UpdateVoucher edits a voucher. The code itself is immutable; create a
// new voucher to change it.
func UpdateVoucher(c *gin.Context) {
	var voucher models.Voucher
	if err := config.DB.First(&voucher, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Voucher not found")
		return
	}

	var req struct {
		Type        string     `json:"type" binding:"required,oneof=percentage fixed"`
		Value       int64      `json:"value" binding:"required,gt=0"`
		MinPurchase int64      `json:"min_purchase" binding:"gte=0"`
		ExpiresAt   *time.Time `json:"expires_at"`
		Active      *bool      `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid voucher data", err.Error())
		return
	}
	if req.Type == models.VoucherTypePercentage && req.Value > 100 {
		utils.BadRequest(c, "Percentage value cannot exceed 100", nil)
		return
	}

	updates := map[string]interface{}{
		"type":         req.Type,
		"value":        req.Value,
		"min_purchase": req.MinPurchase,
		"expires_at":   req.ExpiresAt,
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := config.DB.Model(&voucher).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update voucher %d: %v", voucher.ID, err)
		utils.InternalServerError(c, "Failed to update voucher", nil)
		return
	}

	utils.Success(c, "Voucher updated", voucher)
}

// DeleteVoucher removes a voucher.
func DeleteVoucher(c *gin.Context) {
	var voucher models.Voucher
	if err := config.DB.First(&voucher, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Voucher not found")
		return
	}

	if err := config.DB.Delete(&voucher).Error; err != nil {
		utils.LogError("Failed to delete voucher %d: %v", voucher.ID, err)
		utils.InternalServerError(c, "Failed to delete voucher", nil)
		return
	}

	utils.Success(c, "Voucher deleted", nil)
}

// AdminListVouchers lists all vouchers.
func AdminListVouchers(c *gin.Context) {
	var vouchers []models.Voucher
	if err := config.DB.Order("created_at DESC").Find(&vouchers).Error; err != nil {
		utils.LogError("Failed to list vouchers: %v", err)
		utils.InternalServerError(c, "Failed to load vouchers", nil)
		return
	}
	utils.Success(c, "Vouchers retrieved", vouchers)
}
