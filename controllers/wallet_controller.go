package controllers

import (
	"time"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const checkInPoints = 10

// GetPaymentKey looks up a wallet by its key string and returns the
// balance view. The key is the bearer credential, so lookup is the only
// authentication.
func GetPaymentKey(c *gin.Context) {
	key := c.Param("key")

	var pk models.PaymentKey
	if err := config.DB.Where("key = ?", key).First(&pk).Error; err != nil {
		utils.NotFound(c, "Payment key not found")
		return
	}

	utils.Success(c, "Payment key retrieved", gin.H{
		"key":               pk.Key,
		"email":             pk.Email,
		"balance":           pk.Balance,
		"balance_formatted": utils.FormatRupiah(pk.Balance),
		"points":            pk.Points,
		"pin_enabled":       pk.PINEnabled,
		"last_check_in":     pk.LastCheckIn,
	})
}

// CheckIn awards daily loyalty points, at most once per calendar day.
func CheckIn(c *gin.Context) {
	key := c.Param("key")
	utils.LogInfo("CheckIn called for key ending %s", keySuffix(key))

	var pk models.PaymentKey
	if err := config.DB.Where("key = ?", key).First(&pk).Error; err != nil {
		utils.NotFound(c, "Payment key not found")
		return
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Conditional increment so two concurrent check-ins cannot both award
	// points for the same day
	res := config.DB.Model(&models.PaymentKey{}).
		Where("id = ? AND (last_check_in IS NULL OR last_check_in < ?)", pk.ID, dayStart).
		Updates(map[string]interface{}{
			"points":        gorm.Expr("points + ?", checkInPoints),
			"last_check_in": now,
		})
	if res.Error != nil {
		utils.LogError("Check-in update failed: %v", res.Error)
		utils.InternalServerError(c, "Failed to record check-in", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.BadRequest(c, "Already checked in today", gin.H{
			"points":        pk.Points,
			"last_check_in": pk.LastCheckIn,
		})
		return
	}

	var updated models.PaymentKey
	config.DB.First(&updated, pk.ID)
	utils.Success(c, "Check-in successful", gin.H{
		"points_awarded": checkInPoints,
		"points":         updated.Points,
	})
}

// EnablePIN sets a transaction PIN on a payment key. Enabling is one-way;
// there is no disable or reset endpoint.
func EnablePIN(c *gin.Context) {
	key := c.Param("key")

	var req struct {
		PIN string `json:"pin" binding:"required,min=4,max=8,numeric"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "PIN must be 4 to 8 digits", err.Error())
		return
	}

	var pk models.PaymentKey
	if err := config.DB.Where("key = ?", key).First(&pk).Error; err != nil {
		utils.NotFound(c, "Payment key not found")
		return
	}

	if pk.PINEnabled {
		utils.Conflict(c, "PIN is already enabled for this key", nil)
		return
	}

	hash, err := utils.HashPassword(req.PIN)
	if err != nil {
		utils.LogError("Failed to hash PIN: %v", err)
		utils.InternalServerError(c, "Failed to enable PIN", nil)
		return
	}

	updates := map[string]interface{}{
		"pin_hash":    hash,
		"pin_enabled": true,
	}
	if err := config.DB.Model(&pk).Updates(updates).Error; err != nil {
		utils.LogError("Failed to enable PIN: %v", err)
		utils.InternalServerError(c, "Failed to enable PIN", nil)
		return
	}

	utils.LogInfo("PIN enabled for key ending %s", keySuffix(key))
	utils.Success(c, "PIN enabled", nil)
}

// WalletHistory lists the ledger for a payment key, newest first.
func WalletHistory(c *gin.Context) {
	key := c.Param("key")

	var pk models.PaymentKey
	if err := config.DB.Where("key = ?", key).First(&pk).Error; err != nil {
		utils.NotFound(c, "Payment key not found")
		return
	}

	pagination := utils.NewPagination(c)

	var total int64
	config.DB.Model(&models.WalletTransaction{}).Where("payment_key_id = ?", pk.ID).Count(&total)
	pagination.SetTotal(total)

	var entries []models.WalletTransaction
	if err := config.DB.Where("payment_key_id = ?", pk.ID).
		Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&entries).Error; err != nil {
		utils.LogError("Failed to load wallet history: %v", err)
		utils.InternalServerError(c, "Failed to load history", nil)
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		items = append(items, gin.H{
			"id":          e.ID,
			"amount":      e.Amount,
			"formatted":   utils.FormatRupiah(e.Amount),
			"type":        e.Type,
			"description": e.Description,
			"created_at":  e.CreatedAt,
		})
	}

	utils.SuccessWithPagination(c, "History retrieved", items, pagination.Total, pagination.Page, pagination.Limit)
}

// keySuffix returns the last 4 characters of a key for log lines, so full
// bearer credentials never land in log files.
func keySuffix(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}
