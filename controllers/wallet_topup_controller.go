package controllers

import (
	"fmt"
	"time"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/gateway"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const minTopupAmount = 10000

// InitiateTopup creates a gateway transaction for a wallet top-up and
// records a pending topup order. The balance is only credited once the
// gateway confirms the payment.
func InitiateTopup(c *gin.Context) {
	key := c.Param("key")

	var req struct {
		Amount int64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Top-up amount is required", err.Error())
		return
	}
	if req.Amount < minTopupAmount {
		utils.BadRequest(c, fmt.Sprintf("Minimum top-up is %s", utils.FormatRupiah(minTopupAmount)), nil)
		return
	}

	var pk models.PaymentKey
	if err := config.DB.Where("key = ?", key).First(&pk).Error; err != nil {
		utils.NotFound(c, "Payment key not found")
		return
	}

	now := time.Now()
	gatewayOrderID := newGatewayOrderID("TP")

	client := gateway.NewClient()
	paymentCode, err := client.CreateTransaction(c.Request.Context(), gatewayOrderID, req.Amount)
	if err != nil {
		utils.LogError("Gateway create failed for topup %s: %v", gatewayOrderID, err)
		utils.BadRequest(c, "Payment gateway error: "+err.Error(), gin.H{"retry": true})
		return
	}

	topup := models.TopupOrder{
		PaymentKeyID:   pk.ID,
		GatewayOrderID: gatewayOrderID,
		Amount:         req.Amount,
		Status:         models.TopupStatusPending,
		ExpiresAt:      now.Add(paymentWindow),
	}
	if err := config.DB.Create(&topup).Error; err != nil {
		utils.LogError("Failed to persist topup order %s: %v", gatewayOrderID, err)
		utils.InternalServerError(c, "Failed to create top-up order", nil)
		return
	}

	qr, err := gateway.QRCodePNG(paymentCode)
	if err != nil {
		utils.LogError("QR encoding failed for topup %s: %v", gatewayOrderID, err)
	}

	utils.LogInfo("Topup %s initiated for key ending %s, amount %d", gatewayOrderID, keySuffix(key), req.Amount)
	utils.Created(c, "Top-up created, awaiting payment", gin.H{
		"order_id":     gatewayOrderID,
		"amount":       req.Amount,
		"formatted":    utils.FormatRupiah(req.Amount),
		"payment_code": paymentCode,
		"qr_png":       qr,
		"expires_at":   topup.ExpiresAt,
	})
}

// CheckTopupStatus is the user-triggered status check for a pending
// top-up.
func CheckTopupStatus(c *gin.Context) {
	gatewayOrderID := c.Param("order_id")

	var topup models.TopupOrder
	if err := config.DB.Where("gateway_order_id = ?", gatewayOrderID).First(&topup).Error; err != nil {
		utils.NotFound(c, "Top-up order not found")
		return
	}

	switch topup.Status {
	case models.TopupStatusCompleted:
		utils.Success(c, "Top-up confirmed", gin.H{"status": models.TopupStatusCompleted})
		return
	case models.TopupStatusExpired:
		utils.BadRequest(c, "Top-up window has expired. Please start a new top-up.", gin.H{"status": models.TopupStatusExpired})
		return
	}

	now := time.Now()
	if now.After(topup.ExpiresAt) {
		markTopupExpired(topup.GatewayOrderID)
		utils.BadRequest(c, "Top-up window has expired. Please start a new top-up.", gin.H{"status": models.TopupStatusExpired})
		return
	}

	client := gateway.NewClient()
	txn, err := client.TransactionStatus(c.Request.Context(), topup.GatewayOrderID, topup.Amount)
	if err != nil {
		utils.LogError("Gateway status check failed for topup %s: %v", gatewayOrderID, err)
		utils.Success(c, "Payment not confirmed yet, please try again shortly", gin.H{
			"status":     models.TopupStatusPending,
			"expires_at": topup.ExpiresAt,
		})
		return
	}

	if !gateway.IsSuccess(txn.Status) {
		utils.Success(c, "Payment not confirmed yet", gin.H{
			"status":         models.TopupStatusPending,
			"gateway_status": txn.Status,
			"expires_at":     topup.ExpiresAt,
		})
		return
	}

	if err := finalizeTopup(topup.GatewayOrderID, txn.Amount); err != nil {
		utils.LogError("Failed to finalize topup %s: %v", gatewayOrderID, err)
		utils.InternalServerError(c, "Failed to finalize top-up", err.Error())
		return
	}

	utils.Success(c, "Top-up confirmed! Balance has been credited.", gin.H{"status": models.TopupStatusCompleted})
}

// finalizeTopup credits a wallet once the gateway reports success.
// paidAmount is the amount the gateway says was paid; it must match the
// amount the topup was created for, otherwise the credit is refused and
// the mismatch logged for manual review. The pending->completed flip,
// the balance increment, and the ledger entry share one transaction, and
// the conditional flip makes the whole thing idempotent.
func finalizeTopup(gatewayOrderID string, paidAmount int64) error {
	var topup models.TopupOrder
	if err := config.DB.Where("gateway_order_id = ?", gatewayOrderID).First(&topup).Error; err != nil {
		return err
	}

	if paidAmount != topup.Amount {
		utils.LogWriteFailure("finalize_topup", "topup_order", gin.H{
			"order_id": gatewayOrderID,
			"expected": topup.Amount,
			"reported": paidAmount,
		}, fmt.Errorf("gateway amount mismatch"))
		return fmt.Errorf("amount mismatch for topup %s: expected %d, gateway reported %d", gatewayOrderID, topup.Amount, paidAmount)
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	res := tx.Model(&models.TopupOrder{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, models.TopupStatusPending).
		Update("status", models.TopupStatusCompleted)
	if res.Error != nil {
		tx.Rollback()
		return res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		utils.LogDebug("Topup finalize skipped for %s, not pending", gatewayOrderID)
		return nil
	}

	if err := tx.Model(&models.PaymentKey{}).
		Where("id = ?", topup.PaymentKeyID).
		UpdateColumn("balance", gorm.Expr("balance + ?", topup.Amount)).Error; err != nil {
		tx.Rollback()
		return err
	}

	entry := models.WalletTransaction{
		PaymentKeyID: topup.PaymentKeyID,
		Amount:       topup.Amount,
		Type:         models.TransactionTypeTopup,
		Description:  "Top-up " + gatewayOrderID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	broadcastOrderEvent("topup_completed", gin.H{
		"order_id": gatewayOrderID,
		"amount":   topup.Amount,
	})
	utils.LogInfo("Topup %s finalized, credited %d to key %d", gatewayOrderID, topup.Amount, topup.PaymentKeyID)
	return nil
}

// markTopupExpired closes the topup window, conditional on pending.
func markTopupExpired(gatewayOrderID string) {
	res := config.DB.Model(&models.TopupOrder{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, models.TopupStatusPending).
		Update("status", models.TopupStatusExpired)
	if res.Error != nil {
		utils.LogError("Failed to expire topup %s: %v", gatewayOrderID, res.Error)
		return
	}
	if res.RowsAffected > 0 {
		utils.LogInfo("Topup %s expired with no success observed", gatewayOrderID)
	}
}
