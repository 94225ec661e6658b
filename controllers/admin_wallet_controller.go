package controllers

import (
	"strings"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreatePaymentKey issues a new wallet key for a customer email. The key
// string is generated server-side and shown once in the response.
func CreatePaymentKey(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "A valid email is required", err.Error())
		return
	}

	key := "PK-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:16])
	pk := models.PaymentKey{
		Key:   key,
		Email: req.Email,
	}
	if err := config.DB.Create(&pk).Error; err != nil {
		utils.LogError("Failed to create payment key: %v", err)
		utils.InternalServerError(c, "Failed to create payment key", nil)
		return
	}

	utils.LogInfo("Payment key created for %s", req.Email)
	utils.Created(c, "Payment key created", gin.H{
		"id":    pk.ID,
		"key":   pk.Key,
		"email": pk.Email,
	})
}

// ListPaymentKeys returns all wallets for the back office, paginated.
func ListPaymentKeys(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.PaymentKey{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where("email ILIKE ? OR key ILIKE ?", "%"+q+"%", "%"+q+"%")
	}

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var keys []models.PaymentKey
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&keys).Error; err != nil {
		utils.LogError("Failed to list payment keys: %v", err)
		utils.InternalServerError(c, "Failed to list payment keys", nil)
		return
	}

	items := make([]gin.H, 0, len(keys))
	for _, pk := range keys {
		items = append(items, gin.H{
			"id":            pk.ID,
			"key":           pk.Key,
			"email":         pk.Email,
			"balance":       pk.Balance,
			"points":        pk.Points,
			"pin_enabled":   pk.PINEnabled,
			"last_check_in": pk.LastCheckIn,
			"created_at":    pk.CreatedAt,
		})
	}

	utils.SuccessWithPagination(c, "Payment keys retrieved", items, pagination.Total, pagination.Page, pagination.Limit)
}

// AdjustPaymentKey applies a manual balance or points correction. Balance
// changes write a ledger entry in the same transaction, and subtractions
// are conditional on sufficient balance so a wallet can never go
// negative.
func AdjustPaymentKey(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Field     string `json:"field" binding:"required,oneof=balance points"`
		Direction string `json:"direction" binding:"required,oneof=add subtract"`
		Amount    int64  `json:"amount" binding:"required,gt=0"`
		Reason    string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "field (balance|points), direction (add|subtract), a positive amount, and a reason are required", err.Error())
		return
	}

	var pk models.PaymentKey
	if err := config.DB.First(&pk, id).Error; err != nil {
		utils.NotFound(c, "Payment key not found")
		return
	}

	utils.LogInfo("AdjustPaymentKey: key %d, %s %s %d (%s)", pk.ID, req.Direction, req.Field, req.Amount, req.Reason)

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.InternalServerError(c, "Failed to start adjustment", nil)
		return
	}

	column := req.Field
	delta := req.Amount
	if req.Direction == "subtract" {
		delta = -delta
	}

	query := tx.Model(&models.PaymentKey{}).Where("id = ?", pk.ID)
	if req.Direction == "subtract" {
		query = query.Where(column+" >= ?", req.Amount)
	}
	res := query.UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		tx.Rollback()
		utils.LogError("Adjustment failed for key %d: %v", pk.ID, res.Error)
		utils.InternalServerError(c, "Failed to apply adjustment", nil)
		return
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		utils.BadRequest(c, "Insufficient "+req.Field+" for this adjustment", gin.H{
			"current": currentFieldValue(&pk, req.Field),
			"amount":  req.Amount,
		})
		return
	}

	if req.Field == "balance" {
		entry := models.WalletTransaction{
			PaymentKeyID: pk.ID,
			Amount:       delta,
			Type:         models.TransactionTypeAdjustment,
			Description:  "Admin adjustment: " + req.Reason,
		}
		if err := tx.Create(&entry).Error; err != nil {
			tx.Rollback()
			utils.LogError("Failed to write adjustment ledger entry: %v", err)
			utils.InternalServerError(c, "Failed to record adjustment", nil)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to commit adjustment", nil)
		return
	}

	var updated models.PaymentKey
	config.DB.First(&updated, pk.ID)
	utils.Success(c, "Adjustment applied", gin.H{
		"id":      updated.ID,
		"balance": updated.Balance,
		"points":  updated.Points,
	})
}

func currentFieldValue(pk *models.PaymentKey, field string) int64 {
	if field == "points" {
		return int64(pk.Points)
	}
	return pk.Balance
}
