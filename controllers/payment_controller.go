package controllers

import (
	"context"
	"time"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/gateway"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
)

// CheckPaymentStatus is the user-triggered status check for a pending QR
// payment. Success finalizes the order; anything else is a non-blocking
// notice.
func CheckPaymentStatus(c *gin.Context) {
	gatewayOrderID := c.Param("order_id")
	utils.LogInfo("CheckPaymentStatus called for order %s", gatewayOrderID)

	var payment models.Payment
	if err := config.DB.Where("gateway_order_id = ?", gatewayOrderID).First(&payment).Error; err != nil {
		utils.NotFound(c, "Payment not found")
		return
	}

	switch payment.Status {
	case models.PaymentStatusCompleted:
		utils.Success(c, "Payment confirmed", gin.H{"status": models.PaymentStatusCompleted})
		return
	case models.PaymentStatusExpired:
		utils.BadRequest(c, "Payment window has expired. Please place a new order.", gin.H{"status": models.PaymentStatusExpired})
		return
	}

	now := time.Now()
	if payment.Expired(now) {
		markPaymentExpired(payment.GatewayOrderID)
		utils.BadRequest(c, "Payment window has expired. Please place a new order.", gin.H{"status": models.PaymentStatusExpired})
		return
	}

	client := gateway.NewClient()
	txn, err := client.TransactionStatus(c.Request.Context(), payment.GatewayOrderID, payment.Amount)
	if err != nil {
		utils.LogError("Gateway status check failed for order %s: %v", gatewayOrderID, err)
		utils.Success(c, "Payment not confirmed yet, please try again shortly", gin.H{
			"status":     models.PaymentStatusPending,
			"expires_at": payment.ExpiresAt,
		})
		return
	}

	if !gateway.IsSuccess(txn.Status) {
		utils.Success(c, "Payment not confirmed yet", gin.H{
			"status":         models.PaymentStatusPending,
			"gateway_status": txn.Status,
			"expires_at":     payment.ExpiresAt,
		})
		return
	}

	if err := finalizeOrderPayment(payment.GatewayOrderID); err != nil {
		utils.LogError("Failed to finalize order %s: %v", gatewayOrderID, err)
		utils.InternalServerError(c, "Failed to finalize payment", err.Error())
		return
	}

	utils.Success(c, "Payment confirmed! Your order is complete.", gin.H{"status": models.PaymentStatusCompleted})
}

// PaymentWebhook receives gateway callbacks. The reported status is never
// trusted: the transaction is re-verified against the gateway before the
// finalize runs. Finalize itself is idempotent, so replayed callbacks and
// races with the watcher or a manual check are harmless.
func PaymentWebhook(c *gin.Context) {
	var req struct {
		OrderID string `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid webhook payload", err.Error())
		return
	}
	utils.LogInfo("Payment webhook received for order %s", req.OrderID)

	client := gateway.NewClient()

	var payment models.Payment
	if err := config.DB.Where("gateway_order_id = ?", req.OrderID).First(&payment).Error; err == nil {
		txn, err := client.TransactionStatus(c.Request.Context(), payment.GatewayOrderID, payment.Amount)
		if err != nil {
			utils.LogError("Webhook verification failed for order %s: %v", req.OrderID, err)
			utils.BadRequest(c, "Could not verify transaction", nil)
			return
		}
		if !gateway.IsSuccess(txn.Status) {
			utils.Success(c, "Transaction not successful, nothing to do", gin.H{"gateway_status": txn.Status})
			return
		}
		if err := finalizeOrderPayment(payment.GatewayOrderID); err != nil {
			utils.InternalServerError(c, "Failed to finalize payment", err.Error())
			return
		}
		utils.Success(c, "Order finalized", nil)
		return
	}

	var topup models.TopupOrder
	if err := config.DB.Where("gateway_order_id = ?", req.OrderID).First(&topup).Error; err == nil {
		txn, err := client.TransactionStatus(c.Request.Context(), topup.GatewayOrderID, topup.Amount)
		if err != nil {
			utils.LogError("Webhook verification failed for topup %s: %v", req.OrderID, err)
			utils.BadRequest(c, "Could not verify transaction", nil)
			return
		}
		if !gateway.IsSuccess(txn.Status) {
			utils.Success(c, "Transaction not successful, nothing to do", gin.H{"gateway_status": txn.Status})
			return
		}
		if err := finalizeTopup(topup.GatewayOrderID, txn.Amount); err != nil {
			utils.InternalServerError(c, "Failed to finalize topup", err.Error())
			return
		}
		utils.Success(c, "Topup finalized", nil)
		return
	}

	utils.NotFound(c, "Unknown order id")
}

// GetOrderStatus returns the public view of an order by gateway order id.
func GetOrderStatus(c *gin.Context) {
	gatewayOrderID := c.Param("order_id")

	var order models.Order
	if err := config.DB.Preload("OrderItems").Where("gateway_order_id = ?", gatewayOrderID).First(&order).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	resp := gin.H{
		"order_id":   order.GatewayOrderID,
		"status":     order.Status,
		"total":      utils.FormatRupiah(order.TotalAmount),
		"discount":   utils.FormatRupiah(order.Discount),
		"created_at": order.CreatedAt,
	}
	// Delivery links only once the order is paid
	if order.Status == models.OrderStatusCompleted {
		resp["items"] = order.OrderItems
	}
	utils.Success(c, "Order retrieved", resp)
}

// finalizeOrderPayment promotes a pending payment and its order to
// completed, applies stock mutations, and triggers the invoice email. The
// pending->completed transition is a conditional write keyed on the
// gateway order id; whichever caller wins performs the side effects
// exactly once, every other caller sees zero rows and returns.
func finalizeOrderPayment(gatewayOrderID string) error {
	now := time.Now()

	tx := config.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	res := tx.Model(&models.Payment{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, models.PaymentStatusPending).
		Update("status", models.PaymentStatusCompleted)
	if res.Error != nil {
		tx.Rollback()
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Already finalized (or expired) by another caller
		tx.Rollback()
		utils.LogDebug("Finalize skipped for order %s, payment not pending", gatewayOrderID)
		return nil
	}

	var order models.Order
	if err := tx.Preload("OrderItems").Where("gateway_order_id = ?", gatewayOrderID).First(&order).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderStatusCompleted).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := applyPurchases(tx, order.OrderItems, now); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	order.Status = models.OrderStatusCompleted
	sendInvoiceAsync(&order)
	broadcastOrderEvent("order_paid", gin.H{
		"order_id": order.GatewayOrderID,
		"total":    order.TotalAmount,
		"method":   order.PaymentMethod,
	})
	utils.LogInfo("Order %s finalized after payment confirmation", gatewayOrderID)
	return nil
}

// markPaymentExpired closes the payment window. Conditional on pending so
// a racing success confirmation wins.
func markPaymentExpired(gatewayOrderID string) {
	res := config.DB.Model(&models.Payment{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, models.PaymentStatusPending).
		Update("status", models.PaymentStatusExpired)
	if res.Error != nil {
		utils.LogError("Failed to expire payment %s: %v", gatewayOrderID, res.Error)
		return
	}
	if res.RowsAffected > 0 {
		utils.LogInfo("Payment %s expired with no success observed", gatewayOrderID)
	}
}

// verifyAndFinalize checks one pending payment against the gateway and
// finalizes on success. Used by the background watcher.
func verifyAndFinalize(ctx context.Context, client *gateway.Client, payment *models.Payment) {
	if payment.Expired(time.Now()) {
		markPaymentExpired(payment.GatewayOrderID)
		return
	}
	txn, err := client.TransactionStatus(ctx, payment.GatewayOrderID, payment.Amount)
	if err != nil {
		utils.LogDebug("Watcher status check failed for order %s: %v", payment.GatewayOrderID, err)
		return
	}
	if !gateway.IsSuccess(txn.Status) {
		return
	}
	if err := finalizeOrderPayment(payment.GatewayOrderID); err != nil {
		utils.LogError("Watcher failed to finalize order %s: %v", payment.GatewayOrderID, err)
	}
}
