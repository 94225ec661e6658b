package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/gateway"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentWindow is how long a buyer has to scan and pay a QR code before
// the attempt expires.
const paymentWindow = 15 * time.Minute

type checkoutItem struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type checkoutRequest struct {
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	Items         []checkoutItem `json:"items" binding:"required"`
	VoucherCode   string         `json:"voucher_code"`
	PaymentMethod string         `json:"payment_method"`
	PaymentKey    string         `json:"payment_key"`
	PIN           string         `json:"pin"`
}

// newGatewayOrderID generates the client-side order id used to correlate
// a checkout attempt with the gateway's transaction record.
func newGatewayOrderID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// Checkout validates the order form, computes totals with an optional
// voucher, and either fulfills a zero-cost order immediately or opens a
// QR payment with the gateway.
func Checkout(c *gin.Context) {
	utils.LogInfo("Checkout called")

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid checkout request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		utils.LogError("Checkout blocked, missing contact fields")
		utils.BadRequest(c, "Name and email are required", nil)
		return
	}
	if len(req.Items) == 0 {
		utils.BadRequest(c, "Cannot checkout with an empty cart", nil)
		return
	}

	paymentMethod := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if paymentMethod == "" {
		paymentMethod = "qris"
	}
	if paymentMethod != "qris" && paymentMethod != "wallet" {
		utils.BadRequest(c, "Invalid payment method. Must be one of: qris, wallet", nil)
		return
	}

	now := time.Now()

	// Price the cart against the live catalog
	var orderItems []models.OrderItem
	var subtotal int64
	for _, item := range req.Items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}

		var product models.Product
		if err := config.DB.First(&product, item.ProductID).Error; err != nil {
			utils.LogError("Product not found, ID: %d", item.ProductID)
			utils.NotFound(c, fmt.Sprintf("Product with ID %d not found", item.ProductID))
			return
		}
		if product.Stock < qty {
			utils.LogError("Insufficient stock for product '%s', available: %d, requested: %d", product.Name, product.Stock, qty)
			utils.BadRequest(c, fmt.Sprintf("Product '%s' does not have enough stock. Available: %d", product.Name, product.Stock), nil)
			return
		}

		price := product.EffectivePrice(now)
		subtotal += price * int64(qty)
		orderItems = append(orderItems, models.OrderItem{
			ProductID:    product.ID,
			Name:         product.Name,
			Price:        price,
			Quantity:     qty,
			DeliveryLink: product.DeliveryLink,
		})
	}

	// Apply voucher
	var discount int64
	voucherCode := ""
	if req.VoucherCode != "" {
		code := utils.NormalizeVoucherCode(req.VoucherCode)
		var voucher models.Voucher
		if err := config.DB.Where("code = ?", code).First(&voucher).Error; err != nil {
			utils.LogError("Invalid voucher code at checkout: %s", code)
			utils.NotFound(c, "Invalid or inactive voucher")
			return
		}
		if err := utils.ValidateVoucher(&voucher, subtotal, now); err != nil {
			utils.LogError("Voucher rejected at checkout: %s: %v", code, err)
			utils.BadRequest(c, err.Error(), nil)
			return
		}
		discount = utils.VoucherDiscount(&voucher, subtotal)
		voucherCode = voucher.Code
	}

	total := subtotal - discount
	utils.LogInfo("Checkout priced: subtotal=%d discount=%d total=%d method=%s", subtotal, discount, total, paymentMethod)

	gatewayOrderID := newGatewayOrderID("DG")
	order := models.Order{
		CustomerName:   req.Name,
		CustomerEmail:  req.Email,
		CustomerPhone:  req.Phone,
		TotalAmount:    total,
		Discount:       discount,
		VoucherCode:    voucherCode,
		GatewayOrderID: gatewayOrderID,
		OrderItems:     orderItems,
	}

	// Fully discounted carts never touch the gateway
	if total == 0 {
		order.Status = models.OrderStatusCompleted
		order.PaymentMethod = "free"
		completeOrderNow(c, &order, now)
		return
	}

	if paymentMethod == "wallet" {
		payWithWallet(c, &order, req.PaymentKey, req.PIN, now)
		return
	}

	// Paid flow: register the transaction before persisting anything so a
	// gateway failure leaves the cart untouched and retryable
	client := gateway.NewClient()
	paymentCode, err := client.CreateTransaction(c.Request.Context(), gatewayOrderID, total)
	if err != nil {
		utils.LogError("Gateway create failed for order %s: %v", gatewayOrderID, err)
		utils.BadRequest(c, "Payment gateway error: "+err.Error(), gin.H{"retry": true})
		return
	}

	order.Status = models.OrderStatusPending
	order.PaymentMethod = "qris"
	payment := models.Payment{
		GatewayOrderID: gatewayOrderID,
		Amount:         total,
		PaymentCode:    paymentCode,
		Status:         models.PaymentStatusPending,
		ExpiresAt:      now.Add(paymentWindow),
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction for order %s: %v", gatewayOrderID, tx.Error)
		utils.InternalServerError(c, "Failed to start transaction", nil)
		return
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		utils.LogWriteFailure("create", "order", order.GatewayOrderID, err)
		utils.InternalServerError(c, "Failed to create order", err.Error())
		return
	}
	payment.OrderID = order.ID
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		utils.LogWriteFailure("create", "payment", payment.GatewayOrderID, err)
		utils.InternalServerError(c, "Failed to create payment", err.Error())
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit checkout for order %s: %v", gatewayOrderID, err)
		utils.InternalServerError(c, "Failed to commit transaction", err.Error())
		return
	}

	qrPNG, err := gateway.QRCodePNG(paymentCode)
	if err != nil {
		utils.LogError("Failed to render QR PNG for order %s: %v", gatewayOrderID, err)
	}

	utils.LogInfo("Pending order %s created, awaiting payment", gatewayOrderID)
	utils.Success(c, "Scan the QR code to complete your payment", gin.H{
		"order_id":     gatewayOrderID,
		"status":       models.OrderStatusPending,
		"subtotal":     utils.FormatRupiah(subtotal),
		"discount":     utils.FormatRupiah(discount),
		"total":        utils.FormatRupiah(total),
		"payment_code": paymentCode,
		"qr_png":       qrPNG,
		"expires_at":   payment.ExpiresAt,
	})
}

// completeOrderNow persists a completed order and its stock mutations in
// one transaction, then sends the invoice asynchronously.
func completeOrderNow(c *gin.Context, order *models.Order, now time.Time) {
	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction for order %s: %v", order.GatewayOrderID, tx.Error)
		utils.InternalServerError(c, "Failed to start transaction", nil)
		return
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		utils.LogWriteFailure("create", "order", order.GatewayOrderID, err)
		utils.InternalServerError(c, "Failed to create order", err.Error())
		return
	}
	if err := applyPurchases(tx, order.OrderItems, now); err != nil {
		tx.Rollback()
		utils.LogWriteFailure("update", "product", order.GatewayOrderID, err)
		utils.InternalServerError(c, "Failed to update stock", err.Error())
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit order %s: %v", order.GatewayOrderID, err)
		utils.InternalServerError(c, "Failed to commit transaction", err.Error())
		return
	}

	sendInvoiceAsync(order)
	broadcastOrderEvent("order_completed", gin.H{
		"order_id": order.GatewayOrderID,
		"total":    order.TotalAmount,
		"method":   order.PaymentMethod,
	})

	utils.LogInfo("Order %s completed via %s", order.GatewayOrderID, order.PaymentMethod)
	utils.Success(c, "Thank you! Your order has been completed.", gin.H{
		"order_id": order.GatewayOrderID,
		"status":   order.Status,
		"total":    utils.FormatRupiah(order.TotalAmount),
		"discount": utils.FormatRupiah(order.Discount),
		"items":    order.OrderItems,
	})
}

// payWithWallet completes a checkout funded by a payment key: debit and
// ledger entry land in the same transaction as the order.
func payWithWallet(c *gin.Context, order *models.Order, key, pin string, now time.Time) {
	if strings.TrimSpace(key) == "" {
		utils.BadRequest(c, "Payment key is required for wallet payment", nil)
		return
	}

	var pk models.PaymentKey
	if err := config.DB.Where("key = ?", key).First(&pk).Error; err != nil {
		utils.LogError("Unknown payment key at checkout")
		utils.NotFound(c, "Payment key not found")
		return
	}

	// PIN two-step verification, when the key has enabled it
	if pk.PINEnabled {
		if pin == "" || !utils.CheckPassword(pin, pk.PINHash) {
			utils.LogError("PIN verification failed for payment key ID: %d", pk.ID)
			utils.Unauthorized(c, "Invalid PIN")
			return
		}
	}

	if pk.Balance < order.TotalAmount {
		utils.LogError("Insufficient wallet balance for key ID: %d. Required: %d, Available: %d", pk.ID, order.TotalAmount, pk.Balance)
		utils.BadRequest(c, "Insufficient balance. Please top up your wallet or choose another payment method.", nil)
		return
	}

	order.Status = models.OrderStatusCompleted
	order.PaymentMethod = "wallet"

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction for order %s: %v", order.GatewayOrderID, tx.Error)
		utils.InternalServerError(c, "Failed to start transaction", nil)
		return
	}

	// Conditional debit so a concurrent spend cannot drive the balance
	// negative
	res := tx.Model(&models.PaymentKey{}).
		Where("id = ? AND balance >= ?", pk.ID, order.TotalAmount).
		UpdateColumn("balance", gorm.Expr("balance - ?", order.TotalAmount))
	if res.Error != nil {
		tx.Rollback()
		utils.LogWriteFailure("update", "payment_key", pk.ID, res.Error)
		utils.InternalServerError(c, "Failed to process wallet payment", res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		utils.BadRequest(c, "Insufficient balance. Please top up your wallet or choose another payment method.", nil)
		return
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		utils.LogWriteFailure("create", "order", order.GatewayOrderID, err)
		utils.InternalServerError(c, "Failed to create order", err.Error())
		return
	}

	entry := models.WalletTransaction{
		PaymentKeyID: pk.ID,
		Amount:       -order.TotalAmount,
		Type:         models.TransactionTypePurchase,
		Description:  fmt.Sprintf("Payment for order %s", order.GatewayOrderID),
	}
	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		utils.LogWriteFailure("create", "wallet_transaction", entry, err)
		utils.InternalServerError(c, "Failed to record wallet transaction", err.Error())
		return
	}

	if err := applyPurchases(tx, order.OrderItems, now); err != nil {
		tx.Rollback()
		utils.LogWriteFailure("update", "product", order.GatewayOrderID, err)
		utils.InternalServerError(c, "Failed to update stock", err.Error())
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit wallet order %s: %v", order.GatewayOrderID, err)
		utils.InternalServerError(c, "Failed to commit transaction", err.Error())
		return
	}

	sendInvoiceAsync(order)
	broadcastOrderEvent("order_completed", gin.H{
		"order_id": order.GatewayOrderID,
		"total":    order.TotalAmount,
		"method":   order.PaymentMethod,
	})

	utils.LogInfo("Order %s paid from wallet key ID: %d", order.GatewayOrderID, pk.ID)
	utils.Success(c, "Thank you! Your order has been completed.", gin.H{
		"order_id":       order.GatewayOrderID,
		"status":         order.Status,
		"total":          utils.FormatRupiah(order.TotalAmount),
		"amount_charged": utils.FormatRupiah(order.TotalAmount),
		"items":          order.OrderItems,
	})
}

// applyPurchases locks each product row and records the purchase through
// the model helper so the flash-sale revert invariant holds everywhere.
// SQLite, which the tests run on, has no row locks and rejects FOR UPDATE.
func applyPurchases(tx *gorm.DB, items []models.OrderItem, now time.Time) error {
	for _, item := range items {
		read := tx
		if tx.Dialector.Name() == "postgres" {
			read = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var product models.Product
		if err := read.First(&product, item.ProductID).Error; err != nil {
			return fmt.Errorf("product %d: %w", item.ProductID, err)
		}
		product.ApplyPurchase(item.Quantity, now)
		if err := tx.Save(&product).Error; err != nil {
			return fmt.Errorf("product %d: %w", item.ProductID, err)
		}
	}
	invalidateCatalogCache()
	return nil
}

// sendInvoice is swapped out in tests.
var sendInvoice = utils.SendOrderInvoice

// sendInvoiceAsync fires the confirmation email without blocking the
// response. Failures are logged, never retried.
func sendInvoiceAsync(order *models.Order) {
	items := make([]utils.InvoiceItem, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		items = append(items, utils.InvoiceItem{Name: item.Name, DeliveryLink: item.DeliveryLink})
	}
	to := order.CustomerEmail
	orderID := order.GatewayOrderID
	total := order.TotalAmount
	go func() {
		if err := sendInvoice(to, orderID, total, items); err != nil {
			utils.LogError("Failed to send invoice for order %s: %v", orderID, err)
		}
	}()
}
