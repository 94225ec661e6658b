package controllers

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureInvoices swaps the invoice sender for a counter for the
// duration of a test.
func captureInvoices(t *testing.T) *int32 {
	t.Helper()

	var count int32
	orig := sendInvoice
	sendInvoice = func(to, orderID string, total int64, items []utils.InvoiceItem) error {
		atomic.AddInt32(&count, 1)
		return nil
	}
	t.Cleanup(func() { sendInvoice = orig })
	return &count
}

func TestFinalizeOrderPaymentIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	invoices := captureInvoices(t)

	product := models.Product{Name: "Netflix Premium", Price: 54000, OriginalPrice: 54000, Stock: 5}
	require.NoError(t, db.Create(&product).Error)

	order := models.Order{
		CustomerName:   "Budi",
		CustomerEmail:  "budi@example.com",
		TotalAmount:    54000,
		PaymentMethod:  "qris",
		Status:         models.OrderStatusPending,
		GatewayOrderID: "DG-aaaabbbbcccc",
		OrderItems: []models.OrderItem{
			{ProductID: product.ID, Name: product.Name, Price: 54000, Quantity: 1},
		},
	}
	require.NoError(t, db.Create(&order).Error)
	payment := models.Payment{
		OrderID:        order.ID,
		GatewayOrderID: order.GatewayOrderID,
		Amount:         54000,
		Status:         models.PaymentStatusPending,
		ExpiresAt:      time.Now().Add(paymentWindow),
	}
	require.NoError(t, db.Create(&payment).Error)

	require.NoError(t, finalizeOrderPayment(order.GatewayOrderID))
	require.NoError(t, finalizeOrderPayment(order.GatewayOrderID))

	var gotPayment models.Payment
	require.NoError(t, db.Where("gateway_order_id = ?", order.GatewayOrderID).First(&gotPayment).Error)
	assert.Equal(t, models.PaymentStatusCompleted, gotPayment.Status)

	var gotOrder models.Order
	require.NoError(t, db.Where("gateway_order_id = ?", order.GatewayOrderID).First(&gotOrder).Error)
	assert.Equal(t, models.OrderStatusCompleted, gotOrder.Status)

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 4, gotProduct.Stock, "stock must be decremented exactly once")
	assert.Equal(t, 1, gotProduct.SoldCount)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(invoices) >= 1
	}, time.Second, 10*time.Millisecond)
	// a second dispatch, if one were coming, would land within this window
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(invoices), "one confirmation email per order")
}

func TestCheckoutZeroTotalSkipsGateway(t *testing.T) {
	db := newTestDB(t)
	captureInvoices(t)

	var gatewayHits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&gatewayHits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()
	t.Setenv("GATEWAY_BASE_URL", ts.URL)

	product := models.Product{Name: "Canva Pro", Price: 40000, OriginalPrice: 40000, Stock: 3}
	require.NoError(t, db.Create(&product).Error)
	voucher := models.Voucher{Code: "GRATIS100", Type: models.VoucherTypePercentage, Value: 100, Active: true}
	require.NoError(t, db.Create(&voucher).Error)

	c, w := postJSON(t, "/v1/checkout", gin.H{
		"name":         "Sari",
		"email":        "sari@example.com",
		"items":        []gin.H{{"product_id": product.ID, "quantity": 1}},
		"voucher_code": "gratis100",
	})
	Checkout(c)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 0, atomic.LoadInt32(&gatewayHits), "a fully discounted cart must never reach the gateway")

	var order models.Order
	require.NoError(t, db.Preload("OrderItems").First(&order).Error)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	assert.EqualValues(t, 0, order.TotalAmount)
	assert.EqualValues(t, 40000, order.Discount)
	assert.Equal(t, "free", order.PaymentMethod)

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 2, gotProduct.Stock)
}

func TestFinalizeTopupCreditsExactlyOnce(t *testing.T) {
	db := newTestDB(t)

	pk := models.PaymentKey{Key: "PK-TOPUPTEST0001", Email: "sari@example.com"}
	require.NoError(t, db.Create(&pk).Error)
	topup := models.TopupOrder{
		PaymentKeyID:   pk.ID,
		GatewayOrderID: "TP-ddddeeeeffff",
		Amount:         50000,
		Status:         models.TopupStatusPending,
		ExpiresAt:      time.Now().Add(paymentWindow),
	}
	require.NoError(t, db.Create(&topup).Error)

	require.NoError(t, finalizeTopup(topup.GatewayOrderID, 50000))
	require.NoError(t, finalizeTopup(topup.GatewayOrderID, 50000))

	var got models.PaymentKey
	require.NoError(t, db.First(&got, pk.ID).Error)
	assert.EqualValues(t, 50000, got.Balance, "balance must increase by exactly the top-up amount")

	var entries []models.WalletTransaction
	require.NoError(t, db.Where("payment_key_id = ?", pk.ID).Find(&entries).Error)
	require.Len(t, entries, 1, "exactly one ledger entry per top-up")
	assert.Equal(t, models.TransactionTypeTopup, entries[0].Type)
	assert.EqualValues(t, 50000, entries[0].Amount)

	var gotTopup models.TopupOrder
	require.NoError(t, db.Where("gateway_order_id = ?", topup.GatewayOrderID).First(&gotTopup).Error)
	assert.Equal(t, models.TopupStatusCompleted, gotTopup.Status)
}

func TestFinalizeTopupRejectsAmountMismatch(t *testing.T) {
	db := newTestDB(t)

	pk := models.PaymentKey{Key: "PK-TOPUPTEST0002", Email: "andi@example.com"}
	require.NoError(t, db.Create(&pk).Error)
	topup := models.TopupOrder{
		PaymentKeyID:   pk.ID,
		GatewayOrderID: "TP-gggghhhhiiii",
		Amount:         50000,
		Status:         models.TopupStatusPending,
		ExpiresAt:      time.Now().Add(paymentWindow),
	}
	require.NoError(t, db.Create(&topup).Error)

	require.Error(t, finalizeTopup(topup.GatewayOrderID, 49000))

	var got models.PaymentKey
	require.NoError(t, db.First(&got, pk.ID).Error)
	assert.EqualValues(t, 0, got.Balance, "a mismatched amount must not be credited")

	var count int64
	db.Model(&models.WalletTransaction{}).Where("payment_key_id = ?", pk.ID).Count(&count)
	assert.EqualValues(t, 0, count)

	var gotTopup models.TopupOrder
	require.NoError(t, db.Where("gateway_order_id = ?", topup.GatewayOrderID).First(&gotTopup).Error)
	assert.Equal(t, models.TopupStatusPending, gotTopup.Status)
}
