package controllers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"
)

// DownloadInvoice streams a PDF invoice for a completed order. The order
// id alone is guessable, so the customer email must match as a light
// ownership check.
func DownloadInvoice(c *gin.Context) {
	gatewayOrderID := c.Param("order_id")
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		utils.BadRequest(c, "The email used at checkout is required", nil)
		return
	}

	var order models.Order
	if err := config.DB.Preload("OrderItems").Where("gateway_order_id = ?", gatewayOrderID).First(&order).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}
	if !strings.EqualFold(order.CustomerEmail, email) {
		utils.LogError("Invoice email mismatch for order %s", gatewayOrderID)
		utils.NotFound(c, "Order not found")
		return
	}
	if order.Status != models.OrderStatusCompleted {
		utils.BadRequest(c, "Invoice is only available for completed orders", nil)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "DIGISTORE")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, "Invoice / Bukti Pembayaran")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(40, 8, "Order ID")
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, order.GatewayOrderID)
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(40, 8, "Tanggal")
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, order.CreatedAt.Format("02 Jan 2006 15:04"))
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(40, 8, "Pembeli")
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("%s (%s)", order.CustomerName, order.CustomerEmail))
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(40, 8, "Metode")
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, order.PaymentMethod)
	pdf.Ln(12)

	headers := []string{"Produk", "Harga", "Qty", "Subtotal"}
	colWidths := []float64{90, 35, 15, 40}
	pdf.SetFont("Arial", "B", 11)
	for i, h := range headers {
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(colWidths[i], 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, item := range order.OrderItems {
		subtotal := item.Price * int64(item.Quantity)
		pdf.CellFormat(colWidths[0], 8, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, utils.FormatRupiah(item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[3], 8, utils.FormatRupiah(subtotal), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	if order.Discount > 0 {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(140, 8, "Diskon ("+order.VoucherCode+")", "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, "-"+utils.FormatRupiah(order.Discount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(140, 9, "Total Dibayar", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 9, utils.FormatRupiah(order.TotalAmount), "1", 0, "R", false, 0, "")
	pdf.Ln(14)

	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 6, "Terima kasih sudah berbelanja di Digistore. Link produk dikirim ke email Anda.")

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%s.pdf", order.GatewayOrderID))
	if err := pdf.Output(c.Writer); err != nil {
		utils.LogError("Failed to write invoice PDF for %s: %v", gatewayOrderID, err)
		utils.InternalServerError(c, "Failed to generate invoice", err.Error())
		return
	}
	utils.LogInfo("Invoice generated for order %s", gatewayOrderID)
}
