package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"
)

// reportWindow resolves a period query value to a date range.
func reportWindow(period string, now time.Time) (time.Time, time.Time, bool) {
	switch period {
	case "day":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		return start, end, true
	case "week":
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		start := end.AddDate(0, 0, -6)
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		return start, end, true
	case "month":
		start := now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
		end := now.Add(24 * time.Hour)
		return start, end, true
	}
	return time.Time{}, time.Time{}, false
}

type salesSummary struct {
	TotalSales      int
	TotalRevenue    int64
	TotalItems      int
	TotalCustomers  int
	TotalDiscounts  int64
	AverageOrderVal int64
}

func summarize(orders []models.Order) salesSummary {
	var s salesSummary
	customerSet := make(map[string]bool)
	for _, order := range orders {
		s.TotalSales++
		s.TotalRevenue += order.TotalAmount
		s.TotalDiscounts += order.Discount
		customerSet[strings.ToLower(order.CustomerEmail)] = true
		for _, item := range order.OrderItems {
			s.TotalItems += item.Quantity
		}
	}
	s.TotalCustomers = len(customerSet)
	if s.TotalSales > 0 {
		s.AverageOrderVal = s.TotalRevenue / int64(s.TotalSales)
	}
	return s
}

func loadReportOrders(c *gin.Context) ([]models.Order, string, bool) {
	period := c.DefaultQuery("period", "day")
	startDate, endDate, ok := reportWindow(period, time.Now())
	if !ok {
		utils.LogError("Invalid report period: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return nil, period, false
	}

	var orders []models.Order
	query := config.DB.Where("created_at >= ? AND created_at <= ? AND status = ?",
		startDate, endDate, models.OrderStatusCompleted).
		Preload("OrderItems").
		Order("created_at DESC")
	if err := query.Find(&orders).Error; err != nil {
		utils.LogError("Failed to fetch orders for report: %v", err)
		utils.InternalServerError(c, "Failed to fetch orders", err.Error())
		return nil, period, false
	}
	utils.LogDebug("Retrieved %d completed orders for %s report", len(orders), period)
	return orders, period, true
}

// DownloadSalesReportExcel streams the completed-order report as an xlsx
// attachment.
func DownloadSalesReportExcel(c *gin.Context) {
	utils.LogInfo("DownloadSalesReportExcel called")

	orders, period, ok := loadReportOrders(c)
	if !ok {
		return
	}
	summary := summarize(orders)
	startDate, endDate, _ := reportWindow(period, time.Now())

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sales Report")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", err.Error())
		return
	}

	titleRow := sheet.AddRow()
	titleRow.AddCell().SetString("DIGISTORE - Laporan Penjualan")
	periodRow := sheet.AddRow()
	periodRow.AddCell().SetString("Period: " + strings.ToUpper(period) + " | " + startDate.Format("2006-01-02") + " to " + endDate.Format("2006-01-02"))
	sheet.AddRow() // spacing

	headers := []string{"Order ID", "Customer", "Email", "Date", "Items", "Total", "Discount", "Payment Method"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	for _, order := range orders {
		itemCount := 0
		for _, item := range order.OrderItems {
			itemCount += item.Quantity
		}
		row := sheet.AddRow()
		row.AddCell().SetString(order.GatewayOrderID)
		row.AddCell().SetString(order.CustomerName)
		row.AddCell().SetString(order.CustomerEmail)
		row.AddCell().SetString(order.CreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetInt(itemCount)
		row.AddCell().SetString(utils.FormatRupiah(order.TotalAmount))
		row.AddCell().SetString(utils.FormatRupiah(order.Discount))
		row.AddCell().SetString(order.PaymentMethod)
	}

	sheet.AddRow() // spacing

	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Summary")
	style := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	style.Font = *font
	summaryRow.Cells[0].SetStyle(style)

	summaryData := [][]string{
		{"Total Sales", fmt.Sprintf("%d", summary.TotalSales)},
		{"Total Revenue", utils.FormatRupiah(summary.TotalRevenue)},
		{"Total Items", fmt.Sprintf("%d", summary.TotalItems)},
		{"Total Customers", fmt.Sprintf("%d", summary.TotalCustomers)},
		{"Total Discounts", utils.FormatRupiah(summary.TotalDiscounts)},
		{"Avg. Order Value", utils.FormatRupiah(summary.AverageOrderVal)},
	}
	for _, data := range summaryData {
		row := sheet.AddRow()
		row.AddCell().SetString(data[0])
		row.AddCell().SetString(data[1])
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=sales_report_%s.xlsx", period))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", err.Error())
		return
	}
	utils.LogInfo("Generated Excel report for period %s", period)
}

// DownloadSalesReportPDF streams the completed-order report as a PDF
// attachment.
func DownloadSalesReportPDF(c *gin.Context) {
	utils.LogInfo("DownloadSalesReportPDF called")

	orders, period, ok := loadReportOrders(c)
	if !ok {
		return
	}
	summary := summarize(orders)
	startDate, endDate, _ := reportWindow(period, time.Now())

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "DIGISTORE - Laporan Penjualan")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Period: "+strings.ToUpper(period)+" | "+startDate.Format("2006-01-02")+" to "+endDate.Format("2006-01-02"))
	pdf.Ln(10)

	headers := []string{"Order ID", "Customer", "Email", "Date", "Items", "Total", "Discount", "Method"}
	colWidths := []float64{40, 40, 55, 32, 15, 30, 30, 25}
	pdf.SetFont("Arial", "B", 11)
	for i, h := range headers {
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(colWidths[i], 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	fill := false
	for _, order := range orders {
		itemCount := 0
		for _, item := range order.OrderItems {
			itemCount += item.Quantity
		}
		pdf.SetFillColor(245, 245, 245)
		if fill {
			pdf.SetFillColor(230, 240, 255)
		}
		fill = !fill
		pdf.CellFormat(colWidths[0], 8, order.GatewayOrderID, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[1], 8, order.CustomerName, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colWidths[2], 8, order.CustomerEmail, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colWidths[3], 8, order.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[4], 8, fmt.Sprintf("%d", itemCount), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[5], 8, utils.FormatRupiah(order.TotalAmount), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[6], 8, utils.FormatRupiah(order.Discount), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[7], 8, order.PaymentMethod, "1", 0, "C", fill, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 13)
	pdf.SetFillColor(220, 230, 250)
	pdf.CellFormat(70, 10, "Summary", "1", 0, "C", true, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 11)
	pdf.SetFillColor(255, 255, 255)
	summaryData := [][]string{
		{"Total Sales", fmt.Sprintf("%d", summary.TotalSales)},
		{"Total Revenue", utils.FormatRupiah(summary.TotalRevenue)},
		{"Total Items", fmt.Sprintf("%d", summary.TotalItems)},
		{"Total Customers", fmt.Sprintf("%d", summary.TotalCustomers)},
		{"Total Discounts", utils.FormatRupiah(summary.TotalDiscounts)},
		{"Avg. Order Value", utils.FormatRupiah(summary.AverageOrderVal)},
	}
	for _, data := range summaryData {
		pdf.CellFormat(50, 8, data[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, data[1], "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=sales_report_%s.pdf", period))
	if err := pdf.Output(c.Writer); err != nil {
		utils.LogError("Failed to write PDF file: %v", err)
		utils.InternalServerError(c, "Failed to write PDF file", err.Error())
		return
	}
	utils.LogInfo("Generated PDF report for period %s", period)
}
