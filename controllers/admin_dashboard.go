package controllers

import (
	"strings"
	"time"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns the back-office overview numbers.
func GetDashboard(c *gin.Context) {
	utils.LogInfo("GetDashboard called")

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var totalOrders, pendingOrders, completedOrders int64
	config.DB.Model(&models.Order{}).Count(&totalOrders)
	config.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&pendingOrders)
	config.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted).Count(&completedOrders)

	var revenue struct {
		Total int64
		Today int64
	}
	config.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&revenue.Total)
	config.DB.Model(&models.Order{}).Where("status = ? AND created_at >= ?", models.OrderStatusCompleted, todayStart).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&revenue.Today)

	var productCount, walletCount int64
	config.DB.Model(&models.Product{}).Count(&productCount)
	config.DB.Model(&models.PaymentKey{}).Count(&walletCount)

	var walletLiability int64
	config.DB.Model(&models.PaymentKey{}).Select("COALESCE(SUM(balance), 0)").Scan(&walletLiability)

	type topProduct struct {
		ProductID uint   `json:"product_id"`
		Name      string `json:"name"`
		Sold      int    `json:"sold"`
	}
	var topProducts []topProduct
	config.DB.Model(&models.OrderItem{}).
		Select("order_items.product_id, order_items.name, SUM(order_items.quantity) as sold").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", models.OrderStatusCompleted).
		Group("order_items.product_id, order_items.name").
		Order("sold DESC").
		Limit(5).
		Scan(&topProducts)

	utils.Success(c, "Dashboard retrieved", gin.H{
		"orders": gin.H{
			"total":     totalOrders,
			"pending":   pendingOrders,
			"completed": completedOrders,
		},
		"revenue": gin.H{
			"total":           revenue.Total,
			"total_formatted": utils.FormatRupiah(revenue.Total),
			"today":           revenue.Today,
			"today_formatted": utils.FormatRupiah(revenue.Today),
		},
		"products":         productCount,
		"wallets":          walletCount,
		"wallet_liability": walletLiability,
		"top_products":     topProducts,
	})
}

// AdminListOrders is the back-office order listing with status and text
// filters.
func AdminListOrders(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Order{}).Preload("OrderItems")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + q + "%"
		query = query.Where("customer_name ILIKE ? OR customer_email ILIKE ? OR gateway_order_id ILIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var orders []models.Order
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&orders).Error; err != nil {
		utils.LogError("Failed to list orders: %v", err)
		utils.InternalServerError(c, "Failed to load orders", nil)
		return
	}

	utils.SuccessWithPagination(c, "Orders retrieved", orders, pagination.Total, pagination.Page, pagination.Limit)
}
