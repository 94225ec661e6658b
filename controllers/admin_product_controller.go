package controllers

import (
	"strings"
	"time"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
)

type productRequest struct {
	Name          string  `json:"name" binding:"required"`
	Category      string  `json:"category" binding:"required"`
	Price         int64   `json:"price" binding:"required,gt=0"`
	OriginalPrice int64   `json:"original_price"`
	Description   string  `json:"description"`
	Features      string  `json:"features"`
	ImageURL      string  `json:"image_url"`
	DeliveryLink  string  `json:"delivery_link"`
	Stock         int     `json:"stock" binding:"gte=0"`
	Rating        float64 `json:"rating" binding:"gte=0,lte=5"`
	ReviewCount   int     `json:"review_count" binding:"gte=0"`
	BestSeller    bool    `json:"best_seller"`
}

// CreateProduct adds a catalog entry.
func CreateProduct(c *gin.Context) {
	utils.LogInfo("CreateProduct called")

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid product payload: %v", err)
		utils.BadRequest(c, "Invalid product data", err.Error())
		return
	}

	if req.OriginalPrice == 0 {
		req.OriginalPrice = req.Price
	}

	product := models.Product{
		Name:          strings.TrimSpace(req.Name),
		Category:      strings.TrimSpace(req.Category),
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Description:   req.Description,
		Features:      req.Features,
		ImageURL:      req.ImageURL,
		DeliveryLink:  req.DeliveryLink,
		Stock:         req.Stock,
		Rating:        req.Rating,
		ReviewCount:   req.ReviewCount,
		BestSeller:    req.BestSeller,
	}
	if err := config.DB.Create(&product).Error; err != nil {
		utils.LogError("Failed to create product: %v", err)
		utils.InternalServerError(c, "Failed to create product", nil)
		return
	}

	invalidateCatalogCache()
	utils.LogInfo("Product %d created: %s", product.ID, product.Name)
	utils.Created(c, "Product created", product)
}

// UpdateProduct edits a catalog entry.
func UpdateProduct(c *gin.Context) {
	var product models.Product
	if err := config.DB.First(&product, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid product data", err.Error())
		return
	}
	if req.OriginalPrice == 0 {
		req.OriginalPrice = req.Price
	}

	updates := map[string]interface{}{
		"name":           strings.TrimSpace(req.Name),
		"category":       strings.TrimSpace(req.Category),
		"price":          req.Price,
		"original_price": req.OriginalPrice,
		"description":    req.Description,
		"features":       req.Features,
		"image_url":      req.ImageURL,
		"delivery_link":  req.DeliveryLink,
		"stock":          req.Stock,
		"rating":         req.Rating,
		"review_count":   req.ReviewCount,
		"best_seller":    req.BestSeller,
	}
	if err := config.DB.Model(&product).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update product %d: %v", product.ID, err)
		utils.InternalServerError(c, "Failed to update product", nil)
		return
	}

	invalidateCatalogCache()
	utils.LogInfo("Product %d updated", product.ID)
	utils.Success(c, "Product updated", product)
}

// DeleteProduct soft-deletes a catalog entry.
func DeleteProduct(c *gin.Context) {
	var product models.Product
	if err := config.DB.First(&product, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	if err := config.DB.Delete(&product).Error; err != nil {
		utils.LogError("Failed to delete product %d: %v", product.ID, err)
		utils.InternalServerError(c, "Failed to delete product", nil)
		return
	}

	invalidateCatalogCache()
	utils.LogInfo("Product %d deleted", product.ID)
	utils.Success(c, "Product deleted", nil)
}

// AdminListProducts is the back-office listing, including raw prices and
// delivery links the public view hides.
func AdminListProducts(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Product{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where("name ILIKE ?", "%"+q+"%")
	}

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var products []models.Product
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&products).Error; err != nil {
		utils.LogError("Failed to list products: %v", err)
		utils.InternalServerError(c, "Failed to load products", nil)
		return
	}

	utils.SuccessWithPagination(c, "Products retrieved", products, pagination.Total, pagination.Page, pagination.Limit)
}

// SetFlashSale puts a product on a timed sale: a discounted price, an end
// time, and a quota of units sold at that price.
func SetFlashSale(c *gin.Context) {
	var product models.Product
	if err := config.DB.First(&product, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	var req struct {
		SalePrice int64     `json:"sale_price" binding:"required,gt=0"`
		EndsAt    time.Time `json:"ends_at" binding:"required"`
		Stock     int       `json:"stock" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "sale_price, ends_at, and stock are required", err.Error())
		return
	}
	if !req.EndsAt.After(time.Now()) {
		utils.BadRequest(c, "Flash sale end time must be in the future", nil)
		return
	}
	if req.SalePrice >= product.OriginalPrice {
		utils.BadRequest(c, "Sale price must be below the original price", nil)
		return
	}

	updates := map[string]interface{}{
		"price":            req.SalePrice,
		"flash_sale_end":   req.EndsAt,
		"flash_sale_stock": req.Stock,
	}
	if err := config.DB.Model(&product).Updates(updates).Error; err != nil {
		utils.LogError("Failed to set flash sale on product %d: %v", product.ID, err)
		utils.InternalServerError(c, "Failed to set flash sale", nil)
		return
	}

	invalidateCatalogCache()
	utils.LogInfo("Flash sale set on product %d until %s", product.ID, req.EndsAt)
	utils.Success(c, "Flash sale set", product)
}

// ClearFlashSale ends a sale early and restores the regular price.
func ClearFlashSale(c *gin.Context) {
	var product models.Product
	if err := config.DB.First(&product, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	updates := map[string]interface{}{
		"price":            product.OriginalPrice,
		"flash_sale_end":   nil,
		"flash_sale_stock": nil,
	}
	if err := config.DB.Model(&product).Updates(updates).Error; err != nil {
		utils.LogError("Failed to clear flash sale on product %d: %v", product.ID, err)
		utils.InternalServerError(c, "Failed to clear flash sale", nil)
		return
	}

	invalidateCatalogCache()
	utils.LogInfo("Flash sale cleared on product %d", product.ID)
	utils.Success(c, "Flash sale cleared", nil)
}
