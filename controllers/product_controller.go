package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
)

// productView shapes a product for public responses, pricing it at the
// effective price for the current moment.
func productView(p *models.Product, now time.Time) gin.H {
	price := p.EffectivePrice(now)
	view := gin.H{
		"id":              p.ID,
		"name":            p.Name,
		"category":        p.Category,
		"price":           price,
		"price_formatted": utils.FormatRupiah(price),
		"original_price":  p.OriginalPrice,
		"rating":          p.Rating,
		"review_count":    p.ReviewCount,
		"sold_count":      p.SoldCount,
		"best_seller":     p.BestSeller,
		"image_url":       p.ImageURL,
		"stock":           p.Stock,
	}
	if p.FlashSaleLive(now) {
		view["flash_sale"] = gin.H{
			"ends_at":         p.FlashSaleEnd,
			"stock_remaining": p.FlashSaleStock,
		}
	}
	return view
}

// ListProducts is the public catalog listing with category and text
// filters. Unfiltered pages are served from the cache when available.
func ListProducts(c *gin.Context) {
	now := time.Now()
	category := strings.TrimSpace(c.Query("category"))
	q := strings.TrimSpace(c.Query("q"))
	pagination := utils.NewPagination(c)

	cacheKey := ""
	if category == "" && q == "" {
		cacheKey = "products:page:" + strconv.Itoa(pagination.Page) + ":" + strconv.Itoa(pagination.Limit)
		var cached gin.H
		if cacheGet(c.Request.Context(), cacheKey, &cached) {
			c.JSON(200, cached)
			return
		}
	}

	query := config.DB.Model(&models.Product{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if q != "" {
		query = query.Where("name ILIKE ?", "%"+q+"%")
	}

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var products []models.Product
	if err := query.Order("best_seller DESC, sold_count DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&products).Error; err != nil {
		utils.LogError("Failed to list products: %v", err)
		utils.InternalServerError(c, "Failed to load products", nil)
		return
	}

	items := make([]gin.H, 0, len(products))
	for i := range products {
		items = append(items, productView(&products[i], now))
	}

	body := gin.H{
		"status":  "success",
		"message": "Products retrieved",
		"data":    items,
		"pagination": gin.H{
			"total":       pagination.Total,
			"page":        pagination.Page,
			"per_page":    pagination.Limit,
			"total_pages": pagination.LastPage,
		},
	}
	if cacheKey != "" {
		cacheSet(c.Request.Context(), cacheKey, body)
	}
	c.JSON(200, body)
}

// GetProduct returns a single product with its rendered description and
// feature list.
func GetProduct(c *gin.Context) {
	now := time.Now()

	var product models.Product
	if err := config.DB.First(&product, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	view := productView(&product, now)
	view["description"] = product.Description
	view["description_html"] = utils.RenderMarkup(product.Description)
	view["features"] = splitFeatures(product.Features)

	utils.Success(c, "Product retrieved", view)
}

// ListBanners returns active banners ordered for the storefront carousel.
func ListBanners(c *gin.Context) {
	var cached []models.Banner
	if cacheGet(c.Request.Context(), "banners", &cached) {
		utils.Success(c, "Banners retrieved", cached)
		return
	}

	var banners []models.Banner
	if err := config.DB.Where("active = ?", true).
		Order("display_order ASC").Find(&banners).Error; err != nil {
		utils.LogError("Failed to list banners: %v", err)
		utils.InternalServerError(c, "Failed to load banners", nil)
		return
	}

	cacheSet(c.Request.Context(), "banners", banners)
	utils.Success(c, "Banners retrieved", banners)
}

// ListBundles returns active bundles with their member products and the
// discounted bundle price computed from current effective prices.
func ListBundles(c *gin.Context) {
	now := time.Now()

	var bundles []models.Bundle
	if err := config.DB.Where("active = ?", true).Find(&bundles).Error; err != nil {
		utils.LogError("Failed to list bundles: %v", err)
		utils.InternalServerError(c, "Failed to load bundles", nil)
		return
	}

	items := make([]gin.H, 0, len(bundles))
	for _, b := range bundles {
		ids := parseBundleIDs(b.ProductIDs)
		if len(ids) < 2 {
			utils.LogError("Bundle %d has fewer than two valid product ids: %q", b.ID, b.ProductIDs)
			continue
		}

		var products []models.Product
		if err := config.DB.Where("id IN ?", ids).Find(&products).Error; err != nil {
			utils.LogError("Failed to load bundle %d products: %v", b.ID, err)
			continue
		}
		if len(products) < 2 {
			continue
		}

		var sum int64
		views := make([]gin.H, 0, len(products))
		for i := range products {
			sum += products[i].EffectivePrice(now)
			views = append(views, productView(&products[i], now))
		}
		discounted := bundlePrice(sum, b.DiscountPercent)

		items = append(items, gin.H{
			"id":                     b.ID,
			"name":                   b.Name,
			"discount_percent":       b.DiscountPercent,
			"products":               views,
			"regular_price":          sum,
			"bundle_price":           discounted,
			"bundle_price_formatted": utils.FormatRupiah(discounted),
			"savings":                sum - discounted,
		})
	}

	utils.Success(c, "Bundles retrieved", items)
}

// parseBundleIDs parses the comma separated id list stored on a bundle,
// skipping blanks and non-numeric entries.
func parseBundleIDs(raw string) []uint {
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

// bundlePrice applies a whole-percent discount to a summed price.
func bundlePrice(sum int64, discountPercent int) int64 {
	if discountPercent <= 0 {
		return sum
	}
	if discountPercent >= 100 {
		return 0
	}
	return sum - sum*int64(discountPercent)/100
}

func splitFeatures(raw string) []string {
	lines := strings.Split(raw, "\n")
	features := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			features = append(features, line)
		}
	}
	return features
}
