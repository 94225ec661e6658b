package controllers

import (
	"strconv"
	"strings"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
)

type bundleRequest struct {
	Name            string `json:"name" binding:"required"`
	ProductIDs      []uint `json:"product_ids" binding:"required"`
	DiscountPercent int    `json:"discount_percent" binding:"required,gt=0,lt=100"`
	Active          *bool  `json:"active"`
}

// resolveBundleProducts validates that the request names at least two
// distinct existing products and returns the canonical id string.
func resolveBundleProducts(ids []uint) (string, string) {
	seen := make(map[uint]struct{}, len(ids))
	distinct := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	if len(distinct) < 2 {
		return "", "A bundle needs at least two distinct products"
	}

	var count int64
	config.DB.Model(&models.Product{}).Where("id IN ?", distinct).Count(&count)
	if count != int64(len(distinct)) {
		return "", "One or more product ids do not exist"
	}

	parts := make([]string, len(distinct))
	for i, id := range distinct {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ","), ""
}

// CreateBundle adds a product bundle.
func CreateBundle(c *gin.Context) {
	utils.LogInfo("CreateBundle called")

	var req bundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid bundle data", err.Error())
		return
	}

	idStr, msg := resolveBundleProducts(req.ProductIDs)
	if msg != "" {
		utils.BadRequest(c, msg, nil)
		return
	}

	bundle := models.Bundle{
		Name:            strings.TrimSpace(req.Name),
		ProductIDs:      idStr,
		DiscountPercent: req.DiscountPercent,
		Active:          true,
	}
	if req.Active != nil {
		bundle.Active = *req.Active
	}
	if err := config.DB.Create(&bundle).Error; err != nil {
		utils.LogError("Failed to create bundle: %v", err)
		utils.InternalServerError(c, "Failed to create bundle", nil)
		return
	}

	invalidateCatalogCache()
	utils.Created(c, "Bundle created", bundle)
}

// UpdateBundle edits a bundle.
func UpdateBundle(c *gin.Context) {
	var bundle models.Bundle
	if err := config.DB.First(&bundle, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Bundle not found")
		return
	}

	var req bundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid bundle data", err.Error())
		return
	}

	idStr, msg := resolveBundleProducts(req.ProductIDs)
	if msg != "" {
		utils.BadRequest(c, msg, nil)
		return
	}

	updates := map[string]interface{}{
		"name":             strings.TrimSpace(req.Name),
		"product_ids":      idStr,
		"discount_percent": req.DiscountPercent,
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := config.DB.Model(&bundle).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update bundle %d: %v", bundle.ID, err)
		utils.InternalServerError(c, "Failed to update bundle", nil)
		return
	}

	invalidateCatalogCache()
	utils.Success(c, "Bundle updated", bundle)
}

// DeleteBundle removes a bundle.
func DeleteBundle(c *gin.Context) {
	var bundle models.Bundle
	if err := config.DB.First(&bundle, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Bundle not found")
		return
	}

	if err := config.DB.Delete(&bundle).Error; err != nil {
		utils.LogError("Failed to delete bundle %d: %v", bundle.ID, err)
		utils.InternalServerError(c, "Failed to delete bundle", nil)
		return
	}

	invalidateCatalogCache()
	utils.Success(c, "Bundle deleted", nil)
}

// AdminListBundles lists all bundles including inactive ones.
func AdminListBundles(c *gin.Context) {
	var bundles []models.Bundle
	if err := config.DB.Order("created_at DESC").Find(&bundles).Error; err != nil {
		utils.LogError("Failed to list bundles: %v", err)
		utils.InternalServerError(c, "Failed to load bundles", nil)
		return
	}
	utils.Success(c, "Bundles retrieved", bundles)
}
