package controllers

import (
	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
)

type bannerRequest struct {
	ImageURL     string `json:"image_url" binding:"required,url"`
	Title        string `json:"title"`
	Link         string `json:"link"`
	DisplayOrder int    `json:"display_order"`
	Active       *bool  `json:"active"`
}

// CreateBanner adds a storefront banner.
func CreateBanner(c *gin.Context) {
	var req bannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "A valid image_url is required", err.Error())
		return
	}

	banner := models.Banner{
		ImageURL:     req.ImageURL,
		Title:        req.Title,
		Link:         req.Link,
		DisplayOrder: req.DisplayOrder,
		Active:       true,
	}
	if req.Active != nil {
		banner.Active = *req.Active
	}
	if err := config.DB.Create(&banner).Error; err != nil {
		utils.LogError("Failed to create banner: %v", err)
		utils.InternalServerError(c, "Failed to create banner", nil)
		return
	}

	invalidateCatalogCache()
	utils.Created(c, "Banner created", banner)
}

// UpdateBanner edits a banner.
func UpdateBanner(c *gin.Context) {
	var banner models.Banner
	if err := config.DB.First(&banner, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Banner not found")
		return
	}

	var req bannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "A valid image_url is required", err.Error())
		return
	}

	updates := map[string]interface{}{
		"image_url":     req.ImageURL,
		"title":         req.Title,
		"link":          req.Link,
		"display_order": req.DisplayOrder,
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := config.DB.Model(&banner).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update banner %d: %v", banner.ID, err)
		utils.InternalServerError(c, "Failed to update banner", nil)
		return
	}

	invalidateCatalogCache()
	utils.Success(c, "Banner updated", banner)
}

// DeleteBanner removes a banner.
func DeleteBanner(c *gin.Context) {
	var banner models.Banner
	if err := config.DB.First(&banner, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Banner not found")
		return
	}

	if err := config.DB.Delete(&banner).Error; err != nil {
		utils.LogError("Failed to delete banner %d: %v", banner.ID, err)
		utils.InternalServerError(c, "Failed to delete banner", nil)
		return
	}

	invalidateCatalogCache()
	utils.Success(c, "Banner deleted", nil)
}

// AdminListBanners lists all banners including inactive ones.
func AdminListBanners(c *gin.Context) {
	var banners []models.Banner
	if err := config.DB.Order("display_order ASC").Find(&banners).Error; err != nil {
		utils.LogError("Failed to list banners: %v", err)
		utils.InternalServerError(c, "Failed to load banners", nil)
		return
	}
	utils.Success(c, "Banners retrieved", banners)
}
