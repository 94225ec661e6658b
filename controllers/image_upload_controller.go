package controllers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

const maxImageSize = 5 << 20 // 5 MiB

var allowedImageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// UploadImage accepts a multipart image and stores it in the object
// store, returning the public URL for use on products and banners.
func UploadImage(c *gin.Context) {
	if config.Minio == nil {
		utils.Error(c, 503, "Image uploads are not available", nil)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		utils.BadRequest(c, "An image file is required", err.Error())
		return
	}
	if file.Size > maxImageSize {
		utils.BadRequest(c, "Image must be 5MB or smaller", nil)
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedImageExts[ext]
	if !ok {
		utils.BadRequest(c, "Only jpg, png, and webp images are allowed", nil)
		return
	}

	object := fmt.Sprintf("images/%s/%s%s", time.Now().Format("2006/01"), uuid.New().String(), ext)

	src, err := file.Open()
	if err != nil {
		utils.LogError("Failed to open uploaded file: %v", err)
		utils.InternalServerError(c, "Failed to read upload", nil)
		return
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	_, err = config.Minio.PutObject(ctx, config.MinioBucket, object, src, file.Size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		utils.LogError("MinIO upload failed for %s: %v", object, err)
		utils.InternalServerError(c, "Failed to store image", nil)
		return
	}

	url := config.MinioObjectURL(object)
	utils.LogInfo("Image uploaded: %s", url)
	utils.Created(c, "Image uploaded", gin.H{"url": url})
}
