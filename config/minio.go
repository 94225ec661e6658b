package config

import (
	"fmt"
	"os"

	"github.com/nadifalfairuz/digistore/utils"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Minio is the object storage client for product and banner images. Nil
// when MinIO is not configured; upload endpoints report that state.
var Minio *minio.Client

// MinioBucket is the bucket uploads land in.
var MinioBucket string

// InitMinio connects to the object store. Missing configuration is not
// fatal; the store runs without image uploads.
func InitMinio() {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	MinioBucket = os.Getenv("MINIO_BUCKET")
	if MinioBucket == "" {
		MinioBucket = "digistore"
	}

	if endpoint == "" || accessKey == "" {
		utils.LogInfo("MinIO not configured, image uploads disabled")
		return
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: os.Getenv("MINIO_USE_SSL") == "true",
	})
	if err != nil {
		utils.LogError("Failed to connect to MinIO at %s: %v", endpoint, err)
		return
	}

	Minio = client
	utils.LogInfo("Connected to MinIO at %s, bucket %s", endpoint, MinioBucket)
}

// MinioObjectURL builds the public URL for an uploaded object.
func MinioObjectURL(object string) string {
	scheme := "http"
	if os.Getenv("MINIO_USE_SSL") == "true" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, os.Getenv("MINIO_ENDPOINT"), MinioBucket, object)
}
