package routes

import (
	"os"

	"github.com/nadifalfairuz/digistore/controllers"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter() *gin.Engine {
	router := gin.Default()

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = "digistore-dev-secret"
	}
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 24, // 1 day
		Path:     "/",
		Secure:   os.Getenv("ENV") == "production",
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("digistore", store))

	// Gateway callbacks live outside the versioned API
	router.POST("/webhooks/payment", controllers.PaymentWebhook)

	api := router.Group("/v1")
	{
		initStoreRoutes(api)
		initAdminRoutes(api)
	}

	return router
}
