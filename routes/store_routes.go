package routes

import (
	"github.com/nadifalfairuz/digistore/controllers"

	"github.com/gin-gonic/gin"
)

// initStoreRoutes initializes the public storefront routes
func initStoreRoutes(router *gin.RouterGroup) {
	// Catalog
	router.GET("/products", controllers.ListProducts)
	router.GET("/products/:id", controllers.GetProduct)
	router.GET("/banners", controllers.ListBanners)
	router.GET("/bundles", controllers.ListBundles)
	router.GET("/search", controllers.SearchProducts)

	// Vouchers
	router.POST("/vouchers/preview", controllers.PreviewVoucher)

	// Checkout and payment confirmation
	router.POST("/checkout", controllers.Checkout)
	router.GET("/orders/:order_id", controllers.GetOrderStatus)
	router.GET("/orders/:order_id/payment", controllers.CheckPaymentStatus)
	router.GET("/orders/:order_id/invoice", controllers.DownloadInvoice)

	// Wallet
	wallet := router.Group("/wallet/:key")
	{
		wallet.GET("", controllers.GetPaymentKey)
		wallet.POST("/check-in", controllers.CheckIn)
		wallet.POST("/pin", controllers.EnablePIN)
		wallet.GET("/history", controllers.WalletHistory)
		wallet.POST("/topup", controllers.InitiateTopup)
		wallet.GET("/recommendations", controllers.RecommendProducts)
	}
	router.GET("/topups/:order_id", controllers.CheckTopupStatus)
}
